// Package config loads table rules and runtime settings from HCL.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/oichokabu/internal/game"
	"github.com/lox/oichokabu/kabu"
)

// DefaultFilename is the configuration file looked up when none is given.
const DefaultFilename = "oichokabu.hcl"

// Config is the complete configuration file.
type Config struct {
	LogLevel string        `hcl:"log_level,optional"`
	Table    *TableConfig  `hcl:"table,block"`
	Dealer   *DealerConfig `hcl:"dealer,block"`
	Server   *ServerConfig `hcl:"server,block"`
}

// TableConfig holds the rules of the game.
type TableConfig struct {
	StartingBalance    *int   `hcl:"starting_balance,optional"`
	MinBet             int    `hcl:"min_bet,optional"`
	MaxBet             int    `hcl:"max_bet,optional"`
	ReshuffleThreshold *int   `hcl:"reshuffle_threshold,optional"`
	ThirdCardPolicy    string `hcl:"third_card_policy,optional"`
	TieBreak           string `hcl:"tie_break,optional"`
	DealerVisibility   string `hcl:"dealer_visibility,optional"`
	AutoDrawMandatory  bool   `hcl:"auto_draw_mandatory,optional"`
}

// DealerConfig holds the timing of automatic dealer play.
type DealerConfig struct {
	StepDelay string `hcl:"step_delay,optional"`
}

// ServerConfig holds the websocket listener settings.
type ServerConfig struct {
	Address string `hcl:"address,optional"`
	Port    int    `hcl:"port,optional"`
}

// Default returns the configuration used when no file exists: strict
// Oicho-Kabu on a local server.
func Default() *Config {
	balance, threshold := 1000, kabu.DeckSize/2
	return &Config{
		LogLevel: "info",
		Table: &TableConfig{
			StartingBalance:    &balance,
			MinBet:             10,
			ReshuffleThreshold: &threshold,
			ThirdCardPolicy:    game.Strict.String(),
			TieBreak:           kabu.DealerWins.String(),
			DealerVisibility:   game.AtDealerTurn.String(),
		},
		Dealer: &DealerConfig{StepDelay: game.DefaultStepDelay.String()},
		Server: &ServerConfig{Address: "localhost", Port: 8080},
	}
}

// Load reads filename, falling back to defaults when it does not exist, and
// fills any missing values from Default.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()

	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}

	if c.Table == nil {
		c.Table = def.Table
	}
	if c.Table.StartingBalance == nil {
		c.Table.StartingBalance = def.Table.StartingBalance
	}
	if c.Table.MinBet == 0 {
		c.Table.MinBet = def.Table.MinBet
	}
	if c.Table.ReshuffleThreshold == nil {
		c.Table.ReshuffleThreshold = def.Table.ReshuffleThreshold
	}
	if c.Table.ThirdCardPolicy == "" {
		c.Table.ThirdCardPolicy = def.Table.ThirdCardPolicy
	}
	if c.Table.TieBreak == "" {
		c.Table.TieBreak = def.Table.TieBreak
	}
	if c.Table.DealerVisibility == "" {
		c.Table.DealerVisibility = def.Table.DealerVisibility
	}

	if c.Dealer == nil {
		c.Dealer = def.Dealer
	}
	if c.Dealer.StepDelay == "" {
		c.Dealer.StepDelay = def.Dealer.StepDelay
	}

	if c.Server == nil {
		c.Server = def.Server
	}
	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	opts, err := c.GameOptions()
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	if _, err := c.StepDelay(); err != nil {
		return err
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	return nil
}

// GameOptions converts the table block into session rules.
func (c *Config) GameOptions() (game.Options, error) {
	t := c.Table
	opts := game.Options{
		StartingBalance:    *t.StartingBalance,
		MinBet:             t.MinBet,
		MaxBet:             t.MaxBet,
		ReshuffleThreshold: *t.ReshuffleThreshold,
		AutoDrawMandatory:  t.AutoDrawMandatory,
	}

	var err error
	if opts.ThirdCardPolicy, err = game.ParseThirdCardPolicy(t.ThirdCardPolicy); err != nil {
		return game.Options{}, fmt.Errorf("table: %w", err)
	}
	if opts.TieBreak, err = game.ParseTieBreak(t.TieBreak); err != nil {
		return game.Options{}, fmt.Errorf("table: %w", err)
	}
	if opts.DealerVisibility, err = game.ParseDealerVisibility(t.DealerVisibility); err != nil {
		return game.Options{}, fmt.Errorf("table: %w", err)
	}
	return opts, nil
}

// StepDelay returns the pause between dealer moves.
func (c *Config) StepDelay() (time.Duration, error) {
	d, err := time.ParseDuration(c.Dealer.StepDelay)
	if err != nil {
		return 0, fmt.Errorf("dealer: invalid step_delay %q: %w", c.Dealer.StepDelay, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("dealer: step_delay must be positive: %s", d)
	}
	return d, nil
}

// ServerAddress returns host:port for the websocket listener.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Level returns the parsed log level, defaulting to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
