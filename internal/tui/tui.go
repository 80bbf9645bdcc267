// Package tui is a terminal front-end for a single-seat Oicho-Kabu table.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/oichokabu/internal/game"
	"github.com/lox/oichokabu/kabu"
)

// refreshMsg asks the model to re-read the table. It carries no snapshot so
// that messages delivered out of order can never roll the view back.
type refreshMsg struct{}

// Model is the Bubble Tea model for a table.
type Model struct {
	table  *game.Table
	logger *log.Logger

	keys     keyMap
	help     help.Model
	history  viewport.Model
	snap     game.Snapshot
	rounds   []string
	lastSeen int // round whose result is already in rounds
	err      error

	width    int
	height   int
	quitting bool
}

// New creates a model for table.
func New(table *game.Table, logger *log.Logger) *Model {
	return &Model{
		table:   table,
		logger:  logger.WithPrefix("tui"),
		keys:    defaultKeyMap(),
		help:    help.New(),
		history: viewport.New(40, 5),
		snap:    table.State(),
	}
}

// Attach forwards table changes to p. Dealer steps happen on the table's
// clock, outside the program's event loop.
func (m *Model) Attach(p *tea.Program) {
	m.table.OnChange(func(game.Snapshot) {
		// Send blocks until the event loop reads it, and the hook also runs
		// inside Update.
		go p.Send(refreshMsg{})
	})
}

// Run plays table in the terminal until the player quits or ctx ends.
func Run(ctx context.Context, table *game.Table, logger *log.Logger) error {
	lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).EnvColorProfile())

	m := New(table, logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.Attach(p)
	defer table.Close()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.history.Width = max(msg.Width-2, 1)

	case refreshMsg:
		m.refresh()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	var err error
	switch {
	case key.Matches(msg, m.keys.Bet[0]):
		err = m.table.PlaceBet(chips[0])
	case key.Matches(msg, m.keys.Bet[1]):
		err = m.table.PlaceBet(chips[1])
	case key.Matches(msg, m.keys.Bet[2]):
		err = m.table.PlaceBet(chips[2])
	case key.Matches(msg, m.keys.Bet[3]):
		err = m.table.PlaceBet(chips[3])
	case key.Matches(msg, m.keys.Clear):
		err = m.table.ClearBet()
	case key.Matches(msg, m.keys.Deal):
		err = m.table.StartDeal()
	case key.Matches(msg, m.keys.Draw):
		err = m.table.DrawNext()
	case key.Matches(msg, m.keys.Third):
		err = m.table.TakeThirdCard()
	case key.Matches(msg, m.keys.Finalize):
		err = m.table.Finalize()
	case key.Matches(msg, m.keys.NewRound):
		err = m.table.NewRound()
	case key.Matches(msg, m.keys.Reset):
		err = m.table.Reset()
	default:
		return
	}

	m.err = err
	if err != nil {
		m.logger.Debug("Action rejected", "key", msg.String(), "error", err)
	}
	m.refresh()
}

// refresh re-reads the table and records a finished round once.
func (m *Model) refresh() {
	m.snap = m.table.State()
	if m.snap.Phase != game.PhaseShowdown || m.snap.Round == m.lastSeen {
		return
	}
	m.lastSeen = m.snap.Round
	m.rounds = append(m.rounds, fmt.Sprintf("Round %d: %s %d vs %d, bet %d, paid %d",
		m.snap.Round, m.snap.Outcome, m.snap.PlayerScore, m.snap.DealerScore, m.snap.Bet, m.snap.Payout))
	m.history.SetContent(strings.Join(m.rounds, "\n"))
	m.history.GotoBottom()
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("Oicho-Kabu  round %d", m.snap.Round)))
	b.WriteString("\n\n")

	dealerScore := "?"
	if m.snap.DealerScoreKnown {
		dealerScore = fmt.Sprint(m.snap.DealerScore)
	}
	b.WriteString(m.renderHand("Dealer", m.snap.Dealer, dealerScore))
	b.WriteString("\n")
	b.WriteString(m.renderHand("You", m.snap.Player, fmt.Sprint(m.snap.PlayerScore)))
	b.WriteString("\n")

	fmt.Fprintf(&b, "Bet: %d  Balance: %d  Deck: %d  Phase: %s\n",
		m.snap.Bet, m.snap.Balance, m.snap.DeckSize, m.snap.Phase)
	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	if len(m.rounds) > 0 {
		b.WriteString(LogStyle.Render(m.history.View()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys.forPhase(m.snap.Phase)))
	return b.String()
}

func (m *Model) renderHand(label string, cards []game.CardView, score string) string {
	if len(cards) == 0 {
		return LabelStyle.Render(label) + InfoStyle.Render("no cards") + "\n"
	}
	rendered := make([]string, 0, len(cards)+2)
	rendered = append(rendered, LabelStyle.Render(label))
	for _, c := range cards {
		if !c.FaceUp {
			rendered = append(rendered, HiddenCardStyle.Render("?"))
			continue
		}
		rendered = append(rendered, CardStyle.Render(fmt.Sprint(c.Card.Suit)))
	}
	rendered = append(rendered, " "+ScoreStyle.Render(score))
	return lipgloss.JoinHorizontal(lipgloss.Center, rendered...)
}

func (m *Model) renderStatus() string {
	if m.err != nil {
		return ErrorStyle.Render(m.err.Error())
	}

	switch m.snap.Phase {
	case game.PhaseBetting:
		if m.snap.Bet == 0 {
			return InfoStyle.Render("Place a bet to start.")
		}
		return InfoStyle.Render("Add chips or deal.")
	case game.PhaseDealing:
		return InfoStyle.Render("Dealing...")
	case game.PhasePlayerDeciding:
		switch {
		case !m.snap.Allows(game.ActionTakeThirdCard):
			return InfoStyle.Render("Stand to pass to the dealer.")
		case !m.snap.Allows(game.ActionFinalize):
			return InfoStyle.Render("You must take a third card.")
		default:
			return InfoStyle.Render("Take a third card or stand.")
		}
	case game.PhaseDealerTurn:
		if m.snap.Stalled() {
			return ErrorStyle.Render("The deck ran out during the dealer's turn. Press r to reset.")
		}
		return InfoStyle.Render("Dealer is playing...")
	case game.PhaseShowdown:
		switch m.snap.Outcome {
		case kabu.Win:
			return WinStyle.Render(fmt.Sprintf("You win %d!", m.snap.Payout))
		case kabu.Draw:
			return DrawStyle.Render("Push, bet returned.")
		default:
			return LossStyle.Render("Dealer wins.")
		}
	}
	return ""
}
