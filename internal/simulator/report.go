package simulator

import (
	"time"

	"github.com/lox/oichokabu/internal/statistics"
)

// Report is the JSON summary of a simulation run.
type Report struct {
	Strategy    string      `json:"strategy"`
	Rounds      int         `json:"rounds"`
	Workers     int         `json:"workers"`
	Seed        int64       `json:"seed"`
	Bet         int         `json:"bet"`
	Duration    string      `json:"duration"`
	Mean        float64     `json:"mean"`
	StdDev      float64     `json:"std_dev"`
	CILow       float64     `json:"ci95_low"`
	CIHigh      float64     `json:"ci95_high"`
	Median      float64     `json:"median"`
	Wins        int         `json:"wins"`
	Draws       int         `json:"draws"`
	Losses      int         `json:"losses"`
	WinRate     float64     `json:"win_rate"`
	DrawRounds  int         `json:"third_card_rounds"`
	DrawMean    float64     `json:"third_card_mean"`
	StandRounds int         `json:"stand_rounds"`
	StandMean   float64     `json:"stand_mean"`
	DealerDraws int         `json:"dealer_draws"`
	ByScore     []ScoreLine `json:"by_score"`
	Rules       ReportRules `json:"rules"`
}

// ScoreLine summarises rounds that ended with one player score.
type ScoreLine struct {
	Score  int     `json:"score"`
	Rounds int     `json:"rounds"`
	Wins   int     `json:"wins"`
	Mean   float64 `json:"mean"`
}

// ReportRules records the variant the run was played under.
type ReportRules struct {
	ThirdCardPolicy   string `json:"third_card_policy"`
	TieBreak          string `json:"tie_break"`
	AutoDrawMandatory bool   `json:"auto_draw_mandatory"`
}

// NewReport builds a report from a finished run.
func (s *Simulator) NewReport(stats *statistics.Statistics, elapsed time.Duration) Report {
	low, high := stats.ConfidenceInterval95()
	r := Report{
		Strategy:    s.config.Strategy.Name(),
		Rounds:      stats.Rounds,
		Workers:     s.config.Workers,
		Seed:        s.config.Seed,
		Bet:         s.config.Bet,
		Duration:    elapsed.Round(time.Millisecond).String(),
		Mean:        stats.Mean(),
		StdDev:      stats.StdDev(),
		CILow:       low,
		CIHigh:      high,
		Median:      stats.Median(),
		Wins:        stats.Wins,
		Draws:       stats.Draws,
		Losses:      stats.Losses,
		WinRate:     stats.WinRate(),
		DrawRounds:  stats.DrawRounds,
		StandRounds: stats.StandRounds,
		DealerDraws: stats.DealerDraws,
		Rules: ReportRules{
			ThirdCardPolicy:   s.config.Options.ThirdCardPolicy.String(),
			TieBreak:          s.config.Options.TieBreak.String(),
			AutoDrawMandatory: s.config.Options.AutoDrawMandatory,
		},
	}
	if stats.DrawRounds > 0 {
		r.DrawMean = stats.DrawNet / float64(stats.DrawRounds)
	}
	if stats.StandRounds > 0 {
		r.StandMean = stats.StandNet / float64(stats.StandRounds)
	}
	for score, line := range stats.ByScore {
		if line.Rounds == 0 {
			continue
		}
		r.ByScore = append(r.ByScore, ScoreLine{
			Score:  score,
			Rounds: line.Rounds,
			Wins:   line.Wins,
			Mean:   stats.ScoreMean(score),
		})
	}
	return r
}
