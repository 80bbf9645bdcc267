package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/lox/oichokabu/internal/game"
)

// chips are the bet sizes bound to keys 1-4.
var chips = [4]int{10, 25, 50, 100}

type keyMap struct {
	Bet      [4]key.Binding
	Clear    key.Binding
	Deal     key.Binding
	Draw     key.Binding
	Third    key.Binding
	Finalize key.Binding
	NewRound key.Binding
	Reset    key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Bet: [4]key.Binding{
			key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "bet 10")),
			key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "bet 25")),
			key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "bet 50")),
			key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "bet 100")),
		},
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear bet")),
		Deal:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "deal")),
		Draw:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "draw")),
		Third:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "third card")),
		Finalize: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "stand")),
		NewRound: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new round")),
		Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// forPhase enables only the bindings that make sense in phase, so the help
// line shows what the player can do next.
func (k keyMap) forPhase(phase game.Phase) keyMap {
	betting := phase == game.PhaseBetting
	for i := range k.Bet {
		k.Bet[i].SetEnabled(betting)
	}
	k.Clear.SetEnabled(betting)
	k.Deal.SetEnabled(betting)
	k.Draw.SetEnabled(phase == game.PhaseDealing)
	k.Third.SetEnabled(phase == game.PhasePlayerDeciding)
	k.Finalize.SetEnabled(phase == game.PhasePlayerDeciding)
	k.NewRound.SetEnabled(phase == game.PhaseShowdown)
	return k
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Bet[0], k.Bet[1], k.Bet[2], k.Bet[3], k.Clear, k.Deal,
		k.Draw, k.Third, k.Finalize, k.NewRound, k.Reset, k.Quit,
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
