package kabu

// Outcome is the result of a round from the player's side.
type Outcome int

const (
	NoOutcome Outcome = iota
	Win
	Draw
	Loss
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Draw:
		return "draw"
	case Loss:
		return "loss"
	default:
		return "none"
	}
}

// TieBreak decides equal scores.
type TieBreak int

const (
	// DealerWins treats a tie as a loss for the player (Oicho-Kabu).
	DealerWins TieBreak = iota
	// Push returns the stake on a tie (Sente-Kabu).
	Push
)

// String returns the tie-break name.
func (t TieBreak) String() string {
	switch t {
	case DealerWins:
		return "dealer_wins"
	case Push:
		return "push"
	default:
		return "unknown"
	}
}

// Resolve compares the finalized hands and returns the outcome together with
// the amount to credit back to the balance. The stake is assumed to have been
// deducted when it was placed, so a win credits twice the bet and a loss
// credits nothing.
func Resolve(player, dealer Hand, bet int, tie TieBreak) (Outcome, int) {
	ps, ds := player.Score(), dealer.Score()
	switch {
	case ps > ds:
		return Win, 2 * bet
	case ps < ds:
		return Loss, 0
	case tie == Push:
		return Draw, bet
	default:
		return Loss, 0
	}
}
