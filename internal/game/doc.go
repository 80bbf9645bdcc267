// Package game sequences Oicho-Kabu rounds for a single seat.
//
// The main type is Session, which owns the deck, the player's tableau, the
// dealer's hand, the stake and the balance, and moves a round through its
// phases:
//
//	betting -> dealing -> player_deciding -> dealer_turn -> showdown -> betting
//
// # Basic Usage
//
//	s := game.NewSession(randutil.New(42))
//	_ = s.PlaceBet(100)
//	_ = s.StartDeal()
//	for s.Phase() == game.PhaseDealing {
//	    _ = s.DrawNext()
//	}
//	if s.MustTakeThirdCard() {
//	    _ = s.TakeThirdCard()
//	}
//	_ = s.Finalize()
//	_ = s.RunDealer()
//	fmt.Println(s.Outcome(), s.Balance())
//
// # Rule Variants
//
// Options selects between strict Oicho-Kabu (forced and forbidden third
// cards, dealer wins ties) and Sente-Kabu (optional third card, ties push):
//
//	s := game.NewSession(rng, game.WithOptions(game.SenteKabu()))
//
// # Dealer Timing
//
// Session never waits. The dealer's turn is a sequence of DealerStep calls;
// Table runs them on a quartz.Clock for interactive front-ends and drops
// steps that were scheduled for a round that has since been replaced.
package game
