package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// DefaultStepDelay is the pause between automatic dealer moves.
const DefaultStepDelay = 800 * time.Millisecond

// ErrTableClosed is returned by actions on a closed table.
var ErrTableClosed = errors.New("table closed")

// Table drives a Session for an interactive front-end. It serializes access
// to the session and plays the dealer's turn on a clock: once the player
// finalizes, one DealerStep runs every step delay until showdown.
//
// A scheduled step remembers the session generation it was scheduled for. If
// the round is replaced before it fires, the step is discarded, so a timer
// that escapes Stop can never draw into a new round.
//
// Snapshots are numbered under the table lock and delivered in that order:
// one taken before a concurrent dealer step but published after it is
// dropped.
type Table struct {
	mu       sync.Mutex
	session  *Session
	clock    quartz.Clock
	delay    time.Duration
	logger   *log.Logger
	onChange func(Snapshot)

	timer   *quartz.Timer
	pending bool // at most one dealer step in flight
	closed  bool
	seq     uint64

	deliverMu sync.Mutex
	delivered uint64
}

// NewTable wraps session. A zero delay uses DefaultStepDelay.
func NewTable(session *Session, clock quartz.Clock, delay time.Duration, logger *log.Logger) *Table {
	if delay <= 0 {
		delay = DefaultStepDelay
	}
	return &Table{
		session: session,
		clock:   clock,
		delay:   delay,
		logger:  logger.WithPrefix("table").With("session", session.ID()),
	}
}

// OnChange registers fn to receive a snapshot after every successful action
// and every dealer step, including a step that fails. It is called without
// the table lock held, one snapshot at a time, so fn must not call the
// table's actions.
func (t *Table) OnChange(fn func(Snapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// State returns a snapshot of the session.
func (t *Table) State() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := t.session.State()
	snap.Seq = t.seq
	snap.DealerPending = t.pending
	return snap
}

// DealerPending reports whether a dealer step is scheduled.
func (t *Table) DealerPending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

func (t *Table) PlaceBet(amount int) error { return t.Do(ActionPlaceBet, amount) }
func (t *Table) ClearBet() error           { return t.Do(ActionClearBet, 0) }
func (t *Table) StartDeal() error          { return t.Do(ActionStartDeal, 0) }
func (t *Table) DrawNext() error           { return t.Do(ActionDrawNext, 0) }
func (t *Table) TakeThirdCard() error      { return t.Do(ActionTakeThirdCard, 0) }
func (t *Table) Finalize() error           { return t.Do(ActionFinalize, 0) }
func (t *Table) NewRound() error           { return t.Do(ActionNewRound, 0) }
func (t *Table) Reset() error              { return t.Do(ActionReset, 0) }

// Do applies a player action. The dealer's moves are not player actions and
// are rejected here.
func (t *Table) Do(action Action, amount int) error {
	if action == ActionDealerStep {
		return invalid(action, "the dealer plays automatically")
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrTableClosed
	}
	if err := t.session.Apply(action, amount); err != nil {
		t.mu.Unlock()
		t.logger.Debug("Action rejected", "action", action, "amount", amount, "error", err)
		return err
	}
	if action == ActionNewRound || action == ActionReset {
		t.cancelLocked()
	}
	t.scheduleLocked()
	snap, notify := t.snapshotLocked()
	t.mu.Unlock()

	t.publish(snap, notify)
	return nil
}

// Close cancels any pending dealer step. Later actions fail.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.cancelLocked()
}

func (t *Table) scheduleLocked() {
	if t.closed || t.pending || t.session.Phase() != PhaseDealerTurn {
		return
	}
	gen := t.session.Generation()
	t.pending = true
	t.timer = t.clock.AfterFunc(t.delay, func() { t.step(gen) }, "table", "dealer")
}

func (t *Table) cancelLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.pending = false
}

func (t *Table) step(gen uint64) {
	t.mu.Lock()
	if t.closed || gen != t.session.Generation() {
		t.mu.Unlock()
		t.logger.Debug("Discarding stale dealer step", "generation", gen)
		return
	}
	t.pending = false
	t.timer = nil
	if t.session.Phase() != PhaseDealerTurn {
		t.mu.Unlock()
		return
	}

	err := t.session.DealerStep()
	if err == nil {
		t.scheduleLocked()
	}
	snap, notify := t.snapshotLocked()
	t.mu.Unlock()

	if err != nil {
		// Only an exhausted deck gets here; Reset is the way out.
		t.logger.Error("Dealer step failed", "error", err, "deck", snap.DeckSize)
	}
	t.publish(snap, notify)
}

func (t *Table) snapshotLocked() (Snapshot, func(Snapshot)) {
	t.seq++
	snap := t.session.State()
	snap.Seq = t.seq
	snap.DealerPending = t.pending
	return snap, t.onChange
}

func (t *Table) publish(snap Snapshot, notify func(Snapshot)) {
	if notify == nil {
		return
	}
	t.deliverMu.Lock()
	defer t.deliverMu.Unlock()
	if snap.Seq <= t.delivered {
		t.logger.Debug("Dropping superseded snapshot", "seq", snap.Seq, "delivered", t.delivered)
		return
	}
	t.delivered = snap.Seq
	notify(snap)
}

// String summarises the table for logs.
func (t *Table) String() string {
	snap := t.State()
	return fmt.Sprintf("table %s round %d %s balance %d", snap.SessionID, snap.Round, snap.Phase, snap.Balance)
}
