package goselect

import "sync/atomic"

// Token states. A token is level-triggered: Signaled means "something
// changed since the owner last looked", not an event count.
const (
	tokenIdle int32 = iota
	tokenSignaled
	tokenDropped
)

// Waiter is the wake-up sink a channel sees for each registered Select.
// Channel implementations never touch engine internals directly; they only
// wake the Waiter carried by each Token.
type Waiter interface {
	// Wake unblocks the owning Select if it is sleeping. Must not block and
	// must be safe to call from any goroutine, including while the channel's
	// own locks are held.
	Wake()
}

// Token is the signaling cell linking one channel to one Select
// registration. The channel side flips it to the signaled state during
// fan-out; the owning Select consumes it back to idle after re-verifying
// readiness. Both sides use atomic transitions so that fan-out to many
// watchers never serializes unrelated selectors against each other.
type Token struct {
	state atomic.Int32
	owner Waiter
}

// NewToken creates an idle token owned by w. Channel implementations call
// this from their Register method and store the token in their watcher set.
func NewToken(w Waiter) *Token {
	return &Token{owner: w}
}

// Signal records a readiness event and wakes the owning Select. It reports
// false when the token has been dropped by its owner, in which case the
// caller should prune it from its watcher set.
func (t *Token) Signal() bool {
	for {
		switch t.state.Load() {
		case tokenDropped:
			return false
		case tokenSignaled:
			// Already pending; re-wake in case the owner reset the flag
			// between its scan and its sleep.
			t.owner.Wake()
			return true
		default:
			if t.state.CompareAndSwap(tokenIdle, tokenSignaled) {
				t.owner.Wake()
				return true
			}
		}
	}
}

// Dropped reports whether the owning Select has deregistered this token.
func (t *Token) Dropped() bool {
	return t.state.Load() == tokenDropped
}

// signaled reports whether a readiness event is pending.
func (t *Token) signaled() bool {
	return t.state.Load() == tokenSignaled
}

// consume resets a pending signal back to idle. Called by the owning Select
// when re-verification finds nothing actionable or after a successful
// receive. Reports whether a signal was actually consumed.
func (t *Token) consume() bool {
	return t.state.CompareAndSwap(tokenSignaled, tokenIdle)
}

// drop marks the token dead. Channel-side fan-out observing a dropped token
// skips it; the watcher set prunes it on its next pass.
func (t *Token) drop() {
	t.state.Store(tokenDropped)
}

// waitFlag is the private blocking primitive of a Select engine: a
// capacity-1 channel used as a level-triggered ready flag. A Wake posted
// before the owner sleeps is never lost, and duplicate wakes coalesce.
type waitFlag chan struct{}

func newWaitFlag() waitFlag {
	return make(waitFlag, 1)
}

// Wake implements Waiter.
func (f waitFlag) Wake() {
	select {
	case f <- struct{}{}:
	default:
	}
}
