package goselect

import "time"

// Selectable is the capability a channel implements to participate in a
// Select. Any type can plug into the engine — including channels not
// defined by this package — by satisfying these three operations.
//
// The contract: Register must be safe to call while sends and closes are
// concurrently in flight. Deregister must be safe even if a fan-out
// notification for the token is concurrently in progress; the token itself
// carries the liveness state, so observing an already-removed token is
// harmless. PeekReady is a non-blocking, best-effort check used by the
// engine to re-verify a signal before reporting readiness, and must also
// report true when the channel is disconnected (so selectors surface
// closure instead of sleeping forever).
type Selectable interface {
	// Register adds a watcher waking w and returns its token. Implementors
	// typically build the token with NewToken(w) and keep it in a set that
	// every send and close fans out to via Token.Signal.
	Register(w Waiter) *Token

	// Deregister removes the token from the watcher set. The engine marks
	// the token dropped before calling this, so late fan-outs holding an
	// older snapshot wake nobody.
	Deregister(t *Token)

	// PeekReady reports whether an immediate non-blocking operation on the
	// channel would complete.
	PeekReady() bool
}

// Handle identifies one registration within a Select. Handles are opaque
// and stable: adding or removing other registrations never invalidates
// them.
type Handle struct {
	sel Selectable
	tok *Token
}

// Target returns the Selectable this handle was created for.
func (h *Handle) Target() Selectable {
	return h.sel
}

// Select blocks a goroutine until at least one of a dynamic, heterogeneous
// set of channels is ready. Unlike the built-in select statement the set of
// watched channels can grow and shrink at runtime, and the same channel may
// be watched concurrently by independent Select instances in different
// goroutines — a message is then consumed by exactly one of them.
//
// A Select is single-owner: one goroutine calls Add, Remove, Wait and
// friends. Concurrency safety is about independent Selects sharing
// channels, not about one Select shared by many goroutines. The channel
// side may signal tokens from any goroutine at any time.
//
// A signaled token is a hint, not a guarantee: after waking, the engine
// re-verifies readiness with PeekReady, because another selector may have
// consumed the message first. Such races are resolved silently by
// continuing to wait, never surfaced as errors.
type Select struct {
	flag   waitFlag
	regs   []*Handle
	next   int
	closed bool
}

// NewSelect creates an engine with no registrations and a private blocking
// primitive.
func NewSelect() *Select {
	return &Select{flag: newWaitFlag()}
}

// Add registers target and returns its handle. If the target is already
// ready, the registration starts out signaled so the next Wait returns
// without sleeping — this covers sends whose fan-out completed before the
// token existed.
func (s *Select) Add(target Selectable) *Handle {
	if s.closed {
		panic("goselect: Add on closed Select")
	}
	tok := target.Register(s.flag)
	h := &Handle{sel: target, tok: tok}
	s.regs = append(s.regs, h)
	if target.PeekReady() {
		tok.Signal()
	}
	return h
}

// Remove deregisters the handle. Removing a handle whose token is mid
// fan-out is safe: the token is marked dropped first, so the fan-out wakes
// nobody. Removing a handle twice returns ErrNotRegistered, since that is
// a caller bug rather than a transient race.
func (s *Select) Remove(h *Handle) error {
	for i, r := range s.regs {
		if r != h {
			continue
		}
		s.regs = append(s.regs[:i], s.regs[i+1:]...)
		if s.next > i {
			s.next--
		}
		if s.next >= len(s.regs) {
			s.next = 0
		}
		h.tok.drop()
		h.sel.Deregister(h.tok)
		return nil
	}
	return ErrNotRegistered
}

// Len returns the number of current registrations.
func (s *Select) Len() int {
	return len(s.regs)
}

// Wait blocks until one of the registered channels is confirmed ready and
// returns its handle. The caller then performs the actual receive (or
// whatever operation the channel supports). Returns ErrDeadlock when the
// engine has no registrations, since such a wait could never return.
func (s *Select) Wait() (*Handle, error) {
	return s.waitOn(nil)
}

// WaitTimeout is Wait bounded by d. On elapse it returns ErrTimeout with
// all registrations preserved for a subsequent call.
func (s *Select) WaitTimeout(d time.Duration) (*Handle, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	return s.waitOn(timer.C)
}

// TryWait makes a single non-blocking pass over current token states, with
// the same re-verification as Wait. Returns ErrWouldBlock when nothing is
// confirmed ready.
func (s *Select) TryWait() (*Handle, error) {
	if h := s.pollOnce(); h != nil {
		return h, nil
	}
	return nil, ErrWouldBlock
}

// Close deregisters all outstanding registrations so the channel side
// never fans out to a departed engine. The Select must not be used after
// Close.
func (s *Select) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for _, h := range s.regs {
		h.tok.drop()
		h.sel.Deregister(h.tok)
	}
	s.regs = nil
}

// waitOn loops poll-then-sleep until a registration is confirmed ready or
// expired fires. A nil expired channel never fires, giving the unbounded
// Wait. The wait flag is level-triggered, so a Wake posted between the
// poll and the sleep is never lost.
func (s *Select) waitOn(expired <-chan time.Time) (*Handle, error) {
	if len(s.regs) == 0 {
		return nil, ErrDeadlock
	}
	for {
		if h := s.pollOnce(); h != nil {
			return h, nil
		}
		select {
		case <-s.flag:
		case <-expired:
			return nil, ErrTimeout
		}
	}
}

// pollOnce scans registrations starting at a rotating index so a channel
// late in the list is not starved by one that is perpetually ready early
// on. The index advances past each registration returned.
//
// A signaled token whose PeekReady re-check fails is spurious: its signal
// is consumed and the scan moves on. The re-check after the reset closes
// the race with a sender that observed the token still signaled (and so
// skipped its own wake) just before the reset — the message it enqueued is
// visible to PeekReady by the time the reset has happened.
func (s *Select) pollOnce() *Handle {
	n := len(s.regs)
	for i := 0; i < n; i++ {
		idx := (s.next + i) % n
		h := s.regs[idx]
		if !h.tok.signaled() {
			continue
		}
		if h.sel.PeekReady() {
			s.next = (idx + 1) % n
			return h
		}
		h.tok.consume()
		if h.sel.PeekReady() {
			h.tok.Signal()
			s.next = (idx + 1) % n
			return h
		}
	}
	return nil
}
