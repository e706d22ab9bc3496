package goselect

import "sync/atomic"

// Sender is the producing endpoint of a channel. Senders are lightweight
// handles sharing the channel core; Clone creates additional producers and
// Close releases one reference. When the last Sender is closed the channel
// is closed for sends and receivers drain whatever is buffered.
type Sender[T any] struct {
	core   *core[T]
	closed atomic.Bool
}

// Send enqueues val, blocking while the buffer is full. On a rendezvous
// channel Send returns only after a receiver has taken the value.
// Returns ErrDisconnected when all receivers are gone or the handle is
// closed.
func (s *Sender[T]) Send(val T) error {
	if s.closed.Load() {
		return ErrDisconnected
	}
	return s.core.send(val)
}

// TrySend enqueues val without blocking. Returns ErrWouldBlock when the
// buffer is full (or, on a rendezvous channel, when no receiver is parked
// waiting), and ErrDisconnected when all receivers are gone.
func (s *Sender[T]) TrySend(val T) error {
	if s.closed.Load() {
		return ErrDisconnected
	}
	return s.core.trySend(val)
}

// Clone returns a new Sender sharing the same channel. Panics if this
// handle has already been closed.
func (s *Sender[T]) Clone() *Sender[T] {
	if s.closed.Load() {
		panic("goselect: Clone of closed Sender")
	}
	s.core.addSender()
	return &Sender[T]{core: s.core}
}

// Close releases this handle. Closing the last Sender closes the channel
// for sends. Close is idempotent per handle.
func (s *Sender[T]) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.core.dropSender()
	}
}

// Receiver is the consuming endpoint of a channel. It implements
// Selectable, so any Receiver can be registered with a Select.
type Receiver[T any] struct {
	core   *core[T]
	closed atomic.Bool
}

// Recv dequeues the oldest message, blocking while the channel is open and
// empty. Returns ErrDisconnected once the channel is closed for sends and
// fully drained.
func (r *Receiver[T]) Recv() (T, error) {
	if r.closed.Load() {
		var zero T
		return zero, ErrDisconnected
	}
	return r.core.recv()
}

// TryRecv dequeues without blocking. Returns ErrWouldBlock while the
// channel is open and empty.
func (r *Receiver[T]) TryRecv() (T, error) {
	if r.closed.Load() {
		var zero T
		return zero, ErrDisconnected
	}
	return r.core.tryRecv()
}

// Clone returns a new Receiver sharing the same channel. Panics if this
// handle has already been closed.
func (r *Receiver[T]) Clone() *Receiver[T] {
	if r.closed.Load() {
		panic("goselect: Clone of closed Receiver")
	}
	r.core.addReceiver()
	return &Receiver[T]{core: r.core}
}

// Close releases this handle. Closing the last Receiver makes further
// sends fail immediately with ErrDisconnected. Close is idempotent per
// handle.
func (r *Receiver[T]) Close() {
	if r.closed.CompareAndSwap(false, true) {
		r.core.dropReceiver()
	}
}

// Register implements Selectable.
func (r *Receiver[T]) Register(w Waiter) *Token {
	return r.core.register(w)
}

// Deregister implements Selectable.
func (r *Receiver[T]) Deregister(t *Token) {
	r.core.deregister(t)
}

// PeekReady implements Selectable. It reports whether an immediate TryRecv
// would complete with a value or with ErrDisconnected.
func (r *Receiver[T]) PeekReady() bool {
	return r.core.peekReady()
}

func newPair[T any](capacity int, oneshot bool) (*Sender[T], *Receiver[T]) {
	c := newCore[T](capacity, oneshot)
	return &Sender[T]{core: c}, &Receiver[T]{core: c}
}

// NewRendezvous creates a zero-capacity channel: every Send blocks until a
// receiver takes the value (direct handoff).
func NewRendezvous[T any]() (*Sender[T], *Receiver[T]) {
	return newPair[T](0, false)
}

// NewBounded creates a channel with a fixed buffer. Send blocks only while
// the buffer holds capacity messages. Panics if capacity < 1; use
// NewRendezvous for handoff semantics.
func NewBounded[T any](capacity int) (*Sender[T], *Receiver[T]) {
	if capacity < 1 {
		panic("goselect: NewBounded requires capacity >= 1")
	}
	return newPair[T](capacity, false)
}

// NewUnbounded creates a channel whose Send never blocks.
func NewUnbounded[T any]() (*Sender[T], *Receiver[T]) {
	return newPair[T](capUnbounded, false)
}

// NewOneshot creates a channel that carries exactly one message. The first
// successful Send closes the channel for further sends; after the message
// is received the channel is fully closed.
func NewOneshot[T any]() (*Sender[T], *Receiver[T]) {
	return newPair[T](1, true)
}
