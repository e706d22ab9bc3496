package goselect

import (
	"errors"
	"log"
	"time"
)

// Reducer is a way to collect messages of type T in some kind of window
// and reduce them to type U. For example this could be used to batch
// messages into a list every 10 seconds. Alternatively if a time based
// window is not used a reduction can be invoked manually via Flush.
type Reducer[T any, C any, U any] struct {
	RunnerBase[string]
	FlushPeriod time.Duration
	// CollectFunc adds an input to the collection and returns the updated
	// collection. The bool return value indicates whether a flush should be
	// triggered immediately.
	CollectFunc func(input T, collection C) (C, bool)
	ReduceFunc  func(collectedItems C) (reducedOutputs U)

	pendingEvents C
	hasPending    bool
	selfOwnIn     bool
	inSend        *Sender[T]
	inRecv        *Receiver[T]
	selfOwnOut    bool
	outSend       *Sender[U]
	outRecv       *Receiver[U]
}

// ReducerOption is a functional option for configuring a Reducer
type ReducerOption[T any, C any, U any] func(*Reducer[T, C, U])

// WithFlushPeriod sets the flush period for the reducer
func WithFlushPeriod[T any, C any, U any](period time.Duration) ReducerOption[T, C, U] {
	return func(r *Reducer[T, C, U]) {
		r.FlushPeriod = period
	}
}

// WithInputChan sets the input channel for the reducer. The caller keeps
// ownership of the corresponding Sender.
func WithInputChan[T any, C any, U any](recv *Receiver[T]) ReducerOption[T, C, U] {
	return func(r *Reducer[T, C, U]) {
		r.inRecv = recv
		r.selfOwnIn = false
	}
}

// WithOutputChan sets the output channel for the reducer. The caller keeps
// ownership of the corresponding Receiver.
func WithOutputChan[T any, C any, U any](send *Sender[U]) ReducerOption[T, C, U] {
	return func(r *Reducer[T, C, U]) {
		r.outSend = send
		r.selfOwnOut = false
	}
}

// NewReducer creates a reducer over generic input and output types. Options
// can be provided to configure the input channel, output channel, flush
// period, etc. If channels are not provided via options, the reducer will
// create and own them. Just like other runners, the Reducer starts as soon
// as it is created.
func NewReducer[T any, C any, U any](opts ...ReducerOption[T, C, U]) *Reducer[T, C, U] {
	out := &Reducer[T, C, U]{
		RunnerBase:  NewRunnerBase[string]("stop"),
		FlushPeriod: 100 * time.Millisecond,
		selfOwnIn:   true,
		selfOwnOut:  true,
	}
	for _, opt := range opts {
		opt(out)
	}
	if out.inRecv == nil {
		out.inSend, out.inRecv = NewUnbounded[T]()
	}
	if out.outSend == nil {
		out.outSend, out.outRecv = NewUnbounded[U]()
	}
	out.start()
	return out
}

// NewIDReducer creates a Reducer that simply collects events of type T into
// a list (of type []T).
func NewIDReducer[T any](opts ...ReducerOption[T, []T, []T]) *Reducer[T, []T, []T] {
	out := NewReducer(opts...)
	out.ReduceFunc = IDFunc[[]T]
	out.CollectFunc = func(input T, collection []T) ([]T, bool) {
		return append(collection, input), false
	}
	return out
}

// NewListReducer creates a Reducer that collects lists of items and concats
// them to a collection. This allows producers to send events here in batch
// mode instead of 1 at a time.
func NewListReducer[T any](opts ...ReducerOption[[]T, []T, []T]) *Reducer[[]T, []T, []T] {
	out := NewReducer(opts...)
	out.ReduceFunc = IDFunc[[]T]
	out.CollectFunc = func(input []T, collection []T) ([]T, bool) {
		return append(collection, input...), false
	}
	return out
}

// RecvChan returns the channel from which reduced values can be read. It is
// nil when the output channel was supplied by the caller.
func (fo *Reducer[T, C, U]) RecvChan() *Receiver[U] {
	return fo.outRecv
}

// SendChan returns the channel onto which messages can be sent (to be
// reduced). It is nil when the input channel was supplied by the caller.
func (fo *Reducer[T, C, U]) SendChan() *Sender[T] {
	return fo.inSend
}

// Send sends a message/value onto this reducer for (eventual) reduction.
// Panics when the input channel was supplied by the caller (WithInputChan);
// send on that channel's own Sender instead.
func (fo *Reducer[T, C, U]) Send(value T) error {
	if fo.inSend == nil {
		panic("goselect: Send on a Reducer with a caller-owned input channel")
	}
	return fo.inSend.Send(value)
}

// Flush asks the reducer goroutine to reduce and emit whatever is pending
// without waiting for the window to elapse.
func (fo *Reducer[T, C, U]) Flush() {
	fo.post("flush")
}

func (fo *Reducer[T, C, U]) start() {
	fo.RunnerBase.start()
	go func() {
		defer fo.cleanup()
		sel := NewSelect()
		defer sel.Close()
		ctl := sel.Add(fo.control)
		sel.Add(fo.inRecv)
		deadline := time.Now().Add(fo.FlushPeriod)
		for {
			h, err := sel.WaitTimeout(time.Until(deadline))
			if errors.Is(err, ErrTimeout) {
				fo.flushPending()
				deadline = time.Now().Add(fo.FlushPeriod)
				continue
			}
			if err != nil {
				return
			}
			if h == ctl {
				cmd, err := fo.control.TryRecv()
				if err != nil {
					continue
				}
				if cmd == "stop" {
					fo.flushPending()
					return
				}
				if cmd == "flush" {
					fo.flushPending()
					deadline = time.Now().Add(fo.FlushPeriod)
				}
				continue
			}
			event, err := fo.inRecv.TryRecv()
			if errors.Is(err, ErrWouldBlock) {
				continue
			}
			if err != nil {
				// input closed, emit what is left and stop
				fo.flushPending()
				return
			}
			var shouldFlush bool
			fo.pendingEvents, shouldFlush = fo.CollectFunc(event, fo.pendingEvents)
			fo.hasPending = true
			if shouldFlush {
				fo.flushPending()
				deadline = time.Now().Add(fo.FlushPeriod)
			}
		}
	}()
}

// flushPending reduces and emits pending events. Empty windows emit
// nothing.
func (fo *Reducer[T, C, U]) flushPending() {
	if !fo.hasPending {
		return
	}
	log.Printf("Flushing messages.")
	joinedEvents := fo.ReduceFunc(fo.pendingEvents)
	var zero C
	fo.pendingEvents = zero
	fo.hasPending = false
	_ = fo.outSend.Send(joinedEvents)
}

func (fo *Reducer[T, C, U]) cleanup() {
	if fo.selfOwnIn {
		fo.inSend.Close()
		fo.inRecv.Close()
	}
	if fo.selfOwnOut {
		fo.outSend.Close()
	}
	fo.RunnerBase.cleanup()
}
