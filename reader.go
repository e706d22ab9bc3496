package goselect

import (
	"errors"
	"log/slog"
	"time"
)

// readerSendRetry bounds how long a reader goroutine with a full output
// parks before retrying the send. Stop commands wake it immediately.
const readerSendRetry = 5 * time.Millisecond

// ReaderFunc is the type of the reader method used by the Reader goroutine
// primitive.
type ReaderFunc[R any] func() (msg R, err error)

// Reader is a typed producer goroutine which calls a Read method and feeds
// the results into a channel. When Read fails, the error is published on a
// oneshot channel and the reader stops.
type Reader[R any] struct {
	RunnerBase[string]
	Read       ReaderFunc[R]
	OnDone     func(r *Reader[R])
	selfOwnOut bool
	outSend    *Sender[R]
	outRecv    *Receiver[R]
	doneSend   *Sender[error]
	doneRecv   *Receiver[error]
}

// ReaderOption is a functional option for configuring a Reader
type ReaderOption[R any] func(*Reader[R])

// WithOutputBuffer makes the reader create a bounded output channel of the
// given size instead of the default rendezvous channel.
func WithOutputBuffer[R any](size int) ReaderOption[R] {
	return func(r *Reader[R]) {
		r.outSend, r.outRecv = NewBounded[R](size)
	}
}

// WithOutput feeds an existing channel instead of creating one. The caller
// keeps ownership of the corresponding Receiver.
func WithOutput[R any](send *Sender[R]) ReaderOption[R] {
	return func(r *Reader[R]) {
		r.outSend = send
		r.outRecv = nil
		r.selfOwnOut = false
	}
}

// WithOnDone sets the callback to be called when the reader finishes
func WithOnDone[R any](fn func(*Reader[R])) ReaderOption[R] {
	return func(r *Reader[R]) {
		r.OnDone = fn
	}
}

// NewReader creates a new reader instance with functional options. The
// reader function is required as the first parameter, with optional
// configuration via functional options.
func NewReader[R any](read ReaderFunc[R], opts ...ReaderOption[R]) *Reader[R] {
	out := &Reader[R]{
		RunnerBase: NewRunnerBase[string]("stop"),
		Read:       read,
		selfOwnOut: true,
	}
	out.doneSend, out.doneRecv = NewOneshot[error]()
	for _, opt := range opts {
		opt(out)
	}
	if out.outSend == nil {
		out.outSend, out.outRecv = NewRendezvous[R]()
	}
	out.start()
	return out
}

func (rc *Reader[R]) DebugInfo() any {
	return map[string]any{
		"base": rc.RunnerBase.DebugInfo(),
	}
}

// RecvChan returns the channel on which messages can be received. It is nil
// when the output channel was supplied by the caller.
func (rc *Reader[R]) RecvChan() *Receiver[R] {
	return rc.outRecv
}

// DoneChan returns the oneshot channel that delivers the error which ended
// the reader. A clean Stop delivers nil.
func (rc *Reader[R]) DoneChan() *Receiver[error] {
	return rc.doneRecv
}

func (rc *Reader[R]) start() {
	rc.RunnerBase.start()
	go func() {
		defer rc.cleanup()
		sel := NewSelect()
		defer sel.Close()
		sel.Add(rc.control)
		for {
			// Check if we should stop. The control channel is drained
			// between reads; an in-flight Read is not interrupted.
			if _, err := rc.control.TryRecv(); err == nil {
				_ = rc.doneSend.Send(nil)
				return
			}
			msg, err := rc.Read()
			if err != nil {
				slog.Debug("Read Error: ", "error", err)
				_ = rc.doneSend.Send(err)
				return
			}
			// The send must stay interruptible: with nobody draining the
			// output a blocking Send would pin this goroutine and Stop
			// could never return. Retry non-blocking sends, parking on
			// the control channel in between.
			for {
				err := rc.outSend.TrySend(msg)
				if err == nil {
					break
				}
				if !errors.Is(err, ErrWouldBlock) {
					// all receivers gone
					_ = rc.doneSend.Send(err)
					return
				}
				if _, werr := sel.WaitTimeout(readerSendRetry); werr == nil {
					// only "stop" is posted on the control channel
					_ = rc.doneSend.Send(nil)
					return
				}
			}
		}
	}()
}

func (rc *Reader[R]) cleanup() {
	if rc.OnDone != nil {
		rc.OnDone(rc)
	}
	if rc.selfOwnOut {
		rc.outSend.Close()
	}
	rc.doneSend.Close()
	rc.RunnerBase.cleanup()
}
