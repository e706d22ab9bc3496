package goselect

import "errors"

// Errors returned by channel operations and the Select engine.
var (
	// ErrDisconnected means all peer endpoints are gone: every Receiver was
	// closed (for sends) or every Sender was closed and the queue is drained
	// (for receives). It is never retried internally.
	ErrDisconnected = errors.New("goselect: peer endpoints disconnected")

	// ErrWouldBlock means a non-blocking operation (TrySend, TryRecv,
	// TryWait) could not complete immediately. The caller decides whether to
	// retry, block, or register with a Select.
	ErrWouldBlock = errors.New("goselect: operation would block")

	// ErrTimeout means WaitTimeout elapsed with nothing ready. All
	// registrations remain valid for a subsequent call.
	ErrTimeout = errors.New("goselect: wait timed out")

	// ErrDeadlock means Wait was called on a Select with no registrations,
	// which could never return.
	ErrDeadlock = errors.New("goselect: wait on empty select would deadlock")

	// ErrNotRegistered means Remove was called with a handle that is not
	// (or is no longer) registered. This indicates a caller bug, not a
	// transient race, so it is reported rather than ignored.
	ErrNotRegistered = errors.New("goselect: handle not registered")
)
