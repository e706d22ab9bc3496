package goselect

import "sync"

// capUnbounded marks a queue with no upper bound. Capacity 0 is a
// rendezvous channel; any positive value is a bounded buffer.
const capUnbounded = -1

// core is the shared state behind a Sender/Receiver pair. All endpoint
// handles reference one core; it owns the message queue, the endpoint
// counts, the condition variables blocked senders and receivers sleep on,
// and the watcher set of Selects observing this channel.
//
// Everything except token state is guarded by mu. Token state is atomic so
// fan-out to many watchers never serializes unrelated selectors.
type core[T any] struct {
	mu sync.Mutex

	queue    []T
	capacity int
	oneshot  bool
	// sent records that a oneshot channel has accepted its single message,
	// closing it for further sends.
	sent bool

	senders   int
	receivers int

	// pushSeq/popSeq count total enqueues and dequeues. A rendezvous sender
	// parks until its own sequence number has been dequeued, which is the
	// handoff completion signal.
	pushSeq uint64
	popSeq  uint64

	// recvWaiters counts receivers blocked in recv. A rendezvous TrySend
	// succeeds only when one of them is free to take the value.
	recvWaiters int

	canSend *sync.Cond
	canRecv *sync.Cond

	watchers watcherSet
}

func newCore[T any](capacity int, oneshot bool) *core[T] {
	c := &core[T]{
		capacity:  capacity,
		oneshot:   oneshot,
		senders:   1,
		receivers: 1,
	}
	c.canSend = sync.NewCond(&c.mu)
	c.canRecv = sync.NewCond(&c.mu)
	return c
}

func (c *core[T]) spaceLocked() bool {
	switch c.capacity {
	case capUnbounded:
		return true
	case 0:
		// Rendezvous: the enqueue itself is "a sender has arrived and is
		// waiting"; the sender parks until the value is taken.
		return true
	default:
		return len(c.queue) < c.capacity
	}
}

func (c *core[T]) closedForSendLocked() bool {
	return c.receivers == 0 || (c.oneshot && c.sent)
}

func (c *core[T]) closedForRecvLocked() bool {
	return c.senders == 0 || (c.oneshot && c.sent)
}

func (c *core[T]) enqueueLocked(val T) uint64 {
	seq := c.pushSeq
	c.pushSeq++
	c.queue = append(c.queue, val)
	if c.oneshot {
		c.sent = true
	}
	c.canRecv.Signal()
	return seq
}

func (c *core[T]) dequeueLocked() T {
	val := c.queue[0]
	var zero T
	c.queue[0] = zero
	c.queue = c.queue[1:]
	if len(c.queue) == 0 {
		c.queue = nil
	}
	c.popSeq++
	// Broadcast rather than Signal: rendezvous senders wait on specific
	// sequence numbers, so the right one must get a chance to look.
	c.canSend.Broadcast()
	return val
}

// send enqueues val, blocking while the buffer is full. On a rendezvous
// channel it additionally parks until a receiver has taken the value.
// Fan-out to watchers happens after the enqueue is visible to peekReady, so
// a signaled token always implies an observable message (unless another
// receiver consumed it first, which the selector resolves as spurious).
func (c *core[T]) send(val T) error {
	c.mu.Lock()
	for {
		if c.closedForSendLocked() {
			c.mu.Unlock()
			return ErrDisconnected
		}
		if c.spaceLocked() {
			break
		}
		c.canSend.Wait()
	}
	seq := c.enqueueLocked(val)
	toks := c.watchers.snapshotLocked()
	c.mu.Unlock()
	notifyAll(toks)
	if c.capacity != 0 {
		return nil
	}

	// Rendezvous handoff: hold the calling goroutine until this exact value
	// has been dequeued, or until the last receiver is gone.
	c.mu.Lock()
	for c.popSeq <= seq && c.receivers > 0 {
		c.canSend.Wait()
	}
	taken := c.popSeq > seq
	c.mu.Unlock()
	if !taken {
		return ErrDisconnected
	}
	return nil
}

// trySend is the non-blocking variant. On a rendezvous channel it succeeds
// only when a receiver is already parked in recv with no queued value ahead
// of it, mirroring native unbuffered-channel select semantics.
func (c *core[T]) trySend(val T) error {
	c.mu.Lock()
	if c.closedForSendLocked() {
		c.mu.Unlock()
		return ErrDisconnected
	}
	if c.capacity == 0 {
		if c.recvWaiters <= len(c.queue) {
			c.mu.Unlock()
			return ErrWouldBlock
		}
	} else if !c.spaceLocked() {
		c.mu.Unlock()
		return ErrWouldBlock
	}
	c.enqueueLocked(val)
	toks := c.watchers.snapshotLocked()
	c.mu.Unlock()
	notifyAll(toks)
	return nil
}

// recv dequeues the oldest message, blocking while the channel is open and
// empty. Once the queue is drained and all senders are gone it fails with
// ErrDisconnected.
func (c *core[T]) recv() (T, error) {
	c.mu.Lock()
	for len(c.queue) == 0 {
		if c.closedForRecvLocked() {
			c.mu.Unlock()
			var zero T
			return zero, ErrDisconnected
		}
		c.recvWaiters++
		c.canRecv.Wait()
		c.recvWaiters--
	}
	val := c.dequeueLocked()
	c.mu.Unlock()
	return val, nil
}

func (c *core[T]) tryRecv() (T, error) {
	c.mu.Lock()
	if len(c.queue) == 0 {
		closed := c.closedForRecvLocked()
		c.mu.Unlock()
		var zero T
		if closed {
			return zero, ErrDisconnected
		}
		return zero, ErrWouldBlock
	}
	val := c.dequeueLocked()
	c.mu.Unlock()
	return val, nil
}

func (c *core[T]) addSender() {
	c.mu.Lock()
	c.senders++
	c.mu.Unlock()
}

// dropSender releases one sender reference. When the last sender goes away
// the channel is closed for sends: blocked receivers wake to drain what is
// left, and watchers are notified so a Select reports the channel ready
// (its receive will then surface ErrDisconnected once drained).
func (c *core[T]) dropSender() {
	c.mu.Lock()
	c.senders--
	var toks []*Token
	if c.senders == 0 {
		c.canRecv.Broadcast()
		toks = c.watchers.snapshotLocked()
	}
	c.mu.Unlock()
	notifyAll(toks)
}

func (c *core[T]) addReceiver() {
	c.mu.Lock()
	c.receivers++
	c.mu.Unlock()
}

// dropReceiver releases one receiver reference. When the last receiver goes
// away, blocked senders wake and fail with ErrDisconnected, including
// rendezvous senders whose value was never taken.
func (c *core[T]) dropReceiver() {
	c.mu.Lock()
	c.receivers--
	if c.receivers == 0 {
		c.canSend.Broadcast()
	}
	c.mu.Unlock()
}

// register adds a watcher token for w. Safe to call while sends and closes
// are in flight; the caller (Select.Add) re-checks readiness afterwards to
// cover events that fanned out before the token existed.
func (c *core[T]) register(w Waiter) *Token {
	t := NewToken(w)
	c.mu.Lock()
	c.watchers.addLocked(t)
	c.mu.Unlock()
	return t
}

// deregister drops the token and removes it from the watcher set. The drop
// happens first so a concurrent fan-out holding an older snapshot observes
// a dead token rather than waking a departed Select.
func (c *core[T]) deregister(t *Token) {
	t.drop()
	c.mu.Lock()
	c.watchers.removeLocked(t)
	c.mu.Unlock()
}

// peekReady reports whether an immediate tryRecv would complete, either
// with a value or with ErrDisconnected. Disconnection counts as ready so
// selectors observe closed channels instead of sleeping forever.
func (c *core[T]) peekReady() bool {
	c.mu.Lock()
	ready := len(c.queue) > 0 || c.closedForRecvLocked()
	c.mu.Unlock()
	return ready
}
