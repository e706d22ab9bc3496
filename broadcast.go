package goselect

import "sync"

// Broadcast delivers every message to every subscriber. Each subscriber
// owns an independent unbounded queue, so a slow subscriber never blocks
// the producer or its peers, and each subscription is independently
// Selectable.
type Broadcast[T any] struct {
	mu     sync.Mutex
	subs   []*Sender[T]
	closed bool
}

// NewBroadcast creates a broadcast channel with no subscribers.
func NewBroadcast[T any]() *Broadcast[T] {
	return &Broadcast[T]{}
}

// Subscribe returns a Receiver that observes every message sent after this
// call. Closing the Receiver cancels the subscription; the broadcast prunes
// it on its next Send.
func (b *Broadcast[T]) Subscribe() *Receiver[T] {
	send, recv := NewUnbounded[T]()
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		// Late subscribers of a closed broadcast see an already-drained,
		// disconnected channel.
		send.Close()
		return recv
	}
	b.subs = append(b.subs, send)
	b.mu.Unlock()
	return recv
}

// Send delivers val to all current subscribers. Subscribers that closed
// their Receiver are pruned. Returns ErrDisconnected after Close.
func (b *Broadcast[T]) Send(val T) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrDisconnected
	}
	live := b.subs[:0]
	for _, send := range b.subs {
		if err := send.TrySend(val); err != nil {
			// Unbounded sends only fail when the subscriber is gone.
			send.Close()
			continue
		}
		live = append(live, send)
	}
	for i := len(live); i < len(b.subs); i++ {
		b.subs[i] = nil
	}
	b.subs = live
	return nil
}

// Count returns the number of live subscriptions.
func (b *Broadcast[T]) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close ends the broadcast. Subscribers drain whatever is queued, then
// their receives fail with ErrDisconnected. Close is idempotent.
func (b *Broadcast[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, send := range b.subs {
		send.Close()
	}
	b.subs = nil
}
