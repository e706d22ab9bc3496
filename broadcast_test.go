package goselect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBroadcastDeliversToAllSubscribers(t *testing.T) {
	b := NewBroadcast[int]()
	r1 := b.Subscribe()
	r2 := b.Subscribe()

	assert.NoError(t, b.Send(1))
	assert.NoError(t, b.Send(2))
	b.Close()

	for _, r := range []*Receiver[int]{r1, r2} {
		v, err := r.Recv()
		assert.NoError(t, err)
		assert.Equal(t, 1, v)
		v, err = r.Recv()
		assert.NoError(t, err)
		assert.Equal(t, 2, v)
		_, err = r.Recv()
		assert.ErrorIs(t, err, ErrDisconnected, "subscribers drain buffered messages, then see the close")
		r.Close()
	}
}

func TestBroadcastPrunesClosedSubscribers(t *testing.T) {
	b := NewBroadcast[int]()
	defer b.Close()
	r1 := b.Subscribe()
	defer r1.Close()
	r2 := b.Subscribe()

	assert.Equal(t, 2, b.Count())
	r2.Close()

	assert.NoError(t, b.Send(3))
	assert.Equal(t, 1, b.Count(), "a closed subscriber is pruned on the next send")

	v, err := r1.Recv()
	assert.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestBroadcastSubscribersAreSelectable(t *testing.T) {
	b := NewBroadcast[string]()
	defer b.Close()
	r1 := b.Subscribe()
	defer r1.Close()
	r2 := b.Subscribe()
	defer r2.Close()

	sel := NewSelect()
	defer sel.Close()
	h1 := sel.Add(r1)
	h2 := sel.Add(r2)

	assert.NoError(t, b.Send("tick"))

	// One send makes both subscriptions ready.
	seen := map[*Handle]bool{}
	for i := 0; i < 2; i++ {
		h, err := sel.Wait()
		assert.NoError(t, err)
		seen[h] = true
		switch h {
		case h1:
			v, err := r1.TryRecv()
			assert.NoError(t, err)
			assert.Equal(t, "tick", v)
		case h2:
			v, err := r2.TryRecv()
			assert.NoError(t, err)
			assert.Equal(t, "tick", v)
		default:
			t.Fatal("unknown handle")
		}
	}
	assert.True(t, seen[h1])
	assert.True(t, seen[h2])
}

func TestBroadcastAfterClose(t *testing.T) {
	b := NewBroadcast[int]()
	b.Close()
	b.Close()

	assert.ErrorIs(t, b.Send(1), ErrDisconnected)

	late := b.Subscribe()
	_, err := late.Recv()
	assert.ErrorIs(t, err, ErrDisconnected, "late subscribers of a closed broadcast see the disconnect")
	late.Close()
}
