package goselect

import (
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIDReducer(t *testing.T) {
	log.Println("============== TestIDReducer ================")
	reducer := NewIDReducer(WithFlushPeriod[int, []int, []int](50 * time.Millisecond))
	defer reducer.Stop()

	// Send 5 values
	go func() {
		for i := 0; i < 5; i++ {
			assert.NoError(t, reducer.Send(i))
		}
	}()

	// Batches arrive after flush windows; collect until all 5 are in.
	var got []int
	for len(got) < 5 {
		batch, err := recvWithin(t, reducer.RecvChan())
		assert.NoError(t, err)
		got = append(got, batch...)
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, got, "Values should arrive in send order")
}

func TestReducerManualFlush(t *testing.T) {
	log.Println("============== TestReducerManualFlush ================")
	reducer := NewIDReducer(WithFlushPeriod[int, []int, []int](10 * time.Second))
	defer reducer.Stop()

	for i := 0; i < 3; i++ {
		assert.NoError(t, reducer.Send(i))
	}
	// Give the reducer goroutine a moment to collect before forcing the
	// flush; the window itself is far in the future.
	time.Sleep(50 * time.Millisecond)
	reducer.Flush()

	batch, err := recvWithin(t, reducer.RecvChan())
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, batch)
}

func TestReducerCollectTriggeredFlush(t *testing.T) {
	log.Println("============== TestReducerCollectTriggeredFlush ================")
	reducer := NewReducer(WithFlushPeriod[int, []int, int](10 * time.Second))
	reducer.ReduceFunc = func(items []int) int {
		total := 0
		for _, v := range items {
			total += v
		}
		return total
	}
	reducer.CollectFunc = func(input int, collection []int) ([]int, bool) {
		collection = append(collection, input)
		// flush as soon as a window holds 3 values
		return collection, len(collection) >= 3
	}
	defer reducer.Stop()

	for i := 1; i <= 3; i++ {
		assert.NoError(t, reducer.Send(i))
	}

	total, err := recvWithin(t, reducer.RecvChan())
	assert.NoError(t, err)
	assert.Equal(t, 6, total)
}

func TestListReducer(t *testing.T) {
	log.Println("============== TestListReducer ================")
	reducer := NewListReducer(WithFlushPeriod[[]int, []int, []int](50 * time.Millisecond))
	defer reducer.Stop()

	assert.NoError(t, reducer.Send([]int{1, 2}))
	assert.NoError(t, reducer.Send([]int{3}))

	var got []int
	for len(got) < 3 {
		batch, err := recvWithin(t, reducer.RecvChan())
		assert.NoError(t, err)
		got = append(got, batch...)
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestReducerCallerOwnedInput(t *testing.T) {
	log.Println("============== TestReducerCallerOwnedInput ================")
	inSend, inRecv := NewUnbounded[int]()
	reducer := NewIDReducer(
		WithInputChan[int, []int, []int](inRecv),
		WithFlushPeriod[int, []int, []int](50*time.Millisecond))
	defer reducer.Stop()
	defer inSend.Close()

	// The caller owns the input endpoints, so the reducer exposes no Sender
	// of its own.
	assert.Nil(t, reducer.SendChan())
	assert.Panics(t, func() { _ = reducer.Send(1) })

	assert.NoError(t, inSend.Send(7))
	batch, err := recvWithin(t, reducer.RecvChan())
	assert.NoError(t, err)
	assert.Equal(t, []int{7}, batch)
}

func TestReducerFlushOnStop(t *testing.T) {
	log.Println("============== TestReducerFlushOnStop ================")
	reducer := NewIDReducer(WithFlushPeriod[int, []int, []int](10 * time.Second))

	for i := 0; i < 2; i++ {
		assert.NoError(t, reducer.Send(i))
	}
	time.Sleep(50 * time.Millisecond)

	out := reducer.RecvChan()
	go reducer.Stop()

	batch, err := recvWithin(t, out)
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1}, batch, "pending events are emitted on stop")

	_, err = recvWithin(t, out)
	assert.ErrorIs(t, err, ErrDisconnected)
}
