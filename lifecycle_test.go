package goselect

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestMapperForwardsAndTransforms verifies the basic mapper data path.
func TestMapperForwardsAndTransforms(t *testing.T) {
	inSend, inRecv := NewUnbounded[int]()
	outSend, outRecv := NewUnbounded[int]()
	defer outRecv.Close()

	mapper := NewMapper(inRecv, outSend, func(i int) (int, bool, bool) {
		return i * 2, false, false
	})
	defer mapper.Stop()

	for i := 1; i <= 3; i++ {
		assert.NoError(t, inSend.Send(i))
	}
	for i := 1; i <= 3; i++ {
		v, err := recvWithin(t, outRecv)
		assert.NoError(t, err)
		assert.Equal(t, i*2, v)
	}
	inSend.Close()
}

// TestMapperStopsOnInputClose verifies that a Mapper winds down once its
// input channel is closed and drained.
func TestMapperStopsOnInputClose(t *testing.T) {
	inSend, inRecv := NewUnbounded[int]()
	outSend, outRecv := NewUnbounded[int]()
	defer outRecv.Close()
	defer outSend.Close()

	called := make(chan struct{})
	mapper := NewMapper(inRecv, outSend, func(i int) (int, bool, bool) {
		return i, false, false
	})
	mapper.OnDone = func(m *Mapper[int, int]) {
		close(called)
	}

	inSend.Close()

	select {
	case <-called:
	case <-time.After(testTimeout):
		t.Fatal("Timeout waiting for Mapper to wind down")
	}
	assert.Eventually(t, func() bool { return !mapper.IsRunning() },
		time.Second, 10*time.Millisecond)
}

// TestMapperStopFilterAndEarlyExit exercises the skip and stop returns of
// the map function.
func TestMapperStopFilterAndEarlyExit(t *testing.T) {
	inSend, inRecv := NewUnbounded[int]()
	outSend, outRecv := NewUnbounded[int]()
	defer outRecv.Close()
	defer inSend.Close()

	mapper := NewMapper(inRecv, outSend, func(i int) (int, bool, bool) {
		if i%2 == 1 {
			return 0, true, false // skip odd values
		}
		return i, false, i >= 4 // stop after 4
	})

	for i := 0; i <= 10; i++ {
		assert.NoError(t, inSend.Send(i))
	}

	assert.Eventually(t, func() bool { return !mapper.IsRunning() },
		time.Second, 10*time.Millisecond)
	outSend.Close()

	var got []int
	for {
		v, err := outRecv.Recv()
		if err != nil {
			assert.ErrorIs(t, err, ErrDisconnected)
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{0, 2, 4}, got)
}

func TestMapperExplicitStop(t *testing.T) {
	inSend, inRecv := NewUnbounded[int]()
	outSend, outRecv := NewUnbounded[int]()
	defer inSend.Close()
	defer outSend.Close()
	defer outRecv.Close()

	mapper := NewPipe(inRecv, outSend)
	assert.True(t, mapper.IsRunning())
	assert.NoError(t, mapper.Stop())
	assert.False(t, mapper.IsRunning())
	assert.NoError(t, mapper.Stop(), "Stop is idempotent")
}

func TestReaderFeedsChannelUntilError(t *testing.T) {
	count := 0
	reader := NewReader(func() (int, error) {
		count++
		if count > 3 {
			return 0, io.EOF
		}
		return count, nil
	})

	out := reader.RecvChan()
	for i := 1; i <= 3; i++ {
		v, err := recvWithin(t, out)
		assert.NoError(t, err)
		assert.Equal(t, i, v)
	}

	err, rerr := recvWithin(t, reader.DoneChan())
	assert.NoError(t, rerr)
	assert.True(t, errors.Is(err, io.EOF), "the terminating error is published on DoneChan")

	assert.Eventually(t, func() bool { return !reader.IsRunning() },
		time.Second, 10*time.Millisecond)
}

func TestReaderStop(t *testing.T) {
	reader := NewReader(func() (int, error) {
		time.Sleep(5 * time.Millisecond)
		return 1, nil
	}, WithOutputBuffer[int](100))

	time.Sleep(30 * time.Millisecond)
	assert.NoError(t, reader.Stop())
	assert.False(t, reader.IsRunning())

	err, rerr := recvWithin(t, reader.DoneChan())
	assert.NoError(t, rerr)
	assert.NoError(t, err, "a clean stop publishes a nil error")
}

// TestReaderStopWhileOutputBlocked verifies that Stop returns even when the
// reader goroutine is parked on a send nobody is draining.
func TestReaderStopWhileOutputBlocked(t *testing.T) {
	reader := NewReader(func() (int, error) {
		return 1, nil
	})

	// The default output is a rendezvous channel with no receiver, so the
	// reader is parked on its first send almost immediately.
	time.Sleep(50 * time.Millisecond)

	stopped := make(chan error, 1)
	go func() {
		stopped <- reader.Stop()
	}()
	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(testTimeout):
		t.Fatal("Stop hung while the reader was blocked in a send")
	}
	assert.False(t, reader.IsRunning())

	err, rerr := recvWithin(t, reader.DoneChan())
	assert.NoError(t, rerr)
	assert.NoError(t, err, "a stop during a blocked send is still a clean stop")
}

func TestBlockComposition(t *testing.T) {
	reader := NewReader(func() (int, error) {
		time.Sleep(time.Millisecond)
		return 1, nil
	}, WithOutputBuffer[int](1000))
	reducer := NewIDReducer(WithFlushPeriod[int, []int, []int](20 * time.Millisecond))

	block := NewBlock("pipeline")
	block.Add(reader)
	block.Add(reducer)
	pipe := Connect[int](reader, reducer)
	block.Add(pipe)

	assert.Equal(t, "pipeline", block.Name())
	assert.Equal(t, 3, block.Count())
	assert.True(t, block.IsRunning())

	batch, err := recvWithin(t, reducer.RecvChan())
	assert.NoError(t, err)
	assert.NotEmpty(t, batch)

	assert.NoError(t, block.Stop())
	assert.Eventually(t, func() bool { return !block.IsRunning() },
		time.Second, 10*time.Millisecond)
}
