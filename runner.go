package goselect

import "sync"

// RunnerBase provides the shared lifecycle for the plumbing components in
// this package (Mapper, FanIn, Reducer, Reader). It owns an unbounded
// control channel that the component's goroutine watches alongside its data
// channels, and the Stop/IsRunning surface.
type RunnerBase[C any] struct {
	stopCmd C
	ctlSend *Sender[C]
	control *Receiver[C]
	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// NewRunnerBase creates a runner whose Stop method posts stopCmd on the
// control channel.
func NewRunnerBase[C any](stopCmd C) RunnerBase[C] {
	send, recv := NewUnbounded[C]()
	return RunnerBase[C]{stopCmd: stopCmd, ctlSend: send, control: recv}
}

func (r *RunnerBase[C]) start() {
	r.mu.Lock()
	r.running = true
	r.mu.Unlock()
	r.wg.Add(1)
}

func (r *RunnerBase[C]) cleanup() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
	r.control.Close()
	r.wg.Done()
}

// post queues a command for the component goroutine. The control channel is
// unbounded so this never blocks; after the goroutine has exited the
// command is silently discarded.
func (r *RunnerBase[C]) post(cmd C) {
	_ = r.ctlSend.TrySend(cmd)
}

// Stop asks the component goroutine to exit and waits for it.
// Stopping an already-stopped component is a no-op.
func (r *RunnerBase[C]) Stop() error {
	r.mu.Lock()
	running := r.running
	r.mu.Unlock()
	if !running {
		return nil
	}
	r.post(r.stopCmd)
	r.wg.Wait()
	return nil
}

// IsRunning returns true if the component goroutine is still active.
func (r *RunnerBase[C]) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// DebugInfo returns internal state useful in logs.
func (r *RunnerBase[C]) DebugInfo() any {
	return map[string]any{
		"running": r.IsRunning(),
	}
}
