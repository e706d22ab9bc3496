package goselect

import (
	"errors"
	"log"
)

type fanInCmd[T any] struct {
	Name           string
	AddedChannel   *Receiver[T]
	RemovedChannel *Receiver[T]
}

// FanIn merges multiple input channels into a single output channel. All
// inputs are watched through one Select, so a single goroutine serves an
// arbitrary, dynamically changing set of sources.
type FanIn[T any] struct {
	RunnerBase[fanInCmd[T]]
	// OnChannelRemoved is called when a channel is removed so the caller can
	// perform other cleanups etc based on this
	OnChannelRemoved func(fi *FanIn[T], input *Receiver[T])

	sel        *Select
	inputs     map[*Handle]*Receiver[T]
	selfOwnOut bool
	outSend    *Sender[T]
	outRecv    *Receiver[T]
}

// NewFanIn creates a new FanIn that merges multiple input channels into
// outSend. If outSend is nil, a new unbounded channel is created and owned
// by the FanIn. The FanIn starts running immediately upon creation.
func NewFanIn[T any](outSend *Sender[T]) *FanIn[T] {
	out := &FanIn[T]{
		RunnerBase: NewRunnerBase(fanInCmd[T]{Name: "stop"}),
		inputs:     make(map[*Handle]*Receiver[T]),
	}
	if outSend == nil {
		out.outSend, out.outRecv = NewUnbounded[T]()
		out.selfOwnOut = true
	} else {
		out.outSend = outSend
	}
	out.start()
	return out
}

// RecvChan returns the channel on which merged output can be received.
// It is nil when the output channel was supplied by the caller.
func (fi *FanIn[T]) RecvChan() *Receiver[T] {
	return fi.outRecv
}

// Add adds one or more input channels to the FanIn.
// Messages from these channels will be merged into the output channel.
// Panics if any input channel is nil.
func (fi *FanIn[T]) Add(inputs ...*Receiver[T]) {
	for _, input := range inputs {
		if input == nil {
			panic("Cannot add nil channels")
		}
		fi.post(fanInCmd[T]{Name: "add", AddedChannel: input})
	}
}

// Remove removes an input channel from the FanIn's watch list.
// The channel will no longer contribute to the merged output.
func (fi *FanIn[T]) Remove(target *Receiver[T]) {
	fi.post(fanInCmd[T]{Name: "remove", RemovedChannel: target})
}

func (fi *FanIn[T]) start() {
	fi.RunnerBase.start()
	go func() {
		defer fi.cleanup()
		fi.sel = NewSelect()
		ctl := fi.sel.Add(fi.control)
		for {
			h, err := fi.sel.Wait()
			if err != nil {
				return
			}
			if h == ctl {
				cmd, err := fi.control.TryRecv()
				if err != nil {
					continue
				}
				if cmd.Name == "stop" {
					return
				} else if cmd.Name == "add" {
					nh := fi.sel.Add(cmd.AddedChannel)
					fi.inputs[nh] = cmd.AddedChannel
				} else if cmd.Name == "remove" {
					log.Println("Removing channel: ", cmd.RemovedChannel)
					fi.removeInput(cmd.RemovedChannel)
				}
				continue
			}
			input := fi.inputs[h]
			value, err := input.TryRecv()
			if errors.Is(err, ErrWouldBlock) {
				continue
			}
			if err != nil {
				// input closed and drained, drop it
				fi.removeHandle(h)
				continue
			}
			if err := fi.outSend.Send(value); err != nil {
				// nobody is listening downstream anymore
				return
			}
		}
	}()
}

func (fi *FanIn[T]) removeInput(target *Receiver[T]) {
	for h, input := range fi.inputs {
		if input == target {
			fi.removeHandle(h)
			return
		}
	}
}

func (fi *FanIn[T]) removeHandle(h *Handle) {
	input := fi.inputs[h]
	if err := fi.sel.Remove(h); err != nil {
		return
	}
	delete(fi.inputs, h)
	if fi.OnChannelRemoved != nil {
		fi.OnChannelRemoved(fi, input)
	}
}

func (fi *FanIn[T]) cleanup() {
	fi.sel.Close()
	fi.inputs = nil
	if fi.selfOwnOut {
		fi.outSend.Close()
	}
	fi.RunnerBase.cleanup()
}
