package goselect

import "errors"

func idMapperFunc[T any](input T) (output T, skip bool, stop bool) {
	output = input
	return
}

// Mapper connects an input and output channel applying transforms between
// them. It waits on the input Receiver through a private Select, so the
// same Receiver may be shared with other consumers without double delivery.
type Mapper[I any, O any] struct {
	RunnerBase[string]
	input  *Receiver[I]
	output *Sender[O]

	// MapFunc is applied to each value from the input channel and returns
	// (outval, skip, stop). If skip is false, outval is sent to the output
	// channel. If stop is true, the mapper stops processing further
	// elements; this can be used in addition to Stop when sequencing within
	// the input stream is required.
	MapFunc func(I) (O, bool, bool)
	OnDone  func(p *Mapper[I, O])
}

// NewMapper creates a new mapper between an input and output channel.
// The endpoints stay owned by the caller and are not closed when the
// mapper stops. The mapper starts running immediately.
func NewMapper[I any, O any](input *Receiver[I], output *Sender[O], mapper func(I) (O, bool, bool)) *Mapper[I, O] {
	out := &Mapper[I, O]{
		RunnerBase: NewRunnerBase("stop"),
		input:      input,
		output:     output,
		MapFunc:    mapper,
	}
	out.start()
	return out
}

func (m *Mapper[I, O]) start() {
	m.RunnerBase.start()
	go func() {
		defer m.cleanup()
		sel := NewSelect()
		defer sel.Close()
		ctl := sel.Add(m.control)
		sel.Add(m.input)
		for {
			h, err := sel.Wait()
			if err != nil {
				return
			}
			if h == ctl {
				// only "stop" is posted here
				return
			}
			value, err := m.input.TryRecv()
			if errors.Is(err, ErrWouldBlock) {
				// another consumer won the race; keep waiting
				continue
			}
			if err != nil {
				// no more inputs
				return
			}
			outval, skip, stop := m.MapFunc(value)
			if !skip {
				if err := m.output.Send(outval); err != nil {
					return
				}
			}
			if stop {
				return
			}
		}
	}()
}

func (m *Mapper[I, O]) cleanup() {
	if m.OnDone != nil {
		m.OnDone(m)
	}
	m.RunnerBase.cleanup()
}

// NewPipe creates a new pipe that connects an input and output channel.
// A pipe is a mapper with the identity function, so it simply forwards
// all values from input to output without transformation.
func NewPipe[T any](input *Receiver[T], output *Sender[T]) *Mapper[T, T] {
	return NewMapper(input, output, idMapperFunc)
}
