// Package goselect provides selectable channels: a family of channel
// implementations behind Sender/Receiver handle pairs, plus a Select
// multiplexer that blocks a goroutine until at least one channel from a
// dynamic, heterogeneous collection is ready.
//
// Unlike the built-in select statement, Select is a library value: the set
// of watched channels can grow and shrink at runtime, the same channel may
// be watched concurrently by independent Selects in different goroutines
// (a message is then consumed by exactly one of them), and any third-party
// channel type can participate by implementing the small Selectable
// interface.
//
// Channel flavors:
//
//   - NewRendezvous: capacity 0, every send is a direct handoff to a receiver
//   - NewBounded: fixed buffer, send blocks only when the buffer is full
//   - NewUnbounded: send never blocks
//   - NewOneshot: carries a single message, then closes
//   - NewBroadcast: every subscriber observes every message
//
// Endpoints are reference counted through Clone/Close: closing the last
// Sender closes the channel for sends (receivers drain what is buffered),
// and closing the last Receiver makes further sends fail immediately.
//
// On top of the channels the package provides composable plumbing runners
// in the spirit of Rob Pike's "Go Concurrency Patterns" talk
// (https://go.dev/talks/2012/concurrency.slide):
//
//   - Reader: a goroutine that repeatedly calls a reader function and feeds
//     results into a channel, with error signaling via a oneshot DoneChan
//   - Mapper / Pipe: transform and/or filter data between channels
//   - FanIn: merge multiple input channels into one output channel through
//     a single Select loop
//   - Reducer: collect and reduce values from an input channel with
//     configurable time windows
//
// All runners are designed to be composable (see Block) and provide
// fine-grained control over goroutine lifecycles and completion signaling.
package goselect
