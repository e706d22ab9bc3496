package goselect

import (
	"fmt"
	"sync"
)

// Component represents any building block that can be part of a Block.
// All goselect runner primitives can implement this interface.
type Component interface {
	// Stop stops the component and cleans up resources
	Stop() error

	// IsRunning returns true if the component is currently running
	IsRunning() bool
}

// InputComponent represents a component fed through a Sender
type InputComponent[T any] interface {
	Component

	// InputChan returns the sender for feeding input to this component
	InputChan() *Sender[T]

	// Send is a convenience method for sending to the input channel
	Send(T) error
}

// OutputComponent represents a component draining into a Receiver
type OutputComponent[T any] interface {
	Component

	// OutputChan returns the receiver for reading this component's output
	OutputChan() *Receiver[T]
}

// Block represents a composite component made up of multiple connected
// primitives. A Block itself acts as a component and can be nested within
// other Blocks.
type Block struct {
	name       string
	components []Component
	mu         sync.RWMutex
	started    bool
	wg         sync.WaitGroup
}

// NewBlock creates a new block with the given name
func NewBlock(name string) *Block {
	return &Block{
		name:       name,
		components: make([]Component, 0),
	}
}

// Add adds a component to this block. Runner components start on creation,
// so adding one marks the block started.
func (b *Block) Add(component Component) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.components = append(b.components, component)
	b.started = true
}

// Connect connects the output of one component to the input of another
// using a Pipe. Returns the pipe so it can be managed if needed.
func Connect[T any](from OutputComponent[T], to InputComponent[T]) *Mapper[T, T] {
	return NewPipe(from.OutputChan(), to.InputChan())
}

// ConnectWith connects two components using a custom mapper function
func ConnectWith[I, O any](from OutputComponent[I], to InputComponent[O],
	mapper func(I) (O, bool, bool)) *Mapper[I, O] {
	return NewMapper(from.OutputChan(), to.InputChan(), mapper)
}

// Stop stops all components in this block in reverse order
func (b *Block) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return nil
	}

	// Stop in reverse order to allow downstream components to drain
	for i := len(b.components) - 1; i >= 0; i-- {
		if err := b.components[i].Stop(); err != nil {
			return fmt.Errorf("failed to stop component %d: %w", i, err)
		}
	}

	b.started = false
	b.wg.Wait()
	return nil
}

// IsRunning returns true if any component in the block is running
func (b *Block) IsRunning() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, comp := range b.components {
		if comp.IsRunning() {
			return true
		}
	}
	return false
}

// Name returns the block's name
func (b *Block) Name() string {
	return b.name
}

// Count returns the number of components in this block
func (b *Block) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.components)
}
