package goselect

// This file contains adapter methods to make existing components
// conform to the Component, InputComponent, and OutputComponent interfaces.

// Reader adapters

// OutputChan is an alias for RecvChan to conform to OutputComponent interface
func (rc *Reader[R]) OutputChan() *Receiver[R] {
	return rc.RecvChan()
}

// Reducer adapters

// InputChan is an alias for SendChan to conform to InputComponent interface
func (fo *Reducer[T, C, U]) InputChan() *Sender[T] {
	return fo.SendChan()
}

// OutputChan is an alias for RecvChan to conform to OutputComponent interface
func (fo *Reducer[T, C, U]) OutputChan() *Receiver[U] {
	return fo.RecvChan()
}

// FanIn adapters

// OutputChan is an alias for RecvChan to conform to OutputComponent interface
func (fi *FanIn[T]) OutputChan() *Receiver[T] {
	return fi.RecvChan()
}
