package goselect

// IDFunc is an identity function that returns its input unchanged.
// It's commonly used as a default reduce function for batching reducers.
func IDFunc[T any](input T) T {
	return input
}
