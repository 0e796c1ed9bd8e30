//go:build !debug

package channel

// New creates a buffered channel of the given capacity.
func New[T any](size int) Channel[T] {
	return NewBuffered[T](size)
}
