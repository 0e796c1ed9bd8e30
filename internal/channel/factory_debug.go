//go:build debug

package channel

// New creates an unbuffered channel in debug builds, so producers rendezvous
// with consumers and ordering bugs surface immediately.
func New[T any](size int) Channel[T] {
	return NewUnbuffered[T]()
}
