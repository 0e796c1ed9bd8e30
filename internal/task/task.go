// Package task models the decoder's cooperative chunking: a unit of work
// processes a bounded batch, then schedules its own continuation on a runner
// instead of looping, so a host stays responsive on multi-megabyte logs.
// Cancellation is explicit; a cancelled continuation that still fires no-ops.
package task

import (
	"sync/atomic"

	"github.com/rcviewer/rclog/internal/queue"
)

// Token is a cancellation token shared between a work owner and its pending
// continuations.
type Token struct {
	cancelled atomic.Bool
}

// NewToken creates a live token.
func NewToken() *Token { return &Token{} }

// Cancel marks the token cancelled.
func (t *Token) Cancel() { t.cancelled.Store(true) }

// Cancelled reports whether Cancel has been called.
func (t *Token) Cancelled() bool { return t.cancelled.Load() }

// Runner is a zero-delay deferred-callback queue. Continuations run in FIFO
// order when the owner pumps the runner; the runner itself never spawns
// goroutines, keeping decoding single-threaded and cooperative.
type Runner struct {
	pending *queue.Queue[func()]
}

// NewRunner creates an empty runner.
func NewRunner() *Runner {
	return &Runner{pending: queue.New[func()]()}
}

// Schedule enqueues a continuation.
func (r *Runner) Schedule(fn func()) {
	r.pending.Push(fn)
}

// Pump runs the next pending continuation, reporting whether one ran.
func (r *Runner) Pump() bool {
	fn, ok := r.pending.Pop()
	if !ok {
		return false
	}
	fn()
	return true
}

// Drain pumps until no continuation is pending. Continuations scheduled
// while draining run as well.
func (r *Runner) Drain() {
	for r.Pump() {
	}
}

// Len returns the number of pending continuations.
func (r *Runner) Len() int { return r.pending.Len() }
