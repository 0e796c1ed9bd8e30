package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerFIFO(t *testing.T) {
	r := NewRunner()
	var order []int
	r.Schedule(func() { order = append(order, 1) })
	r.Schedule(func() { order = append(order, 2) })

	require.True(t, r.Pump())
	assert.Equal(t, []int{1}, order)
	r.Drain()
	assert.Equal(t, []int{1, 2}, order)
	assert.False(t, r.Pump())
}

func TestRunnerDrainRunsRescheduled(t *testing.T) {
	r := NewRunner()
	count := 0
	var step func()
	step = func() {
		count++
		if count < 5 {
			r.Schedule(step)
		}
	}
	r.Schedule(step)
	r.Drain()
	assert.Equal(t, 5, count)
}

func TestTokenCancellation(t *testing.T) {
	r := NewRunner()
	tok := NewToken()
	ran := false
	r.Schedule(func() {
		if tok.Cancelled() {
			return
		}
		ran = true
	})

	tok.Cancel()
	r.Drain()
	assert.False(t, ran, "cancelled continuation must no-op")
}
