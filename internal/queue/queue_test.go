package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := New[int]()
	q.Push(1, 2, 3)

	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, q.Len())

	assert.Equal(t, []int{2, 3}, q.Drain())
	assert.Zero(t, q.Len())
}

func TestQueuePopEmpty(t *testing.T) {
	q := New[string]()
	v, ok := q.Pop()
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestQueueClear(t *testing.T) {
	q := New[int]()
	q.Push(1, 2)
	q.Clear()
	assert.Zero(t, q.Len())
}

func TestQueueConcurrentPush(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(j)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, q.Len())
}
