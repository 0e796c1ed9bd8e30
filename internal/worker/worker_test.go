package worker

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcviewer/rclog/internal/storage"
	"github.com/rcviewer/rclog/pkg/core"
)

// fakeBackend records snapshots and optionally fails every write.
type fakeBackend struct {
	mu     sync.Mutex
	writes []*core.WorldState
	fail   bool
}

var _ storage.Backend = (*fakeBackend)(nil)

func (f *fakeBackend) Init() error  { return nil }
func (f *fakeBackend) Close() error { return nil }
func (f *fakeBackend) BeginRecording(id string, version int, log *core.SimulationLog) error {
	return nil
}
func (f *fakeBackend) FinishRecording() error { return nil }

func (f *fakeBackend) WriteSnapshot(ws *core.WorldState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("write rejected")
	}
	f.writes = append(f.writes, ws)
	return nil
}

func (f *fakeBackend) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func snapshot(t float64) *core.WorldState {
	return &core.WorldState{Time: t, Ball: core.NewObjectState()}
}

func TestEnqueueAndFlush(t *testing.T) {
	fb := &fakeBackend{}
	m := NewManager(fb, nil)
	m.Start()
	defer m.Stop()

	for i := 0; i < 100; i++ {
		require.NoError(t, m.Enqueue(snapshot(float64(i))))
	}
	require.NoError(t, m.Flush())

	assert.Equal(t, 100, fb.count())
	assert.EqualValues(t, 100, m.SnapshotsWritten())
	assert.EqualValues(t, 0, m.SnapshotsFailed())
	assert.Greater(t, m.LastWriteDuration().Nanoseconds(), int64(0))
}

func TestStopDrainsQueue(t *testing.T) {
	fb := &fakeBackend{}
	m := NewManager(fb, nil)
	m.Start()

	for i := 0; i < 50; i++ {
		require.NoError(t, m.Enqueue(snapshot(float64(i))))
	}
	m.Stop()

	assert.Equal(t, 50, fb.count())
}

func TestEnqueueAfterStop(t *testing.T) {
	fb := &fakeBackend{}
	m := NewManager(fb, nil)
	m.Start()
	m.Stop()

	assert.Error(t, m.Enqueue(snapshot(0)))
	assert.Error(t, m.Flush())
	// Stop is idempotent.
	m.Stop()
}

func TestFailedWritesAreCounted(t *testing.T) {
	fb := &fakeBackend{fail: true}
	m := NewManager(fb, nil)
	m.Start()
	defer m.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Enqueue(snapshot(float64(i))))
	}
	require.NoError(t, m.Flush())

	assert.EqualValues(t, 0, m.SnapshotsWritten())
	assert.EqualValues(t, 5, m.SnapshotsFailed())
	assert.Equal(t, 0, fb.count())
}

func TestOrderIsPreserved(t *testing.T) {
	fb := &fakeBackend{}
	m := NewManager(fb, nil)
	m.Start()
	defer m.Stop()

	for i := 0; i < 20; i++ {
		require.NoError(t, m.Enqueue(snapshot(float64(i))))
	}
	require.NoError(t, m.Flush())

	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i, ws := range fb.writes {
		assert.Equal(t, float64(i), ws.Time)
	}
}
