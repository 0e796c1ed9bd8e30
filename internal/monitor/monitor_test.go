package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcviewer/rclog/internal/storage/memory"
	"github.com/rcviewer/rclog/internal/worker"

	"github.com/rcviewer/rclog/internal/config"
)

func testWorker(t *testing.T) *worker.Manager {
	t.Helper()
	backend := memory.New(config.MemoryConfig{OutputDir: t.TempDir()}, nil)
	m := worker.NewManager(backend, nil)
	t.Cleanup(m.Stop)
	return m
}

func TestSampleReflectsWorker(t *testing.T) {
	s := NewService(Dependencies{Worker: testWorker(t)})
	s.SetResource("match.rcg")

	status := s.Sample()
	assert.Equal(t, "match.rcg", status.Resource)
	assert.Equal(t, 0, status.QueueLen)
	assert.EqualValues(t, 0, status.SnapshotsWritten)
	assert.False(t, status.Time.IsZero())
}

func TestStartStop(t *testing.T) {
	s := NewService(Dependencies{Worker: testWorker(t), Interval: time.Millisecond})
	assert.False(t, s.IsRunning())

	s.Start()
	assert.True(t, s.IsRunning())
	// Second Start is a no-op.
	s.Start()

	s.Stop()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 5*time.Millisecond)
}

func TestStatusFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	s := NewService(Dependencies{
		Worker:     testWorker(t),
		Interval:   5 * time.Millisecond,
		StatusPath: path,
	})
	s.SetResource("game.ulg")
	s.Start()

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && len(data) > 0
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	require.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 5*time.Millisecond)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var status Status
	require.NoError(t, json.Unmarshal(data, &status))
	assert.Equal(t, "game.ulg", status.Resource)
}

func TestDefaultInterval(t *testing.T) {
	s := NewService(Dependencies{Worker: testWorker(t)})
	assert.Equal(t, DefaultInterval, s.deps.Interval)
}
