// Package worker moves decoded snapshots from the decoder to a storage
// backend on a dedicated goroutine, so slow backends never stall decoding.
package worker

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rcviewer/rclog/internal/channel"
	"github.com/rcviewer/rclog/internal/storage"
	"github.com/rcviewer/rclog/pkg/core"
)

const defaultQueueSize = 10_000

// writeTask is one unit of work for the write loop. A task with a nil
// snapshot and a non-nil done channel is a flush marker.
type writeTask struct {
	ws   *core.WorldState
	done chan struct{}
}

// Manager owns the write goroutine for one storage backend.
type Manager struct {
	backend storage.Backend
	logger  *slog.Logger
	in      channel.Channel[writeTask]

	wg      sync.WaitGroup
	stopped atomic.Bool

	written           atomic.Int64
	failed            atomic.Int64
	lastWriteDuration atomic.Int64 // nanoseconds
}

// NewManager creates a manager writing to the given backend.
func NewManager(backend storage.Backend, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		backend: backend,
		logger:  logger,
		in:      channel.New[writeTask](defaultQueueSize),
	}
}

// Start launches the write loop.
func (m *Manager) Start() {
	m.wg.Add(1)
	go m.writeLoop()
}

func (m *Manager) writeLoop() {
	defer m.wg.Done()
	for task := range m.in.Receive() {
		if task.done != nil {
			close(task.done)
			continue
		}

		start := time.Now()
		if err := m.backend.WriteSnapshot(task.ws); err != nil {
			m.failed.Add(1)
			m.logger.Error("Snapshot write failed", "time", task.ws.Time, "error", err)
			continue
		}
		m.lastWriteDuration.Store(int64(time.Since(start)))
		m.written.Add(1)
	}
}

// Enqueue hands one snapshot to the write loop. Blocks when the queue is
// full, applying backpressure to the decoder.
func (m *Manager) Enqueue(ws *core.WorldState) error {
	if m.stopped.Load() {
		return fmt.Errorf("worker: already stopped")
	}
	m.in.Send(writeTask{ws: ws})
	return nil
}

// Flush blocks until every snapshot enqueued before the call has been handed
// to the backend.
func (m *Manager) Flush() error {
	if m.stopped.Load() {
		return fmt.Errorf("worker: already stopped")
	}
	done := make(chan struct{})
	m.in.Send(writeTask{done: done})
	<-done
	return nil
}

// Stop drains the queue and terminates the write loop. Safe to call once.
func (m *Manager) Stop() {
	if m.stopped.Swap(true) {
		return
	}
	m.in.Close()
	m.wg.Wait()
}

// QueueLen returns the number of snapshots waiting to be written.
func (m *Manager) QueueLen() int { return m.in.Len() }

// SnapshotsWritten returns the number of snapshots successfully written.
func (m *Manager) SnapshotsWritten() int64 { return m.written.Load() }

// SnapshotsFailed returns the number of snapshots the backend rejected.
func (m *Manager) SnapshotsFailed() int64 { return m.failed.Load() }

// LastWriteDuration returns the duration of the most recent backend write.
func (m *Manager) LastWriteDuration() time.Duration {
	return time.Duration(m.lastWriteDuration.Load())
}
