// Package memory buffers a recording in memory and exports it as a JSON
// document (optionally gzip-compressed) when the recording finishes.
package memory

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rcviewer/rclog/internal/config"
	"github.com/rcviewer/rclog/pkg/core"
	"github.com/rcviewer/rclog/pkg/streaming"
)

// Backend stores decoded snapshots in memory and exports to JSON.
type Backend struct {
	cfg    config.MemoryConfig
	logger *slog.Logger

	id        string
	version   int
	startedAt time.Time
	log       *core.SimulationLog
	snapshots []streaming.SnapshotPayload

	exportedPath string

	mu sync.Mutex
}

// New creates a memory backend.
func New(cfg config.MemoryConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{cfg: cfg, logger: logger}
}

// Init initializes the backend.
func (b *Backend) Init() error { return nil }

// Close cleans up resources.
func (b *Backend) Close() error { return nil }

// BeginRecording starts buffering a new recording session. An empty id gets a
// generated UUID.
func (b *Backend) BeginRecording(id string, version int, log *core.SimulationLog) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if log == nil {
		return fmt.Errorf("memory: nil log")
	}
	if id == "" {
		id = uuid.NewString()
	}
	b.id = id
	b.version = version
	b.startedAt = time.Now()
	b.log = log
	b.snapshots = nil
	b.exportedPath = ""
	return nil
}

// WriteSnapshot buffers one snapshot in its wire form.
func (b *Backend) WriteSnapshot(ws *core.WorldState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.log == nil {
		return fmt.Errorf("memory: no recording in progress")
	}
	b.snapshots = append(b.snapshots, streaming.NewSnapshotPayload(ws))
	return nil
}

// FinishRecording exports the buffered recording to disk.
func (b *Backend) FinishRecording() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.log == nil {
		return fmt.Errorf("memory: no recording in progress")
	}
	path, err := b.exportJSON()
	if err != nil {
		return err
	}
	b.exportedPath = path
	b.logger.Info("recording exported",
		"id", b.id,
		"path", path,
		"snapshots", len(b.snapshots))
	b.log = nil
	return nil
}

// ExportedFilePath returns the path of the last export, or "".
func (b *Backend) ExportedFilePath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exportedPath
}
