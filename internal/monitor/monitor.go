// Package monitor periodically reports decode progress while a log is being
// written to storage.
package monitor

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/rcviewer/rclog/internal/influx"
	"github.com/rcviewer/rclog/internal/worker"
)

// DefaultInterval is used when the configured interval is zero.
const DefaultInterval = 10 * time.Second

// Status is one progress sample.
type Status struct {
	Time              time.Time `json:"time"`
	Resource          string    `json:"resource"`
	QueueLen          int       `json:"queueLen"`
	SnapshotsWritten  int64     `json:"snapshotsWritten"`
	SnapshotsFailed   int64     `json:"snapshotsFailed"`
	LastWriteDuration float64   `json:"lastWriteMs"`
}

// Dependencies holds everything the monitor samples and reports to.
type Dependencies struct {
	Logger *slog.Logger
	Worker *worker.Manager
	// Influx is optional; when nil, samples are only logged.
	Influx     *influx.Manager
	Interval   time.Duration
	StatusPath string
}

// Service samples the worker on a fixed interval.
type Service struct {
	deps      Dependencies
	mu        sync.RWMutex
	resource  string
	isRunning bool
	stopChan  chan struct{}
}

// NewService creates a monitor service.
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// SetResource names the log currently being decoded.
func (s *Service) SetResource(resource string) {
	s.mu.Lock()
	s.resource = resource
	s.mu.Unlock()
}

// IsRunning reports whether the monitor goroutine is active.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Sample takes one progress snapshot.
func (s *Service) Sample() Status {
	s.mu.RLock()
	resource := s.resource
	s.mu.RUnlock()

	return Status{
		Time:              time.Now(),
		Resource:          resource,
		QueueLen:          s.deps.Worker.QueueLen(),
		SnapshotsWritten:  s.deps.Worker.SnapshotsWritten(),
		SnapshotsFailed:   s.deps.Worker.SnapshotsFailed(),
		LastWriteDuration: float64(s.deps.Worker.LastWriteDuration().Milliseconds()),
	}
}

// Start launches the sampling goroutine. Calling Start on a running service
// is a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go s.run()
}

func (s *Service) run() {
	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	}()

	var statusFile *os.File
	if s.deps.StatusPath != "" {
		var err error
		statusFile, err = os.Create(s.deps.StatusPath)
		if err != nil {
			s.deps.Logger.Error("Error creating status file", "path", s.deps.StatusPath, "error", err)
		} else {
			defer statusFile.Close()
		}
	}

	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.report(s.Sample(), statusFile)
		}
	}
}

func (s *Service) report(status Status, statusFile *os.File) {
	s.deps.Logger.Info("Decode progress",
		"resource", status.Resource,
		"queueLen", status.QueueLen,
		"written", status.SnapshotsWritten,
		"failed", status.SnapshotsFailed,
		"lastWriteMs", status.LastWriteDuration,
	)

	if statusFile != nil {
		if data, err := json.MarshalIndent(status, "", "  "); err == nil {
			statusFile.Truncate(0)
			statusFile.Seek(0, 0)
			statusFile.Write(append(data, '\n'))
		}
	}

	if s.deps.Influx != nil {
		err := s.deps.Influx.WriteDecodeStats(
			context.Background(),
			status.Resource,
			status.QueueLen,
			status.SnapshotsWritten,
			status.SnapshotsFailed,
			time.Duration(status.LastWriteDuration)*time.Millisecond,
		)
		if err != nil {
			s.deps.Logger.Warn("Error writing decode stats to InfluxDB", "error", err)
		}
	}
}

// Stop terminates the sampling goroutine.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}
