// Package sqlite persists decoded recordings to a sqlite archive via gorm.
// Writes go to an in-memory database that is periodically dumped to disk with
// VACUUM INTO; parameter maps and snapshot payloads are stored as JSON
// columns.
package sqlite

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/rcviewer/rclog/internal/config"
	"github.com/rcviewer/rclog/internal/database"
	"github.com/rcviewer/rclog/internal/geo"
	"github.com/rcviewer/rclog/internal/logging"
	"github.com/rcviewer/rclog/pkg/core"
	"github.com/rcviewer/rclog/pkg/streaming"
)

// snapshotBatchSize is the number of buffered snapshot rows inserted at once.
const snapshotBatchSize = 500

// Recording is one decoded log in the archive.
type Recording struct {
	ID        string `gorm:"primaryKey"`
	Resource  string `gorm:"index"`
	Kind      int
	Version   int
	Frequency float64
	DecodedAt time.Time

	LeftTeam   string
	RightTeam  string
	GoalsLeft  int
	GoalsRight int

	EnvParams    datatypes.JSON
	PlayerParams datatypes.JSON
	TypeParams   datatypes.JSON

	// BallPath is a simplified WKT polyline for archive previews.
	BallPath string

	Snapshots int
	Duration  float64
}

// Snapshot is one world snapshot row.
type Snapshot struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	RecordingID string `gorm:"index"`
	Time        float64
	GameTime    float64
	PlayMode    string
	Payload     datatypes.JSON
}

// Backend writes recordings through a database.Manager.
type Backend struct {
	cfg    config.SqliteConfig
	logger *slog.Logger
	db     *database.Manager

	rec     *Recording
	log     *core.SimulationLog
	pending []Snapshot

	stopChan chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
}

// New creates a sqlite backend. The connection is opened in Init.
func New(cfg config.SqliteConfig, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		cfg:      cfg,
		logger:   logger,
		stopChan: make(chan struct{}),
	}, nil
}

// SetManager injects an existing connection, for tests.
func (b *Backend) SetManager(m *database.Manager) { b.db = m }

// Init opens the database, migrates the schema and starts the dump loop for
// in-memory connections.
func (b *Backend) Init() error {
	if b.db == nil {
		zl := zerolog.New(os.Stderr).With().Timestamp().Logger()
		b.db = database.NewManager(logging.NewZerologAdapter(zl))
		if err := b.db.Connect(b.cfg.Path); err != nil {
			return err
		}
	}
	if err := b.db.Migrate(&Recording{}, &Snapshot{}); err != nil {
		return err
	}

	if b.db.InMemory && b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		go b.dumpLoop()
	}
	return nil
}

// Close flushes pending rows, takes a final disk dump and closes the
// connection.
func (b *Backend) Close() error {
	b.stopOnce.Do(func() { close(b.stopChan) })

	b.mu.Lock()
	err := b.flushLocked()
	b.mu.Unlock()
	if err != nil {
		return err
	}

	if b.db.InMemory && b.cfg.DumpPath != "" {
		if err := database.DumpMemoryDBToDisk(b.db.DB, b.cfg.DumpPath); err != nil {
			return err
		}
	}
	return b.db.Close()
}

// BeginRecording inserts the recording row with its static data.
func (b *Backend) BeginRecording(id string, version int, log *core.SimulationLog) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if log == nil {
		return fmt.Errorf("sqlite: nil log")
	}
	if id == "" {
		return fmt.Errorf("sqlite: empty recording id")
	}

	envParams, err := json.Marshal(log.EnvParams.ToMap())
	if err != nil {
		return fmt.Errorf("sqlite: marshal env params: %w", err)
	}
	playerParams, err := json.Marshal(log.PlayerParams.ToMap())
	if err != nil {
		return fmt.Errorf("sqlite: marshal player params: %w", err)
	}
	typeMaps := make([]map[string]any, 0, len(log.TypeParams))
	for _, tp := range log.TypeParams {
		typeMaps = append(typeMaps, tp.ToMap())
	}
	typeParams, err := json.Marshal(typeMaps)
	if err != nil {
		return fmt.Errorf("sqlite: marshal type params: %w", err)
	}

	b.rec = &Recording{
		ID:           id,
		Resource:     log.Resource,
		Kind:         int(log.Kind),
		Version:      version,
		Frequency:    log.Frequency,
		DecodedAt:    time.Now(),
		LeftTeam:     log.LeftTeam.Name,
		RightTeam:    log.RightTeam.Name,
		EnvParams:    envParams,
		PlayerParams: playerParams,
		TypeParams:   typeParams,
	}
	b.log = log
	b.pending = nil

	return b.db.DB.Create(b.rec).Error
}

// WriteSnapshot buffers one snapshot row, flushing a full batch.
func (b *Backend) WriteSnapshot(ws *core.WorldState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rec == nil {
		return fmt.Errorf("sqlite: no recording in progress")
	}

	payload, err := json.Marshal(streaming.NewSnapshotPayload(ws))
	if err != nil {
		return fmt.Errorf("sqlite: marshal snapshot: %w", err)
	}
	row := Snapshot{
		RecordingID: b.rec.ID,
		Time:        ws.Time,
		GameTime:    ws.GameTime,
		Payload:     payload,
	}
	if ws.State != nil {
		row.PlayMode = ws.State.PlayMode
	}
	b.pending = append(b.pending, row)
	b.rec.Snapshots++

	if len(b.pending) >= snapshotBatchSize {
		return b.flushLocked()
	}
	return nil
}

// FinishRecording flushes the tail batch and updates the recording summary.
func (b *Backend) FinishRecording() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rec == nil {
		return fmt.Errorf("sqlite: no recording in progress")
	}
	if err := b.flushLocked(); err != nil {
		return err
	}

	final := b.log.FinalScore()
	b.rec.GoalsLeft = final.GoalsLeft
	b.rec.GoalsRight = final.GoalsRight
	b.rec.Duration = b.log.Duration()
	b.rec.Frequency = b.log.Frequency
	b.rec.BallPath = geo.BallPathWKT(b.log.States(), geo.DefaultSimplifyTolerance)

	err := b.db.DB.Save(b.rec).Error
	if err == nil {
		b.logger.Info("recording archived",
			"id", b.rec.ID,
			"snapshots", b.rec.Snapshots,
			"duration", b.rec.Duration)
	}
	b.rec = nil
	b.log = nil
	return err
}

// ExportedFilePath returns the disk dump path for in-memory connections.
func (b *Backend) ExportedFilePath() string {
	if b.db != nil && b.db.InMemory {
		return b.cfg.DumpPath
	}
	return b.cfg.Path
}

func (b *Backend) flushLocked() error {
	if len(b.pending) == 0 {
		return nil
	}
	err := b.db.DB.CreateInBatches(b.pending, snapshotBatchSize).Error
	if err != nil {
		return fmt.Errorf("sqlite: inserting snapshots: %w", err)
	}
	b.pending = nil
	return nil
}

func (b *Backend) dumpLoop() {
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			if err := database.DumpMemoryDBToDisk(b.db.DB, b.cfg.DumpPath); err != nil {
				b.logger.Error("error dumping archive to disk", "error", err)
			} else {
				b.logger.Debug("dumped archive to disk", "duration", time.Since(start))
			}
		}
	}
}
