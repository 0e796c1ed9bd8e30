// Package websocket streams decoded snapshots to a live viewer instead of
// persisting them. The viewer acknowledges recording boundaries; individual
// snapshots are fire-and-forget.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rcviewer/rclog/internal/config"
	"github.com/rcviewer/rclog/pkg/core"
	"github.com/rcviewer/rclog/pkg/streaming"
)

// Backend streams recording data over a WebSocket connection. It implements
// storage.Backend but not storage.Exportable.
type Backend struct {
	conn *connection
	cfg  config.WebsocketConfig

	mu        sync.Mutex
	log       *core.SimulationLog
	snapshots int
}

// New creates a websocket streaming backend.
func New(cfg config.WebsocketConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger),
		cfg:  cfg,
	}
}

// Init connects to the viewer.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the viewer.
func (b *Backend) Close() error {
	return b.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// BeginRecording announces the decoded log and waits for the viewer's ack.
func (b *Backend) BeginRecording(id string, version int, log *core.SimulationLog) error {
	if log == nil {
		return fmt.Errorf("websocket: nil log")
	}

	data, err := marshalEnvelope(streaming.TypeStartRecording, streaming.NewStartRecordingPayload(id, log, version))
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.log = log
	b.snapshots = 0
	b.mu.Unlock()

	// Cache for reconnect replay.
	b.conn.mu.Lock()
	b.conn.cachedStartMsg = data
	b.conn.mu.Unlock()

	return b.conn.sendAndWait(data, streaming.TypeStartRecording, ackTimeout)
}

// WriteSnapshot streams one snapshot, fire-and-forget.
func (b *Backend) WriteSnapshot(ws *core.WorldState) error {
	b.mu.Lock()
	if b.log == nil {
		b.mu.Unlock()
		return fmt.Errorf("websocket: no recording in progress")
	}
	b.snapshots++
	b.mu.Unlock()

	data, err := marshalEnvelope(streaming.TypeSnapshot, streaming.NewSnapshotPayload(ws))
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// FinishRecording closes the stream with the final score and waits for the
// viewer's ack.
func (b *Backend) FinishRecording() error {
	b.mu.Lock()
	log := b.log
	count := b.snapshots
	b.log = nil
	b.snapshots = 0
	b.mu.Unlock()

	if log == nil {
		return fmt.Errorf("websocket: no recording in progress")
	}

	final := log.FinalScore()
	data, err := marshalEnvelope(streaming.TypeEndRecording, streaming.EndRecordingPayload{
		Snapshots:  count,
		Dropped:    b.conn.droppedCount(),
		Duration:   log.Duration(),
		GoalsLeft:  final.GoalsLeft,
		GoalsRight: final.GoalsRight,
	})

	// Clear cached state regardless of error.
	b.conn.mu.Lock()
	b.conn.cachedStartMsg = nil
	b.conn.mu.Unlock()

	if err != nil {
		return err
	}
	return b.conn.sendAndWait(data, streaming.TypeEndRecording, ackTimeout)
}
