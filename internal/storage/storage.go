// Package storage defines the backend interface decoded simulation logs are
// persisted or streamed through, and the factory selecting a backend from
// configuration.
package storage

import (
	"github.com/rcviewer/rclog/pkg/core"
)

// Backend is the interface all storage implementations satisfy. A recording
// session wraps one decoded log: BeginRecording announces the log and its
// static data (teams, parameters), snapshots are written individually so
// streaming backends can forward them while decoding is still in progress,
// and FinishRecording seals the session.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Recording lifecycle. The id is a caller-assigned unique session
	// identifier; version is the source format version.
	BeginRecording(id string, version int, log *core.SimulationLog) error
	WriteSnapshot(ws *core.WorldState) error
	FinishRecording() error
}

// Exportable is an optional interface for backends that produce a file
// suitable for archive upload.
type Exportable interface {
	ExportedFilePath() string
}
