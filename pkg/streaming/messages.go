// Package streaming defines the wire messages a viewer receives when decoded
// snapshots are streamed over a websocket instead of being persisted.
package streaming

import (
	"encoding/json"

	"github.com/rcviewer/rclog/pkg/core"
)

// Message type constants of the streaming protocol.
const (
	TypeStartRecording = "start_recording"
	TypeEndRecording   = "end_recording"
	TypeSnapshot       = "snapshot"
)

// Envelope wraps all messages sent over the websocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the viewer's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// TeamPayload carries one team's identity.
type TeamPayload struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// StartRecordingPayload announces a decoded log and its static data.
type StartRecordingPayload struct {
	ID           string         `json:"id"`
	Resource     string         `json:"resource"`
	Kind         int            `json:"kind"`
	Version      int            `json:"version"`
	Frequency    float64        `json:"frequency"`
	LeftTeam     TeamPayload    `json:"leftTeam"`
	RightTeam    TeamPayload    `json:"rightTeam"`
	EnvParams    map[string]any `json:"envParams,omitempty"`
	PlayerParams map[string]any `json:"playerParams,omitempty"`
}

// SnapshotPayload is one world snapshot. Object poses are the flat float
// sequences of the decoder: x, y, z, qx, qy, qz, qw, then per-agent extras.
// Agent arrays are sparse and indexed by player number; absent players are
// null.
type SnapshotPayload struct {
	Time       float64     `json:"time"`
	GameTime   float64     `json:"gameTime"`
	PlayMode   string      `json:"playMode,omitempty"`
	GoalsLeft  int         `json:"goalsLeft"`
	GoalsRight int         `json:"goalsRight"`
	Ball       []float64   `json:"ball,omitempty"`
	Left       [][]float64 `json:"left"`
	Right      [][]float64 `json:"right"`
}

// EndRecordingPayload closes a streamed recording. Dropped reports snapshots
// the sender discarded under backpressure, so the viewer can tell a short
// stream from a lossy one.
type EndRecordingPayload struct {
	Snapshots  int     `json:"snapshots"`
	Dropped    int64   `json:"dropped,omitempty"`
	Duration   float64 `json:"duration"`
	GoalsLeft  int     `json:"goalsLeft"`
	GoalsRight int     `json:"goalsRight"`
}

// NewSnapshotPayload flattens a world snapshot into its wire form.
func NewSnapshotPayload(ws *core.WorldState) SnapshotPayload {
	p := SnapshotPayload{
		Time:     ws.Time,
		GameTime: ws.GameTime,
		Left:     agentValues(ws.LeftAgents),
		Right:    agentValues(ws.RightAgents),
	}
	if ws.State != nil {
		p.PlayMode = ws.State.PlayMode
	}
	if ws.Score != nil {
		p.GoalsLeft = ws.Score.GoalsLeft
		p.GoalsRight = ws.Score.GoalsRight
	}
	if ws.Ball.IsValid() {
		p.Ball = ws.Ball.Values()
	}
	return p
}

func agentValues(agents []*core.AgentState) [][]float64 {
	out := make([][]float64, len(agents))
	for i, a := range agents {
		if a != nil && a.IsValid() {
			out[i] = a.Values()
		}
	}
	return out
}

// NewStartRecordingPayload builds the announcement for a decoded log.
func NewStartRecordingPayload(id string, log *core.SimulationLog, version int) StartRecordingPayload {
	return StartRecordingPayload{
		ID:        id,
		Resource:  log.Resource,
		Kind:      int(log.Kind),
		Version:   version,
		Frequency: log.Frequency,
		LeftTeam: TeamPayload{
			Name:  log.LeftTeam.Name,
			Color: log.LeftTeam.Color,
		},
		RightTeam: TeamPayload{
			Name:  log.RightTeam.Name,
			Color: log.RightTeam.Color,
		},
		EnvParams:    log.EnvParams.ToMap(),
		PlayerParams: log.PlayerParams.ToMap(),
	}
}
