package core

import "math"

// Kind distinguishes 2D and 3D simulation logs.
type Kind int

const (
	Kind2D Kind = 2
	Kind3D Kind = 3
)

// SimulationLog is the aggregate decoding result: an append-only, strictly
// time-ordered sequence of world snapshots plus derived indices. Snapshots
// are never mutated or removed after commit.
type SimulationLog struct {
	Resource string
	Kind     Kind

	// Frequency is the sampling frequency in snapshots per second, derived
	// from the first two snapshot times unless set from a header.
	Frequency float64

	EnvParams    *ParameterMap
	PlayerParams *ParameterMap
	TypeParams   []*ParameterMap

	LeftTeam  *TeamDescription
	RightTeam *TeamDescription

	states []*WorldState

	// Run-length compressed change timelines: one entry per distinct
	// consecutive value in the per-tick sequence.
	gameStates []*GameState
	gameScores []*GameScore

	fullyLoaded bool
}

// NewSimulationLog creates an empty log for the given resource and kind with
// default team descriptions and empty parameter maps.
func NewSimulationLog(resource string, kind Kind) *SimulationLog {
	return &SimulationLog{
		Resource:     resource,
		Kind:         kind,
		EnvParams:    NewParameterMap(),
		PlayerParams: NewParameterMap(),
		LeftTeam:     NewTeamDescription(SideLeft, "Left Team", "#ffff00"),
		RightTeam:    NewTeamDescription(SideRight, "Right Team", "#ff0000"),
	}
}

// Team returns the team description for the given side.
func (l *SimulationLog) Team(side Side) *TeamDescription {
	if side == SideRight {
		return l.RightTeam
	}
	return l.LeftTeam
}

// TypeParam returns the player-type parameter set with the given index,
// growing the list with empty maps as needed.
func (l *SimulationLog) TypeParam(idx int) *ParameterMap {
	for idx >= len(l.TypeParams) {
		l.TypeParams = append(l.TypeParams, NewParameterMap())
	}
	return l.TypeParams[idx]
}

// SetTypeParam replaces the player-type parameter set with the given index.
func (l *SimulationLog) SetTypeParam(idx int, params *ParameterMap) {
	for idx >= len(l.TypeParams) {
		l.TypeParams = append(l.TypeParams, NewParameterMap())
	}
	l.TypeParams[idx] = params
}

// Append commits a snapshot. Snapshot times must be strictly increasing; the
// caller (the snapshot accumulator) guarantees this by only advancing time on
// commit. The change timelines and the sampling frequency are maintained
// here.
func (l *SimulationLog) Append(ws *WorldState) {
	if n := len(l.gameStates); ws.State != nil &&
		(n == 0 || l.gameStates[n-1] != ws.State) {
		l.gameStates = append(l.gameStates, ws.State)
	}
	if n := len(l.gameScores); ws.Score != nil &&
		(n == 0 || l.gameScores[n-1] != ws.Score) {
		l.gameScores = append(l.gameScores, ws.Score)
	}

	l.states = append(l.states, ws)

	if l.Frequency == 0 && len(l.states) >= 2 {
		dt := l.states[1].Time - l.states[0].Time
		if dt > 0 {
			l.Frequency = math.Round(1/dt*1000) / 1000
		}
	}
}

// States returns the committed snapshots in time order. The slice is shared;
// callers must not modify it.
func (l *SimulationLog) States() []*WorldState { return l.states }

// StateCount returns the number of committed snapshots.
func (l *SimulationLog) StateCount() int { return len(l.states) }

// StateAt returns the snapshot at the given index, or nil if out of range.
func (l *SimulationLog) StateAt(i int) *WorldState {
	if i < 0 || i >= len(l.states) {
		return nil
	}
	return l.states[i]
}

// Empty reports whether no snapshot has been committed yet.
func (l *SimulationLog) Empty() bool { return len(l.states) == 0 }

// StartTime returns the time of the first snapshot, or 0.
func (l *SimulationLog) StartTime() float64 {
	if len(l.states) == 0 {
		return 0
	}
	return l.states[0].Time
}

// EndTime returns the time of the last snapshot, or 0.
func (l *SimulationLog) EndTime() float64 {
	if len(l.states) == 0 {
		return 0
	}
	return l.states[len(l.states)-1].Time
}

// Duration returns EndTime minus StartTime.
func (l *SimulationLog) Duration() float64 { return l.EndTime() - l.StartTime() }

// GameStateList returns the play-mode change timeline.
func (l *SimulationLog) GameStateList() []*GameState { return l.gameStates }

// GameScoreList returns the score change timeline.
func (l *SimulationLog) GameScoreList() []*GameScore { return l.gameScores }

// Finalize marks the log as fully loaded.
func (l *SimulationLog) Finalize() { l.fullyLoaded = true }

// FullyLoaded reports whether the underlying source was read to its end.
func (l *SimulationLog) FullyLoaded() bool { return l.fullyLoaded }

// FinalScore returns the last score of the log, or a zero score.
func (l *SimulationLog) FinalScore() GameScore {
	if n := len(l.gameScores); n > 0 {
		return *l.gameScores[n-1]
	}
	return GameScore{}
}

// Replay is a simulation log decoded from the Replay text format.
type Replay struct {
	SimulationLog
	Version int
}

// SServerLog is a simulation log decoded from the ULG/sserver text format.
type SServerLog struct {
	SimulationLog
	Version int
}

// SimLog is implemented by the concrete log subtypes.
type SimLog interface {
	// Base returns the embedded aggregate.
	Base() *SimulationLog
	// FormatVersion returns the source format version number.
	FormatVersion() int
}

// Base returns the embedded aggregate.
func (r *Replay) Base() *SimulationLog { return &r.SimulationLog }

// FormatVersion returns the Replay format version.
func (r *Replay) FormatVersion() int { return r.Version }

// Base returns the embedded aggregate.
func (s *SServerLog) Base() *SimulationLog { return &s.SimulationLog }

// FormatVersion returns the ULG format version.
func (s *SServerLog) FormatVersion() int { return s.Version }
