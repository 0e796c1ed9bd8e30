package core

import "math"

// PartialWorldState accumulates scattered per-tick fields while the lines of
// one snapshot arrive, then commits an immutable WorldState to the log. It is
// owned exclusively by one decoder instance and is not part of the log.
type PartialWorldState struct {
	// Time is the playback time the next committed snapshot will carry.
	Time float64
	// TimeStep is the amount Time advances on each commit.
	TimeStep float64
	// GameTime is the current match clock.
	GameTime float64

	state *GameState
	score *GameScore

	// Ball persists across commits until overwritten.
	Ball ObjectState

	left  []*AgentState
	right []*AgentState
}

// NewPartialWorldState creates an accumulator starting at the given time with
// the given step.
func NewPartialWorldState(time, timeStep float64) *PartialWorldState {
	return &PartialWorldState{
		Time:     time,
		TimeStep: timeStep,
		state:    &GameState{PlayMode: "unknown"},
		score:    &GameScore{},
		Ball:     NewObjectState(),
	}
}

// GameState returns the play-mode currently in effect.
func (p *PartialWorldState) GameState() *GameState { return p.state }

// GameScore returns the score currently in effect.
func (p *PartialWorldState) GameScore() *GameScore { return p.score }

// SetPlayMode installs a new play-mode taking effect at the given game time.
// When the mode is unchanged the existing GameState instance is kept, so the
// log's change timeline stays identity-compressed.
func (p *PartialWorldState) SetPlayMode(mode string, time float64) {
	if p.state.Equals(mode) {
		return
	}
	p.state = &GameState{PlayMode: mode, Time: time}
}

// SetScore installs a new score taking effect at the given game time, reusing
// the current GameScore instance when the value is unchanged.
func (p *PartialWorldState) SetScore(score GameScore, time float64) {
	if p.score.Equals(score) {
		return
	}
	score.Time = time
	p.score = &score
}

// Agent returns the in-progress state for the given player, creating it on
// first access this tick.
func (p *PartialWorldState) Agent(side Side, playerNo int) *AgentState {
	list := &p.left
	if side == SideRight {
		list = &p.right
	}
	for playerNo >= len(*list) {
		*list = append(*list, nil)
	}
	if (*list)[playerNo] == nil {
		(*list)[playerNo] = NewAgentState()
	}
	return (*list)[playerNo]
}

// HasAgents reports whether at least one agent was seen this tick.
func (p *PartialWorldState) HasAgents() bool {
	for _, a := range p.left {
		if a != nil {
			return true
		}
	}
	for _, a := range p.right {
		if a != nil {
			return true
		}
	}
	return false
}

// AppendTo commits the accumulated snapshot to the log if at least one agent
// is present on either side. On commit the playback time advances by
// TimeStep, rounded to millisecond precision to avoid float drift, and the
// per-side agent arrays are cleared. Ball state, play-mode and score persist
// until overwritten. Returns whether a snapshot was committed.
func (p *PartialWorldState) AppendTo(log *SimulationLog) bool {
	if !p.HasAgents() {
		return false
	}

	log.Append(&WorldState{
		Time:        p.Time,
		GameTime:    p.GameTime,
		State:       p.state,
		Score:       p.score,
		Ball:        p.Ball.Clone(),
		LeftAgents:  p.left,
		RightAgents: p.right,
	})

	p.Time = math.Round((p.Time+p.TimeStep)*1000) / 1000
	p.left = nil
	p.right = nil
	return true
}
