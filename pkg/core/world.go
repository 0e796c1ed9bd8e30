package core

// GameState is the play-mode in effect from a given game time onward. The log
// stores one instance per distinct value and shares it across consecutive
// ticks, so identity comparison is meaningful.
type GameState struct {
	PlayMode string
	Time     float64
}

// Equals reports whether the play-mode value matches (time excluded).
func (g *GameState) Equals(mode string) bool {
	return g != nil && g.PlayMode == mode
}

// GameScore is the score in effect from a given game time onward. Shared
// across consecutive ticks like GameState.
type GameScore struct {
	GoalsLeft     int
	GoalsRight    int
	PenScoreLeft  int
	PenMissLeft   int
	PenScoreRight int
	PenMissRight  int
	Time          float64
}

// Equals reports whether all score components match (time excluded).
func (g *GameScore) Equals(o GameScore) bool {
	return g != nil &&
		g.GoalsLeft == o.GoalsLeft && g.GoalsRight == o.GoalsRight &&
		g.PenScoreLeft == o.PenScoreLeft && g.PenMissLeft == o.PenMissLeft &&
		g.PenScoreRight == o.PenScoreRight && g.PenMissRight == o.PenMissRight
}

// WorldState is one immutable decoded simulation tick.
type WorldState struct {
	// Time is the global playback time of the snapshot.
	Time float64
	// GameTime is the match clock as reported by the log.
	GameTime float64

	State *GameState
	Score *GameScore

	Ball ObjectState

	// LeftAgents and RightAgents are sparse, indexed by player number.
	// A nil entry means that player was not present this tick.
	LeftAgents  []*AgentState
	RightAgents []*AgentState
}

// Agent returns the state of the given player, or nil if absent.
func (w *WorldState) Agent(side Side, playerNo int) *AgentState {
	list := w.LeftAgents
	if side == SideRight {
		list = w.RightAgents
	}
	if playerNo < 0 || playerNo >= len(list) {
		return nil
	}
	return list[playerNo]
}

// AgentCount returns the number of present agents on both sides.
func (w *WorldState) AgentCount() int {
	n := 0
	for _, a := range w.LeftAgents {
		if a != nil {
			n++
		}
	}
	for _, a := range w.RightAgents {
		if a != nil {
			n++
		}
	}
	return n
}
