package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitAgentTick(p *PartialWorldState) {
	a := p.Agent(SideLeft, 1)
	a.SetQuat(0, 0, 0, 1)
}

func TestPartialWorldStateNoAgentsNoCommit(t *testing.T) {
	log := NewSimulationLog("test.replay", Kind2D)
	p := NewPartialWorldState(0, 0.1)

	p.Ball.SetPosition(1, 0.2, 2)
	assert.False(t, p.AppendTo(log))
	assert.True(t, log.Empty())
	assert.Equal(t, 0.0, p.Time, "time must not advance without a commit")
}

func TestPartialWorldStateCommitAdvancesTime(t *testing.T) {
	log := NewSimulationLog("test.replay", Kind2D)
	p := NewPartialWorldState(0, 0.1)

	for i := 0; i < 5; i++ {
		commitAgentTick(p)
		require.True(t, p.AppendTo(log))
	}

	// 0.1 is not exactly representable; commits must round to milliseconds
	assert.Equal(t, 0.5, p.Time)
	require.Equal(t, 5, log.StateCount())
	for i, ws := range log.States() {
		assert.InDelta(t, float64(i)*0.1, ws.Time, 1e-9)
	}
}

func TestPartialWorldStateClearsAgentsKeepsBall(t *testing.T) {
	log := NewSimulationLog("test.replay", Kind2D)
	p := NewPartialWorldState(0, 0.1)
	p.Ball.SetPosition(3, 0.2, -4)
	p.Ball.SetQuat(0, 0, 0, 1)

	commitAgentTick(p)
	require.True(t, p.AppendTo(log))

	assert.False(t, p.HasAgents(), "agent arrays clear on commit")
	assert.Equal(t, 3.0, p.Ball.X(), "ball persists until overwritten")

	// committed snapshot holds its own ball copy
	p.Ball.SetPosition(0, 0, 0)
	assert.Equal(t, 3.0, log.StateAt(0).Ball.X())
}

func TestPartialWorldStatePlayModeIdentity(t *testing.T) {
	p := NewPartialWorldState(0, 0.1)

	p.SetPlayMode("kick_off_l", 0)
	first := p.GameState()
	p.SetPlayMode("kick_off_l", 5)
	assert.Same(t, first, p.GameState(), "unchanged play-mode keeps the instance")

	p.SetPlayMode("play_on", 10)
	assert.NotSame(t, first, p.GameState())
	assert.Equal(t, "play_on", p.GameState().PlayMode)
	assert.Equal(t, 10.0, p.GameState().Time)
}

func TestPartialWorldStateScoreIdentity(t *testing.T) {
	p := NewPartialWorldState(0, 0.1)

	p.SetScore(GameScore{GoalsLeft: 0, GoalsRight: 0}, 0)
	first := p.GameScore()
	p.SetScore(GameScore{GoalsLeft: 0, GoalsRight: 0}, 30)
	assert.Same(t, first, p.GameScore())

	p.SetScore(GameScore{GoalsLeft: 1, GoalsRight: 0}, 60)
	assert.NotSame(t, first, p.GameScore())
	assert.Equal(t, 60.0, p.GameScore().Time)
}
