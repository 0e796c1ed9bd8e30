package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulationLogTimelineCompression(t *testing.T) {
	log := NewSimulationLog("test.replay", Kind2D)
	p := NewPartialWorldState(0, 0.1)

	// scores 0:0, 0:0, 0:0, 1:0, 1:0 -> two timeline entries
	scores := []GameScore{
		{GoalsLeft: 0}, {GoalsLeft: 0}, {GoalsLeft: 0},
		{GoalsLeft: 1}, {GoalsLeft: 1},
	}
	modes := []string{"kick_off_l", "play_on", "play_on", "goal_l", "goal_l"}

	for i := range scores {
		p.SetScore(scores[i], float64(i))
		p.SetPlayMode(modes[i], float64(i))
		commitAgentTick(p)
		require.True(t, p.AppendTo(log))
	}

	assert.Len(t, log.GameScoreList(), 2)
	assert.Len(t, log.GameStateList(), 3)
	assert.Equal(t, 1, log.FinalScore().GoalsLeft)
}

func TestSimulationLogMonotonicTimes(t *testing.T) {
	log := NewSimulationLog("test.replay", Kind3D)
	p := NewPartialWorldState(0, 0.2)
	for i := 0; i < 50; i++ {
		commitAgentTick(p)
		require.True(t, p.AppendTo(log))
	}

	states := log.States()
	for i := 1; i < len(states); i++ {
		assert.Less(t, states[i-1].Time, states[i].Time)
	}
	assert.InDelta(t, 49*0.2, log.Duration(), 1e-9)
}

func TestSimulationLogFrequencyDetection(t *testing.T) {
	log := NewSimulationLog("test.replay", Kind2D)
	p := NewPartialWorldState(0, 0.1)
	commitAgentTick(p)
	require.True(t, p.AppendTo(log))
	assert.Zero(t, log.Frequency, "one snapshot is not enough to detect")

	commitAgentTick(p)
	require.True(t, p.AppendTo(log))
	assert.Equal(t, 10.0, log.Frequency)
}

func TestSimulationLogTypeParams(t *testing.T) {
	log := NewSimulationLog("test.rcg", Kind2D)
	pm := NewParameterMap()
	pm.Set("player_speed_max", 1.05)
	log.SetTypeParam(2, pm)

	require.Len(t, log.TypeParams, 3)
	assert.Equal(t, 1.05, log.TypeParam(2).Number("player_speed_max", 0))
	assert.Zero(t, log.TypeParam(0).Len())
}

func TestParameterMapOrderAndKinds(t *testing.T) {
	p := NewParameterMap()
	p.Set("goal_width", 14.02)
	p.Set("say_msg_size", 10.0)
	p.Set("game_log_fixed_name", "rcssserver")
	p.Set("use_offside", true)
	p.Set("goal_width", 7.0) // overwrite keeps position

	assert.Equal(t, []string{"goal_width", "say_msg_size", "game_log_fixed_name", "use_offside"}, p.Keys())
	assert.Equal(t, 7.0, p.Number("goal_width", 0))
	assert.True(t, p.Bool("use_offside", false))
	assert.Equal(t, "rcssserver", p.String("game_log_fixed_name", ""))
	assert.Equal(t, 0.0, p.Number("missing", 0))
}
