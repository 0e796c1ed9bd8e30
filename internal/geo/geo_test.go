package geo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcviewer/rclog/pkg/core"
)

func stateWithBall(time, x, y, z float64) *core.WorldState {
	ws := &core.WorldState{Time: time, Ball: core.NewObjectState()}
	ws.Ball.SetPosition(x, y, z)
	ws.Ball.SetQuat(0, 0, 0, 1)
	return ws
}

func TestBallPath(t *testing.T) {
	states := []*core.WorldState{
		stateWithBall(0, 0, 0.2, 0),
		stateWithBall(0.1, 1, 0.2, 0.5),
		stateWithBall(0.2, 2, 0.2, 1),
	}

	ls, err := BallPath(states)
	require.NoError(t, err)
	seq := ls.Coordinates()
	assert.Equal(t, 3, seq.Length())
	// pitch plane first, height last
	first := seq.GetXY(0)
	assert.Equal(t, 0.0, first.X)
	assert.Equal(t, 0.0, first.Y)
}

func TestBallPathSkipsInvalidPoses(t *testing.T) {
	invalid := &core.WorldState{Ball: core.NewObjectState()}
	states := []*core.WorldState{
		stateWithBall(0, 0, 0.2, 0),
		invalid,
		nil,
		stateWithBall(0.2, 3, 0.2, 3),
	}

	ls, err := BallPath(states)
	require.NoError(t, err)
	assert.Equal(t, 2, ls.Coordinates().Length())
}

func TestBallPathTooFewPoints(t *testing.T) {
	_, err := BallPath([]*core.WorldState{stateWithBall(0, 0, 0.2, 0)})
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestBallPathWKT(t *testing.T) {
	states := make([]*core.WorldState, 0, 100)
	for i := 0; i < 100; i++ {
		// collinear track: simplification collapses interior points
		states = append(states, stateWithBall(float64(i)/10, float64(i), 0.2, 0))
	}

	wkt := BallPathWKT(states, DefaultSimplifyTolerance)
	require.NotEmpty(t, wkt)
	assert.True(t, strings.HasPrefix(wkt, "LINESTRING"), wkt)

	assert.Empty(t, BallPathWKT(nil, DefaultSimplifyTolerance))
}
