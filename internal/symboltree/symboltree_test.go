package symboltree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlat(t *testing.T) {
	n, err := Parse("(playmode 0 before_kick_off)")
	require.NoError(t, err)
	assert.Equal(t, []string{"playmode", "0", "before_kick_off"}, n.Values)
	assert.Empty(t, n.Children)
}

func TestParseNested(t *testing.T) {
	n, err := Parse(`(show 3000 ((b) 0 0 0.1 0.2) ((l 1) 0 0x1 -50 0 0 0 45 10))`)
	require.NoError(t, err)

	assert.Equal(t, []string{"show", "3000"}, n.Values)
	require.Len(t, n.Children, 2)

	ball := n.Children[0]
	require.Len(t, ball.Children, 1)
	assert.Equal(t, []string{"b"}, ball.Children[0].Values)
	assert.Equal(t, []string{"0", "0", "0.1", "0.2"}, ball.Values)

	agent := n.Children[1]
	assert.Equal(t, []string{"l", "1"}, agent.Children[0].Values)
	assert.Equal(t, "45", agent.Value(6))
}

func TestParseOrderPreserved(t *testing.T) {
	n, err := Parse("(a (b c) d (e) f)")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "d", "f"}, n.Values)
	require.Len(t, n.Children, 2)
	assert.Equal(t, []string{"b", "c"}, n.Children[0].Values)
	assert.Equal(t, []string{"e"}, n.Children[1].Values)
}

func TestChildTagged(t *testing.T) {
	n, err := Parse("(x (s 4000 1 0.8) (j 0.1 0.2))")
	require.NoError(t, err)
	require.NotNil(t, n.ChildTagged("j"))
	assert.Equal(t, []string{"j", "0.1", "0.2"}, n.ChildTagged("j").Values)
	assert.Nil(t, n.ChildTagged("v"))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"bare token", "playmode", ErrNotWrapped},
		{"empty", "", ErrNotWrapped},
		{"two roots", "(a) (b)", ErrMultipleRoots},
		{"unclosed", "(a (b c)", ErrUnclosed},
		{"trailing junk", "(a) b", ErrNotWrapped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRoundTripString(t *testing.T) {
	src := "(show 1 ((b) 0.5 -2) ((l 1) 0 45))"
	n, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, src, n.String())
}
