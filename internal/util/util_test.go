package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimQuotes(t *testing.T) {
	assert.Equal(t, "TeamA", TrimQuotes(`"TeamA"`))
	assert.Equal(t, "plain", TrimQuotes("plain"))
}

func TestIsQuoted(t *testing.T) {
	assert.True(t, IsQuoted(`"x"`))
	assert.False(t, IsQuoted(`"x`))
	assert.False(t, IsQuoted(`x`))
	assert.False(t, IsQuoted(`"`))
}

func TestWrapDeg180(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{90, 90},
		{180, -180},
		{-180, -180},
		{270, -90},
		{-270, 90},
		{360, 0},
		{540, -180},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, WrapDeg180(tt.in), 1e-9, "input %v", tt.in)
	}
}
