package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectStateValidity(t *testing.T) {
	tests := []struct {
		name string
		quat [4]float64
		want bool
	}{
		{"all zero is invalid", [4]float64{0, 0, 0, 0}, false},
		{"identity is valid", [4]float64{0, 0, 0, 1}, true},
		{"x only is valid", [4]float64{0.1, 0, 0, 0}, true},
		{"y only is valid", [4]float64{0, 0.1, 0, 0}, true},
		{"z only is valid", [4]float64{0, 0, 0.1, 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewObjectState()
			o.SetQuat(tt.quat[0], tt.quat[1], tt.quat[2], tt.quat[3])
			assert.Equal(t, tt.want, o.IsValid())
		})
	}
}

func TestObjectStateHeading(t *testing.T) {
	o := NewObjectState()
	o.SetHeading(math.Pi / 2)
	qx, qy, qz, qw := o.Quat()
	assert.Zero(t, qx)
	assert.InDelta(t, math.Sin(math.Pi/4), qy, 1e-9)
	assert.Zero(t, qz)
	assert.InDelta(t, math.Cos(math.Pi/4), qw, 1e-9)
	assert.True(t, o.IsValid())
}

func TestObjectStateCloneIsIndependent(t *testing.T) {
	o := NewObjectState()
	o.SetPosition(1, 2, 3)
	c := o.Clone()
	o.SetPosition(9, 9, 9)
	assert.Equal(t, 1.0, c.X())
	assert.Equal(t, 2.0, c.Y())
	assert.Equal(t, 3.0, c.Z())
}

func TestAgentStateValidity(t *testing.T) {
	a := NewAgentState()
	assert.False(t, a.IsValid(), "all-zero quaternion must be invalid")

	a.SetQuat(0, 0, 0, 1)
	assert.True(t, a.IsValid())
}

func TestAgentStateSegments(t *testing.T) {
	a := NewAgentState()
	a.SetQuat(0, 0, 0, 1)
	a.SetModelIndex(2)
	a.SetFlags(0x1008)

	a.SetJointAngles([]float64{0.1, 0.2, 0.3})
	a.SetGenericData([]float64{4000, 1, 0.8})

	require.Equal(t, []float64{0.1, 0.2, 0.3}, a.JointAngles())
	require.Equal(t, []float64{4000, 1, 0.8}, a.GenericData())
	assert.Equal(t, 2, a.ModelIndex())
	assert.Equal(t, uint32(0x1008), a.Flags())
	assert.True(t, a.IsGoalie())

	// replacing the joint segment must keep the generic data intact
	a.SetJointAngles([]float64{0.5})
	assert.Equal(t, []float64{0.5}, a.JointAngles())
	assert.Equal(t, []float64{4000, 1, 0.8}, a.GenericData())
}
