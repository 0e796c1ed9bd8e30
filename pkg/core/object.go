// Package core holds the public value types produced by the log decoders:
// per-tick world snapshots, agent poses, team descriptions, parameter maps
// and the aggregate simulation log. Everything here is renderer-facing and
// carries no parsing logic.
package core

import "math"

// Indices into the flat pose layout shared by ObjectState and AgentState.
const (
	IdxPosX = iota
	IdxPosY
	IdxPosZ
	IdxQuatX
	IdxQuatY
	IdxQuatZ
	IdxQuatW

	// ObjectStateSize is the length of a plain object pose sequence.
	ObjectStateSize
)

// ObjectState is the pose of one simulated object (the ball, a flag, ...),
// stored as a flat fixed-layout float sequence: x, y, z, qx, qy, qz, qw.
// An all-zero quaternion is the sentinel for "entity absent this tick".
type ObjectState struct {
	data []float64
}

// NewObjectState creates an ObjectState with an invalid (all-zero) pose.
func NewObjectState() ObjectState {
	return ObjectState{data: make([]float64, ObjectStateSize)}
}

// At returns the raw value at the given layout index, or 0 if out of range.
func (o ObjectState) At(idx int) float64 {
	if idx < 0 || idx >= len(o.data) {
		return 0
	}
	return o.data[idx]
}

// X returns the position x component.
func (o ObjectState) X() float64 { return o.At(IdxPosX) }

// Y returns the position y component (vertical axis).
func (o ObjectState) Y() float64 { return o.At(IdxPosY) }

// Z returns the position z component.
func (o ObjectState) Z() float64 { return o.At(IdxPosZ) }

// Quat returns the orientation quaternion as (qx, qy, qz, qw).
func (o ObjectState) Quat() (qx, qy, qz, qw float64) {
	return o.At(IdxQuatX), o.At(IdxQuatY), o.At(IdxQuatZ), o.At(IdxQuatW)
}

// SetPosition stores the position components.
func (o ObjectState) SetPosition(x, y, z float64) {
	o.data[IdxPosX] = x
	o.data[IdxPosY] = y
	o.data[IdxPosZ] = z
}

// SetQuat stores the orientation quaternion.
func (o ObjectState) SetQuat(qx, qy, qz, qw float64) {
	o.data[IdxQuatX] = qx
	o.data[IdxQuatY] = qy
	o.data[IdxQuatZ] = qz
	o.data[IdxQuatW] = qw
}

// SetHeading stores a rotation about the vertical axis, given in radians.
func (o ObjectState) SetHeading(rad float64) {
	o.SetQuat(0, math.Sin(rad/2), 0, math.Cos(rad/2))
}

// IsValid reports whether the pose describes a present entity. A quaternion
// with all four components zero marks the entity as absent.
func (o ObjectState) IsValid() bool {
	if len(o.data) < ObjectStateSize {
		return false
	}
	return o.data[IdxQuatX] != 0 || o.data[IdxQuatY] != 0 ||
		o.data[IdxQuatZ] != 0 || o.data[IdxQuatW] != 0
}

// Values returns the raw backing sequence for serialization. Callers must
// not modify it.
func (o ObjectState) Values() []float64 { return o.data }

// Clone returns a deep copy of the pose sequence.
func (o ObjectState) Clone() ObjectState {
	c := make([]float64, len(o.data))
	copy(c, o.data)
	return ObjectState{data: c}
}

// Reset zeroes the pose, marking the entity absent.
func (o ObjectState) Reset() {
	for i := range o.data {
		o.data[i] = 0
	}
}
