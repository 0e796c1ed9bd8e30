// Package geo derives geometry from decoded snapshots: the ball-path
// polyline used for archive previews. Geometry is built with simplefeatures
// and exported as WKT, which any downstream tool can consume without a
// spatial database.
package geo

import (
	"errors"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/rcviewer/rclog/pkg/core"
)

// ErrTooFewPoints is returned when fewer than two snapshots carry a valid
// ball pose.
var ErrTooFewPoints = errors.New("ball path needs at least two points")

// DefaultSimplifyTolerance is the Douglas-Peucker threshold for preview
// polylines, in pitch meters.
const DefaultSimplifyTolerance = 0.25

// BallPath builds a 3D line string through the valid ball positions of the
// given snapshots, in time order.
func BallPath(states []*core.WorldState) (geom.LineString, error) {
	coords := make([]float64, 0, len(states)*3)
	for _, ws := range states {
		if ws == nil || !ws.Ball.IsValid() {
			continue
		}
		coords = append(coords, ws.Ball.X(), ws.Ball.Z(), ws.Ball.Y())
	}
	if len(coords) < 6 {
		return geom.LineString{}, ErrTooFewPoints
	}
	seq := geom.NewSequence(coords, geom.DimXYZ)
	return geom.NewLineString(seq)
}

// BallPathWKT returns the simplified ball path as WKT, or "" when the
// snapshots carry no usable ball track. Simplification failures fall back to
// the unsimplified path.
func BallPathWKT(states []*core.WorldState, tolerance float64) string {
	ls, err := BallPath(states)
	if err != nil {
		return ""
	}
	g := ls.AsGeometry()
	if simplified, err := g.Simplify(tolerance); err == nil && !simplified.IsEmpty() {
		g = simplified
	}
	return g.AsText()
}
