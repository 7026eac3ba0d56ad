package geometry

import "math"

// Point is a position in a project's planar coordinate system.
// Projects use image-pixel style coordinates, not geographic ones.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polygon is an ordered ring of points. A valid lot polygon has at
// least MinPolygonPoints vertices.
type Polygon []Point

const MinPolygonPoints = 3

// MatchTolerance is how far (per axis) the first vertex of an edited
// polygon may drift from a stored polygon's first vertex and still be
// considered the same lot.
const MatchTolerance = 0.01

// Valid reports whether the polygon has enough vertices to describe an area.
func (p Polygon) Valid() bool {
	return len(p) >= MinPolygonPoints
}

// Near reports whether two points are within tol of each other on both axes.
func Near(a, b Point, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol
}
