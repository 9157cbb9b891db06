// Package geo is the geometry kernel: pure 2D math with no I/O and no
// mutable package-level state. Every other package in GCodeKit5 builds on
// top of it.
package geo

import "math"

// Tolerance is the absolute tolerance, in mm, used for coordinate
// comparisons throughout the kernel.
const Tolerance = 1e-7

// Point2D is a point or vector in millimeters. All geometry in GCodeKit5 is
// mm internally; conversion to a display unit happens only at the UI
// boundary (see core.ToDisplay/FromDisplay).
type Point2D struct {
	X, Y float64
}

// Pt is a short constructor used pervasively in tests and call sites.
func Pt(x, y float64) Point2D { return Point2D{X: x, Y: y} }

func (p Point2D) Add(q Point2D) Point2D { return Point2D{p.X + q.X, p.Y + q.Y} }
func (p Point2D) Sub(q Point2D) Point2D { return Point2D{p.X - q.X, p.Y - q.Y} }
func (p Point2D) Scale(k float64) Point2D { return Point2D{p.X * k, p.Y * k} }

func (p Point2D) Dot(q Point2D) float64 { return p.X*q.X + p.Y*q.Y }

// Cross returns the z-component of the 3D cross product of p and q treated
// as vectors in the XY plane.
func (p Point2D) Cross(q Point2D) float64 { return p.X*q.Y - p.Y*q.X }

func (p Point2D) Length() float64 { return math.Hypot(p.X, p.Y) }

func (p Point2D) Distance(q Point2D) float64 { return p.Sub(q).Length() }

// Normalize returns p scaled to unit length, or the zero vector if p is
// (within Tolerance of) zero length.
func (p Point2D) Normalize() Point2D {
	l := p.Length()
	if l < Tolerance {
		return Point2D{}
	}
	return p.Scale(1 / l)
}

// Perp returns p rotated 90 degrees counter-clockwise, i.e. its left-hand
// normal when walking along p as a direction vector.
func (p Point2D) Perp() Point2D { return Point2D{-p.Y, p.X} }

// AlmostEqual reports whether p and q are within Tolerance of each other.
func (p Point2D) AlmostEqual(q Point2D) bool {
	return math.Abs(p.X-q.X) <= Tolerance && math.Abs(p.Y-q.Y) <= Tolerance
}

// Lerp linearly interpolates between p and q at parameter t in [0,1].
func (p Point2D) Lerp(q Point2D, t float64) Point2D {
	return Point2D{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}
