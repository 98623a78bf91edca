// Package geom provides the 2D math primitives used by the simulation:
// vectors, segment intersection and convex polygon containment.
//
// All operations are allocation-free value math. Degenerate inputs
// (zero-length vectors, coincident points) fall back to safe defaults
// instead of returning errors; the simulation must never abort on
// geometry.
package geom

import "math"

// Epsilon is the tolerance used for degenerate-geometry guards.
const Epsilon = 1e-9

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float64
}

// Add returns a + b.
func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }

// Sub returns a - b.
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }

// Scale returns a scaled by s.
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }

// Dot returns the dot product of a and b.
func (a Vec2) Dot(b Vec2) float64 { return a.X*b.X + a.Y*b.Y }

// Cross returns the 2D cross product (z component) of a and b.
func (a Vec2) Cross(b Vec2) float64 { return a.X*b.Y - a.Y*b.X }

// Len returns the vector length.
func (a Vec2) Len() float64 { return math.Hypot(a.X, a.Y) }

// LenSq returns the squared vector length.
func (a Vec2) LenSq() float64 { return a.X*a.X + a.Y*a.Y }

// Dist returns the distance between a and b.
func (a Vec2) Dist(b Vec2) float64 { return a.Sub(b).Len() }

// DistSq returns the squared distance between a and b.
func (a Vec2) DistSq(b Vec2) float64 { return a.Sub(b).LenSq() }

// Angle returns the direction of a in radians.
func (a Vec2) Angle() float64 { return math.Atan2(a.Y, a.X) }

// Rotate returns a rotated by angle radians around the origin.
func (a Vec2) Rotate(angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{a.X*cos - a.Y*sin, a.X*sin + a.Y*cos}
}

// Normalize returns the unit vector of a, or the zero vector when a is
// shorter than Epsilon.
func (a Vec2) Normalize() Vec2 {
	l := a.Len()
	if l <= Epsilon {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Y / l}
}

// FromAngle returns the unit vector pointing at angle radians.
func FromAngle(angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{cos, sin}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NormalizeAngle normalizes an angle to the range [-pi, pi].
func NormalizeAngle(angle float64) float64 {
	const twoPi = 2 * math.Pi
	angle = math.Mod(angle, twoPi)
	if angle < 0 {
		angle += twoPi
	}
	if angle > math.Pi {
		angle -= twoPi
	}
	return angle
}

// SegmentsIntersect reports whether segments p1-p2 and q1-q2 intersect.
// Collinear overlapping segments count as intersecting.
func SegmentsIntersect(p1, p2, q1, q2 Vec2) bool {
	d1 := direction(q1, q2, p1)
	d2 := direction(q1, q2, p2)
	d3 := direction(p1, p2, q1)
	d4 := direction(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Collinear endpoint touches.
	if math.Abs(d1) <= Epsilon && onSegment(q1, q2, p1) {
		return true
	}
	if math.Abs(d2) <= Epsilon && onSegment(q1, q2, p2) {
		return true
	}
	if math.Abs(d3) <= Epsilon && onSegment(p1, p2, q1) {
		return true
	}
	if math.Abs(d4) <= Epsilon && onSegment(p1, p2, q2) {
		return true
	}
	return false
}

func direction(a, b, p Vec2) float64 {
	return b.Sub(a).Cross(p.Sub(a))
}

func onSegment(a, b, p Vec2) bool {
	return math.Min(a.X, b.X)-Epsilon <= p.X && p.X <= math.Max(a.X, b.X)+Epsilon &&
		math.Min(a.Y, b.Y)-Epsilon <= p.Y && p.Y <= math.Max(a.Y, b.Y)+Epsilon
}

// ClosestPointOnSegment returns the point on segment a-b closest to p.
func ClosestPointOnSegment(a, b, p Vec2) Vec2 {
	ab := b.Sub(a)
	lenSq := ab.LenSq()
	if lenSq <= Epsilon {
		return a
	}
	t := Clamp(p.Sub(a).Dot(ab)/lenSq, 0, 1)
	return a.Add(ab.Scale(t))
}

// SegmentDistance returns the shortest distance from p to segment a-b.
func SegmentDistance(a, b, p Vec2) float64 {
	return ClosestPointOnSegment(a, b, p).Dist(p)
}
