package geom

import "math"

// Polygon is a convex polygon given as vertices in counter-clockwise order.
type Polygon []Vec2

// Contains reports whether p lies inside or on the polygon boundary.
// Uses the even-odd ray cast so winding order does not matter.
func (poly Polygon) Contains(p Vec2) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if p.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// IntersectsSegment reports whether segment a-b crosses any polygon edge
// or lies entirely inside the polygon.
func (poly Polygon) IntersectsSegment(a, b Vec2) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	j := n - 1
	for i := 0; i < n; i++ {
		if SegmentsIntersect(a, b, poly[j], poly[i]) {
			return true
		}
		j = i
	}
	// No edge crossing: the segment is fully inside or fully outside.
	return poly.Contains(a)
}

// Centroid returns the vertex average. Good enough for convex shapes.
func (poly Polygon) Centroid() Vec2 {
	var c Vec2
	if len(poly) == 0 {
		return c
	}
	for _, v := range poly {
		c = c.Add(v)
	}
	return c.Scale(1 / float64(len(poly)))
}

// BoundingRadius returns the largest vertex distance from the centroid.
func (poly Polygon) BoundingRadius() float64 {
	c := poly.Centroid()
	r := 0.0
	for _, v := range poly {
		if d := v.Dist(c); d > r {
			r = d
		}
	}
	return r
}

// ClosestEdgePoint returns the point on the polygon boundary closest to p.
func (poly Polygon) ClosestEdgePoint(p Vec2) Vec2 {
	n := len(poly)
	if n == 0 {
		return p
	}
	best := poly[0]
	bestDist := math.Inf(1)
	j := n - 1
	for i := 0; i < n; i++ {
		q := ClosestPointOnSegment(poly[j], poly[i], p)
		if d := q.DistSq(p); d < bestDist {
			bestDist = d
			best = q
		}
		j = i
	}
	return best
}

// Transform returns the polygon rotated by angle and translated to pos.
// Used to place a local-space asteroid shape into world space.
func (poly Polygon) Transform(pos Vec2, angle float64) Polygon {
	out := make(Polygon, len(poly))
	for i, v := range poly {
		out[i] = v.Rotate(angle).Add(pos)
	}
	return out
}

// TransformInto is the allocation-free variant of Transform. dst must have
// the same length as poly.
func (poly Polygon) TransformInto(dst Polygon, pos Vec2, angle float64) {
	for i, v := range poly {
		dst[i] = v.Rotate(angle).Add(pos)
	}
}
