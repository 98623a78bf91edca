package geom

import (
	"math"
	"testing"
)

func square(half float64) Polygon {
	return Polygon{
		{X: -half, Y: -half},
		{X: half, Y: -half},
		{X: half, Y: half},
		{X: -half, Y: half},
	}
}

func TestPolygonContains(t *testing.T) {
	poly := square(50)

	tests := []struct {
		p    Vec2
		want bool
	}{
		{Vec2{0, 0}, true},
		{Vec2{49, 49}, true},
		{Vec2{51, 0}, false},
		{Vec2{0, -51}, false},
		{Vec2{100, 100}, false},
	}
	for _, tt := range tests {
		if got := poly.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	// Fewer than three vertices contains nothing.
	if (Polygon{{X: 0, Y: 0}, {X: 1, Y: 1}}).Contains(Vec2{}) {
		t.Error("degenerate polygon should contain nothing")
	}
}

func TestPolygonIntersectsSegment(t *testing.T) {
	poly := square(50)

	tests := []struct {
		name string
		a, b Vec2
		want bool
	}{
		{"through", Vec2{-100, 0}, Vec2{100, 0}, true},
		{"into", Vec2{-100, 0}, Vec2{0, 0}, true},
		{"fully inside", Vec2{-10, 0}, Vec2{10, 0}, true},
		{"fully outside", Vec2{-100, 100}, Vec2{100, 100}, false},
		{"grazing past", Vec2{-100, 60}, Vec2{100, 60}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := poly.IntersectsSegment(tt.a, tt.b); got != tt.want {
				t.Errorf("IntersectsSegment = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPolygonCentroidAndBoundingRadius(t *testing.T) {
	poly := square(50)
	if c := poly.Centroid(); !vecAlmostEqual(c, Vec2{}) {
		t.Errorf("Centroid = %v, want origin", c)
	}
	want := math.Hypot(50, 50)
	if r := poly.BoundingRadius(); !almostEqual(r, want) {
		t.Errorf("BoundingRadius = %v, want %v", r, want)
	}
}

func TestPolygonClosestEdgePoint(t *testing.T) {
	poly := square(50)
	if got := poly.ClosestEdgePoint(Vec2{100, 0}); !vecAlmostEqual(got, Vec2{50, 0}) {
		t.Errorf("ClosestEdgePoint(outside) = %v, want (50,0)", got)
	}
	if got := poly.ClosestEdgePoint(Vec2{40, 0}); !vecAlmostEqual(got, Vec2{50, 0}) {
		t.Errorf("ClosestEdgePoint(inside) = %v, want (50,0)", got)
	}
}

func TestPolygonTransform(t *testing.T) {
	poly := Polygon{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}
	pos := Vec2{X: 10, Y: 20}

	out := poly.Transform(pos, math.Pi/2)
	if !vecAlmostEqual(out[0], Vec2{X: 10, Y: 21}) {
		t.Errorf("Transform vertex 0 = %v, want (10,21)", out[0])
	}

	dst := make(Polygon, len(poly))
	poly.TransformInto(dst, pos, math.Pi/2)
	for i := range out {
		if !vecAlmostEqual(out[i], dst[i]) {
			t.Errorf("TransformInto vertex %d = %v, want %v", i, dst[i], out[i])
		}
	}
}
