package geom

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func vecAlmostEqual(a, b Vec2) bool {
	return almostEqual(a.X, b.X) && almostEqual(a.Y, b.Y)
}

func TestVecBasics(t *testing.T) {
	a := Vec2{X: 3, Y: 4}
	b := Vec2{X: 1, Y: -2}

	if got := a.Add(b); !vecAlmostEqual(got, Vec2{X: 4, Y: 2}) {
		t.Errorf("Add = %v", got)
	}
	if got := a.Sub(b); !vecAlmostEqual(got, Vec2{X: 2, Y: 6}) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Scale(2); !vecAlmostEqual(got, Vec2{X: 6, Y: 8}) {
		t.Errorf("Scale = %v", got)
	}
	if got := a.Dot(b); !almostEqual(got, -5) {
		t.Errorf("Dot = %v", got)
	}
	if got := a.Cross(b); !almostEqual(got, -10) {
		t.Errorf("Cross = %v", got)
	}
	if got := a.Len(); !almostEqual(got, 5) {
		t.Errorf("Len = %v", got)
	}
	if got := a.LenSq(); !almostEqual(got, 25) {
		t.Errorf("LenSq = %v", got)
	}
	if got := a.Dist(b); !almostEqual(got, math.Hypot(2, 6)) {
		t.Errorf("Dist = %v", got)
	}
}

func TestNormalize(t *testing.T) {
	v := Vec2{X: 3, Y: 4}.Normalize()
	if !almostEqual(v.Len(), 1) {
		t.Errorf("normalized length = %v, want 1", v.Len())
	}

	// Degenerate input falls back to zero, never NaN.
	z := Vec2{}.Normalize()
	if z != (Vec2{}) {
		t.Errorf("zero vector normalized to %v", z)
	}
}

func TestRotateAndFromAngle(t *testing.T) {
	v := Vec2{X: 1}.Rotate(math.Pi / 2)
	if !vecAlmostEqual(v, Vec2{Y: 1}) {
		t.Errorf("Rotate(pi/2) = %v, want (0,1)", v)
	}
	u := FromAngle(math.Pi)
	if !vecAlmostEqual(u, Vec2{X: -1}) {
		t.Errorf("FromAngle(pi) = %v, want (-1,0)", u)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{0, 0, 0, 0},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{2 * math.Pi, 0},
		{3 * math.Pi, math.Pi},
		{-math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); !almostEqual(got, tt.want) {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name           string
		p1, p2, q1, q2 Vec2
		want           bool
	}{
		{
			name: "crossing",
			p1:   Vec2{0, 0}, p2: Vec2{10, 10},
			q1: Vec2{0, 10}, q2: Vec2{10, 0},
			want: true,
		},
		{
			name: "parallel apart",
			p1:   Vec2{0, 0}, p2: Vec2{10, 0},
			q1: Vec2{0, 5}, q2: Vec2{10, 5},
			want: false,
		},
		{
			name: "endpoint touch",
			p1:   Vec2{0, 0}, p2: Vec2{10, 0},
			q1: Vec2{10, 0}, q2: Vec2{10, 10},
			want: true,
		},
		{
			name: "collinear overlap",
			p1:   Vec2{0, 0}, p2: Vec2{10, 0},
			q1: Vec2{5, 0}, q2: Vec2{15, 0},
			want: true,
		},
		{
			name: "near miss",
			p1:   Vec2{0, 0}, p2: Vec2{10, 0},
			q1: Vec2{5, 0.01}, q2: Vec2{5, 10},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentsIntersect(tt.p1, tt.p2, tt.q1, tt.q2); got != tt.want {
				t.Errorf("SegmentsIntersect = %v, want %v", got, tt.want)
			}
			// The predicate is symmetric in its two segments.
			if got := SegmentsIntersect(tt.q1, tt.q2, tt.p1, tt.p2); got != tt.want {
				t.Errorf("SegmentsIntersect (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClosestPointOnSegment(t *testing.T) {
	a := Vec2{0, 0}
	b := Vec2{10, 0}

	tests := []struct {
		p, want Vec2
	}{
		{Vec2{5, 5}, Vec2{5, 0}},   // perpendicular projection
		{Vec2{-5, 3}, Vec2{0, 0}},  // clamps to start
		{Vec2{15, -3}, Vec2{10, 0}}, // clamps to end
	}
	for _, tt := range tests {
		if got := ClosestPointOnSegment(a, b, tt.p); !vecAlmostEqual(got, tt.want) {
			t.Errorf("ClosestPointOnSegment(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	// Degenerate segment returns its single point.
	if got := ClosestPointOnSegment(a, a, Vec2{3, 3}); !vecAlmostEqual(got, a) {
		t.Errorf("degenerate segment = %v, want %v", got, a)
	}
}

func TestSegmentDistance(t *testing.T) {
	if got := SegmentDistance(Vec2{0, 0}, Vec2{10, 0}, Vec2{5, 3}); !almostEqual(got, 3) {
		t.Errorf("SegmentDistance = %v, want 3", got)
	}
}
