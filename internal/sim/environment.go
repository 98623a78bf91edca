package sim

import (
	"math"
	"math/rand"

	"stellarforge/internal/sim/geom"
)

// Sun is a light source. Orbiting suns revolve around a fixed center at
// constant angular speed; the orbit phase is simulation state and is
// fingerprinted.
type Sun struct {
	Pos    geom.Vec2
	Radius float64

	Orbits      bool
	OrbitCenter geom.Vec2
	OrbitRadius float64
	OrbitSpeed  float64 // radians per second
	OrbitAngle  float64
}

// advance moves the sun along its orbit.
func (s *Sun) advance(dt float64) {
	if !s.Orbits {
		return
	}
	s.OrbitAngle += s.OrbitSpeed * dt
	if s.OrbitAngle > math.Pi {
		s.OrbitAngle -= 2 * math.Pi
	}
	s.Pos = s.OrbitCenter.Add(geom.FromAngle(s.OrbitAngle).Scale(s.OrbitRadius))
}

// Asteroid is a convex polygon obstacle that blocks movement and casts
// shadows. Shape is stored in local space; the world-space cache is
// refreshed whenever the rotation advances.
type Asteroid struct {
	Shape    geom.Polygon // local space, centered on origin
	Pos      geom.Vec2
	Rotation float64
	Spin     float64 // radians per second, 0 for static rocks

	world  geom.Polygon // world-space vertex cache
	radius float64      // bounding radius for cheap rejection
}

// NewAsteroid creates an asteroid from a local-space shape.
func NewAsteroid(shape geom.Polygon, pos geom.Vec2, spin float64) *Asteroid {
	a := &Asteroid{
		Shape:  shape,
		Pos:    pos,
		Spin:   spin,
		world:  make(geom.Polygon, len(shape)),
		radius: shape.BoundingRadius(),
	}
	a.refreshWorld()
	return a
}

// RandomAsteroid generates a rough convex rock from the shared seeded
// generator. Both peers call this during identical setup, so the shapes
// match.
func RandomAsteroid(rng *rand.Rand, pos geom.Vec2, meanRadius float64, spin float64) *Asteroid {
	const verts = 8
	shape := make(geom.Polygon, verts)
	for i := 0; i < verts; i++ {
		angle := 2 * math.Pi * float64(i) / verts
		r := meanRadius * (0.75 + 0.5*rng.Float64())
		shape[i] = geom.FromAngle(angle).Scale(r)
	}
	return NewAsteroid(shape, pos, spin)
}

// advance rotates the asteroid and refreshes the vertex cache.
func (a *Asteroid) advance(dt float64) {
	if a.Spin == 0 {
		return
	}
	a.Rotation += a.Spin * dt
	if a.Rotation > math.Pi {
		a.Rotation -= 2 * math.Pi
	}
	a.refreshWorld()
}

func (a *Asteroid) refreshWorld() {
	a.Shape.TransformInto(a.world, a.Pos, a.Rotation)
}

// World returns the world-space polygon. The slice is owned by the
// asteroid and refreshed in place; callers must not retain it across
// ticks.
func (a *Asteroid) World() geom.Polygon { return a.world }

// BoundingRadius returns the local-shape bounding radius.
func (a *Asteroid) BoundingRadius() float64 { return a.radius }

// BlocksSegment reports whether the segment from-to crosses this rock,
// with a cheap bounding-circle rejection before the exact edge test.
func (a *Asteroid) BlocksSegment(from, to geom.Vec2) bool {
	if geom.SegmentDistance(from, to, a.Pos) > a.radius {
		return false
	}
	return a.world.IntersectsSegment(from, to)
}

// Contains reports whether p lies inside the rock.
func (a *Asteroid) Contains(p geom.Vec2) bool {
	if p.Dist(a.Pos) > a.radius {
		return false
	}
	return a.world.Contains(p)
}
