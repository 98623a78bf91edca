package sim

import (
	"math"

	"stellarforge/internal/sim/geom"
)

// Particle is an ambient flow particle. Particles never feed back into
// gameplay: they exist for the renderer, so their hue and alpha are
// cosmetic and the whole population is excluded from the fingerprint.
type Particle struct {
	Pos geom.Vec2
	Vel geom.Vec2

	// Cosmetic tint, drifts toward impact colors under fluid force.
	Hue   float64
	Alpha float64
}

// seedParticles places the ambient particle population in random
// clusters using the shared seeded generator.
func (w *World) seedParticles(count int) {
	if count > w.Limits.MaxParticles {
		count = w.Limits.MaxParticles
	}
	const perCluster = 40
	var anchor geom.Vec2
	for i := 0; i < count; i++ {
		if i%perCluster == 0 {
			anchor = geom.Vec2{
				X: w.rng.Float64() * w.Cfg.WorldWidth,
				Y: w.rng.Float64() * w.Cfg.WorldHeight,
			}
		}
		pos := geom.Vec2{
			X: geom.Clamp(anchor.X+(w.rng.Float64()-0.5)*120, 0, w.Cfg.WorldWidth),
			Y: geom.Clamp(anchor.Y+(w.rng.Float64()-0.5)*120, 0, w.Cfg.WorldHeight),
		}
		w.Particles = append(w.Particles, &Particle{
			Pos:   pos,
			Hue:   w.rng.Float64(),
			Alpha: 0.4 + 0.6*w.rng.Float64(),
		})
	}
}

// advanceParticles applies inter-particle repulsion via the spatial grid
// (3x3 neighborhood, near-O(n)) plus damping, then integrates positions.
func (w *World) advanceParticles(dt float64) {
	if len(w.Particles) == 0 {
		return
	}

	w.grid.Clear()
	for i, p := range w.Particles {
		w.grid.Insert(uint32(i), p.Pos.X, p.Pos.Y)
	}

	for i, p := range w.Particles {
		for _, j := range w.grid.Neighborhood(p.Pos.X, p.Pos.Y) {
			if int(j) <= i {
				continue // Each pair once
			}
			q := w.Particles[j]
			delta := p.Pos.Sub(q.Pos)
			dist := delta.Len()
			if dist >= ParticleRepelRadius {
				continue
			}
			var axis geom.Vec2
			if dist <= geom.Epsilon {
				// Coincident particles: alternate the fallback axis by
				// index parity so the pair splits instead of dividing
				// by zero.
				if i%2 == 0 {
					axis = geom.Vec2{X: 1}
				} else {
					axis = geom.Vec2{Y: 1}
				}
			} else {
				axis = delta.Scale(1 / dist)
			}
			falloff := 1 - dist/ParticleRepelRadius
			force := falloff * falloff * ParticleRepelForce
			impulse := axis.Scale(force * dt)
			p.Vel = p.Vel.Add(impulse)
			q.Vel = q.Vel.Sub(impulse)
		}
	}

	for _, p := range w.Particles {
		p.Vel = p.Vel.Scale(ParticleDamping)
		p.Pos = p.Pos.Add(p.Vel.Scale(dt))
		p.Pos.X = geom.Clamp(p.Pos.X, 0, w.Cfg.WorldWidth)
		p.Pos.Y = geom.Clamp(p.Pos.Y, 0, w.Cfg.WorldHeight)
	}
}

// applyFluidForceFromMovingObject displaces particles near a fast mover,
// blending a forward-motion component with a radial push. Strength decays
// with squared proximity. impactHue < 0 skips the cosmetic tint.
func (w *World) applyFluidForceFromMovingObject(pos, vel geom.Vec2, radius float64, impactHue float64) {
	speed := vel.Len()
	if speed <= geom.Epsilon || radius <= 0 {
		return
	}
	forward := vel.Scale(1 / speed)

	for _, i := range w.grid.QueryRadius(pos.X, pos.Y, radius) {
		p := w.Particles[i]
		delta := p.Pos.Sub(pos)
		dist := delta.Len()
		if dist >= radius {
			continue
		}
		var radial geom.Vec2
		if dist <= geom.Epsilon {
			radial = forward
		} else {
			radial = delta.Scale(1 / dist)
		}
		proximity := 1 - dist/radius
		strength := speed * proximity * proximity
		push := forward.Scale(FluidForwardBlend).Add(radial.Scale(1 - FluidForwardBlend))
		p.Vel = p.Vel.Add(push.Scale(strength * 0.2))

		if impactHue >= 0 {
			// Feedback tint only; never read back by gameplay.
			blend := geom.Clamp(strength*FluidTintRate, 0, 1)
			p.Hue += (impactHue - p.Hue) * blend
		}
	}
}

// applyFluidForceFromBeam pushes particles away from a beam segment.
func (w *World) applyFluidForceFromBeam(from, to geom.Vec2, radius float64, impactHue float64) {
	mid := from.Add(to.Sub(from).Scale(0.5))
	reach := to.Sub(from).Len()/2 + radius
	for _, i := range w.grid.QueryRadius(mid.X, mid.Y, reach) {
		p := w.Particles[i]
		closest := geom.ClosestPointOnSegment(from, to, p.Pos)
		delta := p.Pos.Sub(closest)
		dist := delta.Len()
		if dist >= radius {
			continue
		}
		var axis geom.Vec2
		if dist <= geom.Epsilon {
			axis = to.Sub(from).Rotate(math.Pi / 2).Normalize()
		} else {
			axis = delta.Scale(1 / dist)
		}
		proximity := 1 - dist/radius
		p.Vel = p.Vel.Add(axis.Scale(proximity * proximity * ParticleRepelForce))
		if impactHue >= 0 {
			blend := geom.Clamp(proximity*FluidTintRate, 0, 1)
			p.Hue += (impactHue - p.Hue) * blend
		}
	}
}
