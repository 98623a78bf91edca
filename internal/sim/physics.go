package sim

import "stellarforge/internal/sim/geom"

// resolvePhysics runs the per-tick collision pipeline after all movement
// has been integrated: unit pair separation, structure standoff, then
// obstacle push-out with a revert fallback. Each stage reads the
// positions the previous stage produced, so the order is part of the
// simulation contract.
func (w *World) resolvePhysics() {
	units := w.collectLiveUnits()
	w.separateUnits(units)
	w.standoffStructures(units)
	w.pushOutOfObstacles(units)
	w.pushMirrorsOutOfObstacles()
	w.clampToWorld(units)
}

// collectLiveUnits flattens every living unit in player-index order then
// spawn order. All pairwise passes iterate this list so tie resolution is
// identical on every peer.
func (w *World) collectLiveUnits() []*Unit {
	w.unitScratch = w.unitScratch[:0]
	for _, p := range w.Players {
		for _, u := range p.Units {
			if u.Health > 0 {
				w.unitScratch = append(w.unitScratch, u)
			}
		}
	}
	return w.unitScratch
}

// separateUnits resolves unit-unit overlap in a single pass. Each
// overlapping pair splits the correction evenly, except when exactly one
// side is a hero: heroes hold their ground and the regular unit absorbs
// the full displacement.
func (w *World) separateUnits(units []*Unit) {
	for i := 0; i < len(units); i++ {
		a := units[i]
		for j := i + 1; j < len(units); j++ {
			b := units[j]
			delta := b.Pos.Sub(a.Pos)
			dist := delta.Len()
			minDist := a.Radius + b.Radius
			if dist >= minDist {
				continue
			}

			var axis geom.Vec2
			if dist <= geom.Epsilon {
				// Coincident centers: pick the fallback axis from the
				// pair's index parity so both peers split the same way.
				if (i+j)%2 == 0 {
					axis = geom.Vec2{X: 1}
				} else {
					axis = geom.Vec2{Y: 1}
				}
			} else {
				axis = delta.Scale(1 / dist)
			}

			overlap := minDist - dist
			switch {
			case a.IsHero() && !b.IsHero():
				b.Pos = b.Pos.Add(axis.Scale(overlap))
			case b.IsHero() && !a.IsHero():
				a.Pos = a.Pos.Sub(axis.Scale(overlap))
			default:
				half := axis.Scale(overlap / 2)
				a.Pos = a.Pos.Sub(half)
				b.Pos = b.Pos.Add(half)
			}
		}
	}
}

// standoffStructures projects units out of every structure footprint
// (forges, buildings, mirrors) to the structure radius plus a standoff
// buffer, so units never clip into bases while attacking them.
func (w *World) standoffStructures(units []*Unit) {
	for _, u := range units {
		for _, p := range w.Players {
			if f := p.Forge; f != nil && f.Health > 0 {
				projectOutOf(u, f.Pos, f.Radius)
			}
			for _, b := range p.Buildings {
				if b.Health > 0 {
					projectOutOf(u, b.Pos, b.Radius)
				}
			}
			for _, m := range p.Mirrors {
				if m.Health > 0 {
					projectOutOf(u, m.Pos, m.Radius)
				}
			}
		}
	}
}

// projectOutOf moves the unit radially to the standoff distance when it
// overlaps a circular structure.
func projectOutOf(u *Unit, center geom.Vec2, radius float64) {
	minDist := radius + u.Radius + StandoffBuffer
	delta := u.Pos.Sub(center)
	dist := delta.Len()
	if dist >= minDist {
		return
	}
	if dist <= geom.Epsilon {
		delta = geom.Vec2{X: 1}
		dist = 1
	}
	u.Pos = center.Add(delta.Scale(minDist / dist))
}

// pushOutOfObstacles resolves unit-asteroid overlap. The correction per
// tick is capped; a unit still inside a rock after the capped push
// reverts to its pre-movement position. The rally point is dropped only
// when it lies inside a rock itself, since only then is the ordered
// destination unreachable.
func (w *World) pushOutOfObstacles(units []*Unit) {
	for _, u := range units {
		pos, stuck := w.resolveObstacles(u.Pos, u.Radius)
		if stuck {
			u.Pos = u.prevPos
			u.Vel = geom.Vec2{}
			if u.HasRally && w.pointInObstacle(u.Rally) {
				u.HasRally = false
			}
			continue
		}
		u.Pos = pos
	}
}

// pushMirrorsOutOfObstacles applies the same obstacle resolution to
// mirrors, which glide rather than integrate velocity. A mirror ordered
// into a rock reverts and keeps gliding unless its destination is itself
// inside a rock.
func (w *World) pushMirrorsOutOfObstacles() {
	for _, p := range w.Players {
		for _, m := range p.Mirrors {
			if m.Health <= 0 {
				continue
			}
			pos, stuck := w.resolveObstacles(m.Pos, m.Radius)
			if stuck {
				m.Pos = m.prevPos
				if m.HasTarget && w.pointInObstacle(m.Target) {
					m.HasTarget = false
				}
				continue
			}
			m.Pos = pos
		}
	}
}

// resolveObstacles pushes a circle clear of every asteroid, with the
// per-tick correction capped. It returns the corrected position and
// whether the circle's center is still inside a rock after the push.
func (w *World) resolveObstacles(pos geom.Vec2, radius float64) (geom.Vec2, bool) {
	var push geom.Vec2
	for _, a := range w.Asteroids {
		push = push.Add(obstaclePush(pos, radius, a))
	}
	if push.LenSq() == 0 {
		return pos, false
	}
	if push.Len() > MaxPushPerTick {
		push = push.Normalize().Scale(MaxPushPerTick)
	}
	pos = pos.Add(push)
	return pos, w.pointInObstacle(pos)
}

// pointInObstacle reports whether a point lies inside any asteroid.
func (w *World) pointInObstacle(pos geom.Vec2) bool {
	for _, a := range w.Asteroids {
		if a.Contains(pos) {
			return true
		}
	}
	return false
}

// obstaclePush returns the correction vector moving a circle clear of one
// asteroid, or zero when they do not overlap.
func obstaclePush(pos geom.Vec2, radius float64, a *Asteroid) geom.Vec2 {
	if pos.Dist(a.Pos) > a.BoundingRadius()+radius {
		return geom.Vec2{}
	}
	world := a.World()
	edge := world.ClosestEdgePoint(pos)
	delta := pos.Sub(edge)
	dist := delta.Len()

	if world.Contains(pos) {
		// Inside: push through the closest edge and out to the radius.
		if dist <= geom.Epsilon {
			delta = pos.Sub(a.Pos)
			if delta.LenSq() <= geom.Epsilon {
				delta = geom.Vec2{X: 1}
			}
			delta = delta.Normalize()
			dist = 0
		} else {
			delta = delta.Scale(-1 / dist)
		}
		return delta.Scale(dist + radius)
	}
	if dist >= radius {
		return geom.Vec2{}
	}
	return delta.Scale((radius - dist) / dist)
}

// clampToWorld keeps units inside the arena bounds.
func (w *World) clampToWorld(units []*Unit) {
	for _, u := range units {
		u.Pos.X = geom.Clamp(u.Pos.X, u.Radius, w.Cfg.WorldWidth-u.Radius)
		u.Pos.Y = geom.Clamp(u.Pos.Y, u.Radius, w.Cfg.WorldHeight-u.Radius)
	}
}
