package sim

import (
	"math"

	"stellarforge/internal/sim/geom"
)

// VisionMode selects the visibility rule set for the match.
type VisionMode uint8

const (
	// VisionStandard: shadow determination plus proximity, influence
	// and spotlight reveals.
	VisionStandard VisionMode = iota
	// VisionLightDark: suns partition the map by x-coordinate; each
	// player sees only their base's side.
	VisionLightDark
)

// rayBlocked reports whether the straight segment from-to is intercepted
// by any asteroid, or by an active orb-pair light field. Used for both
// shadow queries and mirror energy delivery: the two must agree or a
// mirror would charge through a wall it cannot see past.
func (w *World) rayBlocked(from, to geom.Vec2) bool {
	for _, a := range w.Asteroids {
		if a.BlocksSegment(from, to) {
			return true
		}
	}
	for _, pair := range w.orbPairs() {
		if geom.SegmentsIntersect(from, to, pair.a, pair.b) {
			return true
		}
	}
	return false
}

// InShadow reports whether p has no unobstructed line to any light
// source. A point with clear sight to at least one sun is never in
// shadow, regardless of asteroid configuration.
func (w *World) InShadow(p geom.Vec2) bool {
	for _, s := range w.Suns {
		if !w.rayBlocked(p, s.Pos) {
			return false
		}
	}
	return len(w.Suns) > 0
}

// VisibleTo reports whether the observer player sees the world point p
// belonging to targetOwner. Own entities are always visible.
func (w *World) VisibleTo(observer int, p geom.Vec2, targetOwner int) bool {
	if observer == targetOwner {
		return true
	}
	if targetOwner >= 0 && w.Players[observer].Team == w.Players[targetOwner].Team {
		return true
	}

	if w.Mode == VisionLightDark {
		return w.sameSideAsBase(observer, p) || w.inSpotlight(observer, p)
	}

	if !w.InShadow(p) {
		return true
	}
	obs := w.Players[observer]
	for _, u := range obs.Units {
		if u.Health > 0 && u.Pos.Dist(p) <= UnitRevealRadius {
			return true
		}
	}
	if obs.InfluenceActive(p) {
		return true
	}
	return w.inSpotlight(observer, p)
}

// UnitVisibleTo applies the entity-level rules on top of VisibleTo:
// cloaked units hide from non-owners unless the spotlight path reveals
// them.
func (w *World) UnitVisibleTo(observer int, u *Unit) bool {
	if observer == u.Ref.Owner {
		return true
	}
	if w.Players[observer].Team == w.Players[u.Ref.Owner].Team {
		return true
	}
	if u.Cloaked() {
		return w.inSpotlight(observer, u.Pos)
	}
	return w.VisibleTo(observer, u.Pos, u.Ref.Owner)
}

// sameSideAsBase implements the light/dark partition: the nearest sun's
// x-coordinate splits the map; the observer's side is wherever their
// forge currently stands.
func (w *World) sameSideAsBase(observer int, p geom.Vec2) bool {
	if len(w.Suns) == 0 {
		return true
	}
	forge := w.Players[observer].Forge
	if forge == nil {
		return true
	}
	sun := w.Suns[0]
	baseLeft := forge.Pos.X < sun.Pos.X
	pointLeft := p.X < sun.Pos.X
	return baseLeft == pointLeft
}

// inSpotlight reports whether p falls inside any of the observer's
// active beacon cones: within range and within the half-angle of the
// facing direction.
func (w *World) inSpotlight(observer int, p geom.Vec2) bool {
	obs := w.Players[observer]
	for _, b := range obs.Buildings {
		if b.Kind != BuildingBeacon || !b.Complete() || b.Health <= 0 {
			continue
		}
		delta := p.Sub(b.Pos)
		if delta.Len() > SpotlightRange {
			continue
		}
		diff := geom.NormalizeAngle(delta.Angle() - b.Facing)
		if math.Abs(diff) <= SpotlightHalfAngle {
			return true
		}
	}
	return false
}

// orbSegment is an active light-blocking field between two linked orbs.
type orbSegment struct {
	a, b  geom.Vec2
	owner int
}

// orbPairs collects the live orb pairs that are close enough to form a
// field. Projectile order is deterministic, so so is this list.
func (w *World) orbPairs() []orbSegment {
	w.orbScratch = w.orbScratch[:0]
	for _, p := range w.Projectiles {
		if p.Kind != ProjOrb || p.Dead || p.Pair.IsZero() {
			continue
		}
		// Each pair once: take the orb with the lower sequence.
		if p.Pair.Owner == p.Ref.Owner && p.Pair.Seq < p.Ref.Seq {
			continue
		}
		other := w.projectileByRef(p.Pair)
		if other == nil || other.Dead {
			continue
		}
		if p.Pos.Dist(other.Pos) > OrbLinkRange {
			continue
		}
		w.orbScratch = append(w.orbScratch, orbSegment{a: p.Pos, b: other.Pos, owner: p.Ref.Owner})
	}
	return w.orbScratch
}

// nearestVisibleEnemyUnit returns the closest enemy unit the observer can
// see within maxDist of from, or nil. Iteration order is fixed (player
// index, then spawn order) so ties resolve identically on every peer.
func (w *World) nearestVisibleEnemyUnit(observer int, from geom.Vec2, maxDist float64) (*Unit, float64) {
	var best *Unit
	bestDist := maxDist
	obsTeam := w.Players[observer].Team
	for _, p := range w.Players {
		if p.Index == observer || p.Team == obsTeam {
			continue
		}
		for _, u := range p.Units {
			if u.Health <= 0 {
				continue
			}
			d := u.Pos.Dist(from)
			if d > bestDist {
				continue
			}
			if !w.UnitVisibleTo(observer, u) {
				continue
			}
			best = u
			bestDist = d
		}
	}
	return best, bestDist
}
