package sim

import "stellarforge/internal/sim/geom"

// Mirror is a mobile structure that converts incident light into energy
// for a linked structure. It delivers nothing while any asteroid or orb
// field blocks its line to every sun.
type Mirror struct {
	Ref       EntityRef
	Pos       geom.Vec2
	Health    float64
	MaxHealth float64
	Radius    float64

	// Movement order. Mirrors have no physics velocity; they glide
	// toward Target at a fixed speed and stop on arrival.
	Target    geom.Vec2
	HasTarget bool

	// Link is the structure receiving this mirror's energy, validated
	// lazily every tick: a destroyed target reads as unlinked.
	Link EntityRef

	// Lit is recomputed each tick by the vision system.
	Lit bool

	prevPos geom.Vec2 // Pre-movement position for obstacle revert
}

// NewMirror creates a mirror at pos.
func NewMirror(ref EntityRef, pos geom.Vec2) *Mirror {
	return &Mirror{
		Ref:       ref,
		Pos:       pos,
		Health:    MirrorMaxHealth,
		MaxHealth: MirrorMaxHealth,
		Radius:    MirrorRadius,
		Link:      NoEntity,
	}
}

// advanceMirror moves the mirror, recomputes its lit state and delivers
// energy to the linked structure. Regeneration only happens inside the
// owner's influence.
func (w *World) advanceMirror(p *Player, m *Mirror, dt float64) {
	if m.Health <= 0 {
		return
	}

	m.prevPos = m.Pos
	if m.HasTarget {
		delta := m.Target.Sub(m.Pos)
		step := MirrorMoveSpeed * dt
		if delta.Len() <= step {
			m.Pos = m.Target
			m.HasTarget = false
		} else {
			m.Pos = m.Pos.Add(delta.Normalize().Scale(step))
		}
	}

	if p.InfluenceActive(m.Pos) && m.Health < m.MaxHealth {
		m.Health += MirrorRegenRate * dt
		if m.Health > m.MaxHealth {
			m.Health = m.MaxHealth
		}
	}

	rate, lit := w.mirrorEnergyRate(m)
	m.Lit = lit
	if !lit || m.Link.IsZero() {
		return
	}

	// Lazy link validation: stale refs mean the target died this match.
	if f := w.forgeByRef(m.Link); f != nil && f.Health > 0 {
		if owner := w.Players[f.Ref.Owner]; owner != nil && !owner.Defeated {
			f.PendingEnergy += rate * dt
			f.Lit = true
		}
		return
	}
	if b := w.buildingByRef(m.Link); b != nil && b.Health > 0 {
		b.addProgress(rate * dt * BuildProgressPerEnergy)
		return
	}
	m.Link = NoEntity
}

// mirrorEnergyRate returns the energy per second the mirror delivers and
// whether it has unobstructed light. The rate scales with proximity to
// the nearest visible sun: full inside the near distance, falling
// linearly to the floor at the far distance.
func (w *World) mirrorEnergyRate(m *Mirror) (float64, bool) {
	bestDist := -1.0
	for _, s := range w.Suns {
		if w.rayBlocked(m.Pos, s.Pos) {
			continue
		}
		d := m.Pos.Dist(s.Pos)
		if bestDist < 0 || d < bestDist {
			bestDist = d
		}
	}
	if bestDist < 0 {
		return 0, false
	}
	factor := 1.0
	if bestDist > MirrorEnergyNearDist {
		span := MirrorEnergyFarDist - MirrorEnergyNearDist
		factor = 1 - (bestDist-MirrorEnergyNearDist)/span
		factor = geom.Clamp(factor, MirrorEnergyMinFactor, 1)
	}
	return MirrorEnergyRate * factor, true
}
