package sim

import "stellarforge/internal/sim/geom"

// ProjectileKind discriminates the short-lived combat entity variants.
type ProjectileKind uint8

const (
	ProjBolt   ProjectileKind = iota // Straight shot, despawns on hit/range/lifetime
	ProjHoming                       // Steers toward a target ref while it lives
	ProjShell                        // Splash damage with radial falloff at detonation
	ProjBeam                         // Fast ray; damage recomputed from caster distance at hit
	ProjZone                         // Stationary area, damages enemies inside per tick
	ProjDecoy                        // False signature drawing turret and homing fire
	ProjOrb                          // One half of a linked light-blocking laser field
)

// String returns the projectile kind name.
func (k ProjectileKind) String() string {
	switch k {
	case ProjBolt:
		return "bolt"
	case ProjHoming:
		return "homing"
	case ProjShell:
		return "shell"
	case ProjBeam:
		return "beam"
	case ProjZone:
		return "zone"
	case ProjDecoy:
		return "decoy"
	case ProjOrb:
		return "orb"
	default:
		return "unknown"
	}
}

// Per-kind motion tuning.
const (
	projBoltSpeed  = 520.0
	projBoltLife   = 90 // ticks
	projHomingSpeed = 380.0
	projHomingTurn  = 4.0 // radians per second
	projHomingLife  = 150
	projShellSpeed = 300.0
	projShellLife  = 120
	projBeamSpeed  = 1400.0
	projBeamLife   = 30
	projZoneLife   = 180
	projZoneTick   = 10 // damage application cadence in ticks
	projDecoyLife  = 300
	projOrbLife    = 450
	projHitRadius  = 8.0
)

// Projectile is a transient combat entity. Every kind has exactly one
// despawn path: lifetime, max range, or an explicit hit marks Dead, and
// the end-of-tick prune removes it. Nothing else may delete a projectile
// mid-iteration.
type Projectile struct {
	Ref  EntityRef
	Kind ProjectileKind

	Pos    geom.Vec2
	Vel    geom.Vec2
	Origin geom.Vec2 // Spawn point: range cap and beam distance scaling

	Damage       float64
	SplashRadius float64 // Shells only
	Radius       float64 // Hit radius; zones use their area radius

	Target EntityRef // Homing steer target, validated lazily
	Pair   EntityRef // Orb partner

	LifeTicks int
	MaxRange  float64

	// Cosmetic; excluded from the fingerprint.
	Color string

	Dead bool
}

// spawnProjectile assigns an owner ref and registers the projectile,
// respecting the hard cap. Over-cap spawns are skipped, not errors.
func (w *World) spawnProjectile(p *Player, proj *Projectile) *Projectile {
	if len(w.Projectiles) >= w.Limits.MaxProjectiles {
		return nil
	}
	proj.Ref = p.NextRef()
	if proj.Target == (EntityRef{}) {
		proj.Target = NoEntity
	}
	if proj.Pair == (EntityRef{}) {
		proj.Pair = NoEntity
	}
	if proj.Radius == 0 {
		proj.Radius = projHitRadius
	}
	w.Projectiles = append(w.Projectiles, proj)
	return proj
}

// SpawnOrbPair places two linked orbs for a player. The pair forms a
// light-blocking laser field while both live and stay in link range.
func (w *World) SpawnOrbPair(p *Player, a, b geom.Vec2) (*Projectile, *Projectile) {
	first := w.spawnProjectile(p, &Projectile{
		Kind: ProjOrb, Pos: a, Origin: a, LifeTicks: projOrbLife, Color: p.Color,
	})
	if first == nil {
		return nil, nil
	}
	second := w.spawnProjectile(p, &Projectile{
		Kind: ProjOrb, Pos: b, Origin: b, LifeTicks: projOrbLife, Color: p.Color,
	})
	if second == nil {
		first.Dead = true
		return nil, nil
	}
	first.Pair = second.Ref
	second.Pair = first.Ref
	return first, second
}

// projectileByRef resolves a projectile handle, nil when stale.
func (w *World) projectileByRef(ref EntityRef) *Projectile {
	if ref.IsZero() {
		return nil
	}
	for _, p := range w.Projectiles {
		if p.Ref == ref {
			return p
		}
	}
	return nil
}

// move advances position for one tick and applies the lifetime and range
// despawn conditions. Returns false once the projectile is spent.
func (proj *Projectile) move(dt float64) bool {
	switch proj.Kind {
	case ProjZone, ProjOrb, ProjDecoy:
		// Stationary kinds only age.
	default:
		proj.Pos = proj.Pos.Add(proj.Vel.Scale(dt))
	}

	proj.LifeTicks--
	if proj.LifeTicks <= 0 {
		return false
	}
	if proj.MaxRange > 0 && proj.Pos.Dist(proj.Origin) > proj.MaxRange {
		return false
	}
	return true
}

// steerHoming turns a homing projectile toward its target's current
// position. A stale target leaves it flying straight.
func (w *World) steerHoming(proj *Projectile, dt float64) {
	target := w.lookupTargetPos(proj.Target)
	if target == nil {
		return
	}
	desired := target.Sub(proj.Pos).Angle()
	current := proj.Vel.Angle()
	diff := geom.NormalizeAngle(desired - current)
	maxTurn := projHomingTurn * dt
	diff = geom.Clamp(diff, -maxTurn, maxTurn)
	proj.Vel = geom.FromAngle(current + diff).Scale(projHomingSpeed)
}

// lookupTargetPos resolves any targetable entity ref to its position.
func (w *World) lookupTargetPos(ref EntityRef) *geom.Vec2 {
	if ref.IsZero() || ref.Owner >= len(w.Players) {
		return nil
	}
	p := w.Players[ref.Owner]
	if u := p.UnitBySeq(ref.Seq); u != nil && u.Health > 0 {
		return &u.Pos
	}
	if m := p.MirrorBySeq(ref.Seq); m != nil && m.Health > 0 {
		return &m.Pos
	}
	if b := p.BuildingBySeq(ref.Seq); b != nil && b.Health > 0 {
		return &b.Pos
	}
	if f := p.Forge; f != nil && f.Ref == ref && f.Health > 0 {
		return &f.Pos
	}
	return nil
}

// forgeByRef resolves a forge handle, nil when stale.
func (w *World) forgeByRef(ref EntityRef) *Forge {
	if ref.IsZero() || ref.Owner >= len(w.Players) {
		return nil
	}
	f := w.Players[ref.Owner].Forge
	if f != nil && f.Ref == ref {
		return f
	}
	return nil
}

// buildingByRef resolves a building handle, nil when stale.
func (w *World) buildingByRef(ref EntityRef) *Building {
	if ref.IsZero() || ref.Owner >= len(w.Players) {
		return nil
	}
	return w.Players[ref.Owner].BuildingBySeq(ref.Seq)
}
