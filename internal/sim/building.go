package sim

import "stellarforge/internal/sim/geom"

// BuildingKind discriminates stationary structure variants.
type BuildingKind uint8

const (
	BuildingTurret        BuildingKind = iota // Fires bolts at the nearest visible enemy
	BuildingFactory                           // Queues damage upgrades for the owner
	BuildingShieldEmitter                     // Faction dome intercepting enemy projectiles
	BuildingAbsorber                          // Soaks enemy projectiles into forge energy
	BuildingGate                              // Barrier; its own slot in the hit-priority order
	BuildingBeacon                            // Influence source with a spotlight reveal cone
)

// String returns the building kind's wire name.
func (k BuildingKind) String() string {
	switch k {
	case BuildingTurret:
		return "turret"
	case BuildingFactory:
		return "factory"
	case BuildingShieldEmitter:
		return "shield_emitter"
	case BuildingAbsorber:
		return "absorber"
	case BuildingGate:
		return "gate"
	case BuildingBeacon:
		return "beacon"
	default:
		return "unknown"
	}
}

// ParseBuilding maps a wire string to a BuildingKind.
func ParseBuilding(s string) (BuildingKind, bool) {
	switch s {
	case "turret":
		return BuildingTurret, true
	case "factory":
		return BuildingFactory, true
	case "shield_emitter":
		return BuildingShieldEmitter, true
	case "absorber":
		return BuildingAbsorber, true
	case "gate":
		return BuildingGate, true
	case "beacon":
		return BuildingBeacon, true
	default:
		return BuildingTurret, false
	}
}

type buildingStats struct {
	MaxHealth float64
	Radius    float64
	Cost      float64
}

var buildingStatsTable = map[BuildingKind]buildingStats{
	BuildingTurret:        {MaxHealth: 180, Radius: 26, Cost: 70},
	BuildingFactory:       {MaxHealth: 200, Radius: 30, Cost: 90},
	BuildingShieldEmitter: {MaxHealth: 150, Radius: 28, Cost: 100},
	BuildingAbsorber:      {MaxHealth: 150, Radius: 28, Cost: 80},
	BuildingGate:          {MaxHealth: 320, Radius: 34, Cost: 50},
	BuildingBeacon:        {MaxHealth: 140, Radius: 24, Cost: 60},
}

// Turret tuning.
const (
	turretRange    = 360.0
	turretDamage   = 10.0
	turretCooldown = 30 // ticks
)

// Shield emitter tuning.
const (
	shieldDomeMax   = 200.0
	shieldDomeRegen = 10.0 // charge per second
)

// Factory tuning: each completed upgrade adds to the owner's damage bonus.
const (
	factoryUpgradeCost  = 60.0
	factoryUpgradeBonus = 0.1
	factoryUpgradeRate  = 10.0 // energy per second consumed from the forge
)

// Building is a stationary structure. Completion progress runs 0 to 1 and
// is gated by incoming light (linked mirror) or the owner's lit influence.
type Building struct {
	Ref  EntityRef
	Kind BuildingKind

	Pos       geom.Vec2
	Health    float64
	MaxHealth float64
	Radius    float64

	Progress float64 // 0..1; inert until complete

	Facing       float64 // Turret aim / beacon spotlight direction
	FireCooldown int

	// Shield emitter charge pool
	ShieldCharge float64

	// Factory upgrade-in-flight energy
	UpgradeSpent  float64
	UpgradeQueued bool
}

// NewBuilding creates an under-construction building at pos.
func NewBuilding(ref EntityRef, kind BuildingKind, pos geom.Vec2) *Building {
	st := buildingStatsTable[kind]
	b := &Building{
		Ref:       ref,
		Kind:      kind,
		Pos:       pos,
		Health:    st.MaxHealth,
		MaxHealth: st.MaxHealth,
		Radius:    st.Radius,
	}
	if kind == BuildingShieldEmitter {
		b.ShieldCharge = shieldDomeMax
	}
	return b
}

// Complete reports whether construction has finished.
func (b *Building) Complete() bool { return b.Progress >= 1 }

// addProgress advances construction, clamped to 1.
func (b *Building) addProgress(delta float64) {
	if b.Progress >= 1 {
		return
	}
	b.Progress += delta
	if b.Progress > 1 {
		b.Progress = 1
	}
}

// placeBuilding starts a construction site if the player can afford the
// kind, the cap has room, and the footprint is clear of structures and
// asteroids. Failures are silent no-ops so bad placements resolve
// identically on every peer.
func (w *World) placeBuilding(p *Player, kind BuildingKind, pos geom.Vec2) *Building {
	st := buildingStatsTable[kind]
	if len(p.Buildings) >= w.Limits.MaxBuildings {
		return nil
	}
	if p.Forge == nil || p.Forge.Available() < st.Cost {
		return nil
	}
	if !w.footprintClear(pos, st.Radius) {
		return nil
	}
	p.Forge.PendingEnergy -= st.Cost
	b := NewBuilding(p.NextRef(), kind, pos)
	p.Buildings = append(p.Buildings, b)
	return b
}

// footprintClear reports whether a circle at pos overlaps no structure or
// asteroid.
func (w *World) footprintClear(pos geom.Vec2, radius float64) bool {
	for _, a := range w.Asteroids {
		if pos.Dist(a.Pos) < a.BoundingRadius()+radius {
			return false
		}
	}
	for _, p := range w.Players {
		if f := p.Forge; f != nil && f.Health > 0 && pos.Dist(f.Pos) < f.Radius+radius {
			return false
		}
		for _, b := range p.Buildings {
			if b.Health > 0 && pos.Dist(b.Pos) < b.Radius+radius {
				return false
			}
		}
		for _, m := range p.Mirrors {
			if m.Health > 0 && pos.Dist(m.Pos) < m.Radius+radius {
				return false
			}
		}
	}
	return true
}

// advanceBuilding runs one tick of building behavior for its owner.
func (w *World) advanceBuilding(p *Player, b *Building, dt float64) {
	if b.Health <= 0 {
		return
	}

	// Construction progresses inside lit influence even without a
	// dedicated mirror link.
	if !b.Complete() {
		if p.Forge != nil && p.Forge.Lit && p.InfluenceActive(b.Pos) {
			b.addProgress(ProductionDrainRate * dt * BuildProgressPerEnergy)
		}
		return
	}

	switch b.Kind {
	case BuildingTurret:
		w.advanceTurret(p, b)
	case BuildingShieldEmitter:
		if b.ShieldCharge < shieldDomeMax {
			b.ShieldCharge += shieldDomeRegen * dt
			if b.ShieldCharge > shieldDomeMax {
				b.ShieldCharge = shieldDomeMax
			}
		}
	case BuildingFactory:
		w.advanceFactory(p, b, dt)
	}
}

// advanceTurret picks a target and fires. Enemy decoys draw fire before
// real units, then the usual unit list; a turret never targets through
// the fog.
func (w *World) advanceTurret(p *Player, b *Building) {
	if b.FireCooldown > 0 {
		b.FireCooldown--
		return
	}

	// Decoys first: that is their whole purpose.
	var targetPos geom.Vec2
	found := false
	bestDist := turretRange
	for _, proj := range w.Projectiles {
		if proj.Kind != ProjDecoy || proj.Dead || proj.Ref.Owner == p.Index {
			continue
		}
		if w.Players[proj.Ref.Owner].Team == p.Team {
			continue
		}
		if d := proj.Pos.Dist(b.Pos); d <= bestDist {
			bestDist = d
			targetPos = proj.Pos
			found = true
		}
	}
	if !found {
		if u, _ := w.nearestVisibleEnemyUnit(p.Index, b.Pos, turretRange); u != nil {
			targetPos = u.Pos
			found = true
		}
	}
	if !found {
		return
	}

	b.Facing = targetPos.Sub(b.Pos).Angle()
	w.spawnProjectile(p, &Projectile{
		Kind:      ProjBolt,
		Pos:       b.Pos.Add(geom.FromAngle(b.Facing).Scale(b.Radius + 4)),
		Origin:    b.Pos,
		Vel:       geom.FromAngle(b.Facing).Scale(projBoltSpeed),
		Damage:    turretDamage * (1 + p.DamageBonus),
		MaxRange:  turretRange * 1.2,
		LifeTicks: projBoltLife,
		Color:     p.Color,
	})
	b.FireCooldown = turretCooldown
}

// advanceFactory converts forge energy into a damage upgrade. Only one
// upgrade is in flight per factory at a time.
func (w *World) advanceFactory(p *Player, b *Building, dt float64) {
	if !b.UpgradeQueued || p.Forge == nil {
		return
	}
	draw := factoryUpgradeRate * dt
	if avail := p.Forge.Available(); draw > avail {
		draw = avail
	}
	if draw <= 0 {
		return
	}
	p.Forge.PendingEnergy -= draw
	b.UpgradeSpent += draw
	if b.UpgradeSpent >= factoryUpgradeCost {
		b.UpgradeSpent = 0
		b.UpgradeQueued = false
		p.DamageBonus += factoryUpgradeBonus
	}
}
