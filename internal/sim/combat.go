package sim

import "stellarforge/internal/sim/geom"

// DamageIndicator is a transient floating number keyed by a stable
// per-target identity so repeated hits coalesce in "remaining life"
// display mode. Cosmetic: excluded from the fingerprint.
type DamageIndicator struct {
	Key    string
	Pos    geom.Vec2
	Amount float64
	Ticks  int
}

const indicatorTicks = 45

// DeathEffect is a request for the renderer to play a death burst. The
// simulation only records position, color and particle count; sprite
// creation lives entirely in the renderer collaborator.
type DeathEffect struct {
	Pos   geom.Vec2
	Color string
	Count int
}

// hitTarget is the resolved victim of a projectile hit.
type hitTarget struct {
	kind     TargetKind
	owner    *Player
	unit     *Unit
	mirror   *Mirror
	building *Building
	forge    *Forge
}

func (t *hitTarget) pos() geom.Vec2 {
	switch t.kind {
	case TargetUnit:
		return t.unit.Pos
	case TargetMirror:
		return t.mirror.Pos
	case TargetBuilding:
		return t.building.Pos
	default:
		return t.forge.Pos
	}
}

func (t *hitTarget) radius() float64 {
	switch t.kind {
	case TargetUnit:
		return t.unit.Radius
	case TargetMirror:
		return t.mirror.Radius
	case TargetBuilding:
		return t.building.Radius
	default:
		return t.forge.Radius
	}
}

func (t *hitTarget) ref() EntityRef {
	switch t.kind {
	case TargetUnit:
		return t.unit.Ref
	case TargetMirror:
		return t.mirror.Ref
	case TargetBuilding:
		return t.building.Ref
	default:
		return t.forge.Ref
	}
}

// advanceProjectiles runs the combat tick: move every projectile, test
// interception and hits, apply damage. Dead projectiles are only marked
// here; the prune pass removes them after all subsystems finish.
func (w *World) advanceProjectiles(dt float64) {
	for _, proj := range w.Projectiles {
		if proj.Dead {
			continue
		}

		switch proj.Kind {
		case ProjHoming:
			w.steerHoming(proj, dt)
		case ProjZone:
			w.advanceZone(proj, dt)
		}

		if !proj.move(dt) {
			proj.Dead = true
			continue
		}

		// Stationary kinds do not hit-test.
		if proj.Kind == ProjZone || proj.Kind == ProjOrb || proj.Kind == ProjDecoy {
			continue
		}

		// Displace ambient particles along the flight path.
		if proj.Kind == ProjBeam {
			w.applyFluidForceFromBeam(proj.Origin, proj.Pos, FluidForceRadius, hueFor(proj.Color))
		} else {
			w.applyFluidForceFromMovingObject(proj.Pos, proj.Vel, FluidForceRadius, hueFor(proj.Color))
		}

		if w.interceptProjectile(proj) {
			proj.Dead = true
			continue
		}

		target := w.findHit(proj)
		if target == nil {
			continue
		}

		if proj.Kind == ProjShell {
			w.detonateShell(proj)
		} else {
			damage := proj.Damage
			if proj.Kind == ProjBeam {
				// Distance-scaled: recomputed at the moment of the
				// hit, not at cast time.
				damage = beamDamageAt(proj.Damage, proj.Origin.Dist(target.pos()), proj.MaxRange)
			}
			w.recordDamage(target, damage)
		}
		proj.Dead = true
	}

	w.applyOrbFields(dt)
	w.advanceIndicators()
}

// beamDamageAt scales base damage down linearly with caster distance,
// floored at BeamMinScale.
func beamDamageAt(base, dist, maxRange float64) float64 {
	if maxRange <= 0 {
		return base
	}
	scale := 1 - geom.Clamp(dist/maxRange, 0, 1)*(1-BeamMinScale)
	return base * scale
}

// interceptProjectile checks the blocker chain in its fixed order:
// warden personal shield, then shield-emitter dome, then absorber
// building. The first matching blocker consumes the projectile. Blockers
// never intercept their own side's shots.
func (w *World) interceptProjectile(proj *Projectile) bool {
	ownerTeam := w.Players[proj.Ref.Owner].Team

	// 1. Warden personal shields.
	for _, p := range w.Players {
		if p.Team == ownerTeam {
			continue
		}
		for _, u := range p.Units {
			if u.Kind != UnitWarden || u.Health <= 0 || u.ShieldHealth <= 0 {
				continue
			}
			if u.Pos.Dist(proj.Pos) <= WardenShieldRadius {
				u.ShieldHealth -= proj.Damage
				if u.ShieldHealth < 0 {
					u.ShieldHealth = 0
				}
				return true
			}
		}
	}

	// 2. Shield emitter domes.
	for _, p := range w.Players {
		if p.Team == ownerTeam {
			continue
		}
		for _, b := range p.Buildings {
			if b.Kind != BuildingShieldEmitter || !b.Complete() || b.Health <= 0 || b.ShieldCharge <= 0 {
				continue
			}
			if b.Pos.Dist(proj.Pos) <= ShieldDomeRadius {
				b.ShieldCharge -= proj.Damage
				if b.ShieldCharge < 0 {
					b.ShieldCharge = 0
				}
				return true
			}
		}
	}

	// 3. Absorber buildings: soak the shot and refund energy.
	for _, p := range w.Players {
		if p.Team == ownerTeam {
			continue
		}
		for _, b := range p.Buildings {
			if b.Kind != BuildingAbsorber || !b.Complete() || b.Health <= 0 {
				continue
			}
			if b.Pos.Dist(proj.Pos) <= AbsorberRadius {
				if p.Forge != nil && p.Forge.Health > 0 {
					p.Forge.PendingEnergy += proj.Damage * AbsorbEnergyFactor
				}
				return true
			}
		}
	}

	return false
}

// findHit tests the projectile against the owner's enemies in the fixed
// priority order: units, mirrors, gates and other buildings, base.
// First hit wins.
func (w *World) findHit(proj *Projectile) *hitTarget {
	ownerTeam := w.Players[proj.Ref.Owner].Team

	for _, p := range w.Players {
		if p.Team == ownerTeam {
			continue
		}
		for _, u := range p.Units {
			if u.Health <= 0 {
				continue
			}
			if proj.Pos.Dist(u.Pos) <= proj.Radius+u.Radius {
				return &hitTarget{kind: TargetUnit, owner: p, unit: u}
			}
		}
	}
	for _, p := range w.Players {
		if p.Team == ownerTeam {
			continue
		}
		for _, m := range p.Mirrors {
			if m.Health <= 0 {
				continue
			}
			if proj.Pos.Dist(m.Pos) <= proj.Radius+m.Radius {
				return &hitTarget{kind: TargetMirror, owner: p, mirror: m}
			}
		}
	}
	for _, p := range w.Players {
		if p.Team == ownerTeam {
			continue
		}
		for _, b := range p.Buildings {
			if b.Health <= 0 {
				continue
			}
			if proj.Pos.Dist(b.Pos) <= proj.Radius+b.Radius {
				return &hitTarget{kind: TargetBuilding, owner: p, building: b}
			}
		}
	}
	for _, p := range w.Players {
		if p.Team == ownerTeam {
			continue
		}
		f := p.Forge
		if f == nil || f.Health <= 0 {
			continue
		}
		if proj.Pos.Dist(f.Pos) <= proj.Radius+f.Radius {
			return &hitTarget{kind: TargetForge, owner: p, forge: f}
		}
	}
	return nil
}

// detonateShell collects every enemy target inside the splash radius and
// applies falloff damage: full at the center, SplashMinFalloff at the
// edge.
func (w *World) detonateShell(proj *Projectile) {
	ownerTeam := w.Players[proj.Ref.Owner].Team
	radius := proj.SplashRadius
	if radius <= 0 {
		radius = proj.Radius
	}

	apply := func(t *hitTarget) {
		d := t.pos().Dist(proj.Pos)
		if d > radius {
			return
		}
		damage := proj.Damage * (1 - d/radius*(1-SplashMinFalloff))
		w.recordDamage(t, damage)
	}

	for _, p := range w.Players {
		if p.Team == ownerTeam {
			continue
		}
		for _, u := range p.Units {
			if u.Health > 0 {
				apply(&hitTarget{kind: TargetUnit, owner: p, unit: u})
			}
		}
		for _, m := range p.Mirrors {
			if m.Health > 0 {
				apply(&hitTarget{kind: TargetMirror, owner: p, mirror: m})
			}
		}
		for _, b := range p.Buildings {
			if b.Health > 0 {
				apply(&hitTarget{kind: TargetBuilding, owner: p, building: b})
			}
		}
		if p.Forge != nil && p.Forge.Health > 0 {
			apply(&hitTarget{kind: TargetForge, owner: p, forge: p.Forge})
		}
	}

	w.applyFluidForceFromMovingObject(proj.Pos, geom.Vec2{X: 1}, radius, hueFor(proj.Color))
}

// advanceZone damages enemy units standing inside the area on a fixed
// cadence.
func (w *World) advanceZone(proj *Projectile, dt float64) {
	if proj.LifeTicks%projZoneTick != 0 {
		return
	}
	ownerTeam := w.Players[proj.Ref.Owner].Team
	tickDamage := proj.Damage * float64(projZoneTick) * dt
	for _, p := range w.Players {
		if p.Team == ownerTeam {
			continue
		}
		for _, u := range p.Units {
			if u.Health > 0 && u.Pos.Dist(proj.Pos) <= proj.Radius {
				w.recordDamage(&hitTarget{kind: TargetUnit, owner: p, unit: u}, tickDamage)
			}
		}
	}
}

// applyOrbFields damages enemy units crossing an active orb laser field
// and pushes particles off the beam line.
func (w *World) applyOrbFields(dt float64) {
	for _, seg := range w.orbPairs() {
		ownerTeam := w.Players[seg.owner].Team
		for _, p := range w.Players {
			if p.Team == ownerTeam {
				continue
			}
			for _, u := range p.Units {
				if u.Health <= 0 {
					continue
				}
				if geom.SegmentDistance(seg.a, seg.b, u.Pos) <= u.Radius {
					w.recordDamage(&hitTarget{kind: TargetUnit, owner: p, unit: u}, OrbFieldDamage*dt)
				}
			}
		}
		w.applyFluidForceFromBeam(seg.a, seg.b, FluidForceRadius*0.5, -1)
	}
}

// recordDamage is the single damage-application path. It applies the
// mirror damage reduction, decrements health, and emits a coalescible
// floating indicator. Death is detected by the owning entity's health
// check in the prune pass, never here.
func (w *World) recordDamage(t *hitTarget, damage float64) {
	if damage <= 0 {
		return
	}

	if t.kind == TargetMirror {
		damage *= 1 - MirrorDamageReduction
		if damage < MinMirrorDamage {
			damage = MinMirrorDamage
		}
	}

	switch t.kind {
	case TargetUnit:
		t.unit.Health -= damage
	case TargetMirror:
		t.mirror.Health -= damage
	case TargetBuilding:
		t.building.Health -= damage
	case TargetForge:
		t.forge.Health -= damage
	}

	w.journalDamage(t.ref(), t.kind, damage)
	w.addIndicator(t.ref().Key(), t.pos(), damage)
}

// addIndicator coalesces repeated hits on one target into a single
// floating number.
func (w *World) addIndicator(key string, pos geom.Vec2, amount float64) {
	for _, ind := range w.Indicators {
		if ind.Key == key {
			ind.Amount += amount
			ind.Pos = pos
			ind.Ticks = indicatorTicks
			return
		}
	}
	if len(w.Indicators) >= w.Limits.MaxIndicators {
		return
	}
	w.Indicators = append(w.Indicators, &DamageIndicator{
		Key: key, Pos: pos, Amount: amount, Ticks: indicatorTicks,
	})
}

// advanceIndicators ages floating numbers; expired ones compact away
// in place.
func (w *World) advanceIndicators() {
	n := 0
	for _, ind := range w.Indicators {
		ind.Ticks--
		if ind.Ticks > 0 {
			w.Indicators[n] = ind
			n++
		}
	}
	w.Indicators = w.Indicators[:n]
}

// requestDeathEffect records a renderer-facing death burst. Hero deaths
// burst harder; the count travels with the event so the renderer stays
// state-free.
func (w *World) requestDeathEffect(pos geom.Vec2, color string, count int) {
	if len(w.DeathEffects) >= w.Limits.MaxDeathEffects {
		return
	}
	w.DeathEffects = append(w.DeathEffects, DeathEffect{Pos: pos, Color: color, Count: count})
}

// hueFor maps a player color string to a particle tint hue. Cosmetic
// only.
func hueFor(color string) float64 {
	if color == "" {
		return -1
	}
	h := 0.0
	for _, c := range color {
		h += float64(c)
	}
	return h / (h + 255)
}
