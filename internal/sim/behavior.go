package sim

import "stellarforge/internal/sim/geom"

const knockbackDecay = 0.85

// advanceUnits runs the per-unit behavior tick for every player: timers,
// dashes, rally movement, target selection and firing. Positions set here
// are provisional; resolvePhysics corrects them afterwards.
func (w *World) advanceUnits(dt float64) {
	for _, p := range w.Players {
		for _, u := range p.Units {
			if u.Health <= 0 {
				continue
			}
			u.prevPos = u.Pos

			if u.AttackCooldown > 0 {
				u.AttackCooldown--
			}
			if u.AbilityCooldown > 0 {
				u.AbilityCooldown--
			}
			if u.Kind == UnitWarden && u.AbilityCooldown == 0 && u.ShieldHealth < wardenShieldMax {
				u.ShieldHealth += wardenShieldRegen * dt
				if u.ShieldHealth > wardenShieldMax {
					u.ShieldHealth = wardenShieldMax
				}
			}

			if u.Dashing {
				w.advanceDash(p, u, dt)
				continue
			}

			w.moveUnit(u, dt)
			w.acquireAndFire(p, u)

			// External impulses decay independently of ordered movement.
			if u.Vel.LenSq() > geom.Epsilon {
				u.Pos = u.Pos.Add(u.Vel.Scale(dt))
				u.Vel = u.Vel.Scale(knockbackDecay)
			} else {
				u.Vel = geom.Vec2{}
			}

			if u.Pos.DistSq(u.prevPos) > geom.Epsilon {
				w.applyFluidForceFromMovingObject(u.Pos, u.Pos.Sub(u.prevPos).Scale(1/dt), FluidForceRadius*0.6, -1)
			}
		}
	}
}

// advanceDash moves a charging vanguard and applies contact damage plus
// knockback to enemy units along the path. Each dash can hit a given unit
// at most once per tick; the short dash window keeps repeat hits rare.
func (w *World) advanceDash(p *Player, u *Unit, dt float64) {
	u.Pos = u.Pos.Add(u.DashDir.Scale(dashSpeed * dt))
	u.Facing = u.DashDir.Angle()

	for _, enemy := range w.Players {
		if enemy.Team == p.Team {
			continue
		}
		for _, e := range enemy.Units {
			if e.Health <= 0 {
				continue
			}
			if u.Pos.Dist(e.Pos) > dashHitRadius+e.Radius {
				continue
			}
			w.recordDamage(&hitTarget{kind: TargetUnit, owner: enemy, unit: e}, dashDamage*(1+p.DamageBonus))
			dir := e.Pos.Sub(u.Pos)
			if dir.LenSq() <= geom.Epsilon {
				dir = u.DashDir
			}
			e.Vel = e.Vel.Add(dir.Normalize().Scale(dashKnockback))
		}
	}

	u.DashTicks--
	if u.DashTicks <= 0 {
		u.Dashing = false
	}
	w.applyFluidForceFromMovingObject(u.Pos, u.DashDir.Scale(dashSpeed), FluidForceRadius, -1)
}

// moveUnit walks the unit toward its rally point, stopping inside the
// arrive distance.
func (w *World) moveUnit(u *Unit, dt float64) {
	if !u.HasRally {
		return
	}
	delta := u.Rally.Sub(u.Pos)
	dist := delta.Len()
	if dist <= UnitArriveDist {
		u.HasRally = false
		return
	}
	step := u.Stats().Speed * dt
	if step > dist {
		step = dist
	}
	dir := delta.Scale(1 / dist)
	u.Pos = u.Pos.Add(dir.Scale(step))
	u.Facing = dir.Angle()
}

// acquireAndFire picks the unit's attack target and fires when the
// cooldown allows. A structure lock takes precedence; otherwise the
// nearest visible enemy unit in range is engaged. Decoys inside range
// draw fire before real units.
func (w *World) acquireAndFire(p *Player, u *Unit) {
	if u.AttackCooldown > 0 {
		return
	}
	st := u.Stats()

	if !u.LockTarget.IsZero() {
		if pos := w.lookupTargetPos(u.LockTarget); pos != nil {
			if u.Pos.Dist(*pos) <= st.AttackRange {
				w.fireAt(p, u, *pos, u.LockTarget)
			} else {
				// Out of range: walk the lock in.
				u.Rally = *pos
				u.HasRally = true
			}
			return
		}
		u.LockTarget = NoEntity
	}

	if decoy := w.nearestEnemyDecoy(p.Index, u.Pos, st.AttackRange); decoy != nil {
		w.fireAt(p, u, decoy.Pos, decoy.Ref)
		return
	}

	target, _ := w.nearestVisibleEnemyUnit(p.Index, u.Pos, st.AttackRange)
	if target == nil {
		return
	}
	w.fireAt(p, u, target.Pos, target.Ref)
}

// nearestEnemyDecoy returns the closest live enemy decoy within maxDist.
func (w *World) nearestEnemyDecoy(observer int, from geom.Vec2, maxDist float64) *Projectile {
	var best *Projectile
	bestDist := maxDist
	obsTeam := w.Players[observer].Team
	for _, proj := range w.Projectiles {
		if proj.Kind != ProjDecoy || proj.Dead {
			continue
		}
		if w.Players[proj.Ref.Owner].Team == obsTeam {
			continue
		}
		d := proj.Pos.Dist(from)
		if d <= bestDist {
			best = proj
			bestDist = d
		}
	}
	return best
}

// fireAt spawns the unit's per-kind projectile toward the target and
// restarts the attack cooldown.
func (w *World) fireAt(p *Player, u *Unit, targetPos geom.Vec2, target EntityRef) {
	dir := targetPos.Sub(u.Pos)
	if dir.LenSq() <= geom.Epsilon {
		return
	}
	dir = dir.Normalize()
	u.Facing = dir.Angle()
	st := u.Stats()
	damage := st.AttackDamage * (1 + p.DamageBonus)

	switch u.Kind {
	case UnitPhantom:
		w.spawnProjectile(p, &Projectile{
			Kind: ProjHoming, Pos: u.Pos, Origin: u.Pos,
			Vel: dir.Scale(projHomingSpeed), Damage: damage,
			Target: target, LifeTicks: projHomingLife,
			MaxRange: st.AttackRange * 1.5, Color: p.Color,
		})
	case UnitLancer:
		w.spawnProjectile(p, &Projectile{
			Kind: ProjBeam, Pos: u.Pos, Origin: u.Pos,
			Vel: dir.Scale(projBeamSpeed), Damage: damage,
			LifeTicks: projBeamLife, MaxRange: st.AttackRange, Color: p.Color,
		})
	default:
		w.spawnProjectile(p, &Projectile{
			Kind: ProjBolt, Pos: u.Pos, Origin: u.Pos,
			Vel: dir.Scale(projBoltSpeed), Damage: damage,
			LifeTicks: projBoltLife, MaxRange: st.AttackRange * 1.3, Color: p.Color,
		})
	}
	u.AttackCooldown = st.AttackCooldown
}
