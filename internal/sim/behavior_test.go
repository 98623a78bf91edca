package sim

import (
	"math"
	"testing"

	"stellarforge/internal/sim/geom"
)

func TestMoveUnitWalksAndArrives(t *testing.T) {
	w := newTestWorld(t)
	p := w.Players[0]
	u := NewUnit(p.NextRef(), UnitSwarm, geom.Vec2{X: 600, Y: 300})
	u.Rally = geom.Vec2{X: 900, Y: 300}
	u.HasRally = true

	dt := Dt(w.Cfg.TickRate)
	w.moveUnit(u, dt)
	if math.Abs(u.Pos.X-(600+UnitMoveSpeed*dt)) > 1e-9 {
		t.Errorf("position after one tick = %v", u.Pos)
	}
	if u.Facing != 0 {
		t.Errorf("facing = %v, want 0 toward +X", u.Facing)
	}

	u.Pos = geom.Vec2{X: 895, Y: 300} // inside the arrive distance
	w.moveUnit(u, dt)
	if u.HasRally {
		t.Error("rally not cleared on arrival")
	}
}

func TestFireAtSpawnsPerKindProjectile(t *testing.T) {
	tests := []struct {
		kind UnitKind
		want ProjectileKind
	}{
		{UnitSwarm, ProjBolt},
		{UnitVanguard, ProjBolt},
		{UnitPhantom, ProjHoming},
		{UnitLancer, ProjBeam},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			w := newTestWorld(t)
			p := w.Players[0]
			u := NewUnit(p.NextRef(), tt.kind, geom.Vec2{X: 600, Y: 300})
			p.Units = append(p.Units, u)

			w.fireAt(p, u, geom.Vec2{X: 700, Y: 300}, NoEntity)

			if len(w.Projectiles) != 1 {
				t.Fatalf("projectiles = %d, want 1", len(w.Projectiles))
			}
			if got := w.Projectiles[0].Kind; got != tt.want {
				t.Errorf("projectile kind = %v, want %v", got, tt.want)
			}
			if u.AttackCooldown != u.Stats().AttackCooldown {
				t.Errorf("cooldown = %d, want %d", u.AttackCooldown, u.Stats().AttackCooldown)
			}
		})
	}
}

func TestUnitsEngageVisibleEnemiesInRange(t *testing.T) {
	w := newTestWorld(t)
	fixSun(w, geom.Vec2{X: 960, Y: 540})
	p0 := w.Players[0]
	p1 := w.Players[1]

	shooter := NewUnit(p0.NextRef(), UnitSwarm, geom.Vec2{X: 600, Y: 300})
	p0.Units = append(p0.Units, shooter)
	target := NewUnit(p1.NextRef(), UnitSwarm, geom.Vec2{X: 700, Y: 300})
	p1.Units = append(p1.Units, target)

	w.acquireAndFire(p0, shooter)
	if len(w.Projectiles) != 1 {
		t.Fatalf("no shot at a visible enemy in range")
	}

	// Out of range: nothing happens.
	w.Projectiles = w.Projectiles[:0]
	shooter.AttackCooldown = 0
	target.Pos = geom.Vec2{X: 600 + UnitAttackRange + 100, Y: 300}
	w.acquireAndFire(p0, shooter)
	if len(w.Projectiles) != 0 {
		t.Error("fired at an enemy beyond attack range")
	}
}

func TestStructureLockWalksInAndFires(t *testing.T) {
	w := newTestWorld(t)
	fixSun(w, geom.Vec2{X: 960, Y: 540})
	p0 := w.Players[0]
	enemyForge := w.Players[1].Forge

	u := NewUnit(p0.NextRef(), UnitSwarm, geom.Vec2{X: 600, Y: 540})
	u.LockTarget = enemyForge.Ref
	p0.Units = append(p0.Units, u)

	// Far away: the lock turns into a move order, no shot.
	w.acquireAndFire(p0, u)
	if len(w.Projectiles) != 0 {
		t.Fatal("fired while out of lock range")
	}
	if !u.HasRally || u.Rally != enemyForge.Pos {
		t.Fatalf("lock did not walk in: rally=%v has=%v", u.Rally, u.HasRally)
	}

	// In range: the lock fires.
	u.Pos = enemyForge.Pos.Sub(geom.Vec2{X: UnitAttackRange - 10})
	w.acquireAndFire(p0, u)
	if len(w.Projectiles) != 1 {
		t.Error("locked unit in range did not fire")
	}

	// Dead lock target clears.
	u.AttackCooldown = 0
	enemyForge.Health = 0
	w.acquireAndFire(p0, u)
	if !u.LockTarget.IsZero() {
		t.Errorf("stale lock kept: %v", u.LockTarget)
	}
}

func TestDecoysDrawFireBeforeUnits(t *testing.T) {
	w := newTestWorld(t)
	fixSun(w, geom.Vec2{X: 960, Y: 540})
	p0 := w.Players[0]
	p1 := w.Players[1]

	shooter := NewUnit(p0.NextRef(), UnitSwarm, geom.Vec2{X: 600, Y: 300})
	p0.Units = append(p0.Units, shooter)
	real := NewUnit(p1.NextRef(), UnitSwarm, geom.Vec2{X: 680, Y: 300})
	p1.Units = append(p1.Units, real)

	decoy := w.spawnProjectile(p1, &Projectile{
		Kind: ProjDecoy, Pos: geom.Vec2{X: 700, Y: 340}, Origin: geom.Vec2{X: 700, Y: 340},
		LifeTicks: projDecoyLife,
	})

	w.acquireAndFire(p0, shooter)
	if len(w.Projectiles) != 2 {
		t.Fatalf("projectiles = %d, want decoy plus one shot", len(w.Projectiles))
	}
	shot := w.Projectiles[1]
	wantDir := decoy.Pos.Sub(shooter.Pos).Normalize()
	gotDir := shot.Vel.Normalize()
	if math.Abs(wantDir.X-gotDir.X) > 1e-9 || math.Abs(wantDir.Y-gotDir.Y) > 1e-9 {
		t.Errorf("shot direction %v, want toward the decoy %v", gotDir, wantDir)
	}
}

func TestVanguardDash(t *testing.T) {
	w := newTestWorld(t)
	p0 := w.Players[0]
	p1 := w.Players[1]

	hero := NewUnit(p0.NextRef(), UnitVanguard, geom.Vec2{X: 600, Y: 300})
	p0.Units = append(p0.Units, hero)
	victim := NewUnit(p1.NextRef(), UnitSwarm, geom.Vec2{X: 620, Y: 300})
	p1.Units = append(p1.Units, victim)

	if !hero.StartDash(geom.Vec2{X: 800, Y: 300}) {
		t.Fatal("StartDash rejected a ready vanguard")
	}
	if hero.StartDash(geom.Vec2{X: 800, Y: 300}) {
		t.Error("StartDash accepted while already dashing")
	}

	dt := Dt(w.Cfg.TickRate)
	w.advanceDash(p0, hero, dt)

	if math.Abs(hero.Pos.X-(600+dashSpeed*dt)) > 1e-9 {
		t.Errorf("dash moved to %v", hero.Pos)
	}
	if victim.Health >= victim.MaxHealth {
		t.Error("dash contact dealt no damage")
	}
	if victim.Vel.LenSq() == 0 {
		t.Error("dash contact applied no knockback")
	}
}

func TestDashEndsAfterItsWindow(t *testing.T) {
	w := newTestWorld(t)
	p := w.Players[0]
	hero := NewUnit(p.NextRef(), UnitVanguard, geom.Vec2{X: 600, Y: 300})
	p.Units = append(p.Units, hero)
	hero.StartDash(geom.Vec2{X: 900, Y: 300})

	dt := Dt(w.Cfg.TickRate)
	for i := 0; i < dashTicks; i++ {
		if !hero.Dashing {
			t.Fatalf("dash ended early at tick %d", i)
		}
		w.advanceDash(p, hero, dt)
	}
	if hero.Dashing {
		t.Error("dash still active after its window")
	}
	if hero.AbilityCooldown != hero.Stats().AbilityCooldown {
		t.Errorf("ability cooldown = %d, want %d", hero.AbilityCooldown, hero.Stats().AbilityCooldown)
	}
}

func TestNonVanguardCannotDash(t *testing.T) {
	u := NewUnit(EntityRef{Owner: 0, Seq: 1}, UnitLancer, geom.Vec2{X: 600, Y: 300})
	if u.StartDash(geom.Vec2{X: 700, Y: 300}) {
		t.Error("non-vanguard started a dash")
	}
}

func TestWardenShieldRegensOffCooldown(t *testing.T) {
	w := newTestWorld(t)
	p := w.Players[0]
	warden := NewUnit(p.NextRef(), UnitWarden, geom.Vec2{X: 600, Y: 300})
	warden.ShieldHealth = 50
	p.Units = append(p.Units, warden)

	dt := Dt(w.Cfg.TickRate)
	w.advanceUnits(dt)
	if math.Abs(warden.ShieldHealth-(50+wardenShieldRegen*dt)) > 1e-9 {
		t.Errorf("shield = %v, want regen applied", warden.ShieldHealth)
	}

	// While the ability cools down, the shield does not regenerate.
	warden.AbilityCooldown = 100
	before := warden.ShieldHealth
	w.advanceUnits(dt)
	if warden.ShieldHealth != before {
		t.Errorf("shield regenerated during cooldown: %v -> %v", before, warden.ShieldHealth)
	}
}

func TestKnockbackDecays(t *testing.T) {
	w := newTestWorld(t)
	p := w.Players[0]
	u := NewUnit(p.NextRef(), UnitSwarm, geom.Vec2{X: 600, Y: 300})
	u.Vel = geom.Vec2{X: 100}
	p.Units = append(p.Units, u)

	dt := Dt(w.Cfg.TickRate)
	w.advanceUnits(dt)

	if u.Pos.X <= 600 {
		t.Error("knockback impulse did not move the unit")
	}
	if math.Abs(u.Vel.X-100*knockbackDecay) > 1e-9 {
		t.Errorf("velocity = %v, want decayed to %v", u.Vel.X, 100*knockbackDecay)
	}
}

func TestTurretPrefersDecoys(t *testing.T) {
	w := newTestWorld(t)
	fixSun(w, geom.Vec2{X: 960, Y: 540})
	p0 := w.Players[0]
	p1 := w.Players[1]

	turret := NewBuilding(p0.NextRef(), BuildingTurret, geom.Vec2{X: 600, Y: 300})
	turret.Progress = 1
	p0.Buildings = append(p0.Buildings, turret)

	real := NewUnit(p1.NextRef(), UnitSwarm, geom.Vec2{X: 700, Y: 300})
	p1.Units = append(p1.Units, real)
	decoy := w.spawnProjectile(p1, &Projectile{
		Kind: ProjDecoy, Pos: geom.Vec2{X: 600, Y: 500}, Origin: geom.Vec2{X: 600, Y: 500},
		LifeTicks: projDecoyLife,
	})

	w.advanceTurret(p0, turret)

	if len(w.Projectiles) != 2 {
		t.Fatalf("projectiles = %d, want decoy plus turret shot", len(w.Projectiles))
	}
	wantFacing := decoy.Pos.Sub(turret.Pos).Angle()
	if math.Abs(turret.Facing-wantFacing) > 1e-9 {
		t.Errorf("turret facing = %v, want aimed at the decoy %v", turret.Facing, wantFacing)
	}
	if turret.FireCooldown != turretCooldown {
		t.Errorf("fire cooldown = %d, want %d", turret.FireCooldown, turretCooldown)
	}
}

func TestFactoryUpgradeDrawsFromForge(t *testing.T) {
	w := newTestWorld(t)
	p := w.Players[0]
	p.Forge.PendingEnergy = 100

	factory := NewBuilding(p.NextRef(), BuildingFactory, geom.Vec2{X: 400, Y: 540})
	factory.Progress = 1
	factory.UpgradeQueued = true
	p.Buildings = append(p.Buildings, factory)

	dt := Dt(w.Cfg.TickRate)
	// The 60-energy upgrade at 10 energy/s takes six simulated seconds.
	for i := 0; i < w.Cfg.TickRate*6+2; i++ {
		w.advanceFactory(p, factory, dt)
	}

	if factory.UpgradeQueued {
		t.Fatal("upgrade never completed")
	}
	if math.Abs(p.DamageBonus-factoryUpgradeBonus) > 1e-9 {
		t.Errorf("damage bonus = %v, want %v", p.DamageBonus, factoryUpgradeBonus)
	}
	if math.Abs(p.Forge.PendingEnergy-(100-factoryUpgradeCost)) > 1e-6 {
		t.Errorf("forge pool = %v, want %v spent", p.Forge.PendingEnergy, factoryUpgradeCost)
	}
}

func TestDestroyedBeaconGrantsNoInfluence(t *testing.T) {
	w := newTestWorld(t)
	p := w.Players[0]

	// Far from the forge, so only the beacon can cover this point.
	pos := geom.Vec2{X: 900, Y: 300}
	beacon := NewBuilding(p.NextRef(), BuildingBeacon, pos)
	beacon.Progress = 1
	p.Buildings = append(p.Buildings, beacon)

	if !p.InfluenceActive(pos) {
		t.Fatal("completed beacon grants no influence")
	}
	beacon.Health = 0
	if p.InfluenceActive(pos) {
		t.Error("destroyed beacon still grants influence")
	}
}

func TestPlaceBuildingChecksFootprintAndCost(t *testing.T) {
	w := newTestWorld(t)
	w.Asteroids = nil
	p := w.Players[0]
	p.Forge.PendingEnergy = 200

	pos := geom.Vec2{X: 400, Y: 300}
	b := w.placeBuilding(p, BuildingTurret, pos)
	if b == nil {
		t.Fatal("valid placement rejected")
	}
	if math.Abs(p.Forge.PendingEnergy-130) > 1e-9 {
		t.Errorf("forge pool after placement = %v, want 130", p.Forge.PendingEnergy)
	}

	// Overlapping footprint is refused without charging.
	if w.placeBuilding(p, BuildingTurret, pos.Add(geom.Vec2{X: 10})) != nil {
		t.Error("overlapping placement accepted")
	}
	if math.Abs(p.Forge.PendingEnergy-130) > 1e-9 {
		t.Errorf("forge pool charged for a rejected placement: %v", p.Forge.PendingEnergy)
	}

	// Unaffordable placement is refused.
	p.Forge.PendingEnergy = 5
	if w.placeBuilding(p, BuildingTurret, geom.Vec2{X: 800, Y: 300}) != nil {
		t.Error("unaffordable placement accepted")
	}
}
