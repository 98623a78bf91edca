package sim

import (
	"math/rand"

	"stellarforge/internal/config"
	"stellarforge/internal/sim/geom"
	"stellarforge/internal/sim/spatial"
)

const asteroidCount = 6

// PlayerSetup describes one match participant at world creation.
type PlayerSetup struct {
	ID           string
	Team         int
	Color        string
	AIControlled bool
	Strategy     Strategy
	ForgePos     geom.Vec2
}

// World is the complete simulation state. Every gameplay collection is a
// slice iterated in fixed order; entity identity is the EntityRef
// composite key, never pointer values. All mutation happens inside Step,
// driven by a single goroutine; concurrent readers go through snapshots.
type World struct {
	Cfg    config.SimConfig
	Limits config.ResourceLimits

	Tick int64

	Players     []*Player
	Suns        []*Sun
	Asteroids   []*Asteroid
	Projectiles []*Projectile

	// Cosmetic collections, excluded from the fingerprint.
	Particles    []*Particle
	Indicators   []*DamageIndicator
	DeathEffects []DeathEffect

	Mode VisionMode

	Over       bool
	WinnerTeam int

	LastFingerprint uint32

	rng  *rand.Rand
	grid *spatial.Grid

	pending    []Command
	arrivalSeq uint64

	journal *EventLog
	setups  []PlayerSetup // retained for the journal's start entry

	// Scratch buffers reused across ticks.
	orbScratch  []orbSegment
	unitScratch []*Unit
}

// NewWorld builds the initial match state. Both peers call this with
// identical arguments; everything random flows from the single seeded
// generator, so the resulting worlds are bit-identical.
func NewWorld(cfg config.SimConfig, limits config.ResourceLimits, mode VisionMode, setups []PlayerSetup) *World {
	w := &World{
		Cfg:        cfg,
		Limits:     limits,
		Mode:       mode,
		WinnerTeam: -1,
		setups:     setups,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		grid:       spatial.NewGrid(cfg.WorldWidth, cfg.WorldHeight, ParticleCellSize, limits.MaxParticles),
	}

	for i, s := range setups {
		p := &Player{
			Index:        i,
			ID:           s.ID,
			Team:         s.Team,
			Color:        s.Color,
			AIControlled: s.AIControlled,
			Strategy:     s.Strategy,
		}
		p.Forge = NewForge(p.NextRef(), s.ForgePos)

		// Every player starts with one mirror already feeding the forge.
		m := NewMirror(p.NextRef(), s.ForgePos.Add(geom.Vec2{X: ForgeRadius + MirrorRadius + 20}))
		m.Link = p.Forge.Ref
		p.Mirrors = append(p.Mirrors, m)

		w.Players = append(w.Players, p)
	}

	center := geom.Vec2{X: cfg.WorldWidth / 2, Y: cfg.WorldHeight / 2}
	w.Suns = append(w.Suns, &Sun{
		Pos:         center,
		Radius:      40,
		Orbits:      true,
		OrbitCenter: center,
		OrbitRadius: cfg.WorldHeight * 0.25,
		OrbitSpeed:  0.05,
	})

	w.seedAsteroids()
	w.seedParticles(cfg.ParticleCount)
	return w
}

// seedAsteroids scatters rocks away from every forge. Placement retries
// draw from the shared generator, so rejection keeps determinism.
func (w *World) seedAsteroids() {
	for len(w.Asteroids) < asteroidCount {
		pos := geom.Vec2{
			X: w.rng.Float64() * w.Cfg.WorldWidth,
			Y: w.rng.Float64() * w.Cfg.WorldHeight,
		}
		tooClose := false
		for _, p := range w.Players {
			if p.Forge != nil && pos.Dist(p.Forge.Pos) < InfluenceRadius {
				tooClose = true
				break
			}
		}
		spin := (w.rng.Float64() - 0.5) * 0.4
		a := RandomAsteroid(w.rng, pos, 50+w.rng.Float64()*40, spin)
		if tooClose {
			continue
		}
		w.Asteroids = append(w.Asteroids, a)
	}
}

// SetJournal attaches the match journal and records the start entry.
func (w *World) SetJournal(el *EventLog) {
	w.journal = el
	if el == nil {
		return
	}
	el.EmitReliable(NewEvent(EventTypeMatchStart, w.Tick, -1, MatchStartPayload{
		Seed:        w.Cfg.Seed,
		TickRate:    w.Cfg.TickRate,
		WorldWidth:  w.Cfg.WorldWidth,
		WorldHeight: w.Cfg.WorldHeight,
		Mode:        uint8(w.Mode),
		Setups:      w.setups,
	}))
}

func (w *World) journalCommand(cmd Command) {
	if w.journal == nil {
		return
	}
	w.journal.EmitReliable(NewEvent(EventTypeCommand, w.Tick, cmd.Player, CommandPayload{Command: cmd}))
}

func (w *World) journalDamage(target EntityRef, kind TargetKind, amount float64) {
	if w.journal == nil {
		return
	}
	w.journal.Emit(NewEvent(EventTypeDamage, w.Tick, target.Owner, DamagePayload{
		Target: target, Kind: kind.String(), Amount: amount,
	}))
}

func (w *World) journalDestroyed(target EntityRef, kind string) {
	if w.journal == nil {
		return
	}
	w.journal.Emit(NewEvent(EventTypeDestroyed, w.Tick, target.Owner, DestroyedPayload{
		Target: target, Kind: kind,
	}))
}

func (w *World) journalFingerprint(hash uint32) {
	if w.journal == nil {
		return
	}
	w.journal.EmitReliable(NewEvent(EventTypeFingerprint, w.Tick, -1, FingerprintPayload{Hash: hash}))
}

// Step advances the simulation one tick. Subsystem order is part of the
// lockstep contract and must never vary between peers: commands,
// environment, AI, economy, behavior, combat, physics, pruning, then the
// periodic fingerprint.
func (w *World) Step() {
	if w.Over {
		return
	}
	w.Tick++
	dt := Dt(w.Cfg.TickRate)

	w.drainCommands()

	for _, s := range w.Suns {
		s.advance(dt)
	}
	for _, a := range w.Asteroids {
		a.advance(dt)
	}

	w.advanceAI()

	for _, p := range w.Players {
		if p.Forge != nil {
			p.Forge.Lit = false
		}
	}
	for _, p := range w.Players {
		for _, m := range p.Mirrors {
			w.advanceMirror(p, m, dt)
		}
	}
	for _, p := range w.Players {
		if p.Defeated || p.Forge == nil {
			continue
		}
		if kind, done := p.Forge.advanceProduction(dt); done {
			w.spawnProduct(p, kind)
		}
		for _, b := range p.Buildings {
			w.advanceBuilding(p, b, dt)
		}
	}

	w.advanceUnits(dt)
	w.advanceProjectiles(dt)
	w.resolvePhysics()
	w.pruneDead()
	w.advanceParticles(dt)

	if w.Cfg.FingerprintEvery > 0 && w.Tick%int64(w.Cfg.FingerprintEvery) == 0 {
		w.LastFingerprint = w.Fingerprint()
		w.journalFingerprint(w.LastFingerprint)
	}

	w.CheckVictory()
}

// spawnProduct materializes a finished production order next to the
// forge. Per-kind unit caps make an over-full order a silent skip, the
// same on every peer.
func (w *World) spawnProduct(p *Player, kind ProductKind) {
	f := p.Forge
	if f == nil || f.Health <= 0 {
		return
	}
	spawnPos := f.Pos.Add(geom.Vec2{Y: f.Radius + 30})
	spawnPos = clampPoint(w, spawnPos.X, spawnPos.Y)

	if kind == ProductMirror {
		p.Mirrors = append(p.Mirrors, NewMirror(p.NextRef(), spawnPos))
		return
	}
	unitKind := heroUnitKind(kind)
	if p.UnitCount(unitKind) >= w.Limits.MaxUnitsPerKind {
		return
	}
	p.Units = append(p.Units, NewUnit(p.NextRef(), unitKind, spawnPos))
}

// pruneDead removes expired entities with in-place compaction, emitting
// destruction telemetry and renderer death bursts. Forge destruction
// defeats its owner; the player struct itself stays for team accounting.
func (w *World) pruneDead() {
	for _, p := range w.Players {
		n := 0
		for _, u := range p.Units {
			if u.Health > 0 {
				p.Units[n] = u
				n++
				continue
			}
			w.journalDestroyed(u.Ref, u.Kind.String())
			w.requestDeathEffect(u.Pos, p.Color, u.Stats().DeathParticles)
		}
		p.Units = p.Units[:n]

		n = 0
		for _, m := range p.Mirrors {
			if m.Health > 0 {
				p.Mirrors[n] = m
				n++
				continue
			}
			w.journalDestroyed(m.Ref, "mirror")
			w.requestDeathEffect(m.Pos, p.Color, 12)
		}
		p.Mirrors = p.Mirrors[:n]

		n = 0
		for _, b := range p.Buildings {
			if b.Health > 0 {
				p.Buildings[n] = b
				n++
				continue
			}
			w.journalDestroyed(b.Ref, b.Kind.String())
			w.requestDeathEffect(b.Pos, p.Color, 16)
		}
		p.Buildings = p.Buildings[:n]

		if p.Forge != nil && p.Forge.Health <= 0 && !p.Defeated {
			w.journalDestroyed(p.Forge.Ref, "forge")
			w.requestDeathEffect(p.Forge.Pos, p.Color, 48)
			p.Defeated = true
		}
	}

	n := 0
	for _, proj := range w.Projectiles {
		if !proj.Dead {
			w.Projectiles[n] = proj
			n++
		}
	}
	w.Projectiles = w.Projectiles[:n]
}

// CheckVictory ends the match when at most one team still has an
// undefeated player. A solo survivor's team wins; a simultaneous wipe is
// a draw with WinnerTeam -1.
func (w *World) CheckVictory() {
	if w.Over {
		return
	}
	var aliveTeams []int
	for _, p := range w.Players {
		if p.Defeated {
			continue
		}
		seen := false
		for _, t := range aliveTeams {
			if t == p.Team {
				seen = true
				break
			}
		}
		if !seen {
			aliveTeams = append(aliveTeams, p.Team)
		}
	}
	if len(aliveTeams) > 1 {
		return
	}
	w.Over = true
	if len(aliveTeams) == 1 {
		w.WinnerTeam = aliveTeams[0]
	} else {
		w.WinnerTeam = -1
	}
	if w.journal != nil {
		w.journal.EmitReliable(NewEvent(EventTypeVictory, w.Tick, -1, VictoryPayload{WinnerTeam: w.WinnerTeam}))
	}
}

// DrainDeathEffects hands the pending death bursts to the renderer and
// clears the queue.
func (w *World) DrainDeathEffects() []DeathEffect {
	if len(w.DeathEffects) == 0 {
		return nil
	}
	out := make([]DeathEffect, len(w.DeathEffects))
	copy(out, w.DeathEffects)
	w.DeathEffects = w.DeathEffects[:0]
	return out
}

// clampPoint clamps arbitrary wire coordinates into the arena.
func clampPoint(w *World, x, y float64) geom.Vec2 {
	return geom.Vec2{
		X: geom.Clamp(x, 0, w.Cfg.WorldWidth),
		Y: geom.Clamp(y, 0, w.Cfg.WorldHeight),
	}
}
