package sim

import (
	"sync/atomic"
	"time"

	"stellarforge/internal/config"
	"stellarforge/internal/sim/geom"
)

// UnitSnapshot is an immutable copy of unit state for rendering and API
// reads. Value types only, no pointers back into the live world.
type UnitSnapshot struct {
	Ref     EntityRef `json:"ref"`
	Kind    string    `json:"kind"`
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
	Facing  float64   `json:"facing"`
	Health  float64   `json:"health"`
	MaxHP   float64   `json:"maxHealth"`
	Radius  float64   `json:"radius"`
	Shield  float64   `json:"shield"`
	Dashing bool      `json:"dashing"`
	Cloaked bool      `json:"cloaked"`
	Color   string    `json:"color"`
}

// MirrorSnapshot is an immutable mirror copy.
type MirrorSnapshot struct {
	Ref    EntityRef `json:"ref"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Health float64   `json:"health"`
	MaxHP  float64   `json:"maxHealth"`
	Lit    bool      `json:"lit"`
	Link   EntityRef `json:"link"`
	Color  string    `json:"color"`
}

// BuildingSnapshot is an immutable building copy.
type BuildingSnapshot struct {
	Ref      EntityRef `json:"ref"`
	Kind     string    `json:"kind"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Health   float64   `json:"health"`
	MaxHP    float64   `json:"maxHealth"`
	Radius   float64   `json:"radius"`
	Progress float64   `json:"progress"`
	Facing   float64   `json:"facing"`
	Color    string    `json:"color"`
}

// ForgeSnapshot is an immutable forge copy.
type ForgeSnapshot struct {
	Ref     EntityRef `json:"ref"`
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
	Health  float64   `json:"health"`
	MaxHP   float64   `json:"maxHealth"`
	Radius  float64   `json:"radius"`
	Pending float64   `json:"pendingEnergy"`
	Queue   int       `json:"queueLen"`
	Lit     bool      `json:"lit"`
	Color   string    `json:"color"`
}

// PlayerSnapshot aggregates per-player facts for UI panels.
type PlayerSnapshot struct {
	Index    int     `json:"index"`
	ID       string  `json:"id"`
	Team     int     `json:"team"`
	Color    string  `json:"color"`
	Energy   float64 `json:"energy"`
	Defeated bool    `json:"defeated"`
	AI       bool    `json:"ai"`
	Strategy string  `json:"strategy"`
}

// ProjectileSnapshot is an immutable projectile copy.
type ProjectileSnapshot struct {
	Kind  string  `json:"kind"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Color string  `json:"color"`
}

// ParticleSnapshot is an immutable ambient particle copy.
type ParticleSnapshot struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Hue   float64 `json:"hue"`
	Alpha float64 `json:"alpha"`
}

// IndicatorSnapshot is a floating damage number copy.
type IndicatorSnapshot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Amount float64 `json:"amount"`
	Ticks  int     `json:"ticks"`
}

// SunSnapshot is an immutable light source copy.
type SunSnapshot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// AsteroidSnapshot carries the world-space outline for rendering.
type AsteroidSnapshot struct {
	Vertices []geom.Vec2 `json:"vertices"`
}

// WorldSnapshot is a complete immutable view of one tick, safe to read
// while the simulation keeps running. Slices are preallocated and reused
// through the pool.
type WorldSnapshot struct {
	Sequence    uint64    `json:"sequence"`
	Timestamp   time.Time `json:"timestamp"`
	Tick        int64     `json:"tick"`
	Fingerprint uint32    `json:"fingerprint"`
	Over        bool      `json:"over"`
	WinnerTeam  int       `json:"winnerTeam"`

	Players      []PlayerSnapshot     `json:"players"`
	Forges       []ForgeSnapshot      `json:"forges"`
	Mirrors      []MirrorSnapshot     `json:"mirrors"`
	Units        []UnitSnapshot       `json:"units"`
	Buildings    []BuildingSnapshot   `json:"buildings"`
	Projectiles  []ProjectileSnapshot `json:"projectiles"`
	Particles    []ParticleSnapshot   `json:"particles"`
	Indicators   []IndicatorSnapshot  `json:"indicators"`
	Suns         []SunSnapshot        `json:"suns"`
	Asteroids    []AsteroidSnapshot   `json:"asteroids"`
	DeathEffects []DeathEffect        `json:"deathEffects"`
}

// SnapshotPool triple-buffers world snapshots for a lock-free
// single-producer single-consumer handoff between the tick loop and
// readers.
type SnapshotPool struct {
	snapshots [3]WorldSnapshot
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic - monotonic sequence
}

// NewSnapshotPool preallocates the three buffers against the caps.
func NewSnapshotPool(limits config.ResourceLimits) *SnapshotPool {
	pool := &SnapshotPool{}
	for i := 0; i < 3; i++ {
		pool.snapshots[i] = WorldSnapshot{
			Players:      make([]PlayerSnapshot, 0, 4),
			Forges:       make([]ForgeSnapshot, 0, 4),
			Mirrors:      make([]MirrorSnapshot, 0, 16),
			Units:        make([]UnitSnapshot, 0, 4*5*limits.MaxUnitsPerKind),
			Buildings:    make([]BuildingSnapshot, 0, 4*limits.MaxBuildings),
			Projectiles:  make([]ProjectileSnapshot, 0, limits.MaxProjectiles),
			Particles:    make([]ParticleSnapshot, 0, limits.MaxParticles),
			Indicators:   make([]IndicatorSnapshot, 0, limits.MaxIndicators),
			Suns:         make([]SunSnapshot, 0, 2),
			Asteroids:    make([]AsteroidSnapshot, 0, 8),
			DeathEffects: make([]DeathEffect, 0, limits.MaxDeathEffects),
		}
	}
	return pool
}

// AcquireWrite returns the next write slot with slices reset but capacity
// preserved. Producer only.
func (p *SnapshotPool) AcquireWrite() *WorldSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Players = snap.Players[:0]
	snap.Forges = snap.Forges[:0]
	snap.Mirrors = snap.Mirrors[:0]
	snap.Units = snap.Units[:0]
	snap.Buildings = snap.Buildings[:0]
	snap.Projectiles = snap.Projectiles[:0]
	snap.Particles = snap.Particles[:0]
	snap.Indicators = snap.Indicators[:0]
	snap.Suns = snap.Suns[:0]
	snap.Asteroids = snap.Asteroids[:0]
	snap.DeathEffects = snap.DeathEffects[:0]

	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()
	return snap
}

// PublishWrite makes the just-written snapshot visible to readers.
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead returns the latest published snapshot. Consumer only.
func (p *SnapshotPool) AcquireRead() *WorldSnapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}

// FillSnapshot copies the current world into snap. Called from the tick
// goroutine while it still owns the world exclusively.
func (w *World) FillSnapshot(snap *WorldSnapshot) {
	snap.Tick = w.Tick
	snap.Fingerprint = w.LastFingerprint
	snap.Over = w.Over
	snap.WinnerTeam = w.WinnerTeam

	for _, p := range w.Players {
		snap.Players = append(snap.Players, PlayerSnapshot{
			Index: p.Index, ID: p.ID, Team: p.Team, Color: p.Color,
			Energy: p.EnergyBalance(), Defeated: p.Defeated,
			AI: p.AIControlled, Strategy: p.Strategy.String(),
		})
		if f := p.Forge; f != nil && f.Health > 0 {
			snap.Forges = append(snap.Forges, ForgeSnapshot{
				Ref: f.Ref, X: f.Pos.X, Y: f.Pos.Y,
				Health: f.Health, MaxHP: f.MaxHealth, Radius: f.Radius,
				Pending: f.PendingEnergy, Queue: len(f.Queue), Lit: f.Lit,
				Color: p.Color,
			})
		}
		for _, m := range p.Mirrors {
			snap.Mirrors = append(snap.Mirrors, MirrorSnapshot{
				Ref: m.Ref, X: m.Pos.X, Y: m.Pos.Y,
				Health: m.Health, MaxHP: m.MaxHealth,
				Lit: m.Lit, Link: m.Link, Color: p.Color,
			})
		}
		for _, u := range p.Units {
			snap.Units = append(snap.Units, UnitSnapshot{
				Ref: u.Ref, Kind: u.Kind.String(),
				X: u.Pos.X, Y: u.Pos.Y, Facing: u.Facing,
				Health: u.Health, MaxHP: u.MaxHealth, Radius: u.Radius,
				Shield: u.ShieldHealth, Dashing: u.Dashing,
				Cloaked: u.Cloaked(), Color: p.Color,
			})
		}
		for _, b := range p.Buildings {
			snap.Buildings = append(snap.Buildings, BuildingSnapshot{
				Ref: b.Ref, Kind: b.Kind.String(),
				X: b.Pos.X, Y: b.Pos.Y,
				Health: b.Health, MaxHP: b.MaxHealth, Radius: b.Radius,
				Progress: b.Progress, Facing: b.Facing, Color: p.Color,
			})
		}
	}

	for _, proj := range w.Projectiles {
		if proj.Dead {
			continue
		}
		snap.Projectiles = append(snap.Projectiles, ProjectileSnapshot{
			Kind: proj.Kind.String(),
			X:    proj.Pos.X, Y: proj.Pos.Y,
			VX: proj.Vel.X, VY: proj.Vel.Y,
			Color: proj.Color,
		})
	}
	for _, pt := range w.Particles {
		snap.Particles = append(snap.Particles, ParticleSnapshot{
			X: pt.Pos.X, Y: pt.Pos.Y, Hue: pt.Hue, Alpha: pt.Alpha,
		})
	}
	for _, ind := range w.Indicators {
		snap.Indicators = append(snap.Indicators, IndicatorSnapshot{
			X: ind.Pos.X, Y: ind.Pos.Y, Amount: ind.Amount, Ticks: ind.Ticks,
		})
	}
	for _, s := range w.Suns {
		snap.Suns = append(snap.Suns, SunSnapshot{X: s.Pos.X, Y: s.Pos.Y, Radius: s.Radius})
	}
	for _, a := range w.Asteroids {
		outline := a.World()
		verts := make([]geom.Vec2, len(outline))
		copy(verts, outline)
		snap.Asteroids = append(snap.Asteroids, AsteroidSnapshot{Vertices: verts})
	}
	snap.DeathEffects = append(snap.DeathEffects, w.DrainDeathEffects()...)
}
