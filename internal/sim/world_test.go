package sim

import (
	"math"
	"testing"

	"stellarforge/internal/config"
	"stellarforge/internal/sim/geom"
)

func testConfig() config.SimConfig {
	cfg := config.DefaultSim()
	cfg.ParticleCount = 0
	return cfg
}

func testLimits() config.ResourceLimits {
	return config.DefaultLimits()
}

func testSetups(cfg config.SimConfig) []PlayerSetup {
	return []PlayerSetup{
		{ID: "alpha", Team: 0, Color: "#4da6ff", ForgePos: geom.Vec2{X: 200, Y: cfg.WorldHeight / 2}},
		{ID: "beta", Team: 1, Color: "#ff6b4d", ForgePos: geom.Vec2{X: cfg.WorldWidth - 200, Y: cfg.WorldHeight / 2}},
	}
}

func newTestWorld(t *testing.T) *World {
	t.Helper()
	cfg := testConfig()
	return NewWorld(cfg, config.DefaultLimits(), VisionStandard, testSetups(cfg))
}

// testSquare returns an axis-aligned square obstacle centered at pos.
func testSquare(pos geom.Vec2, half float64) *Asteroid {
	shape := geom.Polygon{
		{X: -half, Y: -half},
		{X: half, Y: -half},
		{X: half, Y: half},
		{X: -half, Y: half},
	}
	return NewAsteroid(shape, pos, 0)
}

func TestNewWorldInitialState(t *testing.T) {
	w := newTestWorld(t)

	if len(w.Players) != 2 {
		t.Fatalf("players = %d, want 2", len(w.Players))
	}
	for i, p := range w.Players {
		if p.Forge == nil {
			t.Fatalf("player %d has no forge", i)
		}
		if len(p.Mirrors) != 1 {
			t.Fatalf("player %d mirrors = %d, want 1 starting mirror", i, len(p.Mirrors))
		}
		if p.Mirrors[0].Link != p.Forge.Ref {
			t.Errorf("player %d starting mirror not linked to forge", i)
		}
	}
	if len(w.Suns) != 1 {
		t.Errorf("suns = %d, want 1", len(w.Suns))
	}
	if len(w.Asteroids) == 0 {
		t.Error("world has no asteroids")
	}
	for _, a := range w.Asteroids {
		for _, p := range w.Players {
			if a.Pos.Dist(p.Forge.Pos) < InfluenceRadius {
				t.Errorf("asteroid at %v inside influence of forge at %v", a.Pos, p.Forge.Pos)
			}
		}
	}
	if w.Over || w.WinnerTeam != -1 {
		t.Error("fresh world should not be over")
	}
}

// Two worlds built from the same seed and fed the same commands must
// produce identical fingerprints on every tick. This is the core lockstep
// guarantee.
func TestDeterministicFingerprintSequence(t *testing.T) {
	build := func() *World {
		cfg := testConfig()
		setups := testSetups(cfg)
		setups[0].AIControlled = true
		setups[0].Strategy = StrategyAggressive
		setups[1].AIControlled = true
		setups[1].Strategy = StrategyWaves
		return NewWorld(cfg, config.DefaultLimits(), VisionStandard, setups)
	}

	cmds := []Command{
		{Tick: 5, Player: 0, Kind: CmdSetStrategy, SetStrategy: &SetStrategyPayload{Strategy: "defensive"}},
		{Tick: 40, Player: 1, Kind: CmdSpawnOrbs, SpawnOrbs: &SpawnOrbsPayload{AX: 900, AY: 400, BX: 1000, BY: 500}},
		{Tick: 80, Player: 0, Kind: CmdQueueProduction, QueueProduction: &QueueProductionPayload{Product: "swarm"}},
	}

	w1 := build()
	w2 := build()
	for _, c := range cmds {
		w1.EnqueueCommand(c)
		w2.EnqueueCommand(c)
	}

	for tick := 0; tick < 300; tick++ {
		w1.Step()
		w2.Step()
		f1 := w1.Fingerprint()
		f2 := w2.Fingerprint()
		if f1 != f2 {
			t.Fatalf("fingerprints diverged at tick %d: %08x vs %08x", w1.Tick, f1, f2)
		}
	}
}

func TestStepRecordsPeriodicFingerprint(t *testing.T) {
	w := newTestWorld(t)
	for i := int64(0); i < w.Cfg.FingerprintEvery; i++ {
		w.Step()
	}
	if w.LastFingerprint == 0 {
		t.Error("LastFingerprint not recorded on the fingerprint cadence")
	}
	if w.LastFingerprint != w.Fingerprint() {
		t.Error("LastFingerprint stale after the cadence tick")
	}
}

func TestProductionQueueFlow(t *testing.T) {
	w := newTestWorld(t)
	p := w.Players[0]
	f := p.Forge

	f.PendingEnergy = 100
	if !f.Enqueue(ProductSwarm) {
		t.Fatal("Enqueue failed with sufficient energy")
	}
	if math.Abs(f.PendingEnergy-100) > 1e-9 {
		t.Errorf("pool drained at enqueue time: %v, want 100", f.PendingEnergy)
	}
	if math.Abs(f.Reserved()-20) > 1e-9 {
		t.Errorf("reserved after enqueue = %v, want 20", f.Reserved())
	}
	if math.Abs(f.Available()-80) > 1e-9 {
		t.Errorf("available after enqueue = %v, want 80", f.Available())
	}
	if len(f.Queue) != 1 {
		t.Fatalf("queue length = %d, want 1", len(f.Queue))
	}

	// At 20 energy/s drain the 20-energy order completes in about one
	// second of simulated time.
	dt := Dt(w.Cfg.TickRate)
	ticks := 0
	done := false
	for ; ticks < w.Cfg.TickRate*2; ticks++ {
		if _, ok := f.advanceProduction(dt); ok {
			done = true
			ticks++
			break
		}
	}
	if !done {
		t.Fatal("production never completed")
	}
	if ticks < w.Cfg.TickRate-1 || ticks > w.Cfg.TickRate+2 {
		t.Errorf("production took %d ticks, want about %d", ticks, w.Cfg.TickRate)
	}
	if len(f.Queue) != 0 {
		t.Errorf("queue not drained, %d orders left", len(f.Queue))
	}
	if math.Abs(f.PendingEnergy-80) > 1e-9 {
		t.Errorf("pool after completion = %v, want 80", f.PendingEnergy)
	}
}

func TestEnqueueRejectsUnaffordable(t *testing.T) {
	w := newTestWorld(t)
	f := w.Players[0].Forge
	f.PendingEnergy = 10
	if f.Enqueue(ProductLancer) {
		t.Error("Enqueue accepted an unaffordable order")
	}
	if len(f.Queue) != 0 {
		t.Errorf("rejected order still queued: %d", len(f.Queue))
	}
}

func TestEnqueueCountsReservedEnergy(t *testing.T) {
	w := newTestWorld(t)
	f := w.Players[0].Forge
	f.PendingEnergy = 30
	if !f.Enqueue(ProductSwarm) {
		t.Fatal("first order rejected with a full pool")
	}
	// 10 unreserved is not enough for a second 20-cost order.
	if f.Enqueue(ProductSwarm) {
		t.Error("Enqueue ignored the energy reserved by the queue")
	}
}

func TestQueueProductionCommandSpawnsUnit(t *testing.T) {
	w := newTestWorld(t)
	p := w.Players[0]
	p.Forge.PendingEnergy = 50

	w.EnqueueCommand(Command{
		Tick: 1, Player: 0, Kind: CmdQueueProduction,
		QueueProduction: &QueueProductionPayload{Product: "swarm"},
	})

	for i := 0; i < 40; i++ {
		w.Step()
	}
	if got := p.UnitCount(UnitSwarm); got != 1 {
		t.Errorf("swarm count after production = %d, want 1", got)
	}
}

func TestSpawnProductRespectsUnitCap(t *testing.T) {
	w := newTestWorld(t)
	w.Limits.MaxUnitsPerKind = 2
	p := w.Players[0]

	for i := 0; i < 3; i++ {
		w.spawnProduct(p, ProductSwarm)
	}
	if got := p.UnitCount(UnitSwarm); got != 2 {
		t.Errorf("swarm count = %d, want cap of 2", got)
	}
}

func TestPruneDeadCompactsAndDefeats(t *testing.T) {
	w := newTestWorld(t)
	p := w.Players[0]
	u1 := NewUnit(p.NextRef(), UnitSwarm, geom.Vec2{X: 600, Y: 300})
	u2 := NewUnit(p.NextRef(), UnitSwarm, geom.Vec2{X: 650, Y: 300})
	p.Units = append(p.Units, u1, u2)

	u1.Health = 0
	w.pruneDead()
	if len(p.Units) != 1 || p.Units[0] != u2 {
		t.Errorf("dead unit not compacted away")
	}
	if p.Defeated {
		t.Error("player defeated while forge alive")
	}

	p.Forge.Health = 0
	w.pruneDead()
	if !p.Defeated {
		t.Error("forge destruction did not defeat the owner")
	}
}

func TestCheckVictorySoleSurvivor(t *testing.T) {
	w := newTestWorld(t)
	w.Players[1].Forge.Health = 0
	w.Step()

	if !w.Over {
		t.Fatal("match not over with one team left")
	}
	if w.WinnerTeam != 0 {
		t.Errorf("winner team = %d, want 0", w.WinnerTeam)
	}
}

func TestCheckVictoryDraw(t *testing.T) {
	w := newTestWorld(t)
	w.Players[0].Forge.Health = 0
	w.Players[1].Forge.Health = 0
	w.Step()

	if !w.Over {
		t.Fatal("match not over after mutual destruction")
	}
	if w.WinnerTeam != -1 {
		t.Errorf("winner team = %d, want -1 for a draw", w.WinnerTeam)
	}
}

func TestCheckVictoryTeammateSurvives(t *testing.T) {
	cfg := testConfig()
	w := NewWorld(cfg, config.DefaultLimits(), VisionStandard, []PlayerSetup{
		{ID: "a1", Team: 0, ForgePos: geom.Vec2{X: 200, Y: 300}},
		{ID: "a2", Team: 0, ForgePos: geom.Vec2{X: 200, Y: 800}},
		{ID: "b1", Team: 1, ForgePos: geom.Vec2{X: 1700, Y: 540}},
	})

	// One team-0 player falls; the team still holds, no victory yet.
	w.Players[0].Forge.Health = 0
	w.Step()
	if w.Over {
		t.Fatal("match ended while both teams still have players")
	}

	w.Players[2].Forge.Health = 0
	w.Step()
	if !w.Over || w.WinnerTeam != 0 {
		t.Errorf("over=%v winner=%d, want team 0 victory", w.Over, w.WinnerTeam)
	}
}

func TestStepIsNoopAfterVictory(t *testing.T) {
	w := newTestWorld(t)
	w.Players[1].Forge.Health = 0
	w.Step()
	endTick := w.Tick

	w.Step()
	if w.Tick != endTick {
		t.Errorf("tick advanced after match end: %d -> %d", endTick, w.Tick)
	}
}

func TestDrainDeathEffects(t *testing.T) {
	w := newTestWorld(t)
	w.requestDeathEffect(geom.Vec2{X: 100, Y: 100}, "#fff", 6)
	w.requestDeathEffect(geom.Vec2{X: 200, Y: 200}, "#fff", 12)

	out := w.DrainDeathEffects()
	if len(out) != 2 {
		t.Fatalf("drained %d effects, want 2", len(out))
	}
	if again := w.DrainDeathEffects(); again != nil {
		t.Errorf("second drain = %v, want nil", again)
	}
}

func TestFillSnapshot(t *testing.T) {
	w := newTestWorld(t)
	p := w.Players[0]
	p.Units = append(p.Units, NewUnit(p.NextRef(), UnitSwarm, geom.Vec2{X: 600, Y: 300}))
	w.Step()

	pool := NewSnapshotPool(w.Limits)
	snap := pool.AcquireWrite()
	w.FillSnapshot(snap)
	pool.PublishWrite()

	got := pool.AcquireRead()
	if got.Tick != w.Tick {
		t.Errorf("snapshot tick = %d, want %d", got.Tick, w.Tick)
	}
	if len(got.Players) != 2 || len(got.Forges) != 2 || len(got.Mirrors) != 2 {
		t.Errorf("snapshot counts: players=%d forges=%d mirrors=%d",
			len(got.Players), len(got.Forges), len(got.Mirrors))
	}
	if len(got.Units) != 1 {
		t.Errorf("snapshot units = %d, want 1", len(got.Units))
	}
	if len(got.Asteroids) != len(w.Asteroids) {
		t.Errorf("snapshot asteroids = %d, want %d", len(got.Asteroids), len(w.Asteroids))
	}
}

func TestRunnerStampsUnscheduledCommands(t *testing.T) {
	w := newTestWorld(t)
	r := NewRunner(w, w.Limits)

	r.EnqueueCommand(Command{Player: 0, Kind: CmdSetStrategy,
		SetStrategy: &SetStrategyPayload{Strategy: "defensive"}})

	if len(w.pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(w.pending))
	}
	if w.pending[0].Tick != w.Tick+1 {
		t.Errorf("stamped tick = %d, want %d", w.pending[0].Tick, w.Tick+1)
	}
}
