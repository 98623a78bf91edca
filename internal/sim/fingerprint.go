package sim

import "math"

// FNV-1a 32-bit parameters.
const (
	fnvOffset32 uint32 = 2166136261
	fnvPrime32  uint32 = 16777619
)

// fingerprintHash folds gameplay state into an FNV-1a 32-bit hash.
// Field order is fixed and floats are truncated, never rounded, to four
// fractional digits so sub-epsilon drift between peers does not produce
// false desync alarms. Cosmetic state (particles, colors, indicators,
// death effects) is excluded on purpose.
type fingerprintHash struct {
	h uint32
}

func newFingerprintHash() fingerprintHash {
	return fingerprintHash{h: fnvOffset32}
}

func (f *fingerprintHash) byte(b byte) {
	f.h ^= uint32(b)
	f.h *= fnvPrime32
}

func (f *fingerprintHash) uint64(v uint64) {
	for i := 0; i < 8; i++ {
		f.byte(byte(v >> (8 * i)))
	}
}

func (f *fingerprintHash) int64(v int64)  { f.uint64(uint64(v)) }
func (f *fingerprintHash) uint32v(v uint32) { f.uint64(uint64(v)) }
func (f *fingerprintHash) boolv(v bool) {
	if v {
		f.byte(1)
	} else {
		f.byte(0)
	}
}

// float mixes a float64 truncated to four fractional digits.
func (f *fingerprintHash) float(v float64) {
	f.int64(int64(math.Trunc(v * 10000)))
}

func (f *fingerprintHash) ref(r EntityRef) {
	f.int64(int64(r.Owner))
	f.uint32v(r.Seq)
}

// Fingerprint computes the deterministic state hash for the current tick.
// Two peers running identical command streams from an identical seed must
// produce identical values here every tick; a mismatch is a desync.
func (w *World) Fingerprint() uint32 {
	f := newFingerprintHash()
	f.int64(w.Tick)

	for _, p := range w.Players {
		f.int64(int64(p.Index))
		f.int64(int64(p.Team))
		f.boolv(p.Defeated)
		f.float(p.DamageBonus)
		f.uint32v(p.nextSeq)

		if fo := p.Forge; fo != nil {
			f.ref(fo.Ref)
			f.float(fo.Pos.X)
			f.float(fo.Pos.Y)
			f.float(fo.Health)
			f.float(fo.PendingEnergy)
			f.boolv(fo.Lit)
			f.int64(int64(len(fo.Queue)))
			for _, o := range fo.Queue {
				f.byte(byte(o.Kind))
				f.float(o.Remaining)
			}
		}

		f.int64(int64(len(p.Mirrors)))
		for _, m := range p.Mirrors {
			f.ref(m.Ref)
			f.float(m.Pos.X)
			f.float(m.Pos.Y)
			f.float(m.Health)
			f.boolv(m.HasTarget)
			f.float(m.Target.X)
			f.float(m.Target.Y)
			f.ref(m.Link)
			f.boolv(m.Lit)
		}

		f.int64(int64(len(p.Units)))
		for _, u := range p.Units {
			f.ref(u.Ref)
			f.byte(byte(u.Kind))
			f.float(u.Pos.X)
			f.float(u.Pos.Y)
			f.float(u.Vel.X)
			f.float(u.Vel.Y)
			f.float(u.Facing)
			f.float(u.Health)
			f.boolv(u.HasRally)
			f.float(u.Rally.X)
			f.float(u.Rally.Y)
			f.ref(u.LockTarget)
			f.int64(int64(u.AttackCooldown))
			f.int64(int64(u.AbilityCooldown))
			f.boolv(u.Dashing)
			f.int64(int64(u.DashTicks))
			f.float(u.ShieldHealth)
		}

		f.int64(int64(len(p.Buildings)))
		for _, b := range p.Buildings {
			f.ref(b.Ref)
			f.byte(byte(b.Kind))
			f.float(b.Pos.X)
			f.float(b.Pos.Y)
			f.float(b.Health)
			f.float(b.Progress)
			f.float(b.Facing)
			f.int64(int64(b.FireCooldown))
			f.float(b.ShieldCharge)
			f.float(b.UpgradeSpent)
			f.boolv(b.UpgradeQueued)
		}
	}

	f.int64(int64(len(w.Projectiles)))
	for _, proj := range w.Projectiles {
		f.ref(proj.Ref)
		f.byte(byte(proj.Kind))
		f.float(proj.Pos.X)
		f.float(proj.Pos.Y)
		f.float(proj.Vel.X)
		f.float(proj.Vel.Y)
		f.float(proj.Damage)
		f.ref(proj.Target)
		f.int64(int64(proj.LifeTicks))
		f.boolv(proj.Dead)
	}

	for _, s := range w.Suns {
		f.float(s.Pos.X)
		f.float(s.Pos.Y)
		f.float(s.OrbitAngle)
	}
	for _, a := range w.Asteroids {
		f.float(a.Pos.X)
		f.float(a.Pos.Y)
		f.float(a.Rotation)
	}

	return f.h
}
