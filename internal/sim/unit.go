package sim

import "stellarforge/internal/sim/geom"

// UnitKind is the tagged-union discriminator for unit variants. Combat
// and physics match on the tag instead of type-switching concrete
// structs, so hit priority and ability special-casing stay exhaustive.
type UnitKind uint8

const (
	UnitSwarm UnitKind = iota // Generic production unit
	UnitVanguard              // Hero: charging dash with knockback
	UnitPhantom               // Hero: cloaked while unrevealed
	UnitWarden                // Hero: personal projectile shield
	UnitLancer                // Hero: distance-scaled beam
)

// String returns the unit kind name.
func (k UnitKind) String() string {
	switch k {
	case UnitSwarm:
		return "swarm"
	case UnitVanguard:
		return "vanguard"
	case UnitPhantom:
		return "phantom"
	case UnitWarden:
		return "warden"
	case UnitLancer:
		return "lancer"
	default:
		return "unknown"
	}
}

// unitStats carries the per-kind balance values.
type unitStats struct {
	MaxHealth       float64
	Radius          float64
	Speed           float64
	AttackRange     float64
	AttackDamage    float64
	AttackCooldown  int // ticks
	AbilityCooldown int // ticks, 0 for no ability
	DeathParticles  int // hero deaths burst more
}

var unitStatsTable = map[UnitKind]unitStats{
	UnitSwarm:    {MaxHealth: 30, Radius: 10, Speed: UnitMoveSpeed, AttackRange: UnitAttackRange, AttackDamage: UnitAttackDamage, AttackCooldown: UnitAttackCooldown, DeathParticles: 6},
	UnitVanguard: {MaxHealth: 140, Radius: 16, Speed: UnitMoveSpeed * 1.1, AttackRange: 120, AttackDamage: 14, AttackCooldown: 20, AbilityCooldown: 180, DeathParticles: 24},
	UnitPhantom:  {MaxHealth: 90, Radius: 13, Speed: UnitMoveSpeed * 1.2, AttackRange: 220, AttackDamage: 10, AttackCooldown: 26, AbilityCooldown: 0, DeathParticles: 24},
	UnitWarden:   {MaxHealth: 160, Radius: 17, Speed: UnitMoveSpeed * 0.9, AttackRange: 150, AttackDamage: 9, AttackCooldown: 22, AbilityCooldown: 240, DeathParticles: 24},
	UnitLancer:   {MaxHealth: 100, Radius: 14, Speed: UnitMoveSpeed, AttackRange: 380, AttackDamage: 26, AttackCooldown: 60, AbilityCooldown: 0, DeathParticles: 24},
}

// Vanguard dash tuning.
const (
	dashSpeed     = 420.0
	dashTicks     = 10
	dashDamage    = 18.0
	dashKnockback = 160.0
	dashHitRadius = 28.0
)

// Warden shield tuning.
const (
	wardenShieldMax   = 120.0
	wardenShieldRegen = 6.0 // per second, only while ability off cooldown
)

// Unit is a mobile combat entity. Concrete variants share this struct;
// fields past the ability block are only meaningful for some kinds.
type Unit struct {
	Ref  EntityRef
	Kind UnitKind

	Pos    geom.Vec2
	Vel    geom.Vec2 // External impulses (knockback); decays in physics
	Facing float64

	Health    float64
	MaxHealth float64
	Radius    float64

	// Orders
	Rally      geom.Vec2
	HasRally   bool
	LockTarget EntityRef // Structure-lock: attack this until it dies

	// Combat timers (ticks)
	AttackCooldown  int
	AbilityCooldown int

	// Vanguard dash state
	Dashing   bool
	DashTicks int
	DashDir   geom.Vec2

	// Warden shield pool
	ShieldHealth float64

	prevPos geom.Vec2 // For obstacle revert and fluid forces
}

// NewUnit creates a unit of the given kind at pos.
func NewUnit(ref EntityRef, kind UnitKind, pos geom.Vec2) *Unit {
	st := unitStatsTable[kind]
	u := &Unit{
		Ref:       ref,
		Kind:      kind,
		Pos:       pos,
		Health:    st.MaxHealth,
		MaxHealth: st.MaxHealth,
		Radius:    st.Radius,
		LockTarget: NoEntity,
		prevPos:   pos,
	}
	if kind == UnitWarden {
		u.ShieldHealth = wardenShieldMax
	}
	return u
}

// IsHero reports whether this unit gets push priority in separation and
// a bigger death burst.
func (u *Unit) IsHero() bool { return u.Kind != UnitSwarm }

// Cloaked reports whether the unit hides from non-owners. Only the
// spotlight reveal path pierces a cloak.
func (u *Unit) Cloaked() bool { return u.Kind == UnitPhantom }

// Stats returns the balance row for the unit's kind.
func (u *Unit) Stats() unitStats { return unitStatsTable[u.Kind] }

// StartDash begins a vanguard charge toward target. No-op for other
// kinds or while the ability cools down.
func (u *Unit) StartDash(target geom.Vec2) bool {
	if u.Kind != UnitVanguard || u.AbilityCooldown > 0 || u.Dashing {
		return false
	}
	dir := target.Sub(u.Pos).Normalize()
	if dir == (geom.Vec2{}) {
		return false
	}
	u.Dashing = true
	u.DashTicks = dashTicks
	u.DashDir = dir
	u.AbilityCooldown = u.Stats().AbilityCooldown
	return true
}
