package sim

import "math"

// Balance constants. These are lockstep-authoritative: every peer compiles
// the same values, and any change is a protocol break between versions.
const (
	// Energy economy
	MirrorEnergyRate      = 10.0  // Energy per second at full proximity
	MirrorEnergyMinFactor = 0.25  // Rate floor at far range
	MirrorEnergyNearDist  = 300.0 // Full rate at or under this sun distance
	MirrorEnergyFarDist   = 1200.0
	MirrorRegenRate       = 4.0 // Health per second inside own influence
	BuildProgressPerEnergy = 0.01

	// Mirror defense: flat fractional reduction applied to every hit,
	// with a one-point floor so chip damage still lands.
	MirrorDamageReduction = 0.5
	MinMirrorDamage       = 1.0

	// Structures
	ForgeRadius          = 56.0
	ForgeMaxHealth       = 600.0
	MirrorRadius         = 22.0
	MirrorMaxHealth      = 120.0
	MirrorMoveSpeed      = 90.0
	InfluenceRadius      = 340.0
	StandoffBuffer       = 6.0
	ProductionDrainRate  = 20.0 // Energy per second fed into the queue head

	// Units
	UnitMoveSpeed      = 120.0
	UnitAttackRange    = 180.0
	UnitAttackDamage   = 8.0
	UnitAttackCooldown = 24 // ticks
	UnitArriveDist     = 10.0

	// Physics
	MaxPushPerTick      = 14.0
	ParticleCellSize    = 48.0
	ParticleRepelRadius = 40.0
	ParticleRepelForce  = 60.0
	ParticleDamping     = 0.92
	FluidForceRadius    = 90.0
	FluidForwardBlend   = 0.6
	FluidTintRate       = 0.08

	// Vision
	UnitRevealRadius   = 220.0 // Shadowed enemies within this range of a friendly unit are revealed
	SpotlightRange     = 420.0
	SpotlightHalfAngle = math.Pi / 6

	// Combat
	SplashMinFalloff   = 0.3 // Fraction of full damage at the splash edge
	BeamMinScale       = 0.4 // Fraction of full beam damage at max range
	OrbLinkRange       = 360.0
	OrbFieldDamage     = 20.0 // Per second to enemy units crossing the field
	ShieldDomeRadius   = 160.0
	WardenShieldRadius = 70.0
	AbsorberRadius     = 130.0
	AbsorbEnergyFactor = 0.5 // Fraction of absorbed damage returned as energy

	// AI scheduling (intervals in ticks at 30 TPS). Posture and build
	// cadence depend on the strategy: army players re-read the field
	// faster, economy players expand faster.
	AIMirrorInterval        = 150
	AIPostureInterval       = 60
	AIPostureIntervalFast   = 30
	AIHeroInterval          = 300
	AIBuildInterval         = 450
	AIBuildIntervalEconomic = 300
	AIGuardRadius           = 520.0
	AIWaveSize              = 8
	AIBuildRingRadius       = 180.0
	AIBuildRingSteps        = 8
)

// Dt returns the fixed timestep for a tick rate.
func Dt(tickRate int) float64 {
	if tickRate <= 0 {
		return 1.0 / 30.0
	}
	return 1.0 / float64(tickRate)
}
