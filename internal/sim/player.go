package sim

import "stellarforge/internal/sim/geom"

// Strategy selects the AI branch taken when no threat is active.
type Strategy uint8

const (
	StrategyEconomic Strategy = iota
	StrategyDefensive
	StrategyAggressive
	StrategyWaves
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyEconomic:
		return "economic"
	case StrategyDefensive:
		return "defensive"
	case StrategyAggressive:
		return "aggressive"
	case StrategyWaves:
		return "waves"
	default:
		return "unknown"
	}
}

// ParseStrategy maps a wire string to a Strategy. Unknown strings fall
// back to economic; command validation upstream logs the drop.
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "economic":
		return StrategyEconomic, true
	case "defensive":
		return StrategyDefensive, true
	case "aggressive":
		return StrategyAggressive, true
	case "waves":
		return StrategyWaves, true
	default:
		return StrategyEconomic, false
	}
}

// aiSchedule holds the next-eligible tick per AI behavior category.
// Each behavior re-evaluates when the clock passes its timestamp and
// reschedules itself a fixed interval later.
type aiSchedule struct {
	mirrorAt  int64
	postureAt int64
	heroAt    int64
	buildAt   int64
	guardIdx  int // round-robin cursor over guard points
}

// Player owns its units, mirrors, buildings and forge exclusively.
// Players are created at match setup and never removed; defeat is a flag
// so team accounting keeps working after elimination.
type Player struct {
	Index int    // Position in World.Players, part of every EntityRef
	ID    string // Match-roster identity string
	Team  int
	Color string // Cosmetic, excluded from the fingerprint

	Defeated bool

	AIControlled bool
	Strategy     Strategy

	Forge     *Forge
	Mirrors   []*Mirror
	Units     []*Unit
	Buildings []*Building

	// Upgrade state accumulated from completed factory work.
	DamageBonus float64

	nextSeq uint32
	ai      aiSchedule
}

// EnergyBalance returns the player's spendable energy: the forge's pool
// minus what the production queue has reserved. Zero without a forge.
func (p *Player) EnergyBalance() float64 {
	if p.Forge == nil {
		return 0
	}
	return p.Forge.Available()
}

// NextRef mints the next entity handle for this player. Sequence numbers
// advance identically on every peer because spawns are simulation events.
func (p *Player) NextRef() EntityRef {
	p.nextSeq++
	return EntityRef{Owner: p.Index, Seq: p.nextSeq}
}

// UnitBySeq returns the live unit with the given spawn sequence, or nil.
func (p *Player) UnitBySeq(seq uint32) *Unit {
	for _, u := range p.Units {
		if u.Ref.Seq == seq {
			return u
		}
	}
	return nil
}

// MirrorBySeq returns the live mirror with the given spawn sequence, or nil.
func (p *Player) MirrorBySeq(seq uint32) *Mirror {
	for _, m := range p.Mirrors {
		if m.Ref.Seq == seq {
			return m
		}
	}
	return nil
}

// BuildingBySeq returns the live building with the given spawn sequence,
// or nil.
func (p *Player) BuildingBySeq(seq uint32) *Building {
	for _, b := range p.Buildings {
		if b.Ref.Seq == seq {
			return b
		}
	}
	return nil
}

// UnitCount returns the number of live units of one kind.
func (p *Player) UnitCount(kind UnitKind) int {
	n := 0
	for _, u := range p.Units {
		if u.Kind == kind {
			n++
		}
	}
	return n
}

// InfluenceActive reports whether pos lies inside any of the player's
// active influence sources (forge, completed beacons). Influence stops
// when the source is destroyed or the player is defeated.
func (p *Player) InfluenceActive(pos geom.Vec2) bool {
	if p.Defeated {
		return false
	}
	if p.Forge != nil && p.Forge.Health > 0 && pos.Dist(p.Forge.Pos) <= InfluenceRadius {
		return true
	}
	for _, b := range p.Buildings {
		if b.Kind == BuildingBeacon && b.Health > 0 && b.Complete() && pos.Dist(b.Pos) <= InfluenceRadius {
			return true
		}
	}
	return false
}
