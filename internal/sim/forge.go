package sim

import "stellarforge/internal/sim/geom"

// ProductKind enumerates what a forge production queue can build.
type ProductKind uint8

const (
	ProductSwarm ProductKind = iota
	ProductVanguard
	ProductPhantom
	ProductWarden
	ProductLancer
	ProductMirror
)

// productCosts is the total energy each product consumes before spawning.
var productCosts = map[ProductKind]float64{
	ProductSwarm:    20,
	ProductVanguard: 80,
	ProductPhantom:  90,
	ProductWarden:   100,
	ProductLancer:   110,
	ProductMirror:   60,
}

// ParseProduct maps a wire string to a ProductKind.
func ParseProduct(s string) (ProductKind, bool) {
	switch s {
	case "swarm":
		return ProductSwarm, true
	case "vanguard":
		return ProductVanguard, true
	case "phantom":
		return ProductPhantom, true
	case "warden":
		return ProductWarden, true
	case "lancer":
		return ProductLancer, true
	case "mirror":
		return ProductMirror, true
	default:
		return ProductSwarm, false
	}
}

// String returns the wire name of the product.
func (k ProductKind) String() string {
	switch k {
	case ProductSwarm:
		return "swarm"
	case ProductVanguard:
		return "vanguard"
	case ProductPhantom:
		return "phantom"
	case ProductWarden:
		return "warden"
	case ProductLancer:
		return "lancer"
	case ProductMirror:
		return "mirror"
	default:
		return "unknown"
	}
}

// ProductionOrder is one queued build. Remaining counts down as pending
// energy drains into it.
type ProductionOrder struct {
	Kind      ProductKind
	Remaining float64
}

// Forge is a player's base structure and the player's whole economy: lit
// mirrors linked to it deliver energy into PendingEnergy, and every spend
// (production, buildings, upgrades) draws back out of that pool. Queued
// orders reserve their remaining cost, so PendingEnergy never drops below
// what the queue still owes. A defeated player's forge stays in the world
// (team accounting) but stops producing.
type Forge struct {
	Ref       EntityRef
	Pos       geom.Vec2
	Health    float64
	MaxHealth float64
	Radius    float64

	PendingEnergy float64
	Queue         []ProductionOrder

	// Lit is recomputed each tick from mirrors currently feeding the
	// forge. It gates building completion inside the influence radius.
	Lit bool
}

// Reserved returns the energy the production queue still owes.
func (f *Forge) Reserved() float64 {
	var r float64
	for _, o := range f.Queue {
		r += o.Remaining
	}
	return r
}

// Available returns the energy not spoken for by queued orders. All
// affordability checks run against this margin.
func (f *Forge) Available() float64 {
	return f.PendingEnergy - f.Reserved()
}

// NewForge creates a forge at pos.
func NewForge(ref EntityRef, pos geom.Vec2) *Forge {
	return &Forge{
		Ref:       ref,
		Pos:       pos,
		Health:    ForgeMaxHealth,
		MaxHealth: ForgeMaxHealth,
		Radius:    ForgeRadius,
	}
}

// Enqueue appends a production order if the unreserved pool covers it.
// The order reserves its cost; the queue pays as it drains. Insufficient
// energy is a silent no-op, not an error: one peer's bad purchase must
// resolve identically everywhere.
func (f *Forge) Enqueue(kind ProductKind) bool {
	cost, ok := productCosts[kind]
	if !ok {
		return false
	}
	if f.Available() < cost {
		return false
	}
	f.Queue = append(f.Queue, ProductionOrder{Kind: kind, Remaining: cost})
	return true
}

// advanceProduction drains pending energy into the queue head and returns
// the completed product, if any, for the world to spawn.
func (f *Forge) advanceProduction(dt float64) (ProductKind, bool) {
	if f.Health <= 0 || len(f.Queue) == 0 {
		return 0, false
	}
	head := &f.Queue[0]
	drain := ProductionDrainRate * dt
	if drain > f.PendingEnergy {
		drain = f.PendingEnergy
	}
	if drain > head.Remaining {
		drain = head.Remaining
	}
	if drain <= 0 {
		return 0, false
	}
	f.PendingEnergy -= drain
	head.Remaining -= drain
	if head.Remaining > 0 {
		return 0, false
	}
	kind := head.Kind
	f.Queue = f.Queue[1:]
	return kind, true
}
