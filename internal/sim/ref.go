package sim

import "fmt"

// EntityRef addresses an entity deterministically across peers.
//
// Peers never share memory, so pointer identity cannot cross the wire.
// Every entity is instead keyed by its owner's player index plus a
// per-player spawn sequence number; both sides derive the same key from
// the same replicated state. A stale ref (entity already removed) simply
// fails lookup, which callers treat as "unlinked".
type EntityRef struct {
	Owner int    `json:"owner"`
	Seq   uint32 `json:"seq"`
}

// NoEntity is the zero-value "no link" ref.
var NoEntity = EntityRef{Owner: -1}

// IsZero reports whether the ref points at nothing.
func (r EntityRef) IsZero() bool { return r.Owner < 0 }

// Key returns the stable identity string used to coalesce damage
// indicators for one target.
func (r EntityRef) Key() string {
	return fmt.Sprintf("%d:%d", r.Owner, r.Seq)
}

// TargetKind classifies what a combat hit landed on. The order of the
// constants is the hit-priority order: units first, base last.
type TargetKind uint8

const (
	TargetUnit TargetKind = iota
	TargetMirror
	TargetBuilding
	TargetForge
)

// String returns a human-readable target kind.
func (k TargetKind) String() string {
	switch k {
	case TargetUnit:
		return "unit"
	case TargetMirror:
		return "mirror"
	case TargetBuilding:
		return "building"
	case TargetForge:
		return "forge"
	default:
		return "unknown"
	}
}
