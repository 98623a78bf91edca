package sim

import (
	"encoding/json"
	"time"
)

// EventType classifies match journal entries.
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeMatchStart
	EventTypeCommand
	EventTypeDamage
	EventTypeDestroyed
	EventTypeFingerprint
	EventTypeVictory
)

// EventVersion guards replay compatibility across journal format changes.
const EventVersion uint8 = 1

// Event is one journal entry. Commands and fingerprints together are
// sufficient to re-simulate and verify a match; damage and destruction
// entries are telemetry on top.
type Event struct {
	Version   uint8     `json:"version"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"` // Unix nano, wall clock, not replayed
	Sequence  uint64    `json:"sequence"`
	Tick      int64     `json:"tick"`
	Player    int       `json:"player"`
	Payload   []byte    `json:"payload"`
}

// String returns the human-readable event type.
func (t EventType) String() string {
	switch t {
	case EventTypeMatchStart:
		return "match_start"
	case EventTypeCommand:
		return "command"
	case EventTypeDamage:
		return "damage"
	case EventTypeDestroyed:
		return "destroyed"
	case EventTypeFingerprint:
		return "fingerprint"
	case EventTypeVictory:
		return "victory"
	default:
		return "unknown"
	}
}

// MatchStartPayload records everything a replay needs to reconstruct the
// initial world.
type MatchStartPayload struct {
	Seed        int64         `json:"seed"`
	TickRate    int           `json:"tickRate"`
	WorldWidth  float64       `json:"worldWidth"`
	WorldHeight float64       `json:"worldHeight"`
	Mode        uint8         `json:"mode"`
	Setups      []PlayerSetup `json:"setups"`
}

// CommandPayload wraps the full wire command for replay.
type CommandPayload struct {
	Command Command `json:"command"`
}

// DamagePayload records one damage application.
type DamagePayload struct {
	Target EntityRef `json:"target"`
	Kind   string    `json:"kind"`
	Amount float64   `json:"amount"`
}

// DestroyedPayload records an entity death.
type DestroyedPayload struct {
	Target EntityRef `json:"target"`
	Kind   string    `json:"kind"`
}

// FingerprintPayload carries the periodic state hash for desync checks.
type FingerprintPayload struct {
	Hash uint32 `json:"hash"`
}

// VictoryPayload records the match outcome.
type VictoryPayload struct {
	WinnerTeam int `json:"winnerTeam"`
}

// EncodePayload marshals a payload to JSON bytes.
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates an event stamped with the current wall clock.
func NewEvent(eventType EventType, tick int64, player int, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		Tick:      tick,
		Player:    player,
		Payload:   EncodePayload(payload),
	}
}
