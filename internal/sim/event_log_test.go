package sim

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestEventLogWritesJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match.jsonl")

	el := NewEventLog()
	if err := el.Start(path); err != nil {
		t.Fatalf("Start: %v", err)
	}

	const n = 5
	for i := 0; i < n; i++ {
		if !el.EmitReliable(NewEvent(EventTypeFingerprint, int64(i*30), -1, FingerprintPayload{Hash: uint32(i)})) {
			t.Fatalf("EmitReliable %d rejected", i)
		}
	}
	el.Stop()

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("bad journal line: %v", err)
		}
		events = append(events, ev)
	}
	if len(events) != n {
		t.Fatalf("journal has %d events, want %d", len(events), n)
	}
	for i, ev := range events {
		if ev.Type != EventTypeFingerprint {
			t.Errorf("event %d type = %v", i, ev.Type)
		}
		if ev.Version != EventVersion {
			t.Errorf("event %d version = %d, want %d", i, ev.Version, EventVersion)
		}
		var p FingerprintPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			t.Fatalf("event %d payload: %v", i, err)
		}
		if p.Hash != uint32(i) {
			t.Errorf("event %d hash = %d, want %d", i, p.Hash, i)
		}
	}
}

func TestEventLogRejectsWhenStopped(t *testing.T) {
	el := NewEventLog()
	if el.Emit(NewEvent(EventTypeDamage, 1, 0, nil)) {
		t.Error("Emit accepted before Start")
	}
	if el.EmitReliable(NewEvent(EventTypeCommand, 1, 0, nil)) {
		t.Error("EmitReliable accepted before Start")
	}
}

func TestEventLogCounters(t *testing.T) {
	el := NewEventLog()
	if err := el.Start(""); err != nil { // no disk output
		t.Fatalf("Start: %v", err)
	}
	defer el.Stop()

	for i := 0; i < 3; i++ {
		el.EmitReliable(NewEvent(EventTypeCommand, int64(i), 0, nil))
	}
	if got := el.GetTotalCount(); got != 3 {
		t.Errorf("total = %d, want 3", got)
	}
	stats := el.GetStats()
	if stats["running"] != true {
		t.Errorf("stats running = %v", stats["running"])
	}
}

func TestJournalRecordsReplayCriticalEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match.jsonl")
	el := NewEventLog()
	if err := el.Start(path); err != nil {
		t.Fatalf("Start: %v", err)
	}

	w := newTestWorld(t)
	w.SetJournal(el)
	w.EnqueueCommand(Command{Tick: 1, Player: 0, Kind: CmdSetStrategy,
		SetStrategy: &SetStrategyPayload{Strategy: "defensive"}})
	for i := int64(0); i < w.Cfg.FingerprintEvery; i++ {
		w.Step()
	}
	el.Stop()

	counts := map[EventType]int{}
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("bad journal line: %v", err)
		}
		counts[ev.Type]++
	}

	if counts[EventTypeMatchStart] != 1 {
		t.Errorf("match start entries = %d, want 1", counts[EventTypeMatchStart])
	}
	if counts[EventTypeCommand] != 1 {
		t.Errorf("command entries = %d, want 1", counts[EventTypeCommand])
	}
	if counts[EventTypeFingerprint] != 1 {
		t.Errorf("fingerprint entries = %d, want 1", counts[EventTypeFingerprint])
	}
}
