// Command replay re-simulates a match journal and verifies that the
// recorded fingerprints match the re-simulation. A clean run proves the
// journal and the current build are lockstep-compatible; a mismatch
// pinpoints the first divergent tick.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"stellarforge/internal/config"
	"stellarforge/internal/sim"
)

type checkpoint struct {
	tick int64
	hash uint32
}

// journalData is a parsed match journal, reduced to what a replay needs.
// Commands carry the tick they originally applied on.
type journalData struct {
	start       *sim.MatchStartPayload
	commands    []sim.Command
	checkpoints []checkpoint
}

func main() {
	journalPath := flag.String("journal", "match.jsonl", "path to the match journal")
	verbose := flag.Bool("v", false, "print every verified fingerprint")
	flag.Parse()

	file, err := os.Open(*journalPath)
	if err != nil {
		log.Fatalf("replay: cannot open journal: %v", err)
	}
	defer file.Close()

	data, err := loadJournal(file)
	if err != nil {
		log.Fatalf("replay: %v", err)
	}

	cfg := config.DefaultSim()
	cfg.Seed = data.start.Seed
	cfg.TickRate = data.start.TickRate
	cfg.WorldWidth = data.start.WorldWidth
	cfg.WorldHeight = data.start.WorldHeight

	world := sim.NewWorld(cfg, config.DefaultLimits(), sim.VisionMode(data.start.Mode), data.start.Setups)

	var report func(tick int64, hash uint32)
	if *verbose {
		report = func(tick int64, hash uint32) {
			fmt.Printf("tick %d ok (%08x)\n", tick, hash)
		}
	}
	verified, err := verifyReplay(world, data, report)
	if err != nil {
		log.Fatalf("replay: %v", err)
	}

	fmt.Printf("replay: verified %d fingerprints over %d ticks, no desync\n",
		verified, data.checkpoints[len(data.checkpoints)-1].tick)
}

// loadJournal parses a JSONL match journal. Each command is rescheduled
// to the tick the journal recorded it applying on, which may be later
// than the tick it asked for; that replays late arrivals exactly.
func loadJournal(r io.Reader) (*journalData, error) {
	var data journalData

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		var ev sim.Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			return nil, fmt.Errorf("bad journal line %d: %v", line, err)
		}
		switch ev.Type {
		case sim.EventTypeMatchStart:
			var p sim.MatchStartPayload
			if err := json.Unmarshal(ev.Payload, &p); err != nil {
				return nil, fmt.Errorf("bad match start payload: %v", err)
			}
			data.start = &p
		case sim.EventTypeCommand:
			var p sim.CommandPayload
			if err := json.Unmarshal(ev.Payload, &p); err != nil {
				return nil, fmt.Errorf("bad command payload at line %d: %v", line, err)
			}
			p.Command.Tick = ev.Tick
			data.commands = append(data.commands, p.Command)
		case sim.EventTypeFingerprint:
			var p sim.FingerprintPayload
			if err := json.Unmarshal(ev.Payload, &p); err != nil {
				return nil, fmt.Errorf("bad fingerprint payload at line %d: %v", line, err)
			}
			data.checkpoints = append(data.checkpoints, checkpoint{tick: ev.Tick, hash: p.Hash})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read error: %v", err)
	}
	if data.start == nil {
		return nil, fmt.Errorf("journal has no match start entry")
	}
	if len(data.checkpoints) == 0 {
		return nil, fmt.Errorf("journal has no fingerprints to verify")
	}
	return &data, nil
}

// verifyReplay steps the world through the journal, checking every
// fingerprint checkpoint. Commands are fed just before their tick comes
// up: a long match journals far more commands than the pending buffer
// holds, so enqueueing everything up front would drop the overflow.
// Returns the number of checkpoints verified.
func verifyReplay(world *sim.World, data *journalData, report func(tick int64, hash uint32)) (int, error) {
	lastTick := data.checkpoints[len(data.checkpoints)-1].tick
	next := 0
	fed := 0
	for world.Tick < lastTick {
		for fed < len(data.commands) && data.commands[fed].Tick <= world.Tick+1 {
			world.EnqueueCommand(data.commands[fed])
			fed++
		}
		world.Step()
		for next < len(data.checkpoints) && data.checkpoints[next].tick == world.Tick {
			got := world.LastFingerprint
			want := data.checkpoints[next].hash
			if got != want {
				return next, fmt.Errorf("DESYNC at tick %d: journal %08x, replay %08x", world.Tick, want, got)
			}
			if report != nil {
				report(world.Tick, got)
			}
			next++
		}
		if world.Over && world.Tick < lastTick {
			return next, fmt.Errorf("match ended at tick %d but journal has fingerprints up to tick %d", world.Tick, lastTick)
		}
	}
	return next, nil
}
