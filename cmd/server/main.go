package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"stellarforge/internal/api"
	"stellarforge/internal/config"
	"stellarforge/internal/sim"
	"stellarforge/internal/sim/geom"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("main: no .env file found, using environment variables only")
	}

	appConfig := config.Load()
	simCfg := appConfig.Sim
	limits := appConfig.Limits
	serverCfg := appConfig.Server

	log.Printf("main: %d TPS, %vx%v world, seed %d, fingerprint every %d ticks",
		simCfg.TickRate, simCfg.WorldWidth, simCfg.WorldHeight, simCfg.Seed, simCfg.FingerprintEvery)

	world := sim.NewWorld(simCfg, limits, sim.VisionStandard, defaultSetups(simCfg))

	journal := sim.NewEventLog()
	if err := journal.Start(serverCfg.EventLogPath); err != nil {
		log.Fatalf("main: cannot open match journal: %v", err)
	}
	world.SetJournal(journal)

	runner := sim.NewRunner(world, limits)
	runner.OnTick = func(w *sim.World, elapsed time.Duration) {
		api.RecordTick(elapsed)
		units := 0
		for _, p := range w.Players {
			units += len(p.Units)
		}
		api.UpdateEntityCounts(units, len(w.Projectiles), len(w.Particles))
		api.UpdateFingerprint(w.LastFingerprint)
	}
	runner.Start()

	api.StartDebugServer(api.DefaultObservabilityConfig())

	server := api.NewServer(runner, journal)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigChan
		log.Printf("main: received %v, shutting down", s)
		runner.Stop()
		journal.Stop()
		server.Stop()
		os.Exit(0)
	}()

	addr := ":" + strconv.Itoa(serverCfg.Port)
	if err := server.Start(addr); err != nil {
		log.Fatalf("main: server error: %v", err)
	}
}

// defaultSetups builds a 1v1 match: a human slot against an AI opponent.
// Forges sit in opposite corners with room for the starting mirror.
func defaultSetups(cfg config.SimConfig) []sim.PlayerSetup {
	margin := 160.0
	return []sim.PlayerSetup{
		{
			ID:       "player",
			Team:     0,
			Color:    "#4da6ff",
			ForgePos: geom.Vec2{X: margin, Y: cfg.WorldHeight / 2},
		},
		{
			ID:           "opponent",
			Team:         1,
			Color:        "#ff6b4d",
			AIControlled: true,
			Strategy:     sim.StrategyWaves,
			ForgePos:     geom.Vec2{X: cfg.WorldWidth - margin, Y: cfg.WorldHeight / 2},
		},
	}
}
