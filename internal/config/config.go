// Package config provides centralized configuration management.
// This is the single source of truth for simulation, limit and server
// settings.
//
// Simulation values MUST be identical on every peer of a match: they feed
// the deterministic lockstep core, so a config mismatch shows up as a
// fingerprint divergence. Only override them via environment when every
// peer is started with the same overrides.
package config

import (
	"os"
	"strconv"
)

// SimConfig holds the fixed-timestep simulation parameters.
type SimConfig struct {
	TickRate         int     // Simulation ticks per second
	WorldWidth       float64 // World bounds in world units
	WorldHeight      float64
	Seed             int64 // Shared RNG seed (must match on all peers)
	FingerprintEvery int64 // Fingerprint cadence in ticks
	ParticleCount    int   // Ambient particle population
}

// DefaultSim returns the default simulation configuration.
func DefaultSim() SimConfig {
	return SimConfig{
		TickRate:         30,
		WorldWidth:       1920,
		WorldHeight:      1080,
		Seed:             1,
		FingerprintEvery: 30,
		ParticleCount:    400,
	}
}

// SimFromEnv returns simulation configuration with environment overrides.
func SimFromEnv() SimConfig {
	cfg := DefaultSim()

	if tr := getEnvInt("SIM_TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if w := getEnvFloat("SIM_WORLD_WIDTH", 0); w > 0 {
		cfg.WorldWidth = w
	}
	if h := getEnvFloat("SIM_WORLD_HEIGHT", 0); h > 0 {
		cfg.WorldHeight = h
	}
	if s := getEnvInt64("SIM_SEED", 0); s != 0 {
		cfg.Seed = s
	}
	if fe := getEnvInt64("SIM_FINGERPRINT_EVERY", 0); fe > 0 {
		cfg.FingerprintEvery = fe
	}
	if pc := getEnvInt("SIM_PARTICLE_COUNT", -1); pc >= 0 {
		cfg.ParticleCount = pc
	}

	return cfg
}

// ResourceLimits controls hard caps on transient entity populations.
// Every spawned effect has exactly one despawn path, but the caps bound
// worst-case growth within a tick regardless.
type ResourceLimits struct {
	MaxProjectiles  int // Active projectiles across all kinds
	MaxParticles    int // Ambient particle population cap
	MaxIndicators   int // Floating damage indicators
	MaxDeathEffects int // Pending death-effect requests per tick
	MaxUnitsPerKind int // Concurrent units of one kind per player
	MaxBuildings    int // Buildings per player
	MaxPendingCmds  int // Buffered network commands
}

// DefaultLimits returns production-safe default limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxProjectiles:  256,
		MaxParticles:    600,
		MaxIndicators:   64,
		MaxDeathEffects: 64,
		MaxUnitsPerKind: 24,
		MaxBuildings:    16,
		MaxPendingCmds:  1024,
	}
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int
	EventLogPath string // JSONL match journal; empty disables the log
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:         3000,
		EventLogPath: "match.jsonl",
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if path, ok := os.LookupEnv("EVENT_LOG_PATH"); ok {
		cfg.EventLogPath = path
	}

	return cfg
}

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Sim    SimConfig
	Limits ResourceLimits
	Server ServerConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Sim:    SimFromEnv(),
		Limits: DefaultLimits(),
		Server: ServerFromEnv(),
	}
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
