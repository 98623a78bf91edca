package api

import (
	"encoding/json"
	"net/http"

	"stellarforge/internal/sim"
)

// handleGetState returns the latest world snapshot. Reads go through the
// lock-free snapshot pool, never the live world.
func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Snapshot())
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	stats := map[string]interface{}{
		"tick":        snap.Tick,
		"over":        snap.Over,
		"winnerTeam":  snap.WinnerTeam,
		"units":       len(snap.Units),
		"projectiles": len(snap.Projectiles),
		"fingerprint": snap.Fingerprint,
	}
	if h.journal != nil {
		stats["journal"] = h.journal.GetStats()
	}
	writeJSON(w, stats)
}

func (h *routerHandlers) handleGetFingerprint(w http.ResponseWriter, r *http.Request) {
	hash, tick := h.engine.Fingerprint()
	writeJSON(w, map[string]interface{}{
		"fingerprint": hash,
		"tick":        tick,
	})
}

// handleVerifyFingerprint lets a peer post its hash for a desync check.
// A mismatch is reported but never resolved here: lockstep has no
// authority to pick a winner state.
func (h *routerHandlers) handleVerifyFingerprint(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fingerprint uint32 `json:"fingerprint"`
		Tick        int64  `json:"tick"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	hash, tick := h.engine.Fingerprint()
	if req.Tick != tick {
		writeJSON(w, map[string]interface{}{
			"match":     false,
			"reason":    "tick mismatch",
			"localTick": tick,
		})
		return
	}
	if req.Fingerprint != hash {
		RecordDesync()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"match":            false,
			"reason":           "desync",
			"localFingerprint": hash,
		})
		return
	}
	writeJSON(w, map[string]interface{}{"match": true})
}

// handlePostCommand ingests one wire command. Validation beyond JSON
// shape happens inside the simulation, where a bad command is a logged
// no-op rather than an HTTP error.
func (h *routerHandlers) handlePostCommand(w http.ResponseWriter, r *http.Request) {
	var cmd sim.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		RecordCommandDropped()
		writeError(w, "Invalid command", http.StatusBadRequest)
		return
	}
	if cmd.Kind == "" {
		RecordCommandDropped()
		writeError(w, "Command kind is required", http.StatusBadRequest)
		return
	}
	h.engine.EnqueueCommand(cmd)
	writeJSON(w, map[string]interface{}{
		"accepted": true,
		"tick":     h.engine.CurrentTick(),
	})
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
