package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stellarforge/internal/sim"
)

// fakeEngine satisfies EngineInterface without a running tick loop.
type fakeEngine struct {
	snap *sim.WorldSnapshot
	cmds []sim.Command
	hash uint32
	tick int64
}

func (f *fakeEngine) Snapshot() *sim.WorldSnapshot   { return f.snap }
func (f *fakeEngine) EnqueueCommand(cmd sim.Command) { f.cmds = append(f.cmds, cmd) }
func (f *fakeEngine) Fingerprint() (uint32, int64)   { return f.hash, f.tick }
func (f *fakeEngine) CurrentTick() int64             { return f.tick }

type fakeJournal struct{}

func (fakeJournal) GetStats() map[string]interface{} {
	return map[string]interface{}{"total": uint64(3)}
}

func newTestServer(engine *fakeEngine) *httptest.Server {
	router := NewRouter(RouterConfig{
		Engine:         engine,
		Journal:        fakeJournal{},
		DisableLogging: true,
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 10000,
			Burst:             10000,
			CleanupInterval:   time.Minute,
		},
	})
	return httptest.NewServer(router)
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		snap: &sim.WorldSnapshot{
			Tick:        120,
			Fingerprint: 0xdeadbeef,
			WinnerTeam:  -1,
			Units:       []sim.UnitSnapshot{{Kind: "swarm"}},
		},
		hash: 0xdeadbeef,
		tick: 120,
	}
}

func TestGetState(t *testing.T) {
	engine := newFakeEngine()
	srv := newTestServer(engine)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/state")
	if err != nil {
		t.Fatalf("GET /api/state: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var snap sim.WorldSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Tick != 120 {
		t.Errorf("tick = %d, want 120", snap.Tick)
	}
	if len(snap.Units) != 1 {
		t.Errorf("units = %d, want 1", len(snap.Units))
	}
}

func TestGetStatsIncludesJournal(t *testing.T) {
	srv := newTestServer(newFakeEngine())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/stats")
	if err != nil {
		t.Fatalf("GET /api/stats: %v", err)
	}
	defer resp.Body.Close()

	var stats map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats["tick"].(float64) != 120 {
		t.Errorf("tick = %v", stats["tick"])
	}
	if _, ok := stats["journal"]; !ok {
		t.Error("journal stats missing")
	}
}

func TestPostCommand(t *testing.T) {
	engine := newFakeEngine()
	srv := newTestServer(engine)
	defer srv.Close()

	body := `{"kind":"move_mirror","player":0,"tick":125,"moveMirror":{"seq":2,"x":500,"y":400}}`
	resp, err := http.Post(srv.URL+"/api/command", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/command: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(engine.cmds) != 1 {
		t.Fatalf("enqueued commands = %d, want 1", len(engine.cmds))
	}
	cmd := engine.cmds[0]
	if cmd.Kind != sim.CmdMoveMirror || cmd.Tick != 125 {
		t.Errorf("command = %+v", cmd)
	}
	if cmd.MoveMirror == nil || cmd.MoveMirror.Seq != 2 {
		t.Errorf("payload = %+v", cmd.MoveMirror)
	}
}

func TestPostCommandRejectsMissingKind(t *testing.T) {
	engine := newFakeEngine()
	srv := newTestServer(engine)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/command", "application/json", strings.NewReader(`{"player":0}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if len(engine.cmds) != 0 {
		t.Error("kindless command enqueued")
	}
}

func TestPostCommandRejectsBadJSON(t *testing.T) {
	srv := newTestServer(newFakeEngine())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/command", "application/json", strings.NewReader(`{nope`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetFingerprint(t *testing.T) {
	srv := newTestServer(newFakeEngine())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/fingerprint")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var out struct {
		Fingerprint uint32 `json:"fingerprint"`
		Tick        int64  `json:"tick"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Fingerprint != 0xdeadbeef || out.Tick != 120 {
		t.Errorf("fingerprint = %x tick = %d", out.Fingerprint, out.Tick)
	}
}

func TestVerifyFingerprint(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
		wantMatch  bool
	}{
		{
			name:       "matching",
			body:       map[string]interface{}{"fingerprint": uint32(0xdeadbeef), "tick": 120},
			wantStatus: http.StatusOK,
			wantMatch:  true,
		},
		{
			name:       "tick mismatch",
			body:       map[string]interface{}{"fingerprint": uint32(0xdeadbeef), "tick": 90},
			wantStatus: http.StatusOK,
			wantMatch:  false,
		},
		{
			name:       "desync",
			body:       map[string]interface{}{"fingerprint": uint32(0x1234), "tick": 120},
			wantStatus: http.StatusConflict,
			wantMatch:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(newFakeEngine())
			defer srv.Close()

			payload, _ := json.Marshal(tt.body)
			resp, err := http.Post(srv.URL+"/api/fingerprint/verify", "application/json", bytes.NewReader(payload))
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var out struct {
				Match bool `json:"match"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if out.Match != tt.wantMatch {
				t.Errorf("match = %v, want %v", out.Match, tt.wantMatch)
			}
		})
	}
}

func TestRateLimiterRejectsFloods(t *testing.T) {
	router := NewRouter(RouterConfig{
		Engine:         newFakeEngine(),
		DisableLogging: true,
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 1,
			Burst:             2,
			CleanupInterval:   time.Minute,
		},
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	var lastStatus int
	for i := 0; i < 5; i++ {
		resp, err := http.Get(srv.URL + "/api/state")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		lastStatus = resp.StatusCode
		resp.Body.Close()
	}
	if lastStatus != http.StatusTooManyRequests {
		t.Errorf("flood status = %d, want 429", lastStatus)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{
			name:  "remote addr",
			setup: func(r *http.Request) { r.RemoteAddr = "10.0.0.1:4444" },
			want:  "10.0.0.1",
		},
		{
			name: "x-forwarded-for first hop",
			setup: func(r *http.Request) {
				r.RemoteAddr = "10.0.0.1:4444"
				r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")
			},
			want: "203.0.113.7",
		},
		{
			name: "x-real-ip",
			setup: func(r *http.Request) {
				r.RemoteAddr = "10.0.0.1:4444"
				r.Header.Set("X-Real-IP", "198.51.100.4")
			},
			want: "198.51.100.4",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(r)
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsAllowedOrigin(t *testing.T) {
	allowed := []string{"https://game.example.com"}
	tests := []struct {
		origin string
		want   bool
	}{
		{"http://localhost:3000", true},
		{"http://127.0.0.1:8080", true},
		{"https://game.example.com", true},
		{"https://evil.example.net", false},
	}
	for _, tt := range tests {
		if got := IsAllowedOrigin(tt.origin, allowed); got != tt.want {
			t.Errorf("IsAllowedOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}
