package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"stellarforge/internal/sim"

	"github.com/gorilla/websocket"
)

const (
	// MaxWSConnectionsTotal caps total WebSocket connections.
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP caps WebSocket connections per IP.
	MaxWSConnectionsPerIP = 10

	// StateBroadcastInterval is the snapshot push cadence. Lower than
	// the tick rate on purpose: spectators do not need every tick.
	StateBroadcastInterval = 100 * time.Millisecond
)

// wsClient tracks a WebSocket connection with its source IP.
type wsClient struct {
	conn *websocket.Conn
	ip   string
}

// wsInbound is the envelope clients send: either a simulation command or
// a fingerprint report from a peer.
type wsInbound struct {
	Event       string       `json:"event"`
	Command     *sim.Command `json:"command,omitempty"`
	Fingerprint uint32       `json:"fingerprint,omitempty"`
	Tick        int64        `json:"tick,omitempty"`
}

// WebSocketHub manages connections, pushes snapshots, and feeds inbound
// commands into the simulation.
type WebSocketHub struct {
	engine EngineInterface

	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	wsLimiter      *WebSocketRateLimiter
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewWebSocketHub creates a hub bound to the engine.
func NewWebSocketHub(engine EngineInterface, allowedOrigins []string) *WebSocketHub {
	h := &WebSocketHub{
		engine:         engine,
		clients:        make(map[*websocket.Conn]*wsClient),
		broadcast:      make(chan []byte, 256),
		register:       make(chan *wsClient),
		unregister:     make(chan *websocket.Conn),
		wsLimiter:      NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if IsAllowedOrigin(origin, h.allowedOrigins) {
				return true
			}
			log.Printf("api: websocket rejected from origin %q", origin)
			RecordConnectionRejected("origin")
			return false
		},
	}
	return h
}

// Run processes register/unregister/broadcast traffic. Start once.
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("api: client connected from %s (%d total)", client.ip, count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				h.wsLimiter.Release(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("api: client disconnected (%d remaining)", count)
			UpdateWSConnections(count)

		case message := <-h.broadcast:
			h.mu.RLock()
			var failed []*websocket.Conn
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					failed = append(failed, conn)
				}
			}
			h.mu.RUnlock()
			for _, conn := range failed {
				h.mu.Lock()
				if client, ok := h.clients[conn]; ok {
					h.wsLimiter.Release(client.ip)
					delete(h.clients, conn)
					conn.Close()
				}
				h.mu.Unlock()
			}
			IncrementWSMessages()
		}
	}
}

// Broadcast queues a message for all connected clients. Drops when the
// channel is full (backpressure).
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	msg := map[string]interface{}{
		"event": event,
		"data":  data,
	}
	jsonBytes, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- jsonBytes:
	default:
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop pushes world snapshots to spectators periodically.
func (h *WebSocketHub) StartBroadcastLoop() {
	ticker := time.NewTicker(StateBroadcastInterval)
	go func() {
		for range ticker.C {
			if h.ClientCount() == 0 {
				continue
			}
			h.Broadcast("match:state", h.engine.Snapshot())
		}
	}()
}

// HandleWebSocket upgrades a connection and feeds inbound commands into
// the simulation.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	h.mu.RLock()
	totalConnections := len(h.clients)
	h.mu.RUnlock()

	if totalConnections >= MaxWSConnectionsTotal {
		log.Printf("api: websocket rejected, total limit reached (%d)", totalConnections)
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.wsLimiter.Allow(ip) {
		log.Printf("api: websocket rejected from %s, per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("api: websocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}

	h.register <- &wsClient{conn: conn, ip: ip}

	go func() {
		defer func() {
			h.unregister <- conn
		}()
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var msg wsInbound
			if err := json.Unmarshal(message, &msg); err != nil {
				RecordCommandDropped()
				continue
			}
			switch msg.Event {
			case "command":
				if msg.Command == nil {
					RecordCommandDropped()
					continue
				}
				h.engine.EnqueueCommand(*msg.Command)
			case "fingerprint":
				hash, tick := h.engine.Fingerprint()
				if msg.Tick == tick && msg.Fingerprint != hash {
					RecordDesync()
					log.Printf("api: desync reported by %s at tick %d (local %d, peer %d)",
						ip, tick, hash, msg.Fingerprint)
				}
			default:
				log.Printf("api: unknown websocket event %q from %s", msg.Event, ip)
			}
		}
	}()
}
