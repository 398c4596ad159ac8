package middleware

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/juanmmendes/monitor-sistema/internal/models"
)

var upgrader = websocket.Upgrader{
	// The monitor is LAN-facing and the API already answers any origin;
	// the websocket mirrors that.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans live usage snapshots out to connected dashboard clients.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.RWMutex
	log        zerolog.Logger
}

// NewHub builds a hub; Run must be started on its own goroutine.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 8),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		log:        log,
	}
}

// Run owns the client set. It never returns.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()
			h.log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("websocket client connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()
			h.log.Debug().Msg("websocket client disconnected")

		case message := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					h.log.Debug().Err(err).Msg("websocket write failed, dropping client")
					delete(h.clients, conn)
					conn.Close()
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastUsage queues a usage snapshot for all clients. The send never
// blocks: when the hub is saturated or not running, the snapshot is dropped
// rather than stalling the refresh that produced it.
func (h *Hub) BroadcastUsage(snapshot models.UsageSnapshot) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		h.log.Error().Err(err).Msg("marshal usage snapshot for broadcast")
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.log.Debug().Msg("websocket broadcast dropped, hub busy")
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and parks until the peer goes away.
// Inbound frames are discarded; the socket is push-only.
func (h *Hub) HandleWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		h.register <- conn
		defer func() {
			h.unregister <- conn
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.log.Debug().Err(err).Msg("websocket read error")
				}
				return
			}
		}
	}
}
