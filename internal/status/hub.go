package status

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/strefethen/sonos-remote-go/internal/remote"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Remote panels are served from other origins
	},
}

// Source provides the snapshot sent to a subscriber on connect.
type Source interface {
	Status() remote.Status
}

// Hub fans status snapshots out to websocket subscribers.
type Hub struct {
	mu      sync.Mutex
	source  Source
	clients map[*websocket.Conn]struct{}
	logger  *log.Logger
}

// NewHub creates a hub. source may be nil, in which case new subscribers wait
// for the next Publish.
func NewHub(source Source, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		source:  source,
		clients: make(map[*websocket.Conn]struct{}),
		logger:  logger,
	}
}

// ServeHTTP upgrades the request and registers the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade failed - error already written to response
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	if h.source != nil {
		if err := writeSnapshot(conn, h.source.Status()); err != nil {
			h.dropLocked(conn)
			h.mu.Unlock()
			return
		}
	}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Printf("status subscriber connected (%d total)", count)
	go h.readUntilClosed(conn)
}

// Publish sends a snapshot to every subscriber, dropping any that fail.
func (h *Hub) Publish(snapshot remote.Status) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := writeSnapshot(conn, snapshot); err != nil {
			h.logger.Printf("status subscriber dropped: %v", err)
			h.dropLocked(conn)
		}
	}
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		h.dropLocked(conn)
	}
}

// readUntilClosed discards client frames; a read error means the peer is gone.
func (h *Hub) readUntilClosed(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.mu.Lock()
			h.dropLocked(conn)
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) dropLocked(conn *websocket.Conn) {
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	conn.Close()
}

func writeSnapshot(conn *websocket.Conn, snapshot remote.Status) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(snapshot)
}
