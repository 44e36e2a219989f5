package devserver

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// hub tracks connected push-channel clients and fans broadcasts out to
// all of them. Every client receives every event; there is no
// per-product routing.
type hub struct {
	logger       *slog.Logger
	writeTimeout time.Duration

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	// Serializes all outbound writes; gorilla allows one writer per conn.
	writeMu sync.Mutex
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		logger:       logger,
		writeTimeout: 5 * time.Second,
		clients:      make(map[*websocket.Conn]struct{}),
	}
}

// add registers a connection and starts its read pump. The pump exists
// to service control frames and to notice disconnects; inbound data
// frames are discarded.
func (h *hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("push client connected", "clients", count)

	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// remove drops a connection.
func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		conn.Close()
		h.logger.Debug("push client disconnected", "clients", count)
	}
}

// broadcast sends one event to every connected client. Clients that
// fail the write are dropped.
func (h *hub) broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Warn("dropping push client after failed write", "error", err)
			h.remove(conn)
		}
	}
}

// closeAll disconnects every client.
func (h *hub) closeAll() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clients = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	for _, conn := range conns {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(time.Second),
		)
		conn.Close()
	}
}
