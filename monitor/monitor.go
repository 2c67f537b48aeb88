// Package monitor pushes layout snapshots to websocket viewers.
package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/gogpu/vmap"
)

const (
	sendBuffer   = 16
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// Source publishes versioned snapshots. *session.Session implements it.
type Source interface {
	Snapshot() *vmap.Snapshot
	Version() uint64
}

// Message is the envelope written to viewers.
type Message struct {
	Type     string         `json:"type"`
	Client   string         `json:"client,omitempty"`
	Version  uint64         `json:"version,omitempty"`
	Snapshot *vmap.Snapshot `json:"snapshot,omitempty"`
}

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected viewers and fans snapshots out to them. Slow viewers
// whose buffer fills are dropped.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
}

// NewHub creates a hub accepting the given origins. No origins accepts all.
func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{clients: make(map[*client]struct{})}
	h.upgrader.CheckOrigin = func(r *http.Request) bool {
		if len(allowedOrigins) == 0 {
			return true
		}
		return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
	}
	return h
}

// Len reports the number of connected viewers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends snap to every viewer and keeps it for viewers that
// connect later.
func (h *Hub) Broadcast(version uint64, snap *vmap.Snapshot) error {
	msg, err := json.Marshal(Message{Type: "snapshot", Version: version, Snapshot: snap})
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = msg
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			close(c.send)
			delete(h.clients, c)
			vmap.Logger().Warn("monitor: dropping slow viewer", "client", c.id)
		}
	}
	return nil
}

// Watch broadcasts src whenever its version changes, checking every
// interval, until ctx is done.
func (h *Hub) Watch(ctx context.Context, src Source, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var seen uint64
	for {
		if v := src.Version(); v != seen {
			if err := h.Broadcast(v, src.Snapshot()); err != nil {
				vmap.Logger().Warn("monitor: broadcast skipped", "version", v, "err", err)
			}
			seen = v
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ServeHTTP upgrades the request and registers the viewer.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		vmap.Logger().Warn("monitor: upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := &client{id: uuid.New(), conn: conn, send: make(chan []byte, sendBuffer)}

	hello, _ := json.Marshal(Message{Type: "hello", Client: c.id.String()})
	c.send <- hello

	h.mu.Lock()
	if h.last != nil {
		c.send <- h.last
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	vmap.Logger().Info("monitor: viewer connected", "client", c.id, "remote", r.RemoteAddr)

	go h.read(c)
	go h.write(c)
}

// read discards viewer messages and unregisters the viewer when the
// connection fails.
func (h *Hub) read(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) write(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
		vmap.Logger().Info("monitor: viewer left", "client", c.id)
	}
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}
