package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cotuongonline/backend/internal/usecase"
)

// writeWait bounds every write. Publish runs inside the coordinator's room
// lock, so a peer that stops reading must fail the write, not stall it.
const writeWait = 10 * time.Second

// client is one live connection. writeMu serializes writes: gorilla allows a
// single concurrent writer per connection, and the per-connection ordering
// of published events depends on it.
type client struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (that *client) write(payload any) error {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))

	return that.conn.WriteJSON(payload)
}

// Hub tracks connections and their room subscriptions; it is the
// coordinator's EventSink. Publish runs while the coordinator holds the room
// lock, so events reach each subscriber in commit order.
type Hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	conns map[string]*client
	rooms map[string]map[string]*client
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		conns:  make(map[string]*client),
		rooms:  make(map[string]map[string]*client),
	}
}

func (that *Hub) register(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.conns[c.id] = c
}

// unregister drops the connection and every subscription it holds.
func (that *Hub) unregister(connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.conns, connID)
	for roomID, group := range that.rooms {
		delete(group, connID)
		if len(group) == 0 {
			delete(that.rooms, roomID)
		}
	}
}

func (that *Hub) Subscribe(roomID, connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	c, ok := that.conns[connID]
	if !ok {
		return
	}

	group, ok := that.rooms[roomID]
	if !ok {
		group = make(map[string]*client)
		that.rooms[roomID] = group
	}

	group[connID] = c
}

func (that *Hub) Unsubscribe(roomID, connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	group, ok := that.rooms[roomID]
	if !ok {
		return
	}

	delete(group, connID)
	if len(group) == 0 {
		delete(that.rooms, roomID)
	}
}

// Publish fans an event out to everyone subscribed to the room. A failed
// write only loses that one connection: closing it unblocks its read loop,
// which runs the disconnect path.
func (that *Hub) Publish(roomID string, event usecase.Event) {
	that.mu.RLock()
	group := make([]*client, 0, len(that.rooms[roomID]))
	for _, c := range that.rooms[roomID] {
		group = append(group, c)
	}
	that.mu.RUnlock()

	for _, c := range group {
		if err := c.write(event); err != nil {
			that.logger.Error("failed to publish event", "roomID", roomID, "connID", c.id, "error", err)
			_ = c.conn.Close()
		}
	}
}
