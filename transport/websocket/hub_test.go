package websocket

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cotuongonline/backend/internal/usecase"
)

func testHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// connPair dials a real websocket pair so hub writes go over the wire.
func connPair(t *testing.T) (server, peer *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	conns := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	t.Cleanup(srv.Close)

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = peer.Close() })

	server = <-conns
	t.Cleanup(func() { _ = server.Close() })

	return server, peer
}

// registered wires a fresh connection into the hub under the given id.
func registered(t *testing.T, hub *Hub, id string) (*client, *websocket.Conn) {
	t.Helper()

	server, peer := connPair(t)
	c := &client{id: id, conn: server}
	hub.register(c)

	return c, peer
}

// readEvent reads one event off the peer side, or reports that none arrived
// within the deadline.
func readEvent(t *testing.T, peer *websocket.Conn) (usecase.Event, bool) {
	t.Helper()

	_ = peer.SetReadDeadline(time.Now().Add(time.Second))

	var event usecase.Event
	if err := peer.ReadJSON(&event); err != nil {
		return usecase.Event{}, false
	}

	return event, true
}

func TestHub_Publish(t *testing.T) {
	t.Run("reaches every subscriber and nobody else", func(t *testing.T) {
		// Given: two subscribers in the room and one registered bystander
		hub := testHub()
		_, alicePeer := registered(t, hub, "conn-alice")
		_, bobPeer := registered(t, hub, "conn-bob")
		_, carolPeer := registered(t, hub, "conn-carol")

		hub.Subscribe("room-1", "conn-alice")
		hub.Subscribe("room-1", "conn-bob")

		// When: an event is published to the room
		hub.Publish("room-1", usecase.Event{Action: usecase.ActionGameStart})

		// Then: both subscribers receive it, the bystander does not
		event, ok := readEvent(t, alicePeer)
		require.True(t, ok)
		assert.Equal(t, usecase.ActionGameStart, event.Action)

		_, ok = readEvent(t, bobPeer)
		assert.True(t, ok)

		_, ok = readEvent(t, carolPeer)
		assert.False(t, ok)
	})

	t.Run("stops delivering after unsubscribe", func(t *testing.T) {
		hub := testHub()
		_, peer := registered(t, hub, "conn-1")
		hub.Subscribe("room-1", "conn-1")

		hub.Unsubscribe("room-1", "conn-1")
		hub.Publish("room-1", usecase.Event{Action: usecase.ActionChatMessage})

		_, ok := readEvent(t, peer)
		assert.False(t, ok)
	})

	t.Run("a dead subscriber does not block the fan-out", func(t *testing.T) {
		// Given: one healthy subscriber and one whose connection is gone
		hub := testHub()
		dead, _ := registered(t, hub, "conn-dead")
		_, livePeer := registered(t, hub, "conn-live")

		hub.Subscribe("room-1", "conn-dead")
		hub.Subscribe("room-1", "conn-live")

		require.NoError(t, dead.conn.Close())

		// When: an event is published
		done := make(chan struct{})
		go func() {
			hub.Publish("room-1", usecase.Event{Action: usecase.ActionChessMove})
			close(done)
		}()

		// Then: the publish returns and the healthy subscriber is served
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("publish blocked on a dead connection")
		}

		event, ok := readEvent(t, livePeer)
		require.True(t, ok)
		assert.Equal(t, usecase.ActionChessMove, event.Action)
	})
}

func TestHub_Subscribe(t *testing.T) {
	t.Run("ignores an unknown connection", func(t *testing.T) {
		hub := testHub()

		hub.Subscribe("room-1", "conn-ghost")

		assert.Empty(t, hub.rooms)
	})

	t.Run("drops an empty group on unsubscribe", func(t *testing.T) {
		hub := testHub()
		registered(t, hub, "conn-1")
		hub.Subscribe("room-1", "conn-1")

		hub.Unsubscribe("room-1", "conn-1")

		assert.Empty(t, hub.rooms)
	})

	t.Run("unsubscribing from an unknown room is a no-op", func(t *testing.T) {
		hub := testHub()

		hub.Unsubscribe("nowhere", "conn-1")
	})
}

func TestHub_Unregister(t *testing.T) {
	t.Run("clears every subscription the connection held", func(t *testing.T) {
		// Given: one connection subscribed to two rooms
		hub := testHub()
		registered(t, hub, "conn-1")
		hub.Subscribe("room-1", "conn-1")
		hub.Subscribe("room-2", "conn-1")

		// When: the connection is unregistered
		hub.unregister("conn-1")

		// Then: no group still references it and lookups fail
		assert.Empty(t, hub.rooms)
		assert.Empty(t, hub.conns)

		hub.Subscribe("room-1", "conn-1")
		assert.Empty(t, hub.rooms)
	})

	t.Run("other connections keep their subscriptions", func(t *testing.T) {
		hub := testHub()
		registered(t, hub, "conn-1")
		_, peer := registered(t, hub, "conn-2")
		hub.Subscribe("room-1", "conn-1")
		hub.Subscribe("room-1", "conn-2")

		hub.unregister("conn-1")
		hub.Publish("room-1", usecase.Event{Action: usecase.ActionChatMessage})

		_, ok := readEvent(t, peer)
		assert.True(t, ok)
	})
}
