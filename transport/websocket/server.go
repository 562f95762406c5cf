package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cotuongonline/backend/internal/usecase"
	"github.com/cotuongonline/backend/internal/xiangqi"
)

type roomManager interface {
	JoinRoom(ctx context.Context, roomID, playerID, connID string) (*usecase.RoomSnapshot, error)
	LeaveRoom(ctx context.Context, roomID, playerID string)
	SendMessage(ctx context.Context, roomID, playerID, text string) error
	MakeMove(ctx context.Context, roomID, playerID string, move xiangqi.Move) (*xiangqi.Result, error)
	ReportGameOver(ctx context.Context, roomID string, winner xiangqi.Side) error
	Disconnect(ctx context.Context, connID string)
}

type Server struct {
	logger  *slog.Logger
	manager roomManager
	hub     *Hub

	upgrader websocket.Upgrader
	handlers map[string]func(ctx context.Context, c *client, msg *Message) error
}

func New(logger *slog.Logger, manager roomManager, hub *Hub) *Server {
	server := &Server{
		logger:  logger,
		manager: manager,
		hub:     hub,

		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		handlers: make(map[string]func(context.Context, *client, *Message) error),
	}

	server.handlers["room:join"] = server.handleJoinRoom
	server.handlers["room:leave"] = server.handleLeaveRoom
	server.handlers["chat:message"] = server.handleChatMessage
	server.handlers["game:move"] = server.handleChessMove
	server.handlers["game:over"] = server.handleGameOver

	return server
}

// Start - starts the WebSocket server and shuts it down when ctx ends.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConn(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveConn upgrades the request and runs the connection's read loop. Each
// connection gets a stable id for the duration of its life; a closed
// connection is routed through the coordinator's disconnect path.
func (that *Server) serveConn(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConn")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn}
	that.hub.register(c)

	log = log.With("connID", c.id)
	log.Info("connection established")

	defer func() {
		that.manager.Disconnect(ctx, c.id)
		that.hub.unregister(c.id)
		_ = conn.Close()
		log.Info("connection closed")
	}()

	for {
		var msg Message
		if err = conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("failed to read message", "error", err)
			}
			return
		}

		handler, ok := that.handlers[msg.Action]
		if !ok {
			that.sendError(c, msg.Action, "unknown action")
			continue
		}

		if err = handler(ctx, c, &msg); err != nil {
			log.Error("failed to handle message", "action", msg.Action, "error", err)
		}
	}
}

// sendError delivers a failure to the calling connection only; errors are
// never broadcast to the room.
func (that *Server) sendError(c *client, action, reason string) {
	payload := usecase.Event{Action: actionError, Payload: errorPayload{Action: action, Error: reason}}

	if err := c.write(payload); err != nil {
		that.logger.Error("failed to send error response", "connID", c.id, "error", err)
	}
}
