package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cotuongonline/backend/internal/apperror"
	"github.com/cotuongonline/backend/internal/entity"
	"github.com/cotuongonline/backend/internal/repository"
	"github.com/cotuongonline/backend/internal/xiangqi"
)

const DefaultIdleTimeout = 30 * time.Minute

// roomEntry pairs a room with its own lock. All mutating operations on one
// room serialize on this mutex; rooms never share it, so unrelated rooms
// proceed in parallel. removed marks an entry that has been (or is being)
// dropped from the directory.
type roomEntry struct {
	mu      sync.Mutex
	room    *entity.Room
	removed bool
}

type connRef struct {
	roomID   string
	playerID string
}

// RoomSnapshot is the direct acknowledgement a caller gets back from a join.
type RoomSnapshot struct {
	RoomID   string       `json:"room_id"`
	PlayerID string       `json:"player_id"`
	Side     xiangqi.Side `json:"side,omitempty"`
	Count    int          `json:"count"`
	Status   string       `json:"status"`
	Turn     xiangqi.Side `json:"turn,omitempty"`
}

// RoomManager is the session coordinator. It owns the room directory, drives
// every state transition, asks the rule engine to validate moves before
// anything is committed or broadcast, and reaps idle rooms in the background.
type RoomManager struct {
	logger      *slog.Logger
	sink        EventSink
	players     repository.PlayerRepository
	idleTimeout time.Duration
	now         func() time.Time

	mu    sync.RWMutex
	rooms map[string]*roomEntry

	connMu sync.RWMutex
	conns  map[string]connRef
}

func NewRoomManager(logger *slog.Logger, sink EventSink, players repository.PlayerRepository, idleTimeout time.Duration) *RoomManager {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}

	return &RoomManager{
		logger:      logger,
		sink:        sink,
		players:     players,
		idleTimeout: idleTimeout,
		now:         time.Now,
		rooms:       make(map[string]*roomEntry),
		conns:       make(map[string]connRef),
	}
}

// JoinRoom adds a player to a room, creating the room on first join. The
// membership check-and-add happens under the room lock, so two concurrent
// joins can never push a room past two members. A failed join leaves the
// connection unsubscribed.
func (that *RoomManager) JoinRoom(ctx context.Context, roomID, playerID, connID string) (*RoomSnapshot, error) {
	log := that.logger.With("method", "JoinRoom", "roomID", roomID, "playerID", playerID)

	if isBlank(roomID) || isBlank(playerID) {
		return nil, apperror.ErrBlankID
	}

	// One room per connection: a second join would overwrite the conns entry
	// and leave the first room with a member no disconnect can ever remove.
	if connID != "" {
		that.connMu.RLock()
		ref, tracked := that.conns[connID]
		that.connMu.RUnlock()

		if tracked {
			return nil, fmt.Errorf("%w: %s", apperror.ErrAlreadyJoined, ref.roomID)
		}
	}

	for {
		entry := that.getOrCreate(roomID)

		entry.mu.Lock()
		if entry.removed {
			// Lost a race with teardown; the directory no longer holds this
			// entry, so fetch a fresh one.
			entry.mu.Unlock()
			continue
		}

		snapshot, err := that.join(ctx, entry, playerID, connID)
		entry.mu.Unlock()

		if err != nil {
			return nil, err
		}

		log.Info("player joined", "count", snapshot.Count)

		return snapshot, nil
	}
}

// join runs under the room lock.
func (that *RoomManager) join(ctx context.Context, entry *roomEntry, playerID, connID string) (*RoomSnapshot, error) {
	room := entry.room

	player, err := room.AddPlayer(playerID)
	if err != nil {
		return nil, err
	}

	if err = that.players.CreateOrUpdate(ctx, player); err != nil {
		// All-or-nothing: the member list must not drift from the session
		// store other members will be routed through on disconnect.
		room.RemovePlayer(playerID)
		return nil, fmt.Errorf("failed to save player session: %w", err)
	}

	that.trackConn(connID, room.ID, playerID)
	that.sink.Subscribe(room.ID, connID)

	room.Touch(that.now())
	that.sink.Publish(room.ID, playerJoinedEvent(playerID, len(room.Players)))

	if room.IsWaiting() && room.IsFull() {
		that.startGame(ctx, room)
	}

	return that.snapshot(room, playerID), nil
}

func (that *RoomManager) startGame(ctx context.Context, room *entity.Room) {
	log := that.logger.With("method", "startGame", "roomID", room.ID)

	room.Start()

	for _, player := range room.Players {
		if err := that.players.CreateOrUpdate(ctx, player); err != nil {
			log.Error("failed to save player side", "playerID", player.ID, "error", err)
		}
	}

	that.sink.Publish(room.ID, gameStartEvent(room.Players[0].ID, room.Players[1].ID))

	log.Info("game started", "red", room.Players[0].ID, "black", room.Players[1].ID)
}

// LeaveRoom removes a player. Leaving a room or game one is not part of is a
// silent no-op, which keeps retried leave requests harmless. When one player
// abandons an active game the opponent wins and is told so; the last player
// out tears the room down.
func (that *RoomManager) LeaveRoom(ctx context.Context, roomID, playerID string) {
	log := that.logger.With("method", "LeaveRoom", "roomID", roomID, "playerID", playerID)

	entry := that.get(roomID)
	if entry == nil {
		return
	}

	entry.mu.Lock()

	if entry.removed || !entry.room.RemovePlayer(playerID) {
		entry.mu.Unlock()
		return
	}

	room := entry.room

	if connID := that.connOf(roomID, playerID); connID != "" {
		that.sink.Unsubscribe(roomID, connID)
		that.untrackConn(connID)
	}

	if err := that.players.DeleteByID(ctx, playerID); err != nil {
		log.Error("failed to delete player session", "error", err)
	}

	now := that.now()
	room.Touch(now)
	that.sink.Publish(roomID, playerLeftEvent(playerID, len(room.Players)))

	if room.IsActive() && len(room.Players) == 1 {
		winner := room.Players[0].Side
		room.Finish(winner)
		that.sink.Publish(roomID, gameOverEvent(roomID, winner, now,
			fmt.Sprintf("%s left the room, %s wins by abandonment", playerID, winner)))
	}

	remaining := len(room.Players)
	if remaining == 0 {
		entry.removed = true
	}
	entry.mu.Unlock()

	if remaining == 0 {
		that.drop(roomID, entry)
		log.Info("room torn down")
		return
	}

	log.Info("player left", "remaining", remaining)
}

// SendMessage broadcasts a chat line with the sender id and a server
// timestamp after touching the room's activity clock.
func (that *RoomManager) SendMessage(ctx context.Context, roomID, playerID, text string) error {
	if strings.TrimSpace(text) == "" {
		return apperror.ErrEmptyMessage
	}

	entry := that.get(roomID)
	if entry == nil {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.removed {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	now := that.now()
	entry.room.Touch(now)
	that.sink.Publish(roomID, chatMessageEvent(playerID, text, now))

	return nil
}

// MakeMove validates a move with the rule engine and, only when it is legal,
// commits it, advances the turn and broadcasts it. The engine runs on every
// move: the original system trusted client-side validation on this path,
// which is exactly the gap this method closes. Turn order is enforced here
// as well.
func (that *RoomManager) MakeMove(ctx context.Context, roomID, playerID string, move xiangqi.Move) (*xiangqi.Result, error) {
	log := that.logger.With("method", "MakeMove", "roomID", roomID, "playerID", playerID)

	entry := that.get(roomID)
	if entry == nil {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	room := entry.room

	switch {
	case entry.removed:
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	case room.IsWaiting():
		return nil, apperror.ErrGameNotStarted
	case room.IsFinished():
		return nil, apperror.ErrGameFinished
	}

	side, ok := room.SideOf(playerID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrPlayerNotInRoom, playerID)
	}
	if side != room.Turn {
		return nil, apperror.ErrNotYourTurn
	}

	result := xiangqi.ValidateMove(room.Board, move, side)
	if !result.Legal {
		return nil, fmt.Errorf("%w: %s", apperror.ErrIllegalMove, result.Reason)
	}

	room.Board.Apply(move)

	now := that.now()
	room.Touch(now)
	that.sink.Publish(roomID, chessMoveEvent(playerID, move, result.CapturedID, now))

	if result.GameOver {
		room.Finish(result.Winner)
		that.sink.Publish(roomID, gameOverEvent(roomID, result.Winner, now,
			fmt.Sprintf("%s wins", result.Winner)))

		log.Info("game over", "winner", result.Winner)

		return &result, nil
	}

	room.Turn = side.Opponent()

	return &result, nil
}

// ReportGameOver marks a room finished on an explicit client report and
// broadcasts the structured result plus a readable announcement.
func (that *RoomManager) ReportGameOver(ctx context.Context, roomID string, winner xiangqi.Side) error {
	if winner != xiangqi.SideRed && winner != xiangqi.SideBlack {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidSide, winner)
	}

	entry := that.get(roomID)
	if entry == nil {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.removed {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	now := that.now()
	entry.room.Finish(winner)
	entry.room.Touch(now)
	that.sink.Publish(roomID, gameOverEvent(roomID, winner, now, fmt.Sprintf("%s wins", winner)))

	that.logger.Info("game reported over", "roomID", roomID, "winner", winner)

	return nil
}

// Disconnect maps a dropped connection back to its room and player and runs
// the leave path. Connections that were never in a room are a no-op.
func (that *RoomManager) Disconnect(ctx context.Context, connID string) {
	that.connMu.RLock()
	ref, ok := that.conns[connID]
	that.connMu.RUnlock()

	if !ok {
		return
	}

	that.LeaveRoom(ctx, ref.roomID, ref.playerID)
}

// RunReaper sweeps idle rooms until ctx is canceled. The sweep takes each
// room's lock, so it cannot interleave with a join or leave in flight for
// the same room.
func (that *RoomManager) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			that.reapIdle(ctx)
		}
	}
}

func (that *RoomManager) reapIdle(ctx context.Context) {
	log := that.logger.With("method", "reapIdle")

	now := that.now()

	for roomID, entry := range that.entries() {
		entry.mu.Lock()

		if entry.removed || !entry.room.IdleSince(now, that.idleTimeout) {
			entry.mu.Unlock()
			continue
		}

		for _, player := range entry.room.Players {
			if connID := that.connOf(roomID, player.ID); connID != "" {
				that.sink.Unsubscribe(roomID, connID)
				that.untrackConn(connID)
			}

			if err := that.players.DeleteByID(ctx, player.ID); err != nil {
				log.Error("failed to delete player session", "playerID", player.ID, "error", err)
			}
		}

		entry.removed = true
		entry.mu.Unlock()

		that.drop(roomID, entry)

		log.Info("reaped idle room", "roomID", roomID)
	}
}

func (that *RoomManager) snapshot(room *entity.Room, playerID string) *RoomSnapshot {
	side, _ := room.SideOf(playerID)

	return &RoomSnapshot{
		RoomID:   room.ID,
		PlayerID: playerID,
		Side:     side,
		Count:    len(room.Players),
		Status:   room.Status,
		Turn:     room.Turn,
	}
}

func (that *RoomManager) getOrCreate(roomID string) *roomEntry {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.rooms[roomID]
	if !ok {
		entry = &roomEntry{room: entity.NewRoom(roomID)}
		that.rooms[roomID] = entry
	}

	return entry
}

func (that *RoomManager) get(roomID string) *roomEntry {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.rooms[roomID]
}

func (that *RoomManager) entries() map[string]*roomEntry {
	that.mu.RLock()
	defer that.mu.RUnlock()

	copied := make(map[string]*roomEntry, len(that.rooms))
	for roomID, entry := range that.rooms {
		copied[roomID] = entry
	}

	return copied
}

// drop removes an entry marked removed; the check against the stored pointer
// keeps a re-created room with the same id safe.
func (that *RoomManager) drop(roomID string, entry *roomEntry) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.rooms[roomID] == entry {
		delete(that.rooms, roomID)
	}
}

func (that *RoomManager) trackConn(connID, roomID, playerID string) {
	if connID == "" {
		return
	}

	that.connMu.Lock()
	defer that.connMu.Unlock()

	that.conns[connID] = connRef{roomID: roomID, playerID: playerID}
}

func (that *RoomManager) untrackConn(connID string) {
	that.connMu.Lock()
	defer that.connMu.Unlock()

	delete(that.conns, connID)
}

func (that *RoomManager) connOf(roomID, playerID string) string {
	that.connMu.RLock()
	defer that.connMu.RUnlock()

	for connID, ref := range that.conns {
		if ref.roomID == roomID && ref.playerID == playerID {
			return connID
		}
	}

	return ""
}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
