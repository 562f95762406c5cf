package usecase

import (
	"fmt"
	"time"

	"github.com/cotuongonline/backend/internal/xiangqi"
)

const (
	ActionPlayerJoined = "room:player-joined"
	ActionPlayerLeft   = "room:player-left"
	ActionGameStart    = "game:start"
	ActionChatMessage  = "chat:message"
	ActionChessMove    = "game:move"
	ActionGameOver     = "game:over"
)

// Event is one broadcast to a room's subscribers. Events resulting from two
// committed operations on the same room are published in commit order.
type Event struct {
	Action  string `json:"action"`
	Payload any    `json:"payload,omitempty"`
}

// EventSink delivers events to the connections subscribed to a room; the
// websocket hub implements it. Publish must not reorder events per room.
type EventSink interface {
	Subscribe(roomID, connID string)
	Unsubscribe(roomID, connID string)
	Publish(roomID string, event Event)
}

type PlayerJoinedPayload struct {
	PlayerID string `json:"player_id"`
	Count    int    `json:"count"`
	Message  string `json:"message"`
}

type PlayerLeftPayload struct {
	PlayerID  string `json:"player_id"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message"`
}

type GameStartPayload struct {
	Red   string       `json:"red"`
	Black string       `json:"black"`
	Turn  xiangqi.Side `json:"turn"`
}

type ChatMessagePayload struct {
	PlayerID string    `json:"player_id"`
	Text     string    `json:"text"`
	SentAt   time.Time `json:"sent_at"`
}

type ChessMovePayload struct {
	PlayerID   string       `json:"player_id"`
	Move       xiangqi.Move `json:"move"`
	CapturedID string       `json:"captured_id,omitempty"`
	SentAt     time.Time    `json:"sent_at"`
}

type GameOverPayload struct {
	RoomID  string       `json:"room_id"`
	Winner  xiangqi.Side `json:"winner"`
	At      time.Time    `json:"at"`
	Message string       `json:"message"`
}

func playerJoinedEvent(playerID string, count int) Event {
	return Event{Action: ActionPlayerJoined, Payload: PlayerJoinedPayload{
		PlayerID: playerID,
		Count:    count,
		Message:  fmt.Sprintf("%s has joined the room", playerID),
	}}
}

func playerLeftEvent(playerID string, remaining int) Event {
	return Event{Action: ActionPlayerLeft, Payload: PlayerLeftPayload{
		PlayerID:  playerID,
		Remaining: remaining,
		Message:   fmt.Sprintf("%s has left the room", playerID),
	}}
}

func gameStartEvent(red, black string) Event {
	return Event{Action: ActionGameStart, Payload: GameStartPayload{
		Red:   red,
		Black: black,
		Turn:  xiangqi.SideRed,
	}}
}

func chatMessageEvent(playerID, text string, at time.Time) Event {
	return Event{Action: ActionChatMessage, Payload: ChatMessagePayload{
		PlayerID: playerID,
		Text:     text,
		SentAt:   at,
	}}
}

func chessMoveEvent(playerID string, move xiangqi.Move, capturedID string, at time.Time) Event {
	return Event{Action: ActionChessMove, Payload: ChessMovePayload{
		PlayerID:   playerID,
		Move:       move,
		CapturedID: capturedID,
		SentAt:     at,
	}}
}

func gameOverEvent(roomID string, winner xiangqi.Side, at time.Time, message string) Event {
	return Event{Action: ActionGameOver, Payload: GameOverPayload{
		RoomID:  roomID,
		Winner:  winner,
		At:      at,
		Message: message,
	}}
}
