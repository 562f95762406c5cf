package websocket

import (
	"encoding/json"

	"github.com/cotuongonline/backend/internal/xiangqi"
)

const actionError = "error"

// Message is one client request: an action name and its payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type joinPayload struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}

type chatPayload struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Text     string `json:"text"`
}

type movePayload struct {
	RoomID   string       `json:"room_id"`
	PlayerID string       `json:"player_id"`
	Move     xiangqi.Move `json:"move"`
}

type gameOverPayload struct {
	RoomID string       `json:"room_id"`
	Winner xiangqi.Side `json:"winner"`
}

// errorPayload goes to the calling connection only, never to the room.
type errorPayload struct {
	Action string `json:"action"`
	Error  string `json:"error"`
}
