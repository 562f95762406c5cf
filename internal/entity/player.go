package entity

import "github.com/cotuongonline/backend/internal/xiangqi"

type Player struct {
	ID     string       `json:"id"`
	Side   xiangqi.Side `json:"side,omitempty"`
	RoomID string       `json:"room_id,omitempty"`
}
