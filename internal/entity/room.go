package entity

import (
	"fmt"
	"time"

	"github.com/cotuongonline/backend/internal/apperror"
	"github.com/cotuongonline/backend/internal/xiangqi"
)

const (
	StatusWaiting  = "waiting"
	StatusActive   = "active"
	StatusFinished = "finished"

	MaxPlayers = 2
)

// Room is one two-player match session. It is the single owner of all
// per-room state: membership in join order, game status, whose move is
// accepted next, the board, and the last-activity timestamp used by the
// idle reaper. Nothing else holds these fields.
type Room struct {
	ID           string         `json:"id"`
	Players      []*Player      `json:"players"`
	Status       string         `json:"status"`
	Turn         xiangqi.Side   `json:"turn,omitempty"`
	Winner       xiangqi.Side   `json:"winner,omitempty"`
	Board        *xiangqi.Board `json:"-"`
	LastActivity time.Time      `json:"last_activity"`
}

func NewRoom(id string) *Room {
	return &Room{
		ID:           id,
		Status:       StatusWaiting,
		LastActivity: time.Now(),
	}
}

func (that *Room) IsWaiting() bool  { return that.Status == StatusWaiting }
func (that *Room) IsActive() bool   { return that.Status == StatusActive }
func (that *Room) IsFinished() bool { return that.Status == StatusFinished }

func (that *Room) IsFull() bool { return len(that.Players) >= MaxPlayers }

func (that *Room) HasPlayer(playerID string) bool {
	for _, player := range that.Players {
		if player.ID == playerID {
			return true
		}
	}
	return false
}

// AddPlayer appends a player in join order. The first entrant will play Red.
func (that *Room) AddPlayer(playerID string) (*Player, error) {
	if that.HasPlayer(playerID) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrDuplicatePlayer, playerID)
	}
	if that.IsFull() {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomFull, that.ID)
	}

	player := &Player{ID: playerID, RoomID: that.ID}
	that.Players = append(that.Players, player)

	return player, nil
}

// RemovePlayer reports false when the player was not a member; removing an
// absent player is not an error.
func (that *Room) RemovePlayer(playerID string) bool {
	for i, player := range that.Players {
		if player.ID == playerID {
			that.Players = append(that.Players[:i], that.Players[i+1:]...)
			return true
		}
	}
	return false
}

// SideOf returns the side assigned to playerID once the game has started.
func (that *Room) SideOf(playerID string) (xiangqi.Side, bool) {
	for _, player := range that.Players {
		if player.ID == playerID && player.Side != "" {
			return player.Side, true
		}
	}
	return "", false
}

// Start initializes the board and assigns sides by join order; Red moves
// first. Called exactly once, when the second player completes the pair.
func (that *Room) Start() {
	that.Players[0].Side = xiangqi.SideRed
	that.Players[1].Side = xiangqi.SideBlack

	that.Board = xiangqi.NewBoard()
	that.Turn = xiangqi.SideRed
	that.Status = StatusActive
}

// Finish freezes the game; the turn never advances again.
func (that *Room) Finish(winner xiangqi.Side) {
	that.Status = StatusFinished
	that.Winner = winner
	that.Turn = ""
}

func (that *Room) Touch(now time.Time) {
	that.LastActivity = now
}

// IdleSince reports whether the room has seen no activity for at least idle.
func (that *Room) IdleSince(now time.Time, idle time.Duration) bool {
	return now.Sub(that.LastActivity) >= idle
}
