package apperror

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrDuplicatePlayer = errors.New("player is already in the room")
	ErrPlayerNotInRoom = errors.New("player is not in the room")

	ErrGameNotStarted = errors.New("game is not started")
	ErrGameFinished   = errors.New("game is already finished")
	ErrNotYourTurn    = errors.New("it's not your turn")
	ErrIllegalMove    = errors.New("illegal move")
	ErrNoLegalMoves   = errors.New("no legal moves available")

	ErrEmptyMessage  = errors.New("message is empty")
	ErrBlankID       = errors.New("id must not be blank")
	ErrAlreadyJoined = errors.New("connection has already joined a room")
	ErrInvalidSide   = errors.New("side must be red or black")
)
