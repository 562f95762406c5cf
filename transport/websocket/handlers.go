package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cotuongonline/backend/internal/apperror"
	"github.com/cotuongonline/backend/internal/usecase"
)

func (that *Server) handleJoinRoom(ctx context.Context, c *client, msg *Message) error {
	var payload joinPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		that.sendError(c, msg.Action, "malformed payload")
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	snapshot, err := that.manager.JoinRoom(ctx, payload.RoomID, payload.PlayerID, c.id)
	if err != nil {
		that.sendError(c, msg.Action, reasonFor(err))
		return err
	}

	// Direct acknowledgement with the room snapshot; the join announcement
	// and any game start have already gone to the whole room.
	ack := usecase.Event{Action: msg.Action, Payload: snapshot}
	if err = c.write(ack); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

func (that *Server) handleLeaveRoom(ctx context.Context, c *client, msg *Message) error {
	var payload joinPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		that.sendError(c, msg.Action, "malformed payload")
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	that.manager.LeaveRoom(ctx, payload.RoomID, payload.PlayerID)

	return nil
}

func (that *Server) handleChatMessage(ctx context.Context, c *client, msg *Message) error {
	var payload chatPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		that.sendError(c, msg.Action, "malformed payload")
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if err := that.manager.SendMessage(ctx, payload.RoomID, payload.PlayerID, payload.Text); err != nil {
		that.sendError(c, msg.Action, reasonFor(err))
		return err
	}

	return nil
}

func (that *Server) handleChessMove(ctx context.Context, c *client, msg *Message) error {
	var payload movePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		that.sendError(c, msg.Action, "malformed payload")
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if _, err := that.manager.MakeMove(ctx, payload.RoomID, payload.PlayerID, payload.Move); err != nil {
		that.sendError(c, msg.Action, reasonFor(err))
		return err
	}

	return nil
}

func (that *Server) handleGameOver(ctx context.Context, c *client, msg *Message) error {
	var payload gameOverPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		that.sendError(c, msg.Action, "malformed payload")
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if err := that.manager.ReportGameOver(ctx, payload.RoomID, payload.Winner); err != nil {
		that.sendError(c, msg.Action, reasonFor(err))
		return err
	}

	return nil
}

// reasonFor maps an operation error to the human-readable message sent back
// to the caller. Expected rejections pass through; anything unexpected is
// reported generically and left to the log.
func reasonFor(err error) string {
	for _, known := range []error{
		apperror.ErrRoomNotFound,
		apperror.ErrRoomFull,
		apperror.ErrDuplicatePlayer,
		apperror.ErrPlayerNotInRoom,
		apperror.ErrGameNotStarted,
		apperror.ErrGameFinished,
		apperror.ErrNotYourTurn,
		apperror.ErrIllegalMove,
		apperror.ErrEmptyMessage,
		apperror.ErrBlankID,
		apperror.ErrAlreadyJoined,
		apperror.ErrInvalidSide,
	} {
		if errors.Is(err, known) {
			return err.Error()
		}
	}

	return "internal error"
}
