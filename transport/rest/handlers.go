package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cotuongonline/backend/internal/apperror"
	"github.com/cotuongonline/backend/internal/xiangqi"
)

type handlers struct {
	logger *slog.Logger
}

func newHandlers(logger *slog.Logger) *handlers {
	return &handlers{logger: logger}
}

// boardHandler serves the standard starting position; clients render their
// board from this snapshot.
func (that *handlers) boardHandler(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, map[string]any{
		"pieces": xiangqi.NewBoard().Pieces(),
	})
}

type computerMoveRequest struct {
	Pieces []xiangqi.Piece `json:"pieces"`
	Side   xiangqi.Side    `json:"side"`
}

type computerMoveResponse struct {
	Move   xiangqi.Move   `json:"move"`
	Result xiangqi.Result `json:"result"`
}

// computerMoveHandler is the solo-mode move generator: a stateless call that
// takes a board snapshot plus the side to move and returns one legal move.
// It lives outside the room model on purpose.
func (that *handlers) computerMoveHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "computerMoveHandler")

	var req computerMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	if req.Side != xiangqi.SideRed && req.Side != xiangqi.SideBlack {
		http.Error(w, "side must be red or black", http.StatusBadRequest)
		return
	}

	board, err := xiangqi.FromPieces(req.Pieces)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	move, result, err := xiangqi.NextMove(board, req.Side)
	if errors.Is(err, apperror.ErrNoLegalMoves) {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if err != nil {
		log.Error("failed to pick a move", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, http.StatusOK, computerMoveResponse{Move: move, Result: result})
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}
