package xiangqi

import (
	"math/rand"

	"github.com/cotuongonline/backend/internal/apperror"
)

// NextMove picks a legal move for side, used by the solo-mode computer
// endpoint. It prefers captures but is otherwise random; playing strength is
// explicitly not a goal.
func NextMove(board *Board, side Side) (Move, Result, error) {
	var moves []Move
	var captures []Move

	for _, piece := range board.Pieces() {
		if piece.Side != side {
			continue
		}

		for row := 0; row < Rows; row++ {
			for col := 0; col < Cols; col++ {
				move := Move{PieceID: piece.ID, From: piece.Pos, To: Position{Row: row, Col: col}}

				result := ValidateMove(board, move, side)
				if !result.Legal {
					continue
				}
				// Do not hand the opponent a facing-generals loss.
				if result.GameOver && result.Winner != side {
					continue
				}

				moves = append(moves, move)
				if result.CapturedID != "" {
					captures = append(captures, move)
				}
			}
		}
	}

	if len(moves) == 0 {
		return Move{}, Result{}, apperror.ErrNoLegalMoves
	}

	pool := moves
	if len(captures) > 0 {
		pool = captures
	}

	chosen := pool[rand.Intn(len(pool))] //nolint: gosec // not security sensitive
	return chosen, ValidateMove(board, chosen, side), nil
}
