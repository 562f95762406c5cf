package xiangqi

import (
	"errors"
	"fmt"
)

const (
	Rows = 10
	Cols = 9
)

var (
	ErrDuplicatePosition = errors.New("two pieces share a position")
	ErrPieceOffBoard     = errors.New("piece position is off the board")
)

// Board holds the live piece set. Cells may be empty; a captured piece is
// removed and never reused. The board is owned by exactly one room at a time.
type Board struct {
	cells [Rows][Cols]*Piece
}

// backRank is the major-piece file order shared by both sides.
var backRank = [Cols]Kind{
	KindChariot, KindHorse, KindElephant, KindAdvisor, KindGeneral,
	KindAdvisor, KindElephant, KindHorse, KindChariot,
}

// NewBoard returns the standard starting position.
func NewBoard() *Board {
	board := &Board{}

	for col, kind := range backRank {
		board.place(KindGeneral == kind, kind, SideRed, Position{Row: 0, Col: col})
		board.place(KindGeneral == kind, kind, SideBlack, Position{Row: 9, Col: col})
	}

	for _, col := range []int{1, 7} {
		board.place(false, KindCannon, SideRed, Position{Row: 2, Col: col})
		board.place(false, KindCannon, SideBlack, Position{Row: 7, Col: col})
	}

	for col := 0; col < Cols; col += 2 {
		board.place(false, KindSoldier, SideRed, Position{Row: 3, Col: col})
		board.place(false, KindSoldier, SideBlack, Position{Row: 6, Col: col})
	}

	return board
}

// place adds a piece with a generated id; unique pieces get no ordinal.
func (that *Board) place(unique bool, kind Kind, side Side, pos Position) {
	id := fmt.Sprintf("%s-%s-%d-%d", side, kind, pos.Row, pos.Col)
	if unique {
		id = fmt.Sprintf("%s-%s", side, kind)
	}

	that.cells[pos.Row][pos.Col] = &Piece{ID: id, Kind: kind, Side: side, Pos: pos}
}

// FromPieces rebuilds a board from an arbitrary piece list, e.g. a snapshot
// posted to the computer-move endpoint.
func FromPieces(pieces []Piece) (*Board, error) {
	board := &Board{}

	for i := range pieces {
		piece := pieces[i]
		if !piece.Pos.InBounds() {
			return nil, fmt.Errorf("%w: %s at (%d,%d)", ErrPieceOffBoard, piece.ID, piece.Pos.Row, piece.Pos.Col)
		}

		if board.cells[piece.Pos.Row][piece.Pos.Col] != nil {
			return nil, fmt.Errorf("%w: (%d,%d)", ErrDuplicatePosition, piece.Pos.Row, piece.Pos.Col)
		}

		board.cells[piece.Pos.Row][piece.Pos.Col] = &piece
	}

	return board, nil
}

// PieceAt returns the piece on pos, or nil for an empty or off-board cell.
func (that *Board) PieceAt(pos Position) *Piece {
	if !pos.InBounds() {
		return nil
	}
	return that.cells[pos.Row][pos.Col]
}

// Pieces lists every live piece in row-major order.
func (that *Board) Pieces() []Piece {
	pieces := make([]Piece, 0, 32)
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			if piece := that.cells[row][col]; piece != nil {
				pieces = append(pieces, *piece)
			}
		}
	}
	return pieces
}

// General returns the general of side, or nil once it has been captured.
// The scan covers the whole board: FromPieces accepts arbitrary snapshots,
// so a general is not guaranteed to sit on the palace files.
func (that *Board) General(side Side) *Piece {
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			piece := that.cells[row][col]
			if piece != nil && piece.Kind == KindGeneral && piece.Side == side {
				return piece
			}
		}
	}
	return nil
}

// Apply commits a move and returns the captured piece, if any. The move must
// have been validated first; Apply does no legality checking.
func (that *Board) Apply(move Move) *Piece {
	piece := that.cells[move.From.Row][move.From.Col]
	captured := that.cells[move.To.Row][move.To.Col]

	that.cells[move.From.Row][move.From.Col] = nil
	piece.Pos = move.To
	that.cells[move.To.Row][move.To.Col] = piece

	return captured
}

// Clone returns a deep copy the caller may mutate freely.
func (that *Board) Clone() *Board {
	clone := &Board{}
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			if piece := that.cells[row][col]; piece != nil {
				copied := *piece
				clone.cells[row][col] = &copied
			}
		}
	}
	return clone
}

// countBetween returns how many pieces sit strictly between two cells on a
// shared row or column; -1 when the cells are not in line.
func (that *Board) countBetween(from, to Position) int {
	count := 0

	switch {
	case from.Row == to.Row:
		lo, hi := minMax(from.Col, to.Col)
		for col := lo + 1; col < hi; col++ {
			if that.cells[from.Row][col] != nil {
				count++
			}
		}
	case from.Col == to.Col:
		lo, hi := minMax(from.Row, to.Row)
		for row := lo + 1; row < hi; row++ {
			if that.cells[row][from.Col] != nil {
				count++
			}
		}
	default:
		return -1
	}

	return count
}

func minMax(a, b int) (int, int) {
	if a < b {
		return a, b
	}
	return b, a
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
