package xiangqi

// Reason is a machine-checkable code explaining a rejected move.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonNoPiece         Reason = "no_piece"
	ReasonWrongSide       Reason = "wrong_side"
	ReasonOutOfBounds     Reason = "out_of_bounds"
	ReasonShapeInvalid    Reason = "shape_invalid"
	ReasonPathBlocked     Reason = "path_blocked"
	ReasonFriendlyFire    Reason = "friendly_fire"
	ReasonPalaceViolation Reason = "palace_violation"
	ReasonRiverViolation  Reason = "river_violation"
	ReasonLegBlocked      Reason = "leg_blocked"
)

// Result is the outcome of one validation call. When Legal is false nothing
// else is set; the caller commits the move itself, so the engine never
// mutates the board it was handed.
type Result struct {
	Legal      bool   `json:"legal"`
	Reason     Reason `json:"reason,omitempty"`
	CapturedID string `json:"captured_id,omitempty"`
	GameOver   bool   `json:"game_over,omitempty"`
	Winner     Side   `json:"winner,omitempty"`
}

func illegal(reason Reason) Result {
	return Result{Reason: reason}
}

// ValidateMove checks a proposed move for mover and, when legal, reports its
// effects: the captured piece and any resulting win. Turn ownership is the
// caller's problem; the engine only rules on the move itself.
//
// Traditional check is deliberately not enforced. A player may expose their
// own general: facing generals is scored after the move as a loss for the
// side that moved, and capturing the general is how games actually end.
func ValidateMove(board *Board, move Move, mover Side) Result {
	if !move.From.InBounds() || !move.To.InBounds() {
		return illegal(ReasonOutOfBounds)
	}

	piece := board.PieceAt(move.From)
	if piece == nil || (move.PieceID != "" && piece.ID != move.PieceID) {
		return illegal(ReasonNoPiece)
	}
	if piece.Side != mover {
		return illegal(ReasonWrongSide)
	}
	if move.From == move.To {
		return illegal(ReasonShapeInvalid)
	}

	if reason := checkShape(board, piece, move); reason != ReasonNone {
		return illegal(reason)
	}

	target := board.PieceAt(move.To)
	if target != nil && target.Side == mover {
		return illegal(ReasonFriendlyFire)
	}

	result := Result{Legal: true}
	if target != nil {
		result.CapturedID = target.ID
	}

	// Win conditions are judged on the position after the move.
	after := board.Clone()
	after.Apply(move)

	switch {
	case target != nil && target.Kind == KindGeneral:
		result.GameOver = true
		result.Winner = mover
	case generalsFacing(after):
		// Leaving the generals exposed loses for the side that moved.
		result.GameOver = true
		result.Winner = mover.Opponent()
	}

	return result
}

// checkShape applies the per-piece shape, path and confinement rules.
func checkShape(board *Board, piece *Piece, move Move) Reason {
	rowGap := move.To.Row - move.From.Row
	colGap := move.To.Col - move.From.Col

	switch piece.Kind {
	case KindChariot:
		return chariotShape(board, move)
	case KindCannon:
		return cannonShape(board, move)
	case KindHorse:
		return horseShape(board, move, rowGap, colGap)
	case KindElephant:
		return elephantShape(board, piece.Side, move, rowGap, colGap)
	case KindAdvisor:
		if abs(rowGap) != 1 || abs(colGap) != 1 {
			return ReasonShapeInvalid
		}
		if !move.To.InPalace(piece.Side) {
			return ReasonPalaceViolation
		}
	case KindGeneral:
		if abs(rowGap)+abs(colGap) != 1 {
			return ReasonShapeInvalid
		}
		if !move.To.InPalace(piece.Side) {
			return ReasonPalaceViolation
		}
	case KindSoldier:
		return soldierShape(piece.Side, move, rowGap, colGap)
	default:
		return ReasonShapeInvalid
	}

	return ReasonNone
}

func chariotShape(board *Board, move Move) Reason {
	between := board.countBetween(move.From, move.To)
	if between < 0 {
		return ReasonShapeInvalid
	}
	if between != 0 {
		return ReasonPathBlocked
	}
	return ReasonNone
}

// cannonShape: a clear line when moving, exactly one screen when capturing.
func cannonShape(board *Board, move Move) Reason {
	between := board.countBetween(move.From, move.To)
	if between < 0 {
		return ReasonShapeInvalid
	}

	if board.PieceAt(move.To) != nil {
		if between != 1 {
			return ReasonPathBlocked
		}
		return ReasonNone
	}

	if between != 0 {
		return ReasonPathBlocked
	}
	return ReasonNone
}

func horseShape(board *Board, move Move, rowGap, colGap int) Reason {
	absRow, absCol := abs(rowGap), abs(colGap)
	if !(absRow == 1 && absCol == 2 || absRow == 2 && absCol == 1) {
		return ReasonShapeInvalid
	}

	// The leg is the orthogonal cell next to the origin along the 2-step.
	leg := move.From
	if absRow == 2 {
		leg.Row += rowGap / 2
	} else {
		leg.Col += colGap / 2
	}

	if board.PieceAt(leg) != nil {
		return ReasonLegBlocked
	}
	return ReasonNone
}

func elephantShape(board *Board, side Side, move Move, rowGap, colGap int) Reason {
	if abs(rowGap) != 2 || abs(colGap) != 2 {
		return ReasonShapeInvalid
	}
	if move.To.BeyondRiver(side) {
		return ReasonRiverViolation
	}

	midpoint := Position{Row: move.From.Row + rowGap/2, Col: move.From.Col + colGap/2}
	if board.PieceAt(midpoint) != nil {
		return ReasonPathBlocked
	}
	return ReasonNone
}

// soldierShape: one step forward; after crossing the river one step sideways
// is also allowed. Never backward.
func soldierShape(side Side, move Move, rowGap, colGap int) Reason {
	forward := 1
	if side == SideBlack {
		forward = -1
	}

	if rowGap == forward && colGap == 0 {
		return ReasonNone
	}

	if move.From.BeyondRiver(side) && rowGap == 0 && abs(colGap) == 1 {
		return ReasonNone
	}

	return ReasonShapeInvalid
}

// generalsFacing reports the terminal face-off: both generals on one column
// with nothing between them. A captured general cannot face anything.
func generalsFacing(board *Board) bool {
	red := board.General(SideRed)
	black := board.General(SideBlack)

	if red == nil || black == nil {
		return false
	}
	if red.Pos.Col != black.Pos.Col {
		return false
	}

	return board.countBetween(red.Pos, black.Pos) == 0
}
