package xiangqi

// Side is one of the two Xiangqi camps.
type Side string

const (
	SideRed   Side = "red"
	SideBlack Side = "black"
)

func (that Side) Opponent() Side {
	if that == SideRed {
		return SideBlack
	}
	return SideRed
}

// Kind is a piece kind.
type Kind string

const (
	KindGeneral  Kind = "general"
	KindAdvisor  Kind = "advisor"
	KindElephant Kind = "elephant"
	KindHorse    Kind = "horse"
	KindChariot  Kind = "chariot"
	KindCannon   Kind = "cannon"
	KindSoldier  Kind = "soldier"
)

// Position is a board cell. Rows run 0-9 top to bottom, columns 0-8 left to
// right. Red occupies rows 0-4 and advances toward increasing row indexes.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Position) InBounds() bool {
	return that.Row >= 0 && that.Row < Rows && that.Col >= 0 && that.Col < Cols
}

// InPalace reports whether the position lies inside the 3x3 palace of side.
func (that Position) InPalace(side Side) bool {
	if that.Col < 3 || that.Col > 5 {
		return false
	}
	if side == SideRed {
		return that.Row >= 0 && that.Row <= 2
	}
	return that.Row >= 7 && that.Row <= 9
}

// BeyondRiver reports whether the position is on the far bank for side.
func (that Position) BeyondRiver(side Side) bool {
	if side == SideRed {
		return that.Row > 4
	}
	return that.Row < 5
}

type Piece struct {
	ID   string   `json:"id"`
	Kind Kind     `json:"kind"`
	Side Side     `json:"side"`
	Pos  Position `json:"pos"`
}

// Move is a proposed transition of one piece. Transient: built per request,
// never persisted beyond the event that carries it.
type Move struct {
	PieceID string   `json:"piece_id"`
	From    Position `json:"from"`
	To      Position `json:"to"`
}
