package model

// GameState is derived after every applied move for the side about to move.
type GameState string

const (
	Ongoing   GameState = "ongoing"
	Check     GameState = "check"
	Checkmate GameState = "checkmate"
	Stalemate GameState = "stalemate"
)

func (s GameState) IsTerminal() bool {
	return s == Checkmate || s == Stalemate
}

// Snapshot is a read-only copy of everything a presentation layer renders.
type Snapshot struct {
	Board    [][]*Piece     `json:"board"`
	Turn     Side           `json:"toMove"`
	State    GameState      `json:"state"`
	IsCheck  bool           `json:"isCheck"`
	Captured CapturedPieces `json:"capturedPieces"`
	LastMove *LastMove      `json:"lastMove"`
}

// CapturedPieces groups taken pieces by the side that took them.
type CapturedPieces struct {
	White []Piece `json:"white"`
	Black []Piece `json:"black"`
}

func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		Board:    make([][]*Piece, BoardSize),
		Turn:     e.turn,
		State:    e.state,
		IsCheck:  e.state == Check || e.state == Checkmate,
		Captured: CapturedPieces{White: []Piece{}, Black: []Piece{}},
	}
	for r := 0; r < BoardSize; r++ {
		snap.Board[r] = make([]*Piece, BoardSize)
		for c := 0; c < BoardSize; c++ {
			if p := e.board.at(Square{Row: r, Col: c}); p != nil {
				cp := *p
				snap.Board[r][c] = &cp
			}
		}
	}
	for _, id := range e.captured {
		p := *e.board.piece(id)
		if p.Side == Black {
			snap.Captured.White = append(snap.Captured.White, p)
		} else {
			snap.Captured.Black = append(snap.Captured.Black, p)
		}
	}
	if e.lastMove != nil {
		lm := *e.lastMove
		if lm.Castle != nil {
			rm := *lm.Castle
			lm.Castle = &rm
		}
		snap.LastMove = &lm
	}
	return snap
}
