package model

import "fmt"

// BoardSize is the number of rows and columns on the board.
const BoardSize = 10

type PieceKind string

const (
	King   PieceKind = "king"
	Queen  PieceKind = "queen"
	Rook   PieceKind = "rook"
	Bishop PieceKind = "bishop"
	Knight PieceKind = "knight"
	Clone  PieceKind = "clone"
	Pawn   PieceKind = "pawn"
)

func (k PieceKind) valid() bool {
	switch k {
	case King, Queen, Rook, Bishop, Knight, Clone, Pawn:
		return true
	}
	return false
}

type Side string

const (
	White Side = "white"
	Black Side = "black"
)

func (s Side) Opposite() Side {
	if s == White {
		return Black
	}
	return White
}

func (s Side) valid() bool {
	return s == White || s == Black
}

// PieceID is a stable handle into the board's piece arena. Zero means no piece.
type PieceID int

type Piece struct {
	ID       PieceID   `json:"id"`
	Kind     PieceKind `json:"type"`
	Side     Side      `json:"color"`
	Position Square    `json:"position"`
	HasMoved bool      `json:"hasMoved"`
	Captured bool      `json:"captured,omitempty"`
}

type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s Square) InBounds() bool {
	return s.Row >= 0 && s.Row < BoardSize && s.Col >= 0 && s.Col < BoardSize
}

func (s Square) String() string {
	return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
}

// Board owns every piece created for a game. The grid holds ids into the
// arena, so a piece keeps its identity while it moves around.
type Board struct {
	pieces []Piece
	grid   [BoardSize][BoardSize]PieceID
}

func (b *Board) add(kind PieceKind, side Side, sq Square) PieceID {
	id := PieceID(len(b.pieces) + 1)
	b.pieces = append(b.pieces, Piece{ID: id, Kind: kind, Side: side, Position: sq})
	b.grid[sq.Row][sq.Col] = id
	return id
}

func (b *Board) piece(id PieceID) *Piece {
	if id <= 0 || int(id) > len(b.pieces) {
		return nil
	}
	return &b.pieces[id-1]
}

// at returns the piece occupying sq, or nil. sq must be in bounds.
func (b *Board) at(sq Square) *Piece {
	return b.piece(b.grid[sq.Row][sq.Col])
}

func (b *Board) set(sq Square, id PieceID) {
	b.grid[sq.Row][sq.Col] = id
}

// occupants lists the pieces of side currently on the grid, in row-major order.
func (b *Board) occupants(side Side) []*Piece {
	out := make([]*Piece, 0, 2*BoardSize+12)
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if p := b.piece(b.grid[r][c]); p != nil && p.Side == side {
				out = append(out, p)
			}
		}
	}
	return out
}

// king scans the grid, not the arena: a king overwritten during a simulated
// capture is not on the board.
func (b *Board) king(side Side) (*Piece, bool) {
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			p := b.piece(b.grid[r][c])
			if p != nil && p.Kind == King && p.Side == side {
				return p, true
			}
		}
	}
	return nil, false
}

// backRank is the column order of rows 0 and 9.
var backRank = [BoardSize]PieceKind{Rook, Knight, Clone, Bishop, Queen, King, Bishop, Clone, Knight, Rook}

func newBoard() *Board {
	board := &Board{pieces: make([]Piece, 0, 4*BoardSize)}
	for col, kind := range backRank {
		board.add(kind, White, Square{Row: 0, Col: col})
	}
	for col := 0; col < BoardSize; col++ {
		board.add(Pawn, White, Square{Row: 1, Col: col})
	}
	for col := 0; col < BoardSize; col++ {
		board.add(Pawn, Black, Square{Row: 8, Col: col})
	}
	for col, kind := range backRank {
		board.add(kind, Black, Square{Row: 9, Col: col})
	}
	return board
}
