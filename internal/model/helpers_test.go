package model

import (
	"reflect"
	"testing"
)

func pl(kind PieceKind, side Side, row, col int) Placement {
	return Placement{Kind: kind, Side: side, Square: Square{Row: row, Col: col}}
}

func sq(row, col int) Square { return Square{Row: row, Col: col} }

func mustLayout(t *testing.T, turn Side, pieces ...Placement) *Engine {
	t.Helper()
	e, err := NewEngineFromLayout(turn, pieces)
	if err != nil {
		t.Fatalf("NewEngineFromLayout: %v", err)
	}
	return e
}

// idAt returns the id of the piece on (row, col).
func idAt(t *testing.T, e *Engine, row, col int) PieceID {
	t.Helper()
	p, ok := e.PieceAt(sq(row, col))
	if !ok {
		t.Fatalf("no piece on (%d,%d)", row, col)
	}
	return p.ID
}

// clearSquares takes the pieces on squares off the board as if captured.
func clearSquares(e *Engine, squares ...Square) {
	for _, s := range squares {
		if p := e.board.at(s); p != nil {
			p.Captured = true
		}
		e.board.set(s, 0)
	}
}

type boardCopy struct {
	pieces []Piece
	grid   [BoardSize][BoardSize]PieceID
}

func copyBoard(e *Engine) boardCopy {
	return boardCopy{pieces: append([]Piece(nil), e.board.pieces...), grid: e.board.grid}
}

func assertBoardUnchanged(t *testing.T, e *Engine, before boardCopy, context string) {
	t.Helper()
	if e.board.grid != before.grid {
		t.Fatalf("%s: grid changed", context)
	}
	if !reflect.DeepEqual(e.board.pieces, before.pieces) {
		t.Fatalf("%s: pieces changed", context)
	}
}
