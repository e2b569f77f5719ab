package model

import (
	"errors"
	"testing"
)

func newTestGame(t *testing.T, rules Rules) *Game {
	t.Helper()
	return NewGame("g1", rules, nil)
}

func TestGameMakeMove(t *testing.T) {
	g := newTestGame(t, Rules{HaltOnTerminal: true})

	view, err := g.View()
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	pawn := view.Board[1][4].ID

	res, err := g.MakeMove(MoveRequest{PieceID: pawn, To: sq(3, 4)})
	if err != nil {
		t.Fatalf("MakeMove: %v", err)
	}
	if !res.Applied || res.State.Turn != Black || res.State.Board[3][4] == nil {
		t.Fatalf("result = %+v", res)
	}
	if res.State.LastMove == nil || res.State.LastMove.From != sq(1, 4) {
		t.Fatalf("last move = %+v", res.State.LastMove)
	}
	if res.State.UpdatedAt.Before(res.State.CreatedAt) {
		t.Fatalf("updatedAt before createdAt")
	}
}

func TestGameMakeMoveByOrigin(t *testing.T) {
	g := newTestGame(t, Rules{})
	from := sq(8, 2)
	res, err := g.MakeMove(MoveRequest{From: &from, To: sq(7, 2)})
	if err != nil || !res.Applied {
		t.Fatalf("MakeMove = %+v, %v", res, err)
	}
}

func TestGameMakeMoveErrors(t *testing.T) {
	empty := sq(5, 5)
	wrongFrom := sq(1, 1)
	cases := []struct {
		name  string
		rules Rules
		req   MoveRequest
		want  error
	}{
		{"unknown id", Rules{}, MoveRequest{PieceID: 99, To: sq(2, 0)}, ErrUnknownPiece},
		{"no selection", Rules{}, MoveRequest{To: sq(2, 0)}, ErrUnknownPiece},
		{"empty origin", Rules{}, MoveRequest{From: &empty, To: sq(6, 5)}, ErrUnknownPiece},
		{"origin does not match id", Rules{}, MoveRequest{PieceID: 11, From: &wrongFrom, To: sq(2, 0)}, ErrUnknownPiece},
		{"illegal geometry", Rules{}, MoveRequest{PieceID: 11, To: sq(5, 0)}, ErrIllegalMove},
		{"off the board", Rules{}, MoveRequest{PieceID: 11, To: sq(-1, 0)}, ErrIllegalMove},
		{"black first with turns enforced", Rules{EnforceTurn: true}, MoveRequest{PieceID: 21, To: sq(7, 0)}, ErrNotYourTurn},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGame(t, tc.rules)
			res, err := g.MakeMove(tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if res.Applied {
				t.Fatalf("move applied")
			}
			if errors.Is(err, ErrIllegalMove) && res.State.Turn != White {
				t.Fatalf("rejected move carries state %+v", res.State)
			}
		})
	}
}

func TestGameOver(t *testing.T) {
	build := func(halt bool) *Game {
		e, err := NewEngineFromLayout(White, []Placement{
			pl(King, White, 0, 0),
			pl(Queen, Black, 1, 1),
			pl(King, Black, 2, 2),
		}, WithHaltOnTerminal(halt))
		if err != nil {
			t.Fatalf("NewEngineFromLayout: %v", err)
		}
		return NewGameWithEngine("mate", e, Rules{HaltOnTerminal: halt}, nil)
	}

	g := build(true)
	res, err := g.MakeMove(MoveRequest{PieceID: 2, To: sq(1, 2)})
	if !errors.Is(err, ErrGameOver) {
		t.Fatalf("err = %v, want ErrGameOver", err)
	}
	if res.State.State != Checkmate {
		t.Fatalf("state = %s", res.State.State)
	}

	g = build(false)
	if res, err := g.MakeMove(MoveRequest{PieceID: 2, To: sq(1, 2)}); err != nil || !res.Applied {
		t.Fatalf("permissive game refused: %+v, %v", res, err)
	}
}

func TestGameLegalTargets(t *testing.T) {
	g := newTestGame(t, Rules{})

	targets, err := g.LegalTargets(2)
	if err != nil {
		t.Fatalf("LegalTargets: %v", err)
	}
	if len(targets) != 2 || targets[0] != sq(2, 0) || targets[1] != sq(2, 2) {
		t.Fatalf("targets = %v", targets)
	}

	targets, err = g.LegalTargets(1)
	if err != nil {
		t.Fatalf("LegalTargets: %v", err)
	}
	if targets == nil || len(targets) != 0 {
		t.Fatalf("blocked rook targets = %#v, want empty slice", targets)
	}

	if _, err := g.LegalTargets(77); !errors.Is(err, ErrUnknownPiece) {
		t.Fatalf("err = %v, want ErrUnknownPiece", err)
	}
}

func TestGameRecoversMissingKing(t *testing.T) {
	e := NewEngine()
	clearSquares(e, sq(0, 5))
	g := NewGameWithEngine("broken", e, Rules{}, nil)

	if _, err := g.LegalTargets(11); !errors.Is(err, ErrKingNotFound) {
		t.Fatalf("LegalTargets err = %v, want ErrKingNotFound", err)
	}
	if _, err := g.MakeMove(MoveRequest{PieceID: 11, To: sq(2, 0)}); !errors.Is(err, ErrKingNotFound) {
		t.Fatalf("MakeMove err = %v, want ErrKingNotFound", err)
	}
	// the game stays usable after the recovered panic
	if _, err := g.View(); err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestBroadcastKeepsStatesInOrder(t *testing.T) {
	g := newTestGame(t, Rules{})
	if _, err := g.MakeMove(MoveRequest{PieceID: 11, To: sq(2, 0)}); err != nil {
		t.Fatalf("MakeMove: %v", err)
	}
	if _, err := g.MakeMove(MoveRequest{PieceID: 21, To: sq(7, 0)}); err != nil {
		t.Fatalf("MakeMove: %v", err)
	}
	if g.version != 2 {
		t.Fatalf("version = %d after two moves", g.version)
	}

	view, err := g.View()
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	cases := []struct {
		version uint64
		want    uint64
	}{
		{5, 5},
		{4, 5}, // older state arriving late is dropped
		{5, 5}, // same state again, e.g. for a new observer
		{6, 6},
	}
	for _, tc := range cases {
		g.broadcastState(view, tc.version)
		g.connections.writeMu.Lock()
		got := g.connections.sentVersion
		g.connections.writeMu.Unlock()
		if got != tc.want {
			t.Fatalf("after version %d sent version = %d, want %d", tc.version, got, tc.want)
		}
	}
}
