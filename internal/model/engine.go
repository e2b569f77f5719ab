package model

import "fmt"

// Engine is the rules engine for one board. It is not safe for concurrent
// use; Game serialises access to it.
type Engine struct {
	board          *Board
	turn           Side
	state          GameState
	captured       []PieceID
	lastMove       *LastMove
	haltOnTerminal bool
}

type Option func(*Engine)

// WithHaltOnTerminal controls whether moves are refused once the game reached
// checkmate or stalemate. Enabled by default.
func WithHaltOnTerminal(halt bool) Option {
	return func(e *Engine) { e.haltOnTerminal = halt }
}

// LastMove describes the most recently applied move.
type LastMove struct {
	PieceID    PieceID   `json:"pieceId"`
	From       Square    `json:"from"`
	To         Square    `json:"to"`
	CapturedID PieceID   `json:"capturedId,omitempty"`
	Castle     *RookMove `json:"castleRookMove,omitempty"`
}

type RookMove struct {
	PieceID PieceID `json:"pieceId"`
	From    Square  `json:"from"`
	To      Square  `json:"to"`
}

// Placement positions one piece for NewEngineFromLayout.
type Placement struct {
	Kind     PieceKind `json:"type"`
	Side     Side      `json:"color"`
	Square   Square    `json:"position"`
	HasMoved bool      `json:"hasMoved"`
}

// Layout is a full position: pieces plus the side to move.
type Layout struct {
	Turn   Side        `json:"toMove"`
	Pieces []Placement `json:"pieces"`
}

// NewEngine sets up the standard starting position with White to move.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		board:          newBoard(),
		turn:           White,
		state:          Ongoing,
		haltOnTerminal: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewEngineFromLayout builds an arbitrary position. Each side needs exactly
// one king.
func NewEngineFromLayout(turn Side, layout []Placement, opts ...Option) (*Engine, error) {
	if !turn.valid() {
		return nil, fmt.Errorf("%w: unknown side %q", ErrInvalidLayout, turn)
	}
	board := &Board{pieces: make([]Piece, 0, len(layout))}
	kings := map[Side]int{}
	for _, pl := range layout {
		if !pl.Kind.valid() || !pl.Side.valid() {
			return nil, fmt.Errorf("%w: bad piece %q/%q", ErrInvalidLayout, pl.Kind, pl.Side)
		}
		if !pl.Square.InBounds() {
			return nil, fmt.Errorf("%w: %s out of bounds", ErrInvalidLayout, pl.Square)
		}
		if board.at(pl.Square) != nil {
			return nil, fmt.Errorf("%w: %s occupied twice", ErrInvalidLayout, pl.Square)
		}
		id := board.add(pl.Kind, pl.Side, pl.Square)
		board.piece(id).HasMoved = pl.HasMoved
		if pl.Kind == King {
			kings[pl.Side]++
		}
	}
	for _, side := range []Side{White, Black} {
		if kings[side] != 1 {
			return nil, fmt.Errorf("%w: %s has %d kings", ErrInvalidLayout, side, kings[side])
		}
	}

	e := &Engine{board: board, turn: turn, haltOnTerminal: true}
	for _, opt := range opts {
		opt(e)
	}
	e.state = e.TerminalState(turn)
	return e, nil
}

func (e *Engine) Turn() Side { return e.turn }

func (e *Engine) State() GameState { return e.state }

// Piece returns a copy of the piece behind id.
func (e *Engine) Piece(id PieceID) (Piece, bool) {
	p := e.board.piece(id)
	if p == nil {
		return Piece{}, false
	}
	return *p, true
}

func (e *Engine) PieceAt(sq Square) (Piece, bool) {
	if !sq.InBounds() {
		return Piece{}, false
	}
	p := e.board.at(sq)
	if p == nil {
		return Piece{}, false
	}
	return *p, true
}

// Pieces lists the live pieces of side.
func (e *Engine) Pieces(side Side) []Piece {
	on := e.board.occupants(side)
	out := make([]Piece, 0, len(on))
	for _, p := range on {
		out = append(out, *p)
	}
	return out
}

// live returns the piece behind id if it is still standing on the grid.
func (e *Engine) live(id PieceID) *Piece {
	p := e.board.piece(id)
	if p == nil || p.Captured || !p.Position.InBounds() {
		return nil
	}
	if e.board.grid[p.Position.Row][p.Position.Col] != p.ID {
		return nil
	}
	return p
}

// IsMoveValid reports whether the piece may move to target: geometry, castling
// and own-king safety are all checked. The board is unchanged afterwards.
func (e *Engine) IsMoveValid(id PieceID, target Square) bool {
	piece := e.live(id)
	if piece == nil {
		return false
	}
	return e.validAt(piece, target, levelFull)
}

// IsInCheck reports whether any opposing piece has a valid move onto the
// king of side. It panics with ErrKingNotFound if that king is missing.
func (e *Engine) IsInCheck(side Side) bool {
	return e.inCheckAt(side, levelAttack)
}

func (e *Engine) inCheckAt(side Side, level int) bool {
	king, ok := e.board.king(side)
	if !ok {
		// only reachable at the innermost level when a simulated capture took the king
		if level == levelGeometry {
			return false
		}
		panic(fmt.Errorf("%w: %s", ErrKingNotFound, side))
	}
	for _, p := range e.board.occupants(side.Opposite()) {
		if e.validAt(p, king.Position, level) {
			return true
		}
	}
	return false
}

// simulate moves piece to target, runs fn, and restores both slots and the
// piece position before returning fn's result.
func (e *Engine) simulate(piece *Piece, target Square, fn func() bool) bool {
	from := piece.Position
	taken := e.board.grid[target.Row][target.Col]
	e.board.set(target, piece.ID)
	e.board.set(from, 0)
	piece.Position = target
	defer func() {
		e.board.set(from, piece.ID)
		e.board.set(target, taken)
		piece.Position = from
	}()
	return fn()
}

// TerminalState derives the state of side by trying every valid move of every
// piece on every square.
func (e *Engine) TerminalState(side Side) GameState {
	inCheck := e.IsInCheck(side)
	if e.hasEscape(side) {
		if inCheck {
			return Check
		}
		return Ongoing
	}
	if inCheck {
		return Checkmate
	}
	return Stalemate
}

func (e *Engine) hasEscape(side Side) bool {
	for _, piece := range e.board.occupants(side) {
		for r := 0; r < BoardSize; r++ {
			for c := 0; c < BoardSize; c++ {
				// levelFull already rejects moves that leave the king attacked
				if e.validAt(piece, Square{Row: r, Col: c}, levelFull) {
					return true
				}
			}
		}
	}
	return false
}

// LegalTargets lists every square the piece can currently move to.
func (e *Engine) LegalTargets(id PieceID) []Square {
	piece := e.live(id)
	if piece == nil {
		return nil
	}
	var out []Square
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			target := Square{Row: r, Col: c}
			if e.validAt(piece, target, levelFull) {
				out = append(out, target)
			}
		}
	}
	return out
}

// AttemptMove applies the move if it is valid and reports whether it did.
func (e *Engine) AttemptMove(id PieceID, target Square) bool {
	if e.haltOnTerminal && e.state.IsTerminal() {
		return false
	}
	piece := e.live(id)
	if piece == nil || !e.validAt(piece, target, levelFull) {
		return false
	}
	// kings are attacked, never taken; every side keeps exactly one
	if taken := e.board.at(target); taken != nil && taken.Kind == King {
		return false
	}
	e.apply(piece, target)
	return true
}

// MovePiece is AttemptMove without the result; invalid moves are ignored.
func (e *Engine) MovePiece(id PieceID, target Square) {
	e.AttemptMove(id, target)
}

func (e *Engine) apply(piece *Piece, target Square) {
	move := &LastMove{PieceID: piece.ID, From: piece.Position, To: target}
	if piece.Kind == King && isCastlingShape(piece, target) {
		rook, dir := e.castleRook(piece, target)
		e.relocate(piece, target)
		rookTo := Square{Row: target.Row, Col: target.Col - dir}
		move.Castle = &RookMove{PieceID: rook.ID, From: rook.Position, To: rookTo}
		e.relocate(rook, rookTo)
		rook.HasMoved = true
	} else {
		if taken := e.board.at(target); taken != nil {
			taken.Captured = true
			e.captured = append(e.captured, taken.ID)
			move.CapturedID = taken.ID
		}
		e.relocate(piece, target)
	}
	piece.HasMoved = true
	e.lastMove = move

	next := e.turn.Opposite()
	e.state = e.TerminalState(next)
	e.turn = next
}

func (e *Engine) relocate(piece *Piece, target Square) {
	e.board.set(piece.Position, 0)
	e.board.set(target, piece.ID)
	piece.Position = target
}
