package model

// Legality is evaluated at three depths so that check detection, which itself
// validates every opposing move, always terminates:
//
//	levelFull     castling, geometry, own king safe against levelAttack moves
//	levelAttack   geometry, own king safe against levelGeometry moves
//	levelGeometry bounds, same-side block and per-kind geometry only
//
// IsMoveValid runs at levelFull and IsInCheck tests opposing pieces at
// levelAttack. The terminal-state search costs pieces x squares x that, which
// is fine on a 10x10 board.
const (
	levelGeometry = iota
	levelAttack
	levelFull
)

func (e *Engine) validAt(piece *Piece, target Square, level int) bool {
	if !target.InBounds() {
		return false
	}
	if occupant := e.board.at(target); occupant != nil && occupant.Side == piece.Side {
		return false
	}
	if level == levelFull && piece.Kind == King && !piece.HasMoved && e.isCastlingValid(piece, target) {
		return true
	}
	if !e.geometryValid(piece, target) {
		return false
	}
	if level == levelGeometry {
		return true
	}
	return !e.simulate(piece, target, func() bool {
		return e.inCheckAt(piece.Side, level-1)
	})
}

func (e *Engine) geometryValid(piece *Piece, target Square) bool {
	switch piece.Kind {
	case Pawn:
		return e.isPawnMoveValid(piece, target)
	case Rook:
		return e.isRookMoveValid(piece, target)
	case Knight:
		return isKnightMoveValid(piece, target)
	case Bishop:
		return e.isBishopMoveValid(piece, target)
	case Queen:
		return e.isRookMoveValid(piece, target) || e.isBishopMoveValid(piece, target)
	case King:
		return isKingMoveValid(piece, target)
	case Clone:
		return e.isBishopMoveValid(piece, target) || isKnightMoveValid(piece, target)
	default:
		return false
	}
}

// pawnHomeRow is where a pawn may double-step from. Black pawns start on row 8
// but are only allowed the double step from row 6; the rule is kept as is.
func pawnHomeRow(side Side) int {
	if side == White {
		return 1
	}
	return 6
}

func pawnDirection(side Side) int {
	if side == White {
		return 1
	}
	return -1
}

func (e *Engine) isPawnMoveValid(piece *Piece, target Square) bool {
	from := piece.Position
	dir := pawnDirection(piece.Side)
	dc := target.Col - from.Col
	switch {
	case dc == 0:
		if target.Row == from.Row+dir && e.board.at(target) == nil {
			return true
		}
		if from.Row == pawnHomeRow(piece.Side) && target.Row == from.Row+2*dir {
			middle := Square{Row: from.Row + dir, Col: from.Col}
			return e.board.at(middle) == nil && e.board.at(target) == nil
		}
	case abs(dc) == 1:
		return target.Row == from.Row+dir && e.board.at(target) != nil
	}
	return false
}

func (e *Engine) isRookMoveValid(piece *Piece, target Square) bool {
	from := piece.Position
	if from == target || (from.Row != target.Row && from.Col != target.Col) {
		return false
	}
	return e.isPathClear(from, target)
}

func (e *Engine) isBishopMoveValid(piece *Piece, target Square) bool {
	from := piece.Position
	dr, dc := abs(target.Row-from.Row), abs(target.Col-from.Col)
	if dr == 0 || dr != dc {
		return false
	}
	return e.isPathClear(from, target)
}

func isKnightMoveValid(piece *Piece, target Square) bool {
	dr, dc := abs(target.Row-piece.Position.Row), abs(target.Col-piece.Position.Col)
	return (dr == 2 && dc == 1) || (dr == 1 && dc == 2)
}

func isKingMoveValid(piece *Piece, target Square) bool {
	dr, dc := abs(target.Row-piece.Position.Row), abs(target.Col-piece.Position.Col)
	return dr <= 1 && dc <= 1 && !(dr == 0 && dc == 0)
}

// isPathClear walks from start toward target one unit step at a time. Only
// squares strictly between the two are inspected.
func (e *Engine) isPathClear(start, target Square) bool {
	step := Square{Row: sign(target.Row - start.Row), Col: sign(target.Col - start.Col)}
	current := Square{Row: start.Row + step.Row, Col: start.Col + step.Col}
	for current != target {
		if e.board.at(current) != nil {
			return false
		}
		current = Square{Row: current.Row + step.Row, Col: current.Col + step.Col}
	}
	return true
}

// castleRook returns the rook a king castling toward target would use.
func (e *Engine) castleRook(king *Piece, target Square) (*Piece, int) {
	dir := 1
	if target.Col-king.Position.Col < 0 {
		dir = -1
	}
	rookCol := 0
	if dir > 0 {
		rookCol = BoardSize - 1
	}
	return e.board.at(Square{Row: king.Position.Row, Col: rookCol}), dir
}

func isCastlingShape(king *Piece, target Square) bool {
	return target.Row == king.Position.Row && abs(target.Col-king.Position.Col) == 2
}

func (e *Engine) isCastlingValid(king *Piece, target Square) bool {
	if king.HasMoved || !isCastlingShape(king, target) {
		return false
	}
	rook, dir := e.castleRook(king, target)
	if rook == nil || rook.Kind != Rook || rook.Side != king.Side || rook.HasMoved {
		return false
	}
	row := king.Position.Row
	for col := king.Position.Col + dir; col != rook.Position.Col; col += dir {
		if e.board.at(Square{Row: row, Col: col}) != nil {
			return false
		}
	}
	// the king may not pass through or land on an attacked square
	for i := 1; i <= 2; i++ {
		through := Square{Row: row, Col: king.Position.Col + i*dir}
		attacked := e.simulate(king, through, func() bool {
			return e.inCheckAt(king.Side, levelAttack)
		})
		if attacked {
			return false
		}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
