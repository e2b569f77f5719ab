package model

import "errors"

var (
	// ErrKingNotFound marks a corrupted board: every side always has a king.
	ErrKingNotFound  = errors.New("king not found")
	ErrInvalidLayout = errors.New("invalid layout")
	ErrUnknownPiece  = errors.New("unknown piece")
	ErrIllegalMove   = errors.New("illegal move")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrGameOver      = errors.New("game is over")
)
