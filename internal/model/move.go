package model

// MoveRequest is a move as sent by a presentation client. The selected piece
// is named by PieceID; From is accepted instead for clients that only track
// squares.
type MoveRequest struct {
	PieceID PieceID `json:"pieceId,omitempty"`
	From    *Square `json:"from,omitempty"`
	To      Square  `json:"to"`
}

// MoveResult is the outcome of a MoveRequest.
type MoveResult struct {
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
	State   View   `json:"state"`
}

// TargetsRequest asks for the legal destinations of a selected piece.
type TargetsRequest struct {
	PieceID PieceID `json:"pieceId"`
}

type TargetsResponse struct {
	PieceID PieceID  `json:"pieceId"`
	Targets []Square `json:"targets"`
}
