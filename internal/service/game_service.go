package service

import (
	"context"
	"fmt"

	"github.com/benbeisheim/clonechess-backend/internal/model"
	"github.com/benbeisheim/clonechess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) CreateGame(ctx context.Context, layout *model.Layout) (string, error) {
	gameID := uuid.New().String()

	if _, err := gs.gameManager.CreateGame(ctx, gameID, layout); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

func (gs *GameService) GetGameState(gameID string) (model.View, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) HandleMove(ctx context.Context, gameID string, move model.MoveRequest) (model.MoveResult, error) {
	return gs.gameManager.MakeMove(ctx, gameID, move)
}

func (gs *GameService) LegalTargets(gameID string, pieceID model.PieceID) ([]model.Square, error) {
	return gs.gameManager.LegalTargets(gameID, pieceID)
}

func (gs *GameService) RegisterConnection(gameID string, clientID string, conn *websocket.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, clientID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, clientID string, conn *websocket.Conn) {
	gs.gameManager.UnregisterConnection(gameID, clientID, conn)
}

func (gs *GameService) Send(gameID, clientID string, msg ws.Message) error {
	return gs.gameManager.Send(gameID, clientID, msg)
}
