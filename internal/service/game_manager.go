// service/game_manager.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/clonechess-backend/internal/events"
	"github.com/benbeisheim/clonechess-backend/internal/model"
	"github.com/benbeisheim/clonechess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

type ManagerOptions struct {
	Rules     model.Rules
	MaxGames  int
	Publisher events.Publisher
	Logger    *zap.Logger
}

type GameManager struct {
	games     map[string]*model.Game
	rules     model.Rules
	maxGames  int
	publisher events.Publisher
	log       *zap.Logger
	mu        sync.RWMutex
}

func NewGameManager(opts ManagerOptions) *GameManager {
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &GameManager{
		games:     make(map[string]*model.Game),
		rules:     opts.Rules,
		maxGames:  opts.MaxGames,
		publisher: opts.Publisher,
		log:       opts.Logger,
	}
}

// CreateGame starts a game from the standard position, or from layout when
// it is not nil.
func (gm *GameManager) CreateGame(ctx context.Context, gameID string, layout *model.Layout) (*model.Game, error) {
	var game *model.Game
	if layout != nil {
		engine, err := model.NewEngineFromLayout(layout.Turn, layout.Pieces, model.WithHaltOnTerminal(gm.rules.HaltOnTerminal))
		if err != nil {
			return nil, err
		}
		game = model.NewGameWithEngine(gameID, engine, gm.rules, gm.log)
	} else {
		game = model.NewGame(gameID, gm.rules, gm.log)
	}

	// a game that cannot render is never registered
	view, err := game.View()
	if err != nil {
		return nil, err
	}

	gm.mu.Lock()
	if _, exists := gm.games[gameID]; exists {
		gm.mu.Unlock()
		return nil, ErrGameExists
	}
	if gm.maxGames > 0 && len(gm.games) >= gm.maxGames {
		gm.mu.Unlock()
		return nil, ErrTooManyGames
	}
	gm.games[gameID] = game
	gm.mu.Unlock()

	gm.log.Info("game_create",
		zap.String("game_id", gameID),
		zap.Bool("custom_layout", layout != nil),
		zap.String("to_move", string(view.Turn)),
	)
	gm.publish(ctx, events.TypeGameCreated, view)
	return game, nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return game, nil
}

func (gm *GameManager) GetGameState(gameID string) (model.View, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.View{}, err
	}
	return game.View()
}

func (gm *GameManager) MakeMove(ctx context.Context, gameID string, move model.MoveRequest) (model.MoveResult, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.MoveResult{}, err
	}
	res, err := game.MakeMove(move)
	if err != nil {
		return res, err
	}
	gm.publish(ctx, events.TypeMoveApplied, res.State)
	return res, nil
}

func (gm *GameManager) LegalTargets(gameID string, pieceID model.PieceID) ([]model.Square, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalTargets(pieceID)
}

// RemoveGame drops a game and its observers from the manager.
func (gm *GameManager) RemoveGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	if _, exists := gm.games[gameID]; !exists {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	delete(gm.games, gameID)
	gm.log.Info("game_remove", zap.String("game_id", gameID))
	return nil
}

func (gm *GameManager) Count() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}

func (gm *GameManager) RegisterConnection(gameID string, clientID string, conn *websocket.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(clientID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, clientID string, conn *websocket.Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(clientID, conn)
}

func (gm *GameManager) Send(gameID, clientID string, msg ws.Message) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Send(clientID, msg)
}

// publish is best effort: a failing event sink never fails a move.
func (gm *GameManager) publish(ctx context.Context, t events.Type, view model.View) {
	ev := events.Event{
		Type:   t,
		GameID: view.ID,
		State:  string(view.State),
		ToMove: string(view.Turn),
		At:     time.Now(),
	}
	if err := gm.publisher.Publish(ctx, ev); err != nil {
		gm.log.Warn("event_publish_error", zap.String("game_id", view.ID), zap.String("type", string(t)), zap.Error(err))
	}
}
