package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/benbeisheim/clonechess-backend/internal/model"
	"github.com/benbeisheim/clonechess-backend/internal/obslog"
	"github.com/benbeisheim/clonechess-backend/internal/service"
	"github.com/benbeisheim/clonechess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	clientID, _ := c.Locals("clientID").(string)
	log := obslog.L().With(zap.String("game_id", gameID), zap.String("client_id", clientID))

	if err := wsc.gameService.RegisterConnection(gameID, clientID, c); err != nil {
		log.Warn("ws_register_failed", zap.Error(err))
		if errors.Is(err, service.ErrGameNotFound) {
			_ = c.WriteJSON(ws.ErrorMessage(err.Error()))
		}
		_ = c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, clientID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debug("ws_read_closed", zap.Error(err))
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Debug("ws_parse_error", zap.Error(err))
			wsc.sendError(gameID, clientID, "malformed message")
			continue
		}

		if err := wsc.handleMessage(gameID, clientID, msg); err != nil {
			log.Debug("ws_handle_error", zap.String("type", string(msg.Type)), zap.Error(err))
			wsc.sendError(gameID, clientID, err.Error())
		}
	}
}

func (wsc *WebSocketController) handleMessage(gameID, clientID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.MoveRequest
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		// an applied move reaches every client through the state broadcast
		_, err := wsc.gameService.HandleMove(context.Background(), gameID, move)
		return err

	case ws.MessageTypeTargets:
		var req model.TargetsRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		targets, err := wsc.gameService.LegalTargets(gameID, req.PieceID)
		if err != nil {
			return err
		}
		reply, err := ws.NewMessage(ws.MessageTypeTargets, model.TargetsResponse{PieceID: req.PieceID, Targets: targets})
		if err != nil {
			return err
		}
		return wsc.gameService.Send(gameID, clientID, reply)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) sendError(gameID, clientID, errorMsg string) {
	if err := wsc.gameService.Send(gameID, clientID, ws.ErrorMessage(errorMsg)); err != nil {
		obslog.L().Debug("ws_send_error_failed", zap.String("game_id", gameID), zap.Error(err))
	}
}
