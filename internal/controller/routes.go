package controller

import (
	"github.com/benbeisheim/clonechess-backend/internal/middleware"
	"github.com/benbeisheim/clonechess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type RouteConfig struct {
	WSOrigins         []string
	WSReadBufferSize  int
	WSWriteBufferSize int
}

// Register mounts the REST and websocket routes on app.
func Register(app *fiber.App, gameService *service.GameService, cfg RouteConfig) {
	gameController := NewGameController(gameService)
	wsController := NewWebSocketController(gameService)

	app.Use("/ws/*", middleware.EnsureClientID())
	app.Get("/ws/game/:gameId", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  cfg.WSReadBufferSize,
		WriteBufferSize: cfg.WSWriteBufferSize,
		Origins:         cfg.WSOrigins,
	}))

	api := app.Group("/api", middleware.EnsureClientID())

	gameRoutes := api.Group("/game")
	gameRoutes.Post("/create", gameController.CreateGame)
	gameRoutes.Get("/:gameId", gameController.GetGameState)
	gameRoutes.Post("/:gameId/move", gameController.MakeMove)
	gameRoutes.Get("/:gameId/pieces/:pieceId/targets", gameController.LegalTargets)
}
