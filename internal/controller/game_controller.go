package controller

import (
	"errors"
	"strconv"

	"github.com/benbeisheim/clonechess-backend/internal/model"
	"github.com/benbeisheim/clonechess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// CreateGame starts a game. An optional JSON body holding a model.Layout sets
// up a custom position instead of the standard one.
func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var layout *model.Layout
	if len(c.Body()) > 0 {
		layout = &model.Layout{}
		if err := c.BodyParser(layout); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid layout: " + err.Error(),
			})
		}
	}

	gameID, err := gc.gameService.CreateGame(c.UserContext(), layout)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameID := c.Params("gameId")

	gameState, err := gc.gameService.GetGameState(gameID)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(gameState)
}

// MakeMove answers 200 for both applied and illegal moves; applied tells
// them apart.
func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")

	var move model.MoveRequest
	if err := c.BodyParser(&move); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid move: " + err.Error(),
		})
	}

	res, err := gc.gameService.HandleMove(c.UserContext(), gameID, move)
	switch {
	case err == nil, errors.Is(err, model.ErrIllegalMove):
		return c.JSON(res)
	case errors.Is(err, model.ErrGameOver), errors.Is(err, model.ErrNotYourTurn):
		return c.Status(fiber.StatusConflict).JSON(res)
	default:
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

func (gc *GameController) LegalTargets(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	pieceID, err := strconv.Atoi(c.Params("pieceId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "piece id must be a number",
		})
	}

	targets, err := gc.gameService.LegalTargets(gameID, model.PieceID(pieceID))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(model.TargetsResponse{PieceID: model.PieceID(pieceID), Targets: targets})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrUnknownPiece), errors.Is(err, model.ErrInvalidLayout):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrTooManyGames):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, model.ErrGameOver), errors.Is(err, model.ErrNotYourTurn):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
