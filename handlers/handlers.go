// handlers/handlers.go - Shared handler wiring and error mapping
package handlers

import (
	"errors"

	"f1cards/achievements"
	"f1cards/cardgen"
	"f1cards/services"
	"f1cards/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	userService   *services.UserService
	gameService   *services.GameService
	marketService *services.MarketService
	notifier      *services.Notifier
)

// Init wires the services the handlers call.
func Init(users *services.UserService, game *services.GameService, market *services.MarketService, n *services.Notifier) {
	userService = users
	gameService = game
	marketService = market
	notifier = n
}

// respondError maps service errors to HTTP statuses. Unknown errors are
// logged and reported as 500 without details.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := "Internal server error"

	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		status, msg = fiber.StatusBadRequest, "Invalid credentials"
	case errors.Is(err, services.ErrMissingFields),
		errors.Is(err, services.ErrUserExists),
		errors.Is(err, services.ErrInsufficientFunds),
		errors.Is(err, services.ErrInvalidPrice),
		errors.Is(err, services.ErrOwnListing),
		errors.Is(err, cardgen.ErrInvalidArgument):
		status, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrCardNotFound),
		errors.Is(err, achievements.ErrUnknownAchievement):
		status, msg = fiber.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrNotListingOwner):
		status, msg = fiber.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrListingUnavailable):
		status, msg = fiber.StatusConflict, err.Error()
	default:
		utils.Logger.Error("request_failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
