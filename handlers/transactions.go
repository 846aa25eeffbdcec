// handlers/transactions.go
package handlers

import (
	"f1cards/middleware"

	"github.com/gofiber/fiber/v2"
)

func GetTransactions(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	txs, err := gameService.Transactions(c.UserContext(), userID, 50)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"transactions": txs})
}
