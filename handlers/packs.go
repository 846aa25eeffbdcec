// handlers/packs.go
package handlers

import (
	"f1cards/middleware"

	"github.com/gofiber/fiber/v2"
)

func ListPacks(c *fiber.Ctx) error {
	packs, err := gameService.ListPacks(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"packs": packs})
}

// OpenPack buys a pack and returns the drawn cards
func OpenPack(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	res, err := gameService.BuyPack(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"pack":    res.Pack,
		"cards":   res.Cards,
		"balance": res.Balance,
		"unlocks": res.Unlocks,
	})
}
