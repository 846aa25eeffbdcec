// handlers/shop.go
package handlers

import (
	"f1cards/middleware"

	"github.com/gofiber/fiber/v2"
)

func ListShop(c *fiber.Ctx) error {
	cards, err := gameService.ListShop(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"cards": cards})
}

func BuyShopCard(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	res, err := gameService.BuyShopCard(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"card":    res.Card,
		"balance": res.Balance,
		"unlocks": res.Unlocks,
	})
}
