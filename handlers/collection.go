// handlers/collection.go
package handlers

import (
	"strings"

	"f1cards/cardgen"
	"f1cards/middleware"
	"f1cards/services"

	"github.com/gofiber/fiber/v2"
)

// GetCollection lists the player's cards, optionally filtered by
// ?rarity= and ?category=
func GetCollection(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var filter services.CollectionFilter
	if r := strings.ToLower(c.Query("rarity")); r != "" {
		filter.Rarity = cardgen.Rarity(r)
		if !filter.Rarity.Valid() {
			return c.Status(400).JSON(fiber.Map{"error": "Unknown rarity"})
		}
	}
	if cat := strings.ToLower(c.Query("category")); cat != "" {
		filter.Category = cardgen.Category(cat)
		if !filter.Category.Valid() {
			return c.Status(400).JSON(fiber.Map{"error": "Unknown category"})
		}
	}

	cards, err := gameService.Collection(c.UserContext(), userID, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"cards": cards, "count": len(cards)})
}

func GetCollectionCard(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	card, err := gameService.Card(c.UserContext(), userID, c.Params("cardId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(card)
}

func GetCollectionValue(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	value, count, err := gameService.CollectionValue(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"value": value, "count": count})
}
