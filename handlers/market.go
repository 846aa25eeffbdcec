// handlers/market.go
package handlers

import (
	"f1cards/middleware"
	"f1cards/storage"

	"github.com/gofiber/fiber/v2"
)

type CreateListingRequest struct {
	CardID string `json:"cardId" validate:"required"`
	Price  int    `json:"price" validate:"gt=0"`
}

// ListMarket returns active listings. Supports ?search= and
// ?sort=price_asc|price_desc|date|name
func ListMarket(c *fiber.Ctx) error {
	sort := c.Query("sort", storage.SortDate)
	switch sort {
	case storage.SortPriceAsc, storage.SortPriceDesc, storage.SortDate, storage.SortName:
	default:
		return c.Status(400).JSON(fiber.Map{"error": "Unknown sort"})
	}

	listings, err := marketService.List(c.UserContext(), storage.ListingQuery{
		Search: c.Query("search"),
		Sort:   sort,
		Limit:  c.QueryInt("limit", 0),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"listings": listings})
}

func CreateListing(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}
	username, _ := middleware.GetUsername(c)

	var req CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := middleware.ValidateStruct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": middleware.ValidationMessage(err)})
	}

	listing, err := marketService.CreateListing(c.UserContext(), userID, username, req.CardID, req.Price)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "listing": listing})
}

func CancelListing(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	if err := marketService.CancelListing(c.UserContext(), userID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func BuyListing(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	res, err := marketService.Buy(c.UserContext(), userID, c.Params("id"))
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
