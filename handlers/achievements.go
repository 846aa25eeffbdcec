// handlers/achievements.go
package handlers

import (
	"f1cards/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetAchievements returns both pools after applying the daily reset
func GetAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	view, err := gameService.Achievements(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// ClaimAchievement pays out an unlocked reward. A locked or already
// claimed achievement answers 200 with claimed=false.
func ClaimAchievement(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	res, err := gameService.ClaimAchievement(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"claimed": res.Claimed,
		"reward":  res.Reward,
		"balance": res.Balance,
	})
}
