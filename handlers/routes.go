// handlers/routes.go - API route table
package handlers

import (
	"f1cards/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes mounts the API on app. Nil limiters disable rate limiting.
func SetupRoutes(app *fiber.App, general, auth *middleware.RateLimiter) {
	api := app.Group("/api")

	limit := middleware.FiberRateLimitMiddleware(general)

	// Public routes
	api.Post("/register", middleware.FiberAuthRateLimitMiddleware(auth), Register)
	api.Post("/login", middleware.FiberAuthRateLimitMiddleware(auth), Login)
	api.Get("/packs", limit, ListPacks)
	api.Get("/shop", limit, ListShop)
	api.Get("/market", limit, ListMarket)

	// Everything below needs a bearer token
	protected := api.Group("", middleware.AuthMiddleware, limit)

	protected.Get("/profile", GetProfile)
	protected.Put("/profile", UpdateProfile)

	protected.Post("/packs/:id/open", OpenPack)
	protected.Post("/shop/:id/buy", BuyShopCard)

	protected.Get("/collection", GetCollection)
	protected.Get("/collection/value", GetCollectionValue)
	protected.Get("/collection/:cardId", GetCollectionCard)

	protected.Post("/market", CreateListing)
	protected.Delete("/market/:id", CancelListing)
	protected.Post("/market/:id/buy", BuyListing)

	protected.Get("/achievements", GetAchievements)
	protected.Post("/achievements/:id/claim", ClaimAchievement)

	protected.Get("/notifications", GetNotifications)
	protected.Delete("/notifications/:id", DismissNotification)

	protected.Get("/transactions", GetTransactions)

	// Unlock push channel, token passed as ?token=
	app.Get("/ws", WebSocketUpgrade, middleware.WebSocketAuthMiddleware, NotificationsWebSocket)
}
