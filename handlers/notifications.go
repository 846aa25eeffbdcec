// handlers/notifications.go
package handlers

import (
	"time"

	"f1cards/middleware"
	"f1cards/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

func GetNotifications(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"notifications": notifier.List(userID)})
}

// DismissNotification hides a toast. Achievement state is not touched.
func DismissNotification(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}
	if !notifier.Dismiss(userID, c.Params("id")) {
		return c.Status(404).JSON(fiber.Map{"error": "Notification not found"})
	}
	return c.JSON(fiber.Map{"success": true})
}

// WebSocketUpgrade rejects plain HTTP requests to the websocket route.
func WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// NotificationsWebSocket pushes unlock events to the connected player as
// JSON messages. Events still visible at connect time are sent first.
var NotificationsWebSocket = websocket.New(func(conn *websocket.Conn) {
	userID, ok := conn.Locals("userId").(uint)
	if !ok {
		_ = conn.Close()
		return
	}

	backlog, events, unsubscribe := notifier.Subscribe(userID)
	defer unsubscribe()
	utils.Logger.Info("ws_connected", zap.Uint("user_id", userID))

	// The client never sends anything useful; reading detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for _, note := range backlog {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(note); err != nil {
			return
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case note, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(note); err != nil {
				utils.Logger.Warn("ws_write_failed", zap.Uint("user_id", userID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			utils.Logger.Info("ws_disconnected", zap.Uint("user_id", userID))
			return
		}
	}
})
