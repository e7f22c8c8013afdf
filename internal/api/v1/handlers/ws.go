package handlers

import (
	"taskhub/internal/middleware"
	myws "taskhub/internal/websocket"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpgradeWS rejects plain HTTP requests to the websocket endpoint.
func UpgradeWS(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Events streams task events to the connected session until it hangs up.
func (h *Handler) Events() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(middleware.LocalUserID).(uuid.UUID)
		client := &myws.Client{Conn: conn}
		h.Hub.Register(client)
		defer h.Hub.Unregister(client)

		logger.ContextLogger.Debug("Websocket connected", zap.String("user_id", userID.String()))
		for {
			// clients only listen; reads detect the close
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
