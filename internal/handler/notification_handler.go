package handler

import (
	"wellmate-be/internal/pkg/logger"
	"wellmate-be/internal/pkg/serverutils"
	internalWS "wellmate-be/internal/websocket"
	"wellmate-be/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	hub    *internalWS.Hub
	issuer token.IIssuer
	logger logger.ILogger
}

func NewNotificationHandler(hub *internalWS.Hub, issuer token.IIssuer, log logger.ILogger) *NotificationHandler {
	return &NotificationHandler{
		hub:    hub,
		issuer: issuer,
		logger: log,
	}
}

// ServeWs upgrades an authenticated request and attaches it to the hub.
func (h *NotificationHandler) ServeWs(c *fiber.Ctx) error {
	// 1. Get token: query param for browsers, Authorization header otherwise
	tokenStr := c.Query("token")
	if tokenStr == "" {
		var err error
		tokenStr, err = serverutils.BearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
	}

	// 2. Verify
	claims, err := serverutils.VerifyAccessToken(h.issuer, tokenStr)
	if err != nil {
		h.logger.Warn("NotificationHandler", "Invalid token in websocket handshake", map[string]interface{}{"error": err.Error()})
		return err
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	// 3. Upgrade
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("NotificationHandler", "WebSocket session started", map[string]interface{}{"user_id": userID.String()})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info("NotificationHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID.String()})
	})(c)
}

func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/notifications", h.ServeWs)
}
