package handlers

import (
	"errors"
	"strings"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/peptok/CoachMarketBack/internal/models"
	adminws "github.com/peptok/CoachMarketBack/internal/websocket"
	"github.com/peptok/CoachMarketBack/pkg/utils"
)

type AdminWSHandler struct {
	hub       *adminws.Hub
	jwtSecret string
}

func NewAdminWSHandler(hub *adminws.Hub, jwtSecret string) *AdminWSHandler {
	return &AdminWSHandler{hub: hub, jwtSecret: jwtSecret}
}

// WebSocketAuth reads the token from the token query parameter, falling
// back to the Authorization header.
func (h *AdminWSHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}
	if claims.Role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("role", claims.Role)
	return c.Next()
}

func (h *AdminWSHandler) HandleWebSocket(conn *websocket.Conn) {
	adminID, _ := conn.Locals("user_id").(string)
	client := adminws.NewClient(h.hub, conn, adminID)

	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump()
}

func (h *AdminWSHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}
