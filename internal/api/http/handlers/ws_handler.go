package handlers

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fluxdesk/helpdesk/internal/auth"
	"github.com/fluxdesk/helpdesk/internal/notify"
	apperrors "github.com/fluxdesk/helpdesk/pkg/util"
)

const (
	wsWriteWait    = 10 * time.Second
	wsPingInterval = 30 * time.Second
	wsSendBuffer   = 16
)

// WSHandler upgrades connections for live push notifications. Browsers
// cannot set an Authorization header during the upgrade, so the token rides
// as a query parameter instead.
type WSHandler struct {
	hub    *notify.Hub
	authMW *auth.AuthMiddleware
	logger *zap.Logger
}

// NewWSHandler constructs handler.
func NewWSHandler(hub *notify.Hub, authMW *auth.AuthMiddleware, logger *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, authMW: authMW, logger: logger}
}

// Upgrade authenticates the caller and hands the connection to the hub.
// Mounted as GET /ws/notifications.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return apperrors.NewUnauthorized("token query parameter required")
	}
	user, err := h.authMW.Authenticate(c, token)
	if err != nil {
		return err
	}
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	userID := user.ID
	return websocket.New(func(conn *websocket.Conn) {
		client := &notify.Client{
			ID:     uuid.NewString(),
			UserID: userID,
			Send:   make(chan []byte, wsSendBuffer),
		}
		h.hub.Register(client)
		defer h.hub.Unregister(client)

		go h.readLoop(conn)
		h.writeLoop(conn, client)
	})(c)
}

// readLoop drains inbound frames. Clients never send application data;
// reading is still required to process close and pong frames.
func (h *WSHandler) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WSHandler) writeLoop(conn *websocket.Conn, client *notify.Client) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case payload, ok := <-client.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.logger.Debug("websocket write failed", zap.String("user_id", client.UserID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
