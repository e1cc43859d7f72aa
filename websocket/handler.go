package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/HSouheill/branchstock_backend/middleware"
	"github.com/HSouheill/branchstock_backend/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket authenticates the ?token= query parameter, resolves the
// caller's role and streams notifications until the client goes away.
func HandleWebSocket(hub *Hub, verifier middleware.TokenVerifier, roles middleware.RoleResolver) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.QueryParam("token")
		if token == "" {
			token = middleware.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		}
		if token == "" {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Missing token",
			})
		}

		id, err := verifier.Verify(c.Request().Context(), token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Please provide valid credentials",
			})
		}
		info, err := roles.GetRole(c.Request().Context(), id.UID)
		if err != nil || info.Role == models.RoleNone || info.IsBlocked {
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Notifications are only available to staff",
			})
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}

		client := NewClient(conn, info)
		client.send <- Notification{
			Type:    NotificationTypeConnected,
			Message: "WebSocket connection established",
		}
		if !hub.Register(client) {
			conn.Close()
			return nil
		}

		go client.writePump()
		go client.readPump(hub)
		return nil
	}
}

// readPump only watches for disconnects and pongs; clients never send data.
func (c *Client) readPump(hub *Hub) {
	defer hub.Unregister(c)

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("uid", c.UID).Msg("websocket closed")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case n, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(n); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
