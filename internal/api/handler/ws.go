package handler

import (
	"net/http"
	"net/url"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"modhub/backend/internal/auth"
	"modhub/backend/internal/chathub"
)

// ServeWebSocket оновлює HTTP-з'єднання до WebSocket. Visitors get the public
// topic; the token (header or ?token=) adds the private and admin topics.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade вже записав відповідь з помилкою.
		h.log.Debug("websocket upgrade failed", "error", err)
		return
	}

	user := currentUser(c)
	var userID int64
	if user != nil {
		userID = user.ID
	}

	client := chathub.NewWebSocketClient(h.Hub, conn, userID, auth.Topics(user))
	if !h.Hub.Register(client) {
		conn.Close()
		return
	}
	client.Run()
}

// checkOrigin accepts same-origin requests and the configured CORS origins.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(h.allowedOrigins, "*") || slices.Contains(h.allowedOrigins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}
