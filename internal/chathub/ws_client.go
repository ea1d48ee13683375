package chathub

import (
	"encoding/json"
	"log/slog"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"modhub/backend/internal/config"
	"modhub/backend/internal/models"
)

// WebSocketClient реалізує інтерфейс chathub.Client поверх gorilla/websocket.
type WebSocketClient struct {
	UserID int64
	Topics []string
	Conn   *websocket.Conn
	Hub    *ManagerService
	Send   chan models.Envelope
	Log    *slog.Logger
}

// NewWebSocketClient wraps conn. userID is 0 for visitors.
func NewWebSocketClient(hub *ManagerService, conn *websocket.Conn, userID int64, topics []string) *WebSocketClient {
	return &WebSocketClient{
		UserID: userID,
		Topics: topics,
		Conn:   conn,
		Hub:    hub,
		Send:   make(chan models.Envelope, config.WSSendBuffer),
		Log:    hub.log.With("user_id", userID),
	}
}

func (c *WebSocketClient) GetUserID() int64                       { return c.UserID }
func (c *WebSocketClient) Subscribed(topic string) bool           { return slices.Contains(c.Topics, topic) }
func (c *WebSocketClient) GetSendChannel() chan<- models.Envelope { return c.Send }

// Run запускає 'pumps' для WebSocket.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close закриває Send канал (що зупинить writePump).
func (c *WebSocketClient) Close() {
	close(c.Send)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(config.WSMaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(config.WSPongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(config.WSPongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Log.Warn("websocket read failed", "error", err)
			}
			return
		}

		var req models.ChatRequest
		if err := json.Unmarshal(data, &req); err != nil {
			c.Log.Debug("ignoring malformed frame", "error", err)
			continue
		}
		c.Hub.Submit(Inbound{Client: c, Message: req.Message})
	}
}

// writePump читає події з каналу Send і записує їх у WebSocket, по одній на кадр.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(config.WSPingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WSWriteWait))
			if !ok {
				// Канал закрито хабом.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(env); err != nil {
				c.Log.Debug("websocket write failed", "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WSWriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
