package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tagsy/tagsy-backend/internal/middleware"
	"github.com/tagsy/tagsy-backend/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum event size allowed from a shard.
	maxMessageSize = 100 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Shard connections are service-to-service and token-authenticated.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one connected gateway shard
type Client struct {
	Hub     *Hub
	Conn    *websocket.Conn
	ShardID string
	Send    chan []byte
}

// ServeWS upgrades the connection and starts the pumps. The auth middleware
// has already validated the shard's service token.
func ServeWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		shardID := c.GetString(middleware.ShardIDKey)

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Error("WebSocket upgrade failed", err, map[string]interface{}{
				"shard_id": shardID,
			})
			return
		}

		client := &Client{
			Hub:     hub,
			Conn:    conn,
			ShardID: shardID,
			Send:    make(chan []byte, 256),
		}
		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}

func (c *Client) queue(result *TriggerResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	select {
	case c.Send <- raw:
	default:
		logger.Warn("Dropping trigger result, shard send buffer full", map[string]interface{}{
			"shard_id": c.ShardID,
		})
	}
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket read error", err, map[string]interface{}{
					"shard_id": c.ShardID,
				})
			}
			break
		}

		c.Hub.handleEvent(context.Background(), c, raw)
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
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Error("Failed to write trigger result", err, map[string]interface{}{
					"shard_id": c.ShardID,
				})
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
