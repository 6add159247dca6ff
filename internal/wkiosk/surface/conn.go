package surface

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Surfaces are local kiosk browsers served from file or another port
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// connection is a middleman between the websocket connection and the hub
type connection struct {
	id         uuid.UUID
	remoteAddr string
	ws         *websocket.Conn
	send       chan []byte
	hub        *Hub
	logger     *slog.Logger
}

// cleanup handles connection closure and unregistration
func (c *connection) cleanup() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.done:
	}

	if err := c.ws.Close(); err != nil {
		c.logger.Debug("error closing websocket connection",
			"error", err,
			"connectionId", c.id,
		)
	}
}

// readPump keeps the read deadline alive. Surfaces only send pongs and
// optional status reports, which are logged.
func (c *connection) readPump() {
	defer c.cleanup()

	c.ws.SetReadLimit(maxMessageSize)
	if err := c.ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("failed to set read deadline",
			"error", err,
			"connectionId", c.id,
		)
		return
	}

	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("websocket read error",
					"error", err,
					"connectionId", c.id,
				)
			}
			return
		}

		var msg v1alpha1.ControlMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.Warn("invalid surface message",
				"error", err,
				"connectionId", c.id,
			)
			continue
		}
		if msg.Type != v1alpha1.ControlMessageStatus {
			c.logger.Warn("unexpected message type",
				"type", msg.Type,
				"connectionId", c.id,
			)
			continue
		}
		c.logger.Debug("surface status", "connectionId", c.id)
	}
}

func (c *connection) write(mt int, payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(mt, payload)
}

func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				_ = c.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(websocket.TextMessage, message); err != nil {
				c.logger.Warn("failed to write message",
					"error", err,
					"connectionId", c.id,
				)
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, []byte{}); err != nil {
				c.logger.Warn("failed to write ping",
					"error", err,
					"connectionId", c.id,
				)
				return
			}
		}
	}
}
