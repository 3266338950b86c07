package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/callstream/backend/internal/callsession"
	"github.com/callstream/backend/internal/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096 // 4KB, control messages only
)

// Client represents one WebSocket connection: either a call screen bound to
// a single call, or an admin dashboard feed.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	admin bool

	callID   uuid.UUID
	registry *callsession.Registry
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, conn *websocket.Conn, callID uuid.UUID, admin bool, registry *callsession.Registry) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		admin:    admin,
		callID:   callID,
		registry: registry,
	}
}

// ReadPump pumps control messages from the WebSocket connection to the call
// runner
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage handles incoming control messages. The admin feed is
// read-only; its messages are ignored.
func (c *Client) handleMessage(data []byte) {
	if c.admin {
		return
	}

	var wsMsg models.WSMessage
	if err := json.Unmarshal(data, &wsMsg); err != nil {
		c.sendError("Invalid message format")
		return
	}

	runner, ok := c.registry.Get(c.callID)
	if !ok {
		c.sendError("Call is not in progress")
		return
	}

	switch wsMsg.Event {
	case models.EventCallHangup:
		runner.Hangup()

	case models.EventCallPause:
		runner.Pause()

	case models.EventCallResume:
		runner.Resume()

	case models.EventMediaEnded:
		runner.MediaEnded()

	case models.EventMediaError:
		data, _ := json.Marshal(wsMsg.Payload)
		var req models.WSMediaErrorPayload
		if err := json.Unmarshal(data, &req); err != nil {
			c.sendError("Invalid media error payload")
			return
		}
		runner.MediaError(req.Message)

	default:
		c.sendError("Unknown event type")
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	errorMsg := models.WSMessage{
		Event: models.EventError,
		Payload: models.WSErrorPayload{
			Message: message,
		},
	}

	data, _ := json.Marshal(errorMsg)
	select {
	case c.send <- data:
	default:
	}
}
