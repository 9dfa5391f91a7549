package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The hub carries no data, only refresh pings.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan *Message
	groups map[string]bool
	logger *slog.Logger
}

// Serve upgrades the request and runs the client read/write pumps.
func Serve(hub *Hub, logger *slog.Logger, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan *Message, 64),
		groups: make(map[string]bool),
		logger: logger,
	}
	if !hub.add(client) {
		_ = conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()
	return nil
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("Hub read error", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Group == "" {
			continue
		}

		switch msg.Type {
		case TypeJoinGroup:
			if !c.hub.setMembership(membership{client: c, group: msg.Group, join: true}) {
				return
			}
		case TypeLeaveGroup:
			if !c.hub.setMembership(membership{client: c, group: msg.Group, join: false}) {
				return
			}
		}
	}
}

func (c *Client) writePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			c.logger.Warn("Hub write error", "error", err)
			return
		}
	}
}
