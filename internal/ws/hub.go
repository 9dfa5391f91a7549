package ws

import (
	"context"
	"log/slog"
)

// Message is the hub wire format. Clients send join-group/leave-group, the
// server sends notification.
type Message struct {
	Type  string `json:"type"`
	Group string `json:"group"`
	Data  any    `json:"data,omitempty"`
}

const (
	TypeJoinGroup    = "join-group"
	TypeLeaveGroup   = "leave-group"
	TypeNotification = "notification"
)

// DashboardGroup is the group dashboard pages join for refresh pings.
const DashboardGroup = "dashboard"

type membership struct {
	client *Client
	group  string
	join   bool
}

// Hub tracks connected clients and their group memberships. All state is
// owned by the Run loop; everything else talks to it over channels.
type Hub struct {
	logger     *slog.Logger
	register   chan *Client
	unregister chan *Client
	membership chan membership
	broadcast  chan *Message
	done       chan struct{}
	groups     map[string]map[*Client]bool
	clients    map[*Client]bool
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:     logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		membership: make(chan membership),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
		groups:     make(map[string]map[*Client]bool),
		clients:    make(map[*Client]bool),
	}
}

func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("Hub starting")
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if h.clients[client] {
				delete(h.clients, client)
				for group := range client.groups {
					h.leaveGroup(client, group)
				}
				close(client.send)
			}

		case m := <-h.membership:
			if !h.clients[m.client] {
				continue
			}
			if m.join {
				if h.groups[m.group] == nil {
					h.groups[m.group] = make(map[*Client]bool)
				}
				h.groups[m.group][m.client] = true
				m.client.groups[m.group] = true
			} else {
				h.leaveGroup(m.client, m.group)
				delete(m.client.groups, m.group)
			}

		case msg := <-h.broadcast:
			for client := range h.groups[msg.Group] {
				select {
				case client.send <- msg:
				default:
					// Slow client, skip this ping.
				}
			}

		case <-ctx.Done():
			h.logger.Info("Hub stopping")
			// Unblocks any client goroutine still sending to the hub.
			close(h.done)
			for client := range h.clients {
				close(client.send)
			}
			return
		}
	}
}

// add registers a client, or reports false if the hub has stopped.
func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// remove hands a client back for cleanup; a no-op after shutdown.
func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) setMembership(m membership) bool {
	select {
	case h.membership <- m:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leaveGroup(client *Client, group string) {
	if members, ok := h.groups[group]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
}

// Notify pushes a named event to the dashboard group. Data delivery is not
// the hub's job: clients re-fetch over the REST API.
func (h *Hub) Notify(event string) {
	msg := &Message{Type: TypeNotification, Group: DashboardGroup, Data: event}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("Hub broadcast channel full, dropping event", "event", event)
	}
}
