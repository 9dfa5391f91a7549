package ws

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testClient() *Client {
	return &Client{
		send:   make(chan *Message, 4),
		groups: make(map[string]bool),
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
	}
}

func TestHub(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := testClient()
	hub.register <- client
	hub.membership <- membership{client: client, group: DashboardGroup, join: true}

	t.Run("Group Member Receives Notification", func(t *testing.T) {
		hub.Notify("dashboard-updated")

		select {
		case msg := <-client.send:
			assert.Equal(t, TypeNotification, msg.Type)
			assert.Equal(t, DashboardGroup, msg.Group)
			assert.Equal(t, "dashboard-updated", msg.Data)
		case <-time.After(time.Second):
			t.Fatal("no notification received")
		}
	})

	t.Run("Left Group Stops Receiving", func(t *testing.T) {
		hub.membership <- membership{client: client, group: DashboardGroup, join: false}
		hub.Notify("dashboard-updated")

		select {
		case <-client.send:
			t.Fatal("client left the group but still got a message")
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("Non Members Ignored", func(t *testing.T) {
		loner := testClient()
		hub.register <- loner
		hub.Notify("dashboard-updated")

		select {
		case <-loner.send:
			t.Fatal("client never joined but got a message")
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("Unregister Closes Send", func(t *testing.T) {
		gone := testClient()
		hub.register <- gone
		hub.membership <- membership{client: gone, group: DashboardGroup, join: true}
		hub.unregister <- gone

		select {
		case _, open := <-gone.send:
			assert.False(t, open)
		case <-time.After(time.Second):
			t.Fatal("send channel not closed")
		}
	})
}

func TestHubShutdown(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client := testClient()
	assert.True(t, hub.add(client))

	cancel()
	select {
	case <-hub.done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	t.Run("Send Closed For Connected Clients", func(t *testing.T) {
		select {
		case _, open := <-client.send:
			assert.False(t, open)
		case <-time.After(time.Second):
			t.Fatal("send channel not closed")
		}
	})

	t.Run("Late Register Rejected", func(t *testing.T) {
		assert.False(t, hub.add(testClient()))
	})

	t.Run("Late Unregister Returns", func(t *testing.T) {
		returned := make(chan struct{})
		go func() {
			hub.remove(client)
			close(returned)
		}()
		select {
		case <-returned:
		case <-time.After(time.Second):
			t.Fatal("unregister blocked after shutdown")
		}
	})

	t.Run("Late Membership Rejected", func(t *testing.T) {
		assert.False(t, hub.setMembership(membership{client: client, group: DashboardGroup, join: true}))
	})
}
