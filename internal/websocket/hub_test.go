package websocket

import (
	"testing"
	"time"
)

func TestHubDisconnectsClientWithFullBuffer(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{UserID: "u1", hub: hub, send: make(chan []byte, 1)}
	client.send <- []byte("queued")
	hub.register <- client
	hub.Subscribe("trip-1", "u1")

	hub.BroadcastToUser("u1", map[string]string{"type": "entry_created"})

	deadline := time.After(2 * time.Second)
	for hub.IsUserConnected("u1") {
		select {
		case <-deadline:
			t.Fatal("client with a full send buffer was never removed")
		case <-time.After(10 * time.Millisecond):
		}
	}

	hub.mu.RLock()
	_, inRoom := hub.rooms["trip-1"]["u1"]
	hub.mu.RUnlock()
	if inRoom {
		t.Error("disconnected client still subscribed to its trip room")
	}
}

func TestHubBroadcastToTripSkipsSlowConsumer(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	fast := &Client{UserID: "fast", hub: hub, send: make(chan []byte, 4)}
	slow := &Client{UserID: "slow", hub: hub, send: make(chan []byte, 1)}
	slow.send <- []byte("stuck")
	hub.register <- fast
	hub.register <- slow
	// Registration is applied by the hub's Run goroutine after the channel
	// send returns; wait for it before broadcasting and asserting.
	for _, id := range []string{"fast", "slow"} {
		deadline := time.After(2 * time.Second)
		for !hub.IsUserConnected(id) {
			select {
			case <-deadline:
				t.Fatalf("client %s was never registered", id)
			case <-time.After(5 * time.Millisecond):
			}
		}
	}
	hub.Subscribe("trip-1", "fast")
	hub.Subscribe("trip-1", "slow")

	hub.BroadcastToTrip("trip-1", map[string]string{"type": "entry_created"})

	select {
	case <-fast.send:
	case <-time.After(time.Second):
		t.Fatal("fast consumer never received the trip broadcast")
	}
	// Trip broadcasts skip slow consumers rather than disconnecting them.
	if !hub.IsUserConnected("slow") {
		t.Error("slow consumer was disconnected by a trip broadcast")
	}
}
