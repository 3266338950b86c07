package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/callstream/backend/internal/models"
)

func TestHubFanOut(t *testing.T) {
	h := NewHub(nil)

	callA := uuid.New()
	callB := uuid.New()

	// Use actual Client structs but only the send channel for assertion
	screenA := &Client{callID: callA, send: make(chan []byte, 4)}
	screenB := &Client{callID: callB, send: make(chan []byte, 4)}
	admin := &Client{admin: true, send: make(chan []byte, 4)}

	h.callClients[callA] = map[*Client]bool{screenA: true}
	h.callClients[callB] = map[*Client]bool{screenB: true}
	h.adminClients[admin] = true

	go h.Run()

	msg := models.WSMessage{
		Event: models.EventCallTick,
		Payload: models.WSCallStatePayload{
			State:     "playing",
			Remaining: 90,
			Formatted: "01:30",
		},
	}
	h.Publish(callA, msg)

	// The screen watching call A receives the tick
	select {
	case b := <-screenA.send:
		var got models.WSMessage
		if err := json.Unmarshal(b, &got); err != nil {
			t.Fatalf("Failed to decode message: %v", err)
		}
		if got.Event != models.EventCallTick {
			t.Errorf("Expected %s, got %s", models.EventCallTick, got.Event)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for call screen delivery")
	}

	// The admin feed receives everything
	select {
	case <-admin.send:
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for admin feed delivery")
	}

	// The screen watching call B receives nothing
	select {
	case <-screenB.send:
		t.Fatal("Call B screen received an event for call A")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	h := NewHub(nil)
	go h.Run()

	callID := uuid.New()
	client := &Client{hub: h, callID: callID, send: make(chan []byte, 4)}

	h.register <- client

	deadline := time.After(time.Second)
	for h.WatcherCount(callID) == 0 {
		select {
		case <-deadline:
			t.Fatal("Timed out waiting for registration")
		case <-time.After(10 * time.Millisecond):
		}
	}

	h.unregister <- client
	deadline = time.After(time.Second)
	for h.WatcherCount(callID) != 0 {
		select {
		case <-deadline:
			t.Fatal("Timed out waiting for unregistration")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
