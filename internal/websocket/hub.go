package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/callstream/backend/internal/cache"
	"github.com/callstream/backend/internal/models"
)

// Hub routes call lifecycle events to the screens watching them: each call
// screen subscribes to its own call, admin dashboard connections see every
// call. With Redis available events travel through pub/sub so multiple
// server instances stay in sync; without it delivery is local.
type Hub struct {
	// Call screen clients keyed by the call they watch
	callClients map[uuid.UUID]map[*Client]bool

	// Admin dashboard clients watching all calls
	adminClients map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Events ready for local delivery
	deliver chan cache.CallEvent

	// Redis client for pub/sub, may be nil
	redis *cache.RedisClient

	mu sync.RWMutex
}

// NewHub creates a new Hub
func NewHub(redis *cache.RedisClient) *Hub {
	return &Hub{
		callClients:  make(map[uuid.UUID]map[*Client]bool),
		adminClients: make(map[*Client]bool),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		deliver:      make(chan cache.CallEvent, 256),
		redis:        redis,
	}
}

// Run starts the hub
func (h *Hub) Run() {
	if h.redis != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if client.admin {
				h.adminClients[client] = true
			} else {
				if h.callClients[client.callID] == nil {
					h.callClients[client.callID] = make(map[*Client]bool)
				}
				h.callClients[client.callID][client] = true
			}
			h.mu.Unlock()
			log.Printf("WS client registered (call=%s admin=%v)", client.callID, client.admin)

		case client := <-h.unregister:
			h.mu.Lock()
			if client.admin {
				if _, ok := h.adminClients[client]; ok {
					delete(h.adminClients, client)
					close(client.send)
				}
			} else if clients, ok := h.callClients[client.callID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.callClients, client.callID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("WS client unregistered (call=%s admin=%v)", client.callID, client.admin)

		case event := <-h.deliver:
			h.fanOut(event)
		}
	}
}

// Publish routes a call event to its watchers. With Redis the event makes a
// round trip through pub/sub; otherwise it is delivered directly.
func (h *Hub) Publish(callID uuid.UUID, msg models.WSMessage) {
	event := cache.CallEvent{CallID: callID.String(), Message: msg}
	if h.redis != nil {
		if err := h.redis.PublishCallEvent(event); err != nil {
			log.Printf("Failed to publish call event: %v", err)
			h.deliver <- event
		}
		return
	}
	h.deliver <- event
}

// subscribeToRedis relays call events from Redis pub/sub
func (h *Hub) subscribeToRedis() {
	pubsub := h.redis.SubscribeToCallEvents()
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var event cache.CallEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("Failed to decode call event: %v", err)
			continue
		}
		h.deliver <- event
	}
}

func (h *Hub) fanOut(event cache.CallEvent) {
	callID, err := uuid.Parse(event.CallID)
	if err != nil {
		return
	}
	data, err := json.Marshal(event.Message)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.callClients[callID] {
		select {
		case client.send <- data:
		default:
			// Client's send channel is full, skip
		}
	}
	for client := range h.adminClients {
		select {
		case client.send <- data:
		default:
		}
	}
}

// WatcherCount returns how many clients watch a call (admin feed included).
func (h *Hub) WatcherCount(callID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.callClients[callID]) + len(h.adminClients)
}
