package hub

import (
	"encoding/json"
	"sync"
)

// TopicAll receives every event regardless of its topic.
const TopicAll = "*"

// Event represents a change notification sent to subscribers.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client is the channel an SSE handler reads encoded events from.
type Client chan []byte

// Hub fans change events out to subscribers grouped by topic.
type Hub struct {
	topics map[string]map[Client]bool
	mu     sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[Client]bool),
	}
}

// Subscribe adds a client to a topic.
func (h *Hub) Subscribe(topic string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.topics[topic]; !ok {
		h.topics[topic] = make(map[Client]bool)
	}
	h.topics[topic][client] = true
}

// Unsubscribe removes a client from a topic and closes it.
func (h *Hub) Unsubscribe(topic string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.topics[topic]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client) // Close the channel to signal the SSE handler to stop.
			if len(clients) == 0 {
				delete(h.topics, topic)
			}
		}
	}
}

// Subscribers returns the number of clients on a topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Broadcast sends an event to the topic's clients and to TopicAll clients.
func (h *Hub) Broadcast(topic string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	messageBytes, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.send(h.topics[topic], messageBytes)
	if topic != TopicAll {
		h.send(h.topics[TopicAll], messageBytes)
	}
}

func (h *Hub) send(clients map[Client]bool, msg []byte) {
	for client := range clients {
		// Non-blocking: a full client drops the event.
		select {
		case client <- msg:
		default:
		}
	}
}
