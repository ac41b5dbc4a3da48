// Package socket carries the live order feed. Every order accepted by the
// API is broadcast to all connected clients.
package socket

import (
	"encoding/json"

	"resepku/pkg/logger"
)

const OrderType = "ORDER"

// Event is one feed message.
type Event struct {
	Type    string          `json:"type"`
	Ref     string          `json:"ref,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Hub struct {
	clients    map[*Client]bool
	Broadcast  chan Event
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan Event, 16),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			logger.Sugar.Infof("Feed client connected: %s (%d online)", client.UserID, len(h.clients))

		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				logger.Sugar.Infof("Feed client disconnected: %s (%d online)", client.UserID, len(h.clients))
			}

		case event := <-h.Broadcast:
			message, err := json.Marshal(event)
			if err != nil {
				logger.Sugar.Errorf("Failed to marshal feed event: %v", err)
				continue
			}
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Slow consumer; drop it rather than stall the feed.
					delete(h.clients, client)
					close(client.Send)
				}
			}
		}
	}
}
