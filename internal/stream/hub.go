package stream

import (
	"context"
	"encoding/json"
	"sync"

	"sensordash/internal/logger"
)

// Message is the envelope sent to every connected dashboard client.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub fans tick snapshots and alert events out to connected websocket
// clients.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run owns the client set until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			logger.Debug().Str("remote", client.conn.RemoteAddr().String()).Msg("Stream client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client stalled, drop it
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends a typed message to all clients. Marshalling failures
// are logged and dropped; the feed is best-effort.
func (h *Hub) Broadcast(msgType string, payload any) {
	raw, err := json.Marshal(Message{Type: msgType, Payload: payload})
	if err != nil {
		logger.Error().Err(err).Str("type", msgType).Msg("Failed to marshal stream message")
		return
	}

	select {
	case h.broadcast <- raw:
	default:
		logger.Debug().Str("type", msgType).Msg("Stream broadcast queue full, dropping message")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
