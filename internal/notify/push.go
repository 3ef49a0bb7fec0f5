package notify

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// PushNotification is the ephemeral payload delivered on a user's channel.
// Missed notifications are not persisted.
type PushNotification struct {
	Message      string `json:"message"`
	TicketID     string `json:"ticket_id"`
	TicketNumber string `json:"ticket_number"`
	Title        string `json:"title"`
	Link         string `json:"link"`
}

// Client is one websocket connection belonging to a user. A user may have
// several open connections (tabs); each gets its own send channel.
type Client struct {
	ID     string
	UserID string
	Send   chan []byte
}

// Hub fans push notifications out to connected clients, keyed by user.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register adds a client connection.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
}

// Unregister removes a client connection and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	close(client.Send)
}

// Publish delivers a notification to every connection of the given user.
// Slow consumers are skipped rather than blocked on.
func (h *Hub) Publish(userID string, notification PushNotification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.UserID != userID {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			h.logger.Debug("drop push for slow client", zap.String("client_id", client.ID))
		}
	}
	return nil
}
