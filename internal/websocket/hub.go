package websocket

import (
	"encoding/json"
	"sync"

	"github.com/isdelr/haulboard-be/internal/models"
	"github.com/rs/zerolog/log"
)

type delivery struct {
	userID  string
	message []byte
}

// Hub maintains the set of active clients and routes messages to the sockets of a given user.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	// Registered clients, grouped by user id.
	users map[string]map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Messages addressed to a single user.
	deliver chan delivery

	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		users:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 64),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns after Stop.
func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case client := <-h.register:
			if h.users[client.UserID] == nil {
				h.users[client.UserID] = make(map[*Client]bool)
			}
			h.users[client.UserID][client] = true
			log.Info().Str("user_id", client.UserID).Int("user_clients", len(h.users[client.UserID])).Msg("Client connected")
		case client := <-h.unregister:
			if h.remove(client) {
				log.Info().Str("user_id", client.UserID).Msg("Client disconnected")
			}
		case d := <-h.deliver:
			for client := range h.users[d.userID] {
				select {
				case client.Send <- d.message:
				default:
					// Slow consumer; drop it rather than block every other user.
					log.Warn().Str("user_id", d.userID).Msg("Dropping slow websocket client")
					h.remove(client)
				}
			}
		case <-h.done:
			for _, clients := range h.users {
				for client := range clients {
					close(client.Send)
				}
			}
			h.users = make(map[string]map[*Client]bool)
			return
		}
	}
}

// Stop ends the Run loop and closes every client's send channel.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
	<-h.stopped
}

// Register adds a client. It is a no-op once the hub has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToUser queues message for every socket userID has open.
func (h *Hub) SendToUser(userID string, message []byte) {
	select {
	case h.deliver <- delivery{userID: userID, message: message}:
	case <-h.done:
	}
}

// PublishNotification pushes n to its owner's sockets.
func (h *Hub) PublishNotification(n models.Notification) {
	msg, err := json.Marshal(NewNotificationMessage(n))
	if err != nil {
		log.Error().Err(err).Str("notification_id", n.ID).Msg("Failed to encode notification message")
		return
	}
	h.SendToUser(n.UserID, msg)
}

func (h *Hub) remove(client *Client) bool {
	clients, ok := h.users[client.UserID]
	if !ok || !clients[client] {
		return false
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.users, client.UserID)
	}
	return true
}
