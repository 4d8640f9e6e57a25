package websocket

import (
	"encoding/json"

	"github.com/isdelr/haulboard-be/internal/models"
)

// Actions understood by clients.
const (
	ActionNotification = "notification"
	ActionPing         = "ping"
	ActionPong         = "pong"
	ActionError        = "error"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// NewNotificationMessage wraps a notification for delivery.
func NewNotificationMessage(n models.Notification) Message {
	return Message{Action: ActionNotification, Payload: n}
}

// NewErrorMessage creates a JSON-encoded error message.
func NewErrorMessage(text string) []byte {
	return encode(Message{Action: ActionError, Payload: map[string]string{"message": text}})
}

func encode(msg Message) []byte {
	b, _ := json.Marshal(msg)
	return b
}
