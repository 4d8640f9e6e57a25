package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/isdelr/haulboard-be/internal/database"
	"github.com/isdelr/haulboard-be/internal/models"
	"github.com/rs/zerolog/log"
)

// Event types recorded in the activity feed.
const (
	EventLogin          = "auth.login"
	EventLogout         = "auth.logout"
	EventRegister       = "auth.register"
	EventUserStatus     = "user.status"
	EventShipmentCreate = "shipment.create"
	EventShipmentStatus = "shipment.status"
	EventShipmentDriver = "shipment.driver"
	EventShipmentDelete = "shipment.delete"
	EventDriverCreate   = "driver.create"
	EventDriverDelete   = "driver.delete"
	EventSystemCPU      = "system.cpu"
)

const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// MaxEventLimit caps the number of events a single query returns.
const MaxEventLimit = 200

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, eventType, level, message string, userID *string) error
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
}

// EventService provides business logic for event management.
type EventService struct {
	db  *database.DB
	now func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(db *database.DB) *EventService {
	return &EventService{db: db, now: time.Now}
}

// CreateEvent logs a new event to the database.
func (s *EventService) CreateEvent(ctx context.Context, eventType, level, message string, userID *string) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		UserID:    userID,
		CreatedAt: s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, type, level, message, user_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.UserID, event.CreatedAt)
	if err != nil {
		return apperr.Internal("insert event", err)
	}
	return nil
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *EventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	if limit <= 0 || limit > MaxEventLimit {
		limit = MaxEventLimit
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, level, message, user_id, created_at FROM events ORDER BY created_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, apperr.Internal("query events", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.UserID, &event.CreatedAt); err != nil {
			return nil, apperr.Internal("scan event", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("query events", err)
	}
	return events, nil
}

// Record writes an event and only logs on failure.
func Record(ctx context.Context, events EventServiceProvider, eventType, level, message string, userID string) {
	if events == nil {
		return
	}
	var uid *string
	if userID != "" {
		uid = &userID
	}
	if err := events.CreateEvent(ctx, eventType, level, message, uid); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("Failed to record event")
	}
}
