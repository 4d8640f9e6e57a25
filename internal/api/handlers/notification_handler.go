package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/haulboard-be/internal/api/respond"
	"github.com/isdelr/haulboard-be/internal/models"
	"github.com/isdelr/haulboard-be/internal/services"
)

// NotificationHandler serves the caller's own notifications. Every call is
// scoped to the authenticated user, admins included.
type NotificationHandler struct {
	service services.NotificationServiceProvider
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(service services.NotificationServiceProvider) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List returns a page of the caller's notifications, optionally filtered by read state.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	page, limit, err := pagination(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	read, err := optionalBool(r, "read")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	result, err := h.service.List(r.Context(), user.ID, models.NotificationFilter{Page: page, Limit: limit, Read: read})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, result)
}

// MarkAllRead marks every unread notification of the caller as read.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	updated, err := h.service.MarkAllRead(r.Context(), user.ID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

// Update sets the read flag. An empty body marks the notification read.
func (h *NotificationHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var payload struct {
		Read *bool `json:"read"`
	}
	if err := decodeOptionalJSON(w, r, &payload); err != nil {
		respond.Error(w, r, err)
		return
	}
	read := true
	if payload.Read != nil {
		read = *payload.Read
	}

	n, err := h.service.MarkRead(r.Context(), user.ID, chi.URLParam(r, "id"), read)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, n)
}

// Delete removes one of the caller's notifications.
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusNoContent, nil)
}

// Create sends a notification to any user.
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID  string                  `json:"userId"`
		Title   string                  `json:"title"`
		Message string                  `json:"message"`
		Type    models.NotificationType `json:"type"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		respond.Error(w, r, err)
		return
	}

	n, err := h.service.Create(r.Context(), services.NewNotification{
		UserID:  payload.UserID,
		Title:   payload.Title,
		Message: payload.Message,
		Type:    payload.Type,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, n)
}
