package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/haulboard-be/internal/api/respond"
	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/isdelr/haulboard-be/internal/models"
	"github.com/isdelr/haulboard-be/internal/services"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service services.UserServiceProvider
	events  services.EventServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, events services.EventServiceProvider) *UserHandler {
	return &UserHandler{service: service, events: events}
}

type userListResponse struct {
	Users      []models.User     `json:"users"`
	Pagination models.Pagination `json:"pagination"`
}

// GetMe returns the authenticated user.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

// UpdateMe handles updating the caller's profile information.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var payload models.ProfileUpdate
	if err := decodeJSON(w, r, &payload); err != nil {
		respond.Error(w, r, err)
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user.ID, payload)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

// ChangePassword handles changing the caller's password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var payload struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.UpdatePassword(r.Context(), user.ID, payload.CurrentPassword, payload.NewPassword); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

// List returns a page of all accounts.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pagination(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	users, p, err := h.service.ListUsers(r.Context(), page, limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, userListResponse{Users: users, Pagination: p})
}

// SetStatus activates or deactivates an account.
func (h *UserHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	admin, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	var payload struct {
		IsActive *bool `json:"isActive"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		respond.Error(w, r, err)
		return
	}
	if payload.IsActive == nil {
		respond.Error(w, r, apperr.Validation("isActive is required"))
		return
	}
	if id == admin.ID && !*payload.IsActive {
		respond.Error(w, r, apperr.Validation("you cannot deactivate your own account"))
		return
	}

	user, err := h.service.SetActive(r.Context(), id, *payload.IsActive)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	services.Record(r.Context(), h.events, services.EventUserStatus, services.LevelInfo,
		fmt.Sprintf("%s set %s active=%t", admin.Email, user.Email, user.IsActive), admin.ID)
	respond.JSON(w, http.StatusOK, user)
}
