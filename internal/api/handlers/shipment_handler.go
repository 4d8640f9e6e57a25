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

// ShipmentHandler handles HTTP requests for shipments.
type ShipmentHandler struct {
	service services.ShipmentServiceProvider
	events  services.EventServiceProvider
}

// NewShipmentHandler creates a new ShipmentHandler.
func NewShipmentHandler(service services.ShipmentServiceProvider, events services.EventServiceProvider) *ShipmentHandler {
	return &ShipmentHandler{service: service, events: events}
}

// GetAll lists the shipments visible to the caller.
func (h *ShipmentHandler) GetAll(w http.ResponseWriter, r *http.Request) {
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
	status := models.ShipmentStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		respond.Error(w, r, apperr.Validation("status is invalid"))
		return
	}

	result, err := h.service.List(r.Context(), models.ScopeFor(user), models.ShipmentFilter{Page: page, Limit: limit, Status: status})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, result)
}

// Create books a new shipment owned by the caller.
func (h *ShipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var payload struct {
		Origin      string  `json:"origin"`
		Destination string  `json:"destination"`
		WeightKg    float64 `json:"weightKg"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		respond.Error(w, r, err)
		return
	}

	shipment, err := h.service.Create(r.Context(), user.ID, services.NewShipment{
		Origin:      payload.Origin,
		Destination: payload.Destination,
		WeightKg:    payload.WeightKg,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	services.Record(r.Context(), h.events, services.EventShipmentCreate, services.LevelInfo,
		fmt.Sprintf("Shipment %s booked from %s to %s", shipment.TrackingNumber, shipment.Origin, shipment.Destination), user.ID)
	respond.JSON(w, http.StatusCreated, shipment)
}

// Get returns a single shipment.
func (h *ShipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	shipment, err := h.service.Get(r.Context(), models.ScopeFor(user), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, shipment)
}

// UpdateStatus moves a shipment to a new status.
func (h *ShipmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var payload struct {
		Status models.ShipmentStatus `json:"status"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		respond.Error(w, r, err)
		return
	}

	shipment, err := h.service.UpdateStatus(r.Context(), models.ScopeFor(user), chi.URLParam(r, "id"), payload.Status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	services.Record(r.Context(), h.events, services.EventShipmentStatus, services.LevelInfo,
		fmt.Sprintf("Shipment %s is now %s", shipment.TrackingNumber, shipment.Status), user.ID)
	respond.JSON(w, http.StatusOK, shipment)
}

// AssignDriver puts one of the caller's drivers on the shipment.
func (h *ShipmentHandler) AssignDriver(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var payload struct {
		DriverID string `json:"driverId"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		respond.Error(w, r, err)
		return
	}

	shipment, err := h.service.AssignDriver(r.Context(), models.ScopeFor(user), chi.URLParam(r, "id"), payload.DriverID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	services.Record(r.Context(), h.events, services.EventShipmentDriver, services.LevelInfo,
		fmt.Sprintf("Driver %s assigned to shipment %s", payload.DriverID, shipment.TrackingNumber), user.ID)
	respond.JSON(w, http.StatusOK, shipment)
}

// Delete removes a pending shipment.
func (h *ShipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), models.ScopeFor(user), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	services.Record(r.Context(), h.events, services.EventShipmentDelete, services.LevelInfo, "Shipment "+id+" deleted", user.ID)
	respond.JSON(w, http.StatusNoContent, nil)
}
