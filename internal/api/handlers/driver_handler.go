package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/haulboard-be/internal/api/respond"
	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/isdelr/haulboard-be/internal/models"
	"github.com/isdelr/haulboard-be/internal/services"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	service services.DriverServiceProvider
	events  services.EventServiceProvider
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(service services.DriverServiceProvider, events services.EventServiceProvider) *DriverHandler {
	return &DriverHandler{service: service, events: events}
}

type driverPayload struct {
	Name          string              `json:"name"`
	Phone         string              `json:"phone"`
	LicenseNumber string              `json:"licenseNumber"`
	Status        models.DriverStatus `json:"status"`
}

func (p driverPayload) input() services.DriverInput {
	return services.DriverInput{Name: p.Name, Phone: p.Phone, LicenseNumber: p.LicenseNumber, Status: p.Status}
}

func (h *DriverHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	status := models.DriverStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		respond.Error(w, r, apperr.Validation("status is invalid"))
		return
	}

	drivers, err := h.service.List(r.Context(), models.ScopeFor(user), status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, drivers)
}

func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var payload driverPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		respond.Error(w, r, err)
		return
	}

	driver, err := h.service.Create(r.Context(), user.ID, payload.input())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	services.Record(r.Context(), h.events, services.EventDriverCreate, services.LevelInfo, "Driver "+driver.Name+" added", user.ID)
	respond.JSON(w, http.StatusCreated, driver)
}

func (h *DriverHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	driver, err := h.service.Get(r.Context(), models.ScopeFor(user), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, driver)
}

func (h *DriverHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var payload driverPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		respond.Error(w, r, err)
		return
	}

	driver, err := h.service.Update(r.Context(), models.ScopeFor(user), chi.URLParam(r, "id"), payload.input())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, driver)
}

func (h *DriverHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	services.Record(r.Context(), h.events, services.EventDriverDelete, services.LevelInfo, "Driver "+id+" removed", user.ID)
	respond.JSON(w, http.StatusNoContent, nil)
}
