package handlers

import (
	"net/http"

	"github.com/isdelr/haulboard-be/internal/api/respond"
	"github.com/isdelr/haulboard-be/internal/services"
)

// DashboardHandler serves the summary cards of the dashboard.
type DashboardHandler struct {
	service services.DashboardServiceProvider
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(service services.DashboardServiceProvider) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// GetStats returns shipment, driver and inbox counts within the caller's scope.
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	stats, err := h.service.GetStats(r.Context(), user)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, stats)
}
