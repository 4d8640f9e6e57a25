package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/isdelr/haulboard-be/internal/api/respond"
	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/isdelr/haulboard-be/internal/models"
)

// HostStats supplies host resource usage.
type HostStats interface {
	Current(ctx context.Context) (models.SystemStats, error)
}

// SystemHandler serves liveness and host information.
type SystemHandler struct {
	host    HostStats
	started time.Time
}

// NewSystemHandler creates a new SystemHandler. host may be nil.
func NewSystemHandler(host HostStats) *SystemHandler {
	return &SystemHandler{host: host, started: time.Now()}
}

// Health reports that the process is up.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

// Stats reports host CPU and memory usage.
func (h *SystemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.host == nil {
		respond.Error(w, r, apperr.Internal("host sampler not configured", nil))
		return
	}
	stats, err := h.host.Current(r.Context())
	if err != nil {
		respond.Error(w, r, apperr.Internal("sample host", err))
		return
	}
	respond.JSON(w, http.StatusOK, stats)
}
