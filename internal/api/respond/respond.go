package respond

import (
	"encoding/json"
	"net/http"

	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// Error translates err through the apperr taxonomy and writes {"error": ...}.
// Server-side failures are logged with their cause; the client only sees the public message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	}
	JSON(w, status, map[string]string{"error": apperr.PublicMessage(err)})
}
