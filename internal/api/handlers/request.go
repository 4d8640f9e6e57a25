package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/isdelr/haulboard-be/internal/auth"
	"github.com/isdelr/haulboard-be/internal/models"
)

const (
	maxBodyBytes = 1 << 20

	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
	maxPage      = 1_000_000 // keeps (page-1)*limit far from int overflow
)

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid request body")
	}
	return nil
}

// decodeOptionalJSON is decodeJSON for endpoints where the body may be omitted.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Validation("invalid request body")
	}
	return nil
}

// pagination parses page and limit query parameters, applying defaults.
func pagination(r *http.Request) (page, limit int, err error) {
	q := r.URL.Query()
	page, limit = defaultPage, defaultLimit

	if v := q.Get("page"); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil || page < 1 || page > maxPage {
			return 0, 0, apperr.Validation("page must be between 1 and 1000000")
		}
	}
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 || limit > maxLimit {
			return 0, 0, apperr.Validation("limit must be between 1 and 100")
		}
	}
	return page, limit, nil
}

// optionalBool parses a "true"/"false" query parameter. Absent means nil.
func optionalBool(r *http.Request, name string) (*bool, error) {
	switch r.URL.Query().Get(name) {
	case "":
		return nil, nil
	case "true":
		v := true
		return &v, nil
	case "false":
		v := false
		return &v, nil
	default:
		return nil, apperr.Validation(name + " must be true or false")
	}
}

// currentUser returns the identity stored by the guard. Routes without the
// guard never call it.
func currentUser(r *http.Request) (models.User, error) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return models.User{}, apperr.ErrUnauthenticated
	}
	return user, nil
}
