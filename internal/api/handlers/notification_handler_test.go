package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/isdelr/haulboard-be/internal/auth"
	"github.com/isdelr/haulboard-be/internal/models"
	"github.com/isdelr/haulboard-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubNotifications records the arguments it was called with.
type stubNotifications struct {
	services.NotificationServiceProvider

	gotUserID string
	gotID     string
	gotRead   bool
	gotFilter models.NotificationFilter
	err       error
}

func (s *stubNotifications) List(_ context.Context, userID string, filter models.NotificationFilter) (models.NotificationPage, error) {
	s.gotUserID, s.gotFilter = userID, filter
	return models.NotificationPage{Notifications: []models.Notification{}}, s.err
}

func (s *stubNotifications) MarkRead(_ context.Context, userID, id string, read bool) (models.Notification, error) {
	s.gotUserID, s.gotID, s.gotRead = userID, id, read
	return models.Notification{ID: id, UserID: userID, Read: read}, s.err
}

func withUser(r *http.Request, u models.User) *http.Request {
	return r.WithContext(auth.WithUser(r.Context(), u))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestNotificationHandler_ListPassesFilterAndCaller(t *testing.T) {
	stub := &stubNotifications{}
	h := NewNotificationHandler(stub)

	req := withUser(httptest.NewRequest(http.MethodGet, "/notifications?page=2&limit=5&read=false", nil), models.User{ID: "u1"})
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", stub.gotUserID)
	assert.Equal(t, 2, stub.gotFilter.Page)
	assert.Equal(t, 5, stub.gotFilter.Limit)
	require.NotNil(t, stub.gotFilter.Read)
	assert.False(t, *stub.gotFilter.Read)
}

func TestNotificationHandler_UpdateDefaultsToRead(t *testing.T) {
	stub := &stubNotifications{}
	h := NewNotificationHandler(stub)

	req := httptest.NewRequest(http.MethodPut, "/notifications/n1", nil)
	req = withURLParam(withUser(req, models.User{ID: "u1"}), "id", "n1")
	rec := httptest.NewRecorder()
	h.Update(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, stub.gotRead)
	assert.Equal(t, "n1", stub.gotID)

	req = httptest.NewRequest(http.MethodPut, "/notifications/n1", strings.NewReader(`{"read":false}`))
	req = withURLParam(withUser(req, models.User{ID: "u1"}), "id", "n1")
	rec = httptest.NewRecorder()
	h.Update(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, stub.gotRead)
}

func TestNotificationHandler_ErrorTranslation(t *testing.T) {
	cases := []struct {
		err    error
		status int
		body   string
	}{
		{apperr.NotFound("notification not found"), http.StatusNotFound, `{"error":"notification not found"}`},
		{apperr.Internal("update notification", errors.New("pq: relation does not exist")), http.StatusInternalServerError, `{"error":"internal server error"}`},
		{errors.New("raw driver error"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}
	for _, tc := range cases {
		h := NewNotificationHandler(&stubNotifications{err: tc.err})
		req := httptest.NewRequest(http.MethodPut, "/notifications/n1", nil)
		req = withURLParam(withUser(req, models.User{ID: "u1"}), "id", "n1")
		rec := httptest.NewRecorder()
		h.Update(rec, req)

		assert.Equal(t, tc.status, rec.Code)
		assert.JSONEq(t, tc.body, rec.Body.String())
	}
}

func TestNotificationHandler_NoIdentity(t *testing.T) {
	h := NewNotificationHandler(&stubNotifications{})
	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type stubHost struct {
	stats models.SystemStats
	err   error
}

func (s stubHost) Current(context.Context) (models.SystemStats, error) { return s.stats, s.err }

func TestSystemHandler(t *testing.T) {
	h := NewSystemHandler(stubHost{stats: models.SystemStats{CPUPercent: 42, MemoryTotalMB: 2048}})
	h.started = time.Now().Add(-time.Minute)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/system", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cpuPercent":42`)

	failing := NewSystemHandler(stubHost{err: errors.New("no /proc")})
	rec = httptest.NewRecorder()
	failing.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/system", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "/proc")
}
