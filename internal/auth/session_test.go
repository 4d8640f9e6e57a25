package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_WriteCookieAttributes(t *testing.T) {
	s := NewSessionStore(true, 7*24*time.Hour)
	w := httptest.NewRecorder()

	s.Write(w, "tok")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, SessionCookieName, c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, 604800, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
}

func TestSessionStore_InsecureOutsideProduction(t *testing.T) {
	s := NewSessionStore(false, time.Hour)
	w := httptest.NewRecorder()
	s.Write(w, "tok")
	assert.NotContains(t, w.Header().Get("Set-Cookie"), "Secure")
}

func TestSessionStore_Clear(t *testing.T) {
	s := NewSessionStore(false, time.Hour)
	w := httptest.NewRecorder()

	s.Clear(w)

	header := w.Header().Get("Set-Cookie")
	assert.Contains(t, header, "session=;")
	assert.Contains(t, header, "Max-Age=0")
}

func TestSessionStore_Read(t *testing.T) {
	s := NewSessionStore(false, time.Hour)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := s.Read(r)
	assert.False(t, ok)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "bearer  header-token ")
	tok, ok := s.Read(r)
	assert.True(t, ok)
	assert.Equal(t, "header-token", tok)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})
	tok, ok = s.Read(r)
	assert.True(t, ok)
	assert.Equal(t, "cookie-token", tok, "cookie takes precedence")

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	_, ok = s.Read(r)
	assert.False(t, ok)
}
