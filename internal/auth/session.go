package auth

import (
	"net/http"
	"strings"
	"time"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

const bearerPrefix = "bearer "

// SessionStore moves tokens between HTTP requests/responses and nothing else.
type SessionStore struct {
	Secure bool
	TTL    time.Duration
}

// NewSessionStore returns a store whose cookies live for ttl. Secure should be
// true in production so the cookie never travels over plain HTTP.
func NewSessionStore(secure bool, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SessionStore{Secure: secure, TTL: ttl}
}

// Read returns the token from the session cookie, falling back to an
// Authorization: Bearer header.
func (s *SessionStore) Read(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	if token := extractBearer(r.Header.Get("Authorization")); token != "" {
		return token, true
	}
	return "", false
}

// Write sets the session cookie.
func (s *SessionStore) Write(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.TTL / time.Second),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie on the client.
func (s *SessionStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// extractBearer returns the token of a "Bearer <token>" header value, or "".
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
