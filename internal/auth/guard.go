package auth

import (
	"net/http"

	"github.com/isdelr/haulboard-be/internal/api/respond"
	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/isdelr/haulboard-be/internal/models"
	"github.com/rs/zerolog/hlog"
)

// Guard is the single place where requests are authenticated and authorized.
// Handlers never read or parse tokens themselves.
type Guard struct {
	sessions *SessionStore
	codec    *TokenCodec
	resolver *Resolver
}

func NewGuard(sessions *SessionStore, codec *TokenCodec, users UserLookup) *Guard {
	return &Guard{
		sessions: sessions,
		codec:    codec,
		resolver: NewResolver(codec, users),
	}
}

// Identify resolves the caller of r. A request without a token yields apperr.ErrUnauthenticated.
func (g *Guard) Identify(r *http.Request) (models.User, error) {
	token, ok := g.sessions.Read(r)
	if !ok {
		return models.User{}, apperr.ErrUnauthenticated
	}
	return g.resolver.Resolve(r.Context(), token)
}

// RequireAuth creates a middleware that admits only authenticated users and,
// when roles are given, only users holding one of them.
func (g *Guard) RequireAuth(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := g.Identify(r)
			if err != nil {
				respond.Error(w, r, err)
				return
			}
			if len(roles) > 0 && !user.Role.In(roles...) {
				hlog.FromRequest(r).Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("Role not permitted")
				respond.Error(w, r, apperr.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// StartSession issues a token for user and stores it in the session cookie.
func (g *Guard) StartSession(w http.ResponseWriter, user models.User) (IssuedToken, error) {
	issued, err := g.codec.Issue(user.ID, g.sessions.TTL)
	if err != nil {
		return IssuedToken{}, err
	}
	g.sessions.Write(w, issued.Token)
	return issued, nil
}

// IssueToken issues a token for bearer-header clients without touching cookies.
func (g *Guard) IssueToken(user models.User) (IssuedToken, error) {
	return g.codec.Issue(user.ID, g.sessions.TTL)
}

// EndSession revokes the presented token, if it is still valid, and clears the cookie.
func (g *Guard) EndSession(w http.ResponseWriter, r *http.Request) {
	if token, ok := g.sessions.Read(r); ok {
		if claims, err := g.codec.Verify(token); err == nil {
			g.codec.Revoke(claims)
		}
	}
	g.sessions.Clear(w)
}
