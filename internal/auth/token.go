package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/rs/zerolog/log"
)

// DefaultTTL is the session lifetime when neither the codec nor the caller sets one.
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrInvalidToken covers every reason a token is rejected. The specific
	// cause is only logged.
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingSecret means the server has no signing secret. It is fatal
	// configuration, never papered over with a default.
	ErrMissingSecret = apperr.Config("token signing secret is not configured", nil)
)

// Claims defines the JWT claims structure.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// IssuedToken is a freshly signed token and its expiry.
type IssuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenCodec signs and verifies session tokens with HS256.
type TokenCodec struct {
	secret   []byte
	ttl      time.Duration
	denylist *Denylist
	now      func() time.Time
}

// Option configures a TokenCodec.
type Option func(*TokenCodec)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *TokenCodec) { c.now = now }
}

// WithDenylist makes Verify reject revoked token ids.
func WithDenylist(d *Denylist) Option {
	return func(c *TokenCodec) { c.denylist = d }
}

// NewTokenCodec creates a codec. An empty secret is accepted here so that the
// failure surfaces as ErrMissingSecret on use; config.Load rejects it at startup.
func NewTokenCodec(secret string, ttl time.Duration, opts ...Option) *TokenCodec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the codec's default token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for userID valid for ttl (the codec default when ttl <= 0).
func (c *TokenCodec) Issue(userID string, ttl time.Duration) (IssuedToken, error) {
	if len(c.secret) == 0 {
		return IssuedToken{}, ErrMissingSecret
	}
	if userID == "" {
		return IssuedToken{}, fmt.Errorf("issue token: empty user id")
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	now := c.now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}
	return IssuedToken{Token: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify parses and validates a token string.
func (c *TokenCodec) Verify(tokenStr string) (*Claims, error) {
	if len(c.secret) == 0 {
		return nil, ErrMissingSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, c.reject(rejectionCause(err), err)
	}
	if !token.Valid {
		return nil, c.reject("invalid", nil)
	}
	if claims.UserID == "" || claims.ID == "" || claims.Subject != claims.UserID {
		return nil, c.reject("missing_claims", nil)
	}
	if c.denylist != nil && c.denylist.IsRevoked(claims.ID, c.now()) {
		return nil, c.reject("revoked", nil)
	}
	return claims, nil
}

// Revoke denies the token behind claims until it expires.
func (c *TokenCodec) Revoke(claims *Claims) {
	if c.denylist == nil || claims == nil || claims.ExpiresAt == nil {
		return
	}
	c.denylist.Revoke(claims.ID, claims.ExpiresAt.Time)
}

func (c *TokenCodec) reject(cause string, err error) error {
	log.Warn().Err(err).Str("cause", cause).Msg("Rejected session token")
	return ErrInvalidToken
}

func rejectionCause(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad_signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return "missing_claims"
	case errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return "issued_in_future"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "unverifiable"
	default:
		return "invalid"
	}
}
