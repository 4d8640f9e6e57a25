package auth

import (
	"context"
	"errors"

	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/isdelr/haulboard-be/internal/models"
	"github.com/rs/zerolog/log"
)

// UserLookup loads users by id. Absent users must be reported as apperr.KindNotFound.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// Resolver turns a token into the active user it names.
type Resolver struct {
	codec *TokenCodec
	users UserLookup
}

func NewResolver(codec *TokenCodec, users UserLookup) *Resolver {
	return &Resolver{codec: codec, users: users}
}

// Resolve verifies token and loads its user. Invalid tokens, unknown users and
// deactivated users all yield apperr.ErrUnauthenticated.
func (r *Resolver) Resolve(ctx context.Context, token string) (models.User, error) {
	claims, err := r.codec.Verify(token)
	if err != nil {
		if errors.Is(err, ErrMissingSecret) {
			return models.User{}, err
		}
		return models.User{}, apperr.ErrUnauthenticated
	}

	user, err := r.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			log.Warn().Str("user_id", claims.UserID).Msg("Token names a user that no longer exists")
			return models.User{}, apperr.ErrUnauthenticated
		}
		return models.User{}, apperr.Internal("load session user", err)
	}
	if !user.IsActive {
		log.Warn().Str("user_id", user.ID).Msg("Token presented for a deactivated user")
		return models.User{}, apperr.ErrUnauthenticated
	}
	return user.Sanitized(), nil
}
