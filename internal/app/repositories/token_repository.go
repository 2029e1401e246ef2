package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/docstore"
	"github.com/yigit/flashclass/internal/pkg/apperrors"
	"github.com/yigit/flashclass/internal/pkg/logger"
)

// TokenRepository records revoked access tokens by their jti
type TokenRepository struct {
	store docstore.Store
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(store docstore.Store) *TokenRepository {
	return &TokenRepository{store: store}
}

// Revoke marks the token as unusable until it would have expired anyway
func (r *TokenRepository) Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	err := r.store.Set(ctx, models.CollectionRevokedTokens, jti, docstore.Fields{
		"userId":    userID,
		"expiresAt": expiresAt.UTC(),
		"revokedAt": docstore.ServerTimestamp,
	})
	if err != nil {
		logger.Error().Err(err).Str("jti", jti).Str("userID", userID).Msg("Error revoking token")
		return translate(err, "token", jti)
	}
	return nil
}

// IsRevoked reports whether jti has been revoked
func (r *TokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := r.store.Get(ctx, models.CollectionRevokedTokens, jti)
	if err == nil {
		return true, nil
	}
	err = translate(err, "token", jti)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	return false, err
}
