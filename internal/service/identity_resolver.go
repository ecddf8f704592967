package service

import (
	"context"
	"errors"
	"fmt"

	"focus-server/internal/config"
	"focus-server/internal/interfaces"
	"focus-server/internal/models"
	"focus-server/internal/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IdentityResolver turns a raw token into the live user it was issued for.
type IdentityResolver struct {
	signer  *token.Signer
	users   interfaces.UserRepository
	secrets map[models.TokenKind][]byte
	logger  *zap.Logger
}

// NewIdentityResolver creates a resolver that checks each token kind against its own secret.
func NewIdentityResolver(signer *token.Signer, users interfaces.UserRepository, jwtCfg config.JWTConfig, logger *zap.Logger) *IdentityResolver {
	return &IdentityResolver{
		signer: signer,
		users:  users,
		secrets: map[models.TokenKind][]byte{
			models.AccessToken:  jwtCfg.Access.Secret,
			models.RefreshToken: jwtCfg.Refresh.Secret,
		},
		logger: logger.Named("IdentityResolver"),
	}
}

// Resolve verifies raw as a token of the given kind and loads its subject.
//
// Errors:
//   - models.ErrTokenMissing when raw is empty
//   - models.ErrTokenInvalid for a bad signature, format or subject
//   - models.ErrTokenExpired for a well-signed token past its expiry
//   - models.ErrUserNotFound when the subject no longer exists or lacks identity fields
//
// Anything else is a store failure.
func (r *IdentityResolver) Resolve(ctx context.Context, kind models.TokenKind, raw string) (*models.Identity, error) {
	if raw == "" {
		return nil, models.ErrTokenMissing
	}
	secret, ok := r.secrets[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown token kind %q", models.ErrTokenInvalid, kind)
	}

	claims, err := r.signer.Verify(raw, secret)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", models.ErrTokenInvalid)
	}

	user, err := r.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to load token subject", zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to load token subject: %w", err)
	}
	if !user.HasIdentity() {
		return nil, fmt.Errorf("%w: %w", models.ErrUserNotFound, models.ErrIncompleteIdentity)
	}

	identity := models.IdentityFromUser(user)
	if kind == models.RefreshToken {
		identity.RefreshToken = raw
	}
	return identity, nil
}
