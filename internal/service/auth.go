package service

import (
	"context"

	"focus-server/internal/models"

	"github.com/google/uuid"
)

// AuthService defines the interface for authentication logic.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*models.AuthResult, error)
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	// RefreshTokens re-issues both tokens for a caller that already passed the refresh guard.
	RefreshTokens(ctx context.Context, userID uuid.UUID, refreshToken string) (*models.AuthResult, error)
	// Logout has no server-side state to drop. Clearing cookies is up to the transport.
	Logout(ctx context.Context)
	UpdateName(ctx context.Context, userID uuid.UUID, name string) (*models.User, error)
}
