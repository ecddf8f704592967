package interfaces

import (
	"context"

	"focus-server/internal/models"

	"github.com/google/uuid"
)

// UserRepository is the credential store used by the auth service and the guards.
type UserRepository interface {
	// CreateUser inserts a new user and fills in ID, CreatedAt and UpdatedAt.
	// Returns models.ErrEmailAlreadyExists on a unique email violation.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by their normalized email address.
	// Returns models.ErrUserNotFound if the user does not exist.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by their ID.
	// Returns models.ErrUserNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// UpdateName changes the display name and returns the updated record.
	UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.User, error)
}
