package interfaces

import (
	"context"

	"focus-server/internal/models"
)

// UserEventPublisher announces account lifecycle events to other services.
type UserEventPublisher interface {
	PublishUserRegistered(ctx context.Context, user *models.User) error
	Close() error
}
