package mocks

import (
	"context"

	"focus-server/internal/models"

	"github.com/stretchr/testify/mock"
)

// Mock UserEventPublisher
type UserEventPublisher struct {
	mock.Mock
}

func (m *UserEventPublisher) PublishUserRegistered(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *UserEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
