package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"focus-server/internal/interfaces/mocks"
	"focus-server/internal/models"
	"focus-server/internal/service"
	"focus-server/internal/token"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newResolver(t *testing.T) (*service.IdentityResolver, *mocks.UserRepository, *token.Signer) {
	t.Helper()
	repo := new(mocks.UserRepository)
	signer := token.NewSigner(testIssuer)
	return service.NewIdentityResolver(signer, repo, testJWTConfig(), zap.NewNop()), repo, signer
}

func TestIdentityResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	cfg := testJWTConfig()
	user := &models.User{ID: uuid.New(), Email: "ada@example.com", Name: "Ada"}
	payload := models.PayloadFromUser(user)

	t.Run("Access token resolves to live user", func(t *testing.T) {
		r, repo, signer := newResolver(t)
		live := *user
		live.Name = "Renamed"
		repo.On("GetUserByID", mock.Anything, user.ID).Return(&live, nil).Once()

		raw, _, err := signer.Sign(payload, cfg.Access.Secret, time.Minute)
		require.NoError(t, err)

		id, err := r.Resolve(ctx, models.AccessToken, raw)
		require.NoError(t, err)
		assert.Equal(t, user.ID, id.ID)
		assert.Equal(t, "Renamed", id.Name)
		assert.Empty(t, id.RefreshToken)
	})

	t.Run("Refresh token carries the raw token", func(t *testing.T) {
		r, repo, signer := newResolver(t)
		repo.On("GetUserByID", mock.Anything, user.ID).Return(user, nil).Once()

		raw, _, err := signer.Sign(payload, cfg.Refresh.Secret, time.Hour)
		require.NoError(t, err)

		id, err := r.Resolve(ctx, models.RefreshToken, raw)
		require.NoError(t, err)
		assert.Equal(t, raw, id.RefreshToken)
	})

	t.Run("Tokens are bound to their own secret", func(t *testing.T) {
		r, repo, signer := newResolver(t)

		access, _, err := signer.Sign(payload, cfg.Access.Secret, time.Minute)
		require.NoError(t, err)
		refresh, _, err := signer.Sign(payload, cfg.Refresh.Secret, time.Hour)
		require.NoError(t, err)

		_, err = r.Resolve(ctx, models.RefreshToken, access)
		assert.ErrorIs(t, err, models.ErrTokenInvalid)
		_, err = r.Resolve(ctx, models.AccessToken, refresh)
		assert.ErrorIs(t, err, models.ErrTokenInvalid)
		assert.Empty(t, repo.Calls)
	})

	t.Run("Missing token", func(t *testing.T) {
		r, _, _ := newResolver(t)
		_, err := r.Resolve(ctx, models.AccessToken, "")
		assert.ErrorIs(t, err, models.ErrTokenMissing)
	})

	t.Run("Expired token", func(t *testing.T) {
		r, _, signer := newResolver(t)
		raw, _, err := signer.Sign(payload, cfg.Refresh.Secret, -time.Minute)
		require.NoError(t, err)

		_, err = r.Resolve(ctx, models.RefreshToken, raw)
		assert.ErrorIs(t, err, models.ErrTokenExpired)
	})

	t.Run("Subject is not a user id", func(t *testing.T) {
		r, _, signer := newResolver(t)
		raw, _, err := signer.Sign(models.TokenPayload{Subject: "42", Email: "x@example.com"}, cfg.Access.Secret, time.Minute)
		require.NoError(t, err)

		_, err = r.Resolve(ctx, models.AccessToken, raw)
		assert.ErrorIs(t, err, models.ErrTokenInvalid)
	})

	t.Run("User deleted", func(t *testing.T) {
		r, repo, signer := newResolver(t)
		repo.On("GetUserByID", mock.Anything, user.ID).Return(nil, models.ErrUserNotFound).Once()
		raw, _, err := signer.Sign(payload, cfg.Access.Secret, time.Minute)
		require.NoError(t, err)

		_, err = r.Resolve(ctx, models.AccessToken, raw)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})

	t.Run("Record without identity fields", func(t *testing.T) {
		r, repo, signer := newResolver(t)
		repo.On("GetUserByID", mock.Anything, user.ID).Return(&models.User{ID: user.ID}, nil).Once()
		raw, _, err := signer.Sign(payload, cfg.Access.Secret, time.Minute)
		require.NoError(t, err)

		_, err = r.Resolve(ctx, models.AccessToken, raw)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
		assert.ErrorIs(t, err, models.ErrIncompleteIdentity)
	})

	t.Run("Store failure", func(t *testing.T) {
		r, repo, signer := newResolver(t)
		dbErr := errors.New("pool closed")
		repo.On("GetUserByID", mock.Anything, user.ID).Return(nil, dbErr).Once()
		raw, _, err := signer.Sign(payload, cfg.Access.Secret, time.Minute)
		require.NoError(t, err)

		_, err = r.Resolve(ctx, models.AccessToken, raw)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, models.ErrUserNotFound)
	})
}

func TestIdentityResolver_UnknownKind(t *testing.T) {
	r, _, _ := newResolver(t)
	_, err := r.Resolve(context.Background(), models.TokenKind("session"), "abc")
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}
