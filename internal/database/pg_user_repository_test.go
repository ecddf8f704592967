package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"focus-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var userRowColumns = []string{"id", "email", "password_hash", "name", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *pgUserRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock, NewPgUserRepository(mock, zap.NewNop()).(*pgUserRepository)
}

func TestPgUserRepository_CreateUser(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	id := uuid.New()

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "inserts normalized email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(createUserQuery)).
					WithArgs("ada@example.com", "hash", "Ada").
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
						AddRow(id.String(), now, now))
			},
		},
		{
			name: "duplicate email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(createUserQuery)).
					WithArgs("ada@example.com", "hash", "Ada").
					WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
			},
			wantErr: models.ErrEmailAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, repo := newMockRepo(t)
			tt.setupMock(mock)

			user := &models.User{Email: "  Ada@Example.com", PasswordHash: "hash", Name: "Ada"}
			err := repo.CreateUser(context.Background(), user)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, id, user.ID)
				assert.Equal(t, "ada@example.com", user.Email)
				assert.Equal(t, now, user.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNewPgUserRepository_NamesLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	mock.ExpectQuery(regexp.QuoteMeta(createUserQuery)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	repo := NewPgUserRepository(mock, zap.New(core))
	require.ErrorIs(t, repo.CreateUser(context.Background(), &models.User{Email: "a@b.c"}), models.ErrEmailAlreadyExists)

	entries := logs.FilterMessage("Attempted to create duplicate user by email").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "PgUserRepo", entries[0].LoggerName)
}

func TestPgUserRepository_CreateUser_OtherError(t *testing.T) {
	mock, repo := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(createUserQuery)).
		WillReturnError(errors.New("connection refused"))

	err := repo.CreateUser(context.Background(), &models.User{Email: "a@b.c"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrEmailAlreadyExists)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPgUserRepository_GetUserByEmail(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(getUserByEmailQuery)).
			WithArgs("ada@example.com").
			WillReturnRows(pgxmock.NewRows(userRowColumns).
				AddRow(id.String(), "ada@example.com", "hash", "Ada", now, now))

		user, err := repo.GetUserByEmail(context.Background(), "ADA@example.com ")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, "hash", user.PasswordHash)
		assert.Equal(t, "Ada", user.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(getUserByEmailQuery)).
			WithArgs("ghost@example.com").
			WillReturnRows(pgxmock.NewRows(userRowColumns))

		user, err := repo.GetUserByEmail(context.Background(), "ghost@example.com")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}

func TestPgUserRepository_GetUserByID_QueryError(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(getUserByIDQuery)).
		WithArgs(id).
		WillReturnError(errors.New("timeout"))

	_, err := repo.GetUserByID(context.Background(), id)
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrUserNotFound)
}

func TestPgUserRepository_UpdateName(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	id := uuid.New()

	mock, repo := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(updateUserNameQuery)).
		WithArgs(id, "Countess").
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow(id.String(), "ada@example.com", "hash", "Countess", now, now))

	user, err := repo.UpdateName(context.Background(), id, "Countess")
	require.NoError(t, err)
	assert.Equal(t, "Countess", user.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUserRepository_UpdateName_Missing(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(updateUserNameQuery)).
		WithArgs(id, "x").
		WillReturnRows(pgxmock.NewRows(userRowColumns))

	_, err := repo.UpdateName(context.Background(), id, "x")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}
