package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"focus-server/internal/interfaces"
	"focus-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	userColumns = `id, email, password_hash, name, created_at, updated_at`

	createUserQuery     = `INSERT INTO users (email, password_hash, name) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`
	getUserByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	getUserByIDQuery    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	updateUserNameQuery = `UPDATE users SET name = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + userColumns

	uniqueViolationCode = "23505"
)

// Compile-time check to ensure pgUserRepository implements UserRepository
var _ interfaces.UserRepository = (*pgUserRepository)(nil)

type pgUserRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgUserRepository creates a new PostgreSQL-backed UserRepository.
func NewPgUserRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.UserRepository {
	return &pgUserRepository{
		db:     db,
		logger: logger.Named("PgUserRepo"),
	}
}

// CreateUser inserts a new user into the database.
func (r *pgUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	r.logger.Debug("Executing query", zap.String("query", createUserQuery), zap.String("email", user.Email))

	err := r.db.QueryRow(ctx, createUserQuery, user.Email, user.PasswordHash, user.Name).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			r.logger.Warn("Attempted to create duplicate user by email",
				zap.String("email", user.Email), zap.String("constraint", pgErr.ConstraintName))
			return models.ErrEmailAlreadyExists
		}
		r.logger.Error("Failed to create user in postgres", zap.Error(err), zap.String("email", user.Email))
		return fmt.Errorf("failed to create user in postgres: %w", err)
	}

	r.logger.Info("User created successfully", zap.String("userID", user.ID.String()), zap.String("email", user.Email))
	return nil
}

// GetUserByEmail retrieves a user by their email.
func (r *pgUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, getUserByEmailQuery, zap.String("email", email), email)
}

// GetUserByID retrieves a user by their ID.
func (r *pgUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, getUserByIDQuery, zap.String("id", id.String()), id)
}

// UpdateName sets the display name and returns the updated row.
func (r *pgUserRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	return r.getOne(ctx, updateUserNameQuery, zap.String("id", id.String()), id, name)
}

func (r *pgUserRepository) getOne(ctx context.Context, query string, logField zap.Field, args ...any) (*models.User, error) {
	r.logger.Debug("Executing query", zap.String("query", query), logField)

	var user models.User
	if err := pgxscan.Get(ctx, r.db, &user, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			r.logger.Debug("User not found", logField)
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to query user from postgres", zap.Error(err), logField)
		return nil, fmt.Errorf("failed to query user from postgres: %w", err)
	}
	return &user, nil
}
