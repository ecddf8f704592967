package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"focus-server/internal/interfaces"
	"focus-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// userRecord is the gorm mapping of the users table for the embedded store.
type userRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"size:320;not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	Name         string    `gorm:"size:100;not null;default:''"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRecord) TableName() string { return "users" }

func (r *userRecord) toModel() *models.User {
	return &models.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Name:         r.Name,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// OpenSQLite opens the embedded development store at path and creates the schema.
// Use "file::memory:?cache=shared" for a throwaway database.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&userRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}
	return db, nil
}

// Compile-time check to ensure gormUserRepository implements UserRepository
var _ interfaces.UserRepository = (*gormUserRepository)(nil)

type gormUserRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormUserRepository creates a gorm-backed UserRepository.
func NewGormUserRepository(db *gorm.DB, logger *zap.Logger) interfaces.UserRepository {
	return &gormUserRepository{
		db:     db,
		logger: logger.Named("GormUserRepo"),
	}
}

func (r *gormUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	rec := userRecord{
		ID:           uuid.New(),
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Name:         user.Name,
	}

	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			r.logger.Warn("Attempted to create duplicate user by email", zap.String("email", user.Email))
			return models.ErrEmailAlreadyExists
		}
		r.logger.Error("Failed to create user", zap.Error(err), zap.String("email", user.Email))
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = rec.ID
	user.CreatedAt = rec.CreatedAt
	user.UpdatedAt = rec.UpdatedAt
	return nil
}

func (r *gormUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.first(ctx, "email = ?", email)
}

func (r *gormUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *gormUserRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	res := r.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", id).
		Updates(map[string]any{"name": name, "updated_at": time.Now()})
	if res.Error != nil {
		r.logger.Error("Failed to update user name", zap.Error(res.Error), zap.String("id", id.String()))
		return nil, fmt.Errorf("failed to update user name: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.ErrUserNotFound
	}
	return r.GetUserByID(ctx, id)
}

func (r *gormUserRepository) first(ctx context.Context, query string, arg any) (*models.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).Where(query, arg).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to query user", zap.Error(err))
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return rec.toModel(), nil
}
