package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"focus-server/internal/config"
	"focus-server/internal/interfaces"
	"focus-server/internal/models"
	"focus-server/internal/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxNameLength bounds the display name, in runes.
const MaxNameLength = 100

// Compile-time check to ensure authServiceImpl implements AuthService
var _ AuthService = (*authServiceImpl)(nil)

type authServiceImpl struct {
	userRepo  interfaces.UserRepository
	publisher interfaces.UserEventPublisher
	hasher    *PasswordHasher
	signer    *token.Signer
	jwt       config.JWTConfig
	logger    *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo interfaces.UserRepository,
	publisher interfaces.UserEventPublisher,
	hasher *PasswordHasher,
	signer *token.Signer,
	jwtCfg config.JWTConfig,
	logger *zap.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:  userRepo,
		publisher: publisher,
		hasher:    hasher,
		signer:    signer,
		jwt:       jwtCfg,
		logger:    logger.Named("AuthService"),
	}
}

// NormalizeEmail lower-cases and trims an address the way the store keeps it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user and issues the first token pair.
func (s *authServiceImpl) Register(ctx context.Context, email, password, name string) (*models.AuthResult, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)
	log := s.logger.With(zap.String("email", email))
	log.Info("Registering new user")

	if _, err := mail.ParseAddress(email); err != nil {
		log.Warn("Registration attempt with invalid email format", zap.Error(err))
		return nil, models.NewValidationError("email", "must be a valid email address")
	}
	if password == "" {
		return nil, models.NewValidationError("password", "is required")
	}
	if len([]rune(name)) > MaxNameLength {
		return nil, models.NewValidationError("name", fmt.Sprintf("must be at most %d characters", MaxNameLength))
	}

	existing, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		log.Error("Error checking existing email during registration", zap.Error(err))
		return nil, fmt.Errorf("error checking existing email: %w", err)
	}
	if existing != nil {
		log.Warn("Registration attempt for existing email")
		return nil, models.ErrEmailAlreadyExists
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		log.Error("Failed to hash password during registration", zap.Error(err))
		return nil, err
	}

	user := &models.User{Email: email, PasswordHash: hash, Name: name}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		// ErrEmailAlreadyExists here means a concurrent registration won the race.
		return nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishUserRegistered(ctx, user); err != nil {
		log.Error("Failed to publish user registered event", zap.String("userID", user.ID.String()), zap.Error(err))
	}

	log.Info("User registered successfully", zap.String("userID", user.ID.String()))
	return &models.AuthResult{Tokens: tokens, User: user}, nil
}

// Login authenticates a user. Unknown email, wrong password and broken
// records all return models.ErrInvalidCredentials.
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	email = NormalizeEmail(email)
	log := s.logger.With(zap.String("email", email))
	log.Info("Login attempt")

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			log.Warn("Login failed: user not found")
			return nil, s.rejectLogin(ctx, password)
		}
		log.Error("Login failed: error getting user from repository", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.HasIdentity() {
		log.Error("Login failed: stored user has no identity fields")
		return nil, s.rejectLogin(ctx, password)
	}

	ok, err := s.hasher.Compare(ctx, user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Warn("Login failed: invalid password", zap.String("userID", user.ID.String()))
		return nil, models.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	log.Info("User logged in successfully", zap.String("userID", user.ID.String()))
	return &models.AuthResult{Tokens: tokens, User: user}, nil
}

// rejectLogin runs a comparison against a throwaway hash before failing.
func (s *authServiceImpl) rejectLogin(ctx context.Context, password string) error {
	if _, err := s.hasher.CompareDummy(ctx, password); err != nil {
		return err
	}
	return models.ErrInvalidCredentials
}

// RefreshTokens issues a fresh pair bound to the current user record.
func (s *authServiceImpl) RefreshTokens(ctx context.Context, userID uuid.UUID, _ string) (*models.AuthResult, error) {
	log := s.logger.With(zap.String("userID", userID.String()))
	log.Debug("Token refresh attempt")

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			log.Warn("Refresh failed: user no longer exists")
			return nil, models.ErrUnauthorized
		}
		log.Error("Refresh failed: error getting user from repository", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.HasIdentity() {
		log.Error("Refresh failed: stored user has no identity fields")
		return nil, fmt.Errorf("%w: %w", models.ErrUnauthorized, models.ErrIncompleteIdentity)
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	log.Info("Token refreshed successfully")
	return &models.AuthResult{Tokens: tokens, User: user}, nil
}

// Logout only logs. Issued tokens stay valid until they expire.
func (s *authServiceImpl) Logout(ctx context.Context) {
	if id, ok := models.IdentityFromContext(ctx); ok {
		s.logger.Info("User logged out", zap.String("userID", id.ID.String()))
		return
	}
	s.logger.Debug("Anonymous logout")
}

// UpdateName changes the display name. Tokens keep the old name until the next refresh.
func (s *authServiceImpl) UpdateName(ctx context.Context, userID uuid.UUID, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) > MaxNameLength {
		return nil, models.NewValidationError("name", fmt.Sprintf("must be at most %d characters", MaxNameLength))
	}

	user, err := s.userRepo.UpdateName(ctx, userID, name)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrUnauthorized
		}
		return nil, err
	}
	s.logger.Info("User name updated", zap.String("userID", userID.String()))
	return user, nil
}

// issueTokens signs an access and a refresh token for user.
func (s *authServiceImpl) issueTokens(user *models.User) (*models.TokenDetails, error) {
	payload := models.PayloadFromUser(user)

	access, atExp, err := s.signer.Sign(payload, s.jwt.Access.Secret, s.jwt.Access.TTL)
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.String("userID", payload.Subject), zap.Error(err))
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, rtExp, err := s.signer.Sign(payload, s.jwt.Refresh.Secret, s.jwt.Refresh.TTL)
	if err != nil {
		s.logger.Error("Failed to sign refresh token", zap.String("userID", payload.Subject), zap.Error(err))
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &models.TokenDetails{
		AccessToken:  access,
		RefreshToken: refresh,
		AtExpires:    atExp,
		RtExpires:    rtExp,
	}, nil
}
