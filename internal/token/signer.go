package token

import (
	"errors"
	"fmt"
	"time"

	"focus-server/internal/config"
	"focus-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Signer issues and verifies HS256 tokens. The secret is passed per call so the
// same signer serves both access and refresh tokens without mixing their keys.
type Signer struct {
	issuer string
	now    func() time.Time
}

// NewSigner creates a Signer that stamps and requires the given issuer.
func NewSigner(issuer string) *Signer {
	return &Signer{issuer: issuer, now: time.Now}
}

// Sign returns a token carrying payload that expires after expiresIn.
// The only failure mode is a missing secret.
func (s *Signer) Sign(payload models.TokenPayload, secret []byte, expiresIn time.Duration) (string, time.Time, error) {
	if len(secret) == 0 {
		return "", time.Time{}, config.ErrMissingSecret
	}

	now := s.now()
	expiresAt := now.Add(expiresIn)
	claims := &models.Claims{
		Email: payload.Email,
		Name:  payload.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   payload.Subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, issuer and time claims of raw against secret.
// It returns models.ErrTokenExpired for a well-signed token past its expiry and
// models.ErrTokenInvalid for everything else.
func (s *Signer) Verify(raw string, secret []byte) (*models.Claims, error) {
	if len(secret) == 0 {
		return nil, config.ErrMissingSecret
	}

	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", models.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", models.ErrTokenInvalid, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, models.ErrTokenInvalid
	}
	return claims, nil
}
