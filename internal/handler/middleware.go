package handler

import (
	"errors"
	"net/http"
	"strings"

	"focus-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const identityKey = "identity"

// errExtractFailed marks a credential that was present but unusable, such as
// an Authorization header with another scheme.
var errExtractFailed = errors.New("credential could not be extracted")

// Guard outcomes, used as metric labels and log fields.
const (
	outcomeNoCredential     = "no_credential"
	outcomeExtractFailed    = "extract_failed"
	outcomeSignatureInvalid = "signature_invalid"
	outcomeExpired          = "expired"
	outcomeUserNotFound     = "user_not_found"
	outcomeResolved         = "resolved"
	outcomeError            = "error"
)

// tokenStrategy is what differs between the access and refresh guards. The
// resolver picks the secret from kind.
type tokenStrategy struct {
	kind    models.TokenKind
	extract func(c *gin.Context) (string, error)
}

func (h *AuthHandler) accessStrategy() tokenStrategy {
	return tokenStrategy{
		kind:    models.AccessToken,
		extract: extractBearerOrCookie(accessTokenCookie),
	}
}

func (h *AuthHandler) refreshStrategy() tokenStrategy {
	return tokenStrategy{
		kind:    models.RefreshToken,
		extract: extractCookie(refreshTokenCookie),
	}
}

// resolve runs one strategy against the request and counts the outcome.
func (h *AuthHandler) resolve(c *gin.Context, s tokenStrategy) (*models.Identity, string, error) {
	raw, err := s.extract(c)
	if err == nil {
		var id *models.Identity
		id, err = h.resolver.Resolve(c.Request.Context(), s.kind, raw)
		if err == nil {
			tokenVerificationsTotal.WithLabelValues(string(s.kind), outcomeResolved).Inc()
			return id, outcomeResolved, nil
		}
	}

	outcome := guardOutcome(err)
	tokenVerificationsTotal.WithLabelValues(string(s.kind), outcome).Inc()
	return nil, outcome, err
}

// guard authenticates a request with one token kind. Every rejection gets the
// same 401 body; the reason only shows up in logs and metrics.
func (h *AuthHandler) guard(s tokenStrategy) gin.HandlerFunc {
	kind := string(s.kind)
	return func(c *gin.Context) {
		id, outcome, err := h.resolve(c, s)
		if err == nil {
			attachIdentity(c, id)
			c.Next()
			return
		}

		if outcome == outcomeError {
			h.logger.Error("Guard could not resolve identity", zap.String("type", kind), zap.Error(err))
			handleServiceError(c, err)
			return
		}

		h.logger.Debug("Request rejected by guard",
			zap.String("type", kind),
			zap.String("outcome", outcome),
			zap.String("path", c.Request.URL.Path),
		)
		abortUnauthorized(c)
	}
}

// optionalGuard attaches the identity when the token resolves and lets every
// request through regardless.
func (h *AuthHandler) optionalGuard(s tokenStrategy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, outcome, err := h.resolve(c, s)
		if err == nil {
			attachIdentity(c, id)
		} else if outcome == outcomeError {
			h.logger.Warn("Optional guard could not resolve identity", zap.String("type", string(s.kind)), zap.Error(err))
		}
		c.Next()
	}
}

func guardOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeResolved
	case errors.Is(err, errExtractFailed):
		return outcomeExtractFailed
	case errors.Is(err, models.ErrTokenMissing):
		return outcomeNoCredential
	case errors.Is(err, models.ErrTokenExpired):
		return outcomeExpired
	case errors.Is(err, models.ErrUserNotFound):
		return outcomeUserNotFound
	case errors.Is(err, models.ErrTokenInvalid):
		return outcomeSignatureInvalid
	default:
		return outcomeError
	}
}

func attachIdentity(c *gin.Context, id *models.Identity) {
	c.Set(identityKey, id)
	c.Request = c.Request.WithContext(models.ContextWithIdentity(c.Request.Context(), id))
}

// identityFrom returns the identity a guard attached to c.
func identityFrom(c *gin.Context) (*models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*models.Identity)
	return id, ok && id != nil
}

// extractBearerOrCookie prefers the Authorization header and falls back to the named cookie.
func extractBearerOrCookie(cookieName string) func(c *gin.Context) (string, error) {
	fromCookie := extractCookie(cookieName)
	return func(c *gin.Context) (string, error) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header != "" {
			scheme, token, found := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if found && strings.EqualFold(scheme, "bearer") && token != "" {
				return token, nil
			}
		}

		raw, err := fromCookie(c)
		if errors.Is(err, models.ErrTokenMissing) && header != "" {
			return "", errExtractFailed
		}
		return raw, err
	}
}

func extractCookie(name string) func(c *gin.Context) (string, error) {
	return func(c *gin.Context) (string, error) {
		raw, err := c.Cookie(name)
		if err != nil || raw == "" {
			return "", models.ErrTokenMissing
		}
		return raw, nil
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Code:    models.ErrCodeUnauthorized,
		Message: "Unauthorized",
	})
}
