package handler

import (
	"context"

	"focus-server/internal/config"
	"focus-server/internal/models"
	"focus-server/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdentityResolver is satisfied by *service.IdentityResolver.
type IdentityResolver interface {
	Resolve(ctx context.Context, kind models.TokenKind, raw string) (*models.Identity, error)
}

type AuthHandler struct {
	authService service.AuthService
	resolver    IdentityResolver
	cookies     cookieSettings
	logger      *zap.Logger
}

func NewAuthHandler(authService service.AuthService, resolver IdentityResolver, cfg *config.Config, logger *zap.Logger) *AuthHandler {
	registerValidators()
	return &AuthHandler{
		authService: authService,
		resolver:    resolver,
		cookies:     newCookieSettings(cfg.IsProduction()),
		logger:      logger.Named("AuthHandler"),
	}
}

// RegisterRoutes mounts the auth and profile endpoints. rateLimit guards the
// credential endpoints and may be nil.
func (h *AuthHandler) RegisterRoutes(router gin.IRouter, rateLimit gin.HandlerFunc) {
	if rateLimit == nil {
		rateLimit = func(c *gin.Context) { c.Next() }
	}
	accessGuard := h.guard(h.accessStrategy())
	refreshGuard := h.guard(h.refreshStrategy())

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", rateLimit, h.register)
		authGroup.POST("/login", rateLimit, h.login)
		authGroup.POST("/refresh", rateLimit, refreshGuard, h.refresh)
		authGroup.POST("/logout", h.optionalGuard(h.accessStrategy()), h.logout)
		authGroup.GET("/profile", accessGuard, h.getMe)
	}

	usersGroup := router.Group("/users")
	usersGroup.Use(accessGuard)
	{
		usersGroup.GET("/me", h.getMe)
		usersGroup.PATCH("/me", h.updateMe)
	}
}
