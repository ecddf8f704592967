package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"focus-server/internal/handler"
	"focus-server/internal/middleware"
	"focus-server/internal/ratelimit"
	"focus-server/internal/service"
	"focus-server/internal/token"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- External Connections ---
	zap.L().Info("Opening credential store", zap.String("store", describeStore(cfg)))
	userRepo, closeStore, err := setupUserStore(ctx, cfg, logger)
	if err != nil {
		zap.L().Error("Failed to open credential store", zap.Error(err))
		return err
	}
	defer closeStore()

	redisClient, err := setupRedis(ctx, cfg, logger)
	if err != nil {
		zap.L().Error("Failed to connect to Redis", zap.Error(err))
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, closePublisher, err := setupPublisher(ctx, cfg, logger)
	if err != nil {
		zap.L().Error("Failed to connect to RabbitMQ", zap.Error(err))
		return err
	}
	defer closePublisher()

	// --- Dependency Injection ---
	jwtCfg := cfg.JWT()
	signer := token.NewSigner(jwtCfg.Issuer)
	hasher := service.NewPasswordHasher(cfg.PasswordPepper, 0)
	authSvc := service.NewAuthService(userRepo, publisher, hasher, signer, jwtCfg, logger)
	resolver := service.NewIdentityResolver(signer, userRepo, jwtCfg, logger)
	authHandler := handler.NewAuthHandler(authSvc, resolver, cfg, logger)

	var rateLimitMiddleware gin.HandlerFunc
	if redisClient != nil {
		limiter := ratelimit.NewLimiter(redisClient, "rate_limit:auth:")
		rateLimitMiddleware = middleware.RateLimit(limiter, cfg.RateLimit, cfg.RateLimitWindow, logger.Named("RateLimit"))
		zap.L().Info("Rate limiter middleware initialized",
			zap.Int("limit", cfg.RateLimit),
			zap.Duration("window", cfg.RateLimitWindow),
		)
	}

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(middleware.GinZapLogger(logger))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.GetAllowedOrigins()
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	authHandler.RegisterRoutes(router, rateLimitMiddleware)

	// Applied after the routes so the exporter sees them; also serves /metrics.
	p.Use(router)

	// --- Start HTTP Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		zap.L().Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// --- Graceful Shutdown ---
	select {
	case err := <-serverErr:
		zap.L().Error("HTTP Server listen error", zap.Error(err))
		return err
	case <-ctx.Done():
	}
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exiting")
	return nil
}

