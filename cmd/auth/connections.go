package main

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"focus-server/internal/config"
	"focus-server/internal/database"
	"focus-server/internal/interfaces"
	"focus-server/internal/messaging"
	"focus-server/internal/utils"

	"github.com/rabbitmq/amqp091-go"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// setupUserStore opens the credential store selected by DB_DRIVER. The returned
// func releases it.
func setupUserStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (interfaces.UserRepository, func(), error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using embedded SQLite store", zap.String("path", cfg.SQLitePath))
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return database.NewGormUserRepository(db, logger), closeFn, nil

	default:
		pool, err := database.ConnectPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Connected to PostgreSQL")

		if cfg.AutoMigrate {
			if err := database.MigrateUp(cfg.PostgresDSN(), logger.Named("Migrations")); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		return database.NewPgUserRepository(pool, logger), pool.Close, nil
	}
}

// setupRedis returns nil when no address is configured.
func setupRedis(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, auth rate limiting disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	logger.Info("Redis connection options configured", zap.String("address", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))

	err := utils.RetryConnect(ctx, "redis", cfg.ConnAttempts, cfg.ConnDelay, logger, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return client.Ping(pingCtx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// setupPublisher connects to RabbitMQ, or returns a no-op publisher when no URL is configured.
func setupPublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (interfaces.UserEventPublisher, func(), error) {
	if cfg.RabbitMQURL == "" {
		logger.Info("RABBITMQ_URL not set, user events will not be published")
		return messaging.NoopUserEventPublisher{}, func() {}, nil
	}

	conn, err := connectRabbitMQ(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	publisher, err := messaging.NewRabbitMQUserEventPublisher(conn, logger)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	closeFn := func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("Error closing user event publisher", zap.Error(err))
		}
		if err := conn.Close(); err != nil {
			logger.Warn("Error closing RabbitMQ connection", zap.Error(err))
		}
	}
	return publisher, closeFn, nil
}

func connectRabbitMQ(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*amqp091.Connection, error) {
	logger.Info("Connecting to RabbitMQ", zap.String("url", redactURL(cfg.RabbitMQURL)))

	var conn *amqp091.Connection
	err := utils.RetryConnect(ctx, "rabbitmq", cfg.ConnAttempts, cfg.ConnDelay, logger, func(context.Context) error {
		c, err := amqp091.Dial(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	go func() {
		notifyClose := conn.NotifyClose(make(chan *amqp091.Error, 1))
		if err := <-notifyClose; err != nil {
			logger.Error("RabbitMQ connection closed unexpectedly", zap.Error(err))
		} else {
			logger.Info("RabbitMQ connection closed gracefully")
		}
	}()
	return conn, nil
}

// redactURL hides the password of a broker URL for logging.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}

func describeStore(cfg *config.Config) string {
	if cfg.DBDriver == config.DriverSQLite {
		return fmt.Sprintf("sqlite:%s", cfg.SQLitePath)
	}
	return fmt.Sprintf("postgres:%s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
}
