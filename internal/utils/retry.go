package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// RetryConnect calls connect up to attempts times with a constant delay between
// failures. It is used for startup dependencies that may come up after us.
func RetryConnect(ctx context.Context, name string, attempts uint64, delay time.Duration, logger *zap.Logger, connect func(ctx context.Context) error) error {
	if attempts == 0 {
		attempts = 1
	}
	logger.Info("Attempting to connect",
		zap.String("target", name),
		zap.Uint64("max_attempts", attempts),
		zap.Duration("retry_delay", delay),
	)

	var attempt uint64
	backoff := retry.WithMaxRetries(attempts-1, retry.NewConstant(delay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := connect(ctx); err != nil {
			logger.Warn("Connection failed, retrying...",
				zap.String("target", name),
				zap.Uint64("attempt", attempt),
				zap.Uint64("max_attempts", attempts),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to connect after all retries", zap.String("target", name), zap.Uint64("attempts", attempt), zap.Error(err))
		return fmt.Errorf("failed to connect to %s after %d attempts: %w", name, attempt, err)
	}

	logger.Info("Connected", zap.String("target", name), zap.Uint64("attempt", attempt))
	return nil
}
