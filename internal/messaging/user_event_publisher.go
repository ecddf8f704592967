package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"focus-server/internal/interfaces"
	"focus-server/internal/models"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	UserEventsExchange     = "focus.user.events"
	userEventsExchangeType = "fanout"

	EventUserRegistered = "user.registered"
)

// UserRegisteredPayload lets the task and settings side seed defaults for a new account.
type UserRegisteredPayload struct {
	EventType  string    `json:"eventType"`
	UserID     string    `json:"userId"`
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// publishChannel is the part of *amqp091.Channel the publisher uses.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Compile-time check to ensure RabbitMQUserEventPublisher implements UserEventPublisher
var _ interfaces.UserEventPublisher = (*RabbitMQUserEventPublisher)(nil)

// RabbitMQUserEventPublisher publishes account events to a durable fanout exchange.
type RabbitMQUserEventPublisher struct {
	ch     publishChannel
	logger *zap.Logger
}

// NewRabbitMQUserEventPublisher opens a channel on conn and declares the exchange.
func NewRabbitMQUserEventPublisher(conn *amqp091.Connection, logger *zap.Logger) (*RabbitMQUserEventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("Failed to open a channel for user events", zap.Error(err))
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		UserEventsExchange,
		userEventsExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = ch.Close()
		logger.Error("Failed to declare user events exchange", zap.String("exchange", UserEventsExchange), zap.Error(err))
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", UserEventsExchange, err)
	}
	logger.Info("User events exchange declared", zap.String("exchange", UserEventsExchange))

	return newUserEventPublisher(ch, logger), nil
}

func newUserEventPublisher(ch publishChannel, logger *zap.Logger) *RabbitMQUserEventPublisher {
	return &RabbitMQUserEventPublisher{ch: ch, logger: logger.Named("UserEventPublisher")}
}

// PublishUserRegistered emits a user.registered event.
func (p *RabbitMQUserEventPublisher) PublishUserRegistered(ctx context.Context, user *models.User) error {
	payload := UserRegisteredPayload{
		EventType:  EventUserRegistered,
		UserID:     user.ID.String(),
		Email:      user.Email,
		Name:       user.Name,
		OccurredAt: time.Now().UTC(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal user registered payload: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		UserEventsExchange,
		EventUserRegistered, // routing key, ignored by fanout
		false,               // mandatory
		false,               // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    uuid.NewString(),
			Type:         EventUserRegistered,
			Timestamp:    payload.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish user registered event", zap.String("userID", payload.UserID), zap.Error(err))
		return fmt.Errorf("failed to publish user registered event: %w", err)
	}

	p.logger.Debug("User registered event published", zap.String("userID", payload.UserID))
	return nil
}

// Close closes the channel.
func (p *RabbitMQUserEventPublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}

// NoopUserEventPublisher is used when no broker is configured.
type NoopUserEventPublisher struct{}

func (NoopUserEventPublisher) PublishUserRegistered(context.Context, *models.User) error { return nil }
func (NoopUserEventPublisher) Close() error                                               { return nil }
