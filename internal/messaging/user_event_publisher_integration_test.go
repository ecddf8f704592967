package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"focus-server/internal/models"

	"github.com/docker/docker/client"
	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func startRabbitMQ(t *testing.T) *amqp091.Connection {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Skipf("Docker client init error: %v", err)
	}
	defer cli.Close()
	if _, err := cli.Ping(context.Background()); err != nil {
		t.Skipf("Docker daemon is not running or accessible: %v", err)
	}

	ctx := context.Background()
	container, err := rabbitmq.Run(ctx,
		"rabbitmq:3-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete"),
		),
	)
	require.NoError(t, err, "Failed to start rabbitmq container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	url, err := container.AmqpURL(ctx)
	require.NoError(t, err)

	conn, err := amqp091.Dial(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestRabbitMQUserEventPublisher_Integration(t *testing.T) {
	conn := startRabbitMQ(t)

	publisher, err := NewRabbitMQUserEventPublisher(conn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = publisher.Close() })

	// Bind a throwaway queue the way a downstream consumer would.
	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "", UserEventsExchange, false, nil))
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	user := &models.User{ID: uuid.New(), Email: "sam@example.com", Name: "Sam"}
	require.NoError(t, publisher.PublishUserRegistered(context.Background(), user))

	select {
	case d := <-deliveries:
		assert.Equal(t, EventUserRegistered, d.Type)
		assert.Equal(t, "application/json", d.ContentType)

		var payload UserRegisteredPayload
		require.NoError(t, json.Unmarshal(d.Body, &payload))
		assert.Equal(t, user.ID.String(), payload.UserID)
		assert.Equal(t, "sam@example.com", payload.Email)
		assert.Equal(t, "Sam", payload.Name)
	case <-time.After(10 * time.Second):
		t.Fatal("user registered event was not delivered")
	}
}
