//go:build integration_amqp

package amqpq

import (
	"context"
	"testing"
	"time"

	"contextual/internal/platform/queue"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRabbit(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3-management",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor:   wait.ForLog("Server startup complete").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5672/tcp")
	require.NoError(t, err)
	return "amqp://guest:guest@" + host + ":" + port.Port() + "/"
}

func TestIntegration_PublishConsumeNackRedeliver(t *testing.T) {
	url := startRabbit(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := queue.Config{Name: "it_commits", Prefetch: 2, AppName: "it", AMQP: queue.AMQPConfig{URL: url, Type: "quorum"}}
	c, err := Dial(ctx, cfg)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Ping(ctx))

	m := queue.NewMessage("git_commit_raw", []byte(`{"trace_id":"abc"}`))
	require.NoError(t, c.Publish(ctx, m))

	cctx, ccancel := context.WithCancel(ctx)
	ds, err := c.Deliveries(cctx)
	require.NoError(t, err)

	first := <-ds
	require.Equal(t, m.ID, first.Message().ID)
	require.Equal(t, 1, first.Message().Attempt)
	require.NoError(t, first.Nack(ctx, true))

	second := <-ds
	require.Equal(t, m.ID, second.Message().ID)
	require.Equal(t, 2, second.Message().Attempt)
	require.NoError(t, second.Ack(ctx))

	ccancel()
	for range ds {
	}
}
