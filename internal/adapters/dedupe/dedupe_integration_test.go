//go:build integration_redis

package dedupe

import (
	"context"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	addr, err := c.Endpoint(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	s, closeFn, err := Open(ctx, Config{Addr: addr, TTL: time.Minute, Prefix: "it:"})
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()

	if seen, _ := s.Seen(ctx, "abc"); seen {
		t.Fatalf("fresh trace reported seen")
	}
	if err := s.Mark(ctx, "abc"); err != nil {
		t.Fatal(err)
	}
	if seen, err := s.Seen(ctx, "abc"); err != nil || !seen {
		t.Fatalf("seen = %v, %v", seen, err)
	}
}
