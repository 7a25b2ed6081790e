//go:build integration_pg

// Package pgtest starts a throwaway pgvector postgres with the schema applied
package pgtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"contextual/internal/platform/store"
	"contextual/internal/platform/store/migrations"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Start returns a migrated Store and its DSN; everything is torn down on cleanup
func Start(t *testing.T) (*store.Store, string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "pgvector/pgvector:pg16",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "contextual",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/contextual?sslmode=disable", host, port.Port())

	st, err := store.Open(ctx, store.Config{
		AppName: "contextual-test",
		PG:      store.PGConfig{Enabled: true, URL: dsn, MaxConns: 4, Migrate: true},
	}, store.WithMigrator(migrations.Up))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st, dsn
}

// Vec returns a dim-length vector with v at index i and zeros elsewhere
func Vec(dim, i int, v float32) []float32 {
	out := make([]float32, dim)
	out[i] = v
	return out
}
