package http

import (
	"context"
	"net"
	stdhttp "net/http"
	"testing"
	"time"

	"contextual/internal/platform/config"
	"contextual/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

func TestNewServer_PortFromPrefix(t *testing.T) {
	testkit.Env(t, map[string]string{"INGEST_API_PORT": "9101"})
	s := NewServer(config.New().Prefix("INGEST_"))
	if s.Addr() != ":9101" {
		t.Fatalf("addr = %q", s.Addr())
	}
	if NewServer(config.New().Prefix("NOPE_")).Addr() != ":8000" {
		t.Fatalf("default addr")
	}
	if NewServerPort(config.New().Prefix("NOPE_"), ":8003").Addr() != ":8003" {
		t.Fatalf("binary default addr")
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	s := NewServer(config.New(), func(m *chi.Mux) {
		m.Get("/ping", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { _, _ = w.Write([]byte("pong")) })
	})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	testkit.Eventually(t, 2*time.Second, func() bool {
		resp, err := stdhttp.Get("http://" + ln.Addr().String() + "/ping")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == 200
	}, "server never answered")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("shutdown timed out")
	}
}
