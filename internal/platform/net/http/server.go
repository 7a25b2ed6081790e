package http

import (
	"context"
	"errors"
	"net"
	stdhttp "net/http"
	"time"

	"contextual/internal/platform/config"
	"contextual/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server is a thin wrapper over chi and the stdlib server
type Server struct {
	addr  string
	mux   *chi.Mux
	srv   *stdhttp.Server
	drain time.Duration
}

// NewServer reads API_PORT (default :8000) and SHUTDOWN_GRACE from cfg
func NewServer(cfg config.Conf, opts ...func(*chi.Mux)) *Server {
	return NewServerPort(cfg, ":8000", opts...)
}

// NewServerPort is NewServer with a binary-specific default for API_PORT
func NewServerPort(cfg config.Conf, def string, opts ...func(*chi.Mux)) *Server {
	addr := cfg.MayPort("API_PORT", def)
	m := chi.NewRouter()
	for _, o := range opts {
		o(m)
	}
	return &Server{
		addr:  addr,
		mux:   m,
		drain: cfg.MayDuration("SHUTDOWN_GRACE", 10*time.Second),
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Router returns the Router facade over the chi mux
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Addr returns the listen address
func (s *Server) Addr() string { return s.addr }

// Handler exposes the root handler, handy for httptest
func (s *Server) Handler() stdhttp.Handler { return s.mux }

// Run serves until ctx is cancelled, then shuts down within the drain window
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on a caller-provided listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	log := logger.Named("http")
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("http listening")
		errc <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), s.drain)
	defer cancel()
	log.Info().Dur("grace", s.drain).Msg("http draining")
	if err := s.srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}
