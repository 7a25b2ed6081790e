// Package store is the storage facade services receive through modkit deps
package store

import (
	"context"
	"errors"
	"fmt"

	"contextual/internal/platform/logger"
)

// Store holds the opened backends; the zero value is safe but empty
type Store struct {
	// Log is used by subclients; zero means a no-op zerolog logger
	Log logger.Logger

	// PG is the postgres seam, nil when disabled
	PG TxRunner

	migrate func(url string) error
}

// Row is the scan contract of a single row
type Row interface {
	Scan(dest ...any) error
}

// Rows is the iteration contract of a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// CommandTag reports the outcome of a write
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the read/write surface repos use
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner adds transactions to RowQuerier
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Pinger reports readiness
type Pinger interface{ Ping(context.Context) error }

// Open constructs a Store with the enabled backends
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Logger()

	if !cfg.PG.Enabled {
		return s, nil
	}
	a, err := openPG(ctx, cfg, s)
	if err != nil {
		return nil, err
	}
	s.PG = a

	if cfg.PG.Migrate && s.migrate != nil {
		if err := s.migrate(cfg.PG.URL); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		s.Log.Info().Msg("migrations applied")
	}
	return s, nil
}

// Ping verifies every configured backend
func (s *Store) Ping(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	if p, ok := s.PG.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
	}
	return nil
}

// Close closes the opened backends
func (s *Store) Close(context.Context) error {
	if c, ok := s.PG.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
