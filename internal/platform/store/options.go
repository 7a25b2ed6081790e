package store

import "contextual/internal/platform/logger"

// Option mutates Store during Open
type Option func(*Store) error

// WithLogger sets the logger used by subclients
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// WithMigrator runs fn against the database URL after the pool is healthy and
// before Open returns. Used when PGConfig.Migrate is set
func WithMigrator(fn func(url string) error) Option {
	return func(s *Store) error {
		s.migrate = fn
		return nil
	}
}
