// Package migrations embeds the schema and applies it with golang-migrate
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"contextual/internal/platform/logger"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

//go:embed sql/*.sql
var files embed.FS

// Migrator wraps a migrate instance bound to the embedded files
type Migrator struct {
	m  *migrate.Migrate
	db *sql.DB
}

// Open connects to url through database/sql, which golang-migrate requires
func Open(url string) (*Migrator, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	drv, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("driver: %w", err)
	}
	src, err := iofs.New(files, "sql")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", drv)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("instance: %w", err)
	}
	return &Migrator{m: m, db: db}, nil
}

// Up applies all pending migrations; nothing pending is not an error
func (x *Migrator) Up() error { return ignoreNoChange(x.m.Up()) }

// Down rolls back n steps
func (x *Migrator) Down(n int) error {
	if n <= 0 {
		return errors.New("steps must be positive")
	}
	return ignoreNoChange(x.m.Steps(-n))
}

// Version reports the applied version and whether the last run left it dirty
func (x *Migrator) Version() (uint, bool, error) {
	v, dirty, err := x.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Close releases the source and database handles
func (x *Migrator) Close() error {
	srcErr, dbErr := x.m.Close()
	return errors.Join(srcErr, dbErr, x.db.Close())
}

// Up is the one-shot form used at service boot
func Up(url string) error {
	x, err := Open(url)
	if err != nil {
		return err
	}
	defer func() {
		if err := x.Close(); err != nil {
			logger.Named("migrate").Warn().Err(err).Msg("close migrator")
		}
	}()
	if err := x.Up(); err != nil {
		return err
	}
	v, _, _ := x.Version()
	logger.Named("migrate").Info().Uint("version", v).Msg("schema up to date")
	return nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
