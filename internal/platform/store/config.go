package store

import (
	"time"

	"contextual/internal/platform/config"
)

// Config aggregates backend configuration
type Config struct {
	AppName string
	PG      PGConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int
	Migrate     bool

	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// PGFromConf reads SERVICE_PGSQL_* style keys from an already prefixed view
func PGFromConf(c config.Conf) PGConfig {
	return PGConfig{
		Enabled:        true,
		URL:            c.MustString("DBURL"),
		MaxConns:       int32(c.MayInt("MAX_CONNS", 4)),
		SlowQueryMs:    c.MayInt("SLOW_MS", 500),
		LogSQL:         c.MayBool("LOG_SQL", false),
		Migrate:        c.MayBool("MIGRATE", false),
		ConnectRetries: c.MayInt("CONNECT_RETRIES", 20),
		PingTimeout:    c.MayDuration("PING_TIMEOUT", 3*time.Second),
	}
}
