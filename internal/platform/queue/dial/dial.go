// Package dial opens the configured queue driver
package dial

import (
	"context"

	perr "contextual/internal/platform/errors"
	"contextual/internal/platform/queue"
	"contextual/internal/platform/queue/amqpq"
	"contextual/internal/platform/queue/pgq"
	"contextual/internal/platform/store"
)

// Open returns the driver cfg.Driver names; pg is required for the pg driver only
func Open(ctx context.Context, cfg queue.Config, pg store.TxRunner) (queue.Queue, error) {
	switch cfg.Driver {
	case queue.DriverPG:
		if pg == nil {
			return nil, perr.InvalidArgf("queue driver pg needs a postgres connection")
		}
		return pgq.New(pg, cfg), nil
	case queue.DriverAMQP, "":
		return amqpq.Dial(ctx, cfg)
	}
	return nil, perr.InvalidArgf("unknown queue driver %q", cfg.Driver)
}
