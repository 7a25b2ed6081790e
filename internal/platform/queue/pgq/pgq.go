// Package pgq is the postgres lease queue driver over the event_queue table
package pgq

import (
	"context"
	"fmt"
	"os"
	"time"

	perr "contextual/internal/platform/errors"
	"contextual/internal/platform/logger"
	"contextual/internal/platform/queue"
	"contextual/internal/platform/store"
)

// Queue leases rows with FOR UPDATE SKIP LOCKED; an expired lease makes a row visible again
type Queue struct {
	db     store.TxRunner
	cfg    queue.Config
	worker string
	log    *logger.Logger
}

// New builds a queue on db; zero tuning values take the documented defaults
func New(db store.TxRunner, cfg queue.Config) *Queue {
	if db == nil {
		panic("pgq: nil TxRunner")
	}
	if cfg.PG.MaxAttempts <= 0 {
		cfg.PG.MaxAttempts = 10
	}
	if cfg.PG.Poll <= 0 {
		cfg.PG.Poll = 500 * time.Millisecond
	}
	if cfg.PG.Lease <= 0 {
		cfg.PG.Lease = time.Minute
	}
	host, _ := os.Hostname()
	return &Queue{
		db:     db,
		cfg:    cfg,
		worker: fmt.Sprintf("%s:%s:%d", cfg.AppName, host, os.Getpid()),
		log:    logger.Named("pgq"),
	}
}

func interval(d time.Duration) string { return fmt.Sprintf("%d milliseconds", d.Milliseconds()) }

// Publish inserts one row; the body must be JSON
func (q *Queue) Publish(ctx context.Context, m queue.Message) error {
	const sql = `
		INSERT INTO event_queue (id, topic, event_type, body, created_at)
		VALUES ($1::uuid, $2, $3, $4::jsonb, COALESCE($5, now()))
	`
	var at *time.Time
	if !m.PublishedAt.IsZero() {
		at = &m.PublishedAt
	}
	if _, err := q.db.Exec(ctx, sql, m.ID, q.cfg.Name, m.Type, m.Body, at); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "pgq publish")
	}
	return nil
}

// Lease claims up to n ready rows for this worker
func (q *Queue) Lease(ctx context.Context, n int) ([]queue.Delivery, error) {
	const sql = `
		WITH ready AS (
			SELECT id
			  FROM event_queue
			 WHERE topic = $1
			   AND dead_at IS NULL
			   AND next_attempt_at <= now()
			   AND (leased_by IS NULL OR lease_expires_at <= now())
			 ORDER BY next_attempt_at ASC, created_at ASC
			 LIMIT $2
			 FOR UPDATE SKIP LOCKED
		)
		UPDATE event_queue e
		   SET leased_by = $3,
		       lease_expires_at = now() + $4::interval
		  FROM ready
		 WHERE e.id = ready.id
		RETURNING e.id::text, e.event_type, e.body, e.attempts, e.created_at
	`
	return store.Many(ctx, q.db, func(r store.Row) (queue.Delivery, error) {
		var m queue.Message
		var attempts int
		if err := r.Scan(&m.ID, &m.Type, &m.Body, &attempts, &m.PublishedAt); err != nil {
			return nil, err
		}
		m.Attempt = attempts + 1
		return &delivery{q: q, m: m}, nil
	}, sql, q.cfg.Name, n, q.worker, interval(q.cfg.PG.Lease))
}

// Deliveries leases one row per hand-off so a buffered row never sits on a
// running lease. The lease is renewed while the worker is busy and again the
// moment the worker takes the row
func (q *Queue) Deliveries(ctx context.Context) (<-chan queue.Delivery, error) {
	out := make(chan queue.Delivery)
	go func() {
		defer close(out)
		for {
			batch, err := q.Lease(ctx, 1)
			if err != nil && ctx.Err() == nil {
				q.log.Warn().Err(err).Msg("pgq lease failed")
			}
			for i, d := range batch {
				if !q.handOff(ctx, out, d) {
					q.release(batch[i:])
					return
				}
			}
			if len(batch) > 0 {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(q.cfg.PG.Poll):
			}
		}
	}()
	return out, nil
}

// handOff blocks until the worker takes d, renewing the lease every half TTL.
// It returns false only when ctx ends first
func (q *Queue) handOff(ctx context.Context, out chan<- queue.Delivery, d queue.Delivery) bool {
	t := time.NewTicker(q.cfg.PG.Lease / 2)
	defer t.Stop()
	for {
		select {
		case out <- d:
			if _, err := q.Renew(ctx, d.Message().ID); err != nil && ctx.Err() == nil {
				q.log.Warn().Err(err).Str("id", d.Message().ID).Msg("pgq lease renew failed")
			}
			return true
		case <-ctx.Done():
			return false
		case <-t.C:
			held, err := q.Renew(ctx, d.Message().ID)
			if err != nil {
				q.log.Warn().Err(err).Str("id", d.Message().ID).Msg("pgq lease renew failed")
				continue
			}
			if !held {
				q.log.Warn().Str("id", d.Message().ID).Msg("pgq lease lost before hand-off")
				return true
			}
		}
	}
}

// Renew pushes the lease expiry one TTL from now; false means another worker holds the row
func (q *Queue) Renew(ctx context.Context, id string) (bool, error) {
	const sql = `
		UPDATE event_queue
		   SET lease_expires_at = now() + $3::interval
		 WHERE id = $1::uuid AND leased_by = $2
	`
	tag, err := q.db.Exec(ctx, sql, id, q.worker, interval(q.cfg.PG.Lease))
	if err != nil {
		return false, perr.FromPostgres(err, "pgq renew")
	}
	return tag.RowsAffected() > 0, nil
}

// release hands leased rows back untouched, without counting an attempt
func (q *Queue) release(ds []queue.Delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, d := range ds {
		const sql = `UPDATE event_queue SET leased_by = NULL, lease_expires_at = NULL WHERE id = $1::uuid AND leased_by = $2`
		if _, err := q.db.Exec(ctx, sql, d.Message().ID, q.worker); err != nil {
			q.log.Warn().Err(err).Str("id", d.Message().ID).Msg("pgq release failed")
		}
	}
}

// Ping checks the database
func (q *Queue) Ping(ctx context.Context) error {
	if p, ok := q.db.(store.Pinger); ok {
		return p.Ping(ctx)
	}
	_, err := store.Scalar[int](ctx, q.db, `SELECT 1`)
	return err
}

// Close is a no-op; the pool belongs to the store
func (q *Queue) Close() error { return nil }

type delivery struct {
	q *Queue
	m queue.Message
}

func (d *delivery) Message() queue.Message { return d.m }

// Ack deletes the row while this worker still holds the lease
func (d *delivery) Ack(ctx context.Context) error {
	const sql = `DELETE FROM event_queue WHERE id = $1::uuid AND leased_by = $2`
	tag, err := d.q.db.Exec(ctx, sql, d.m.ID, d.q.worker)
	if err != nil {
		return perr.FromPostgres(err, "pgq ack")
	}
	if tag.RowsAffected() == 0 {
		return perr.Newf(perr.ErrorCodeConflict, "pgq ack %s: lease lost", d.m.ID)
	}
	return nil
}

// Nack reschedules with exponential backoff, or dead-letters when requeue is false
// or the attempt budget is spent
func (d *delivery) Nack(ctx context.Context, requeue bool) error {
	dead := !requeue || d.m.Attempt >= d.q.cfg.PG.MaxAttempts
	const sql = `
		UPDATE event_queue
		   SET attempts         = attempts + 1,
		       leased_by        = NULL,
		       lease_expires_at = NULL,
		       next_attempt_at  = now() + $3::interval,
		       dead_at          = CASE WHEN $4 THEN now() ELSE NULL END,
		       last_error       = CASE WHEN $4 THEN 'dead-lettered' ELSE 'requeued' END
		 WHERE id = $1::uuid AND leased_by = $2
	`
	wait := queue.Backoff(d.q.cfg.PG.RetryBase, d.m.Attempt)
	if _, err := d.q.db.Exec(ctx, sql, d.m.ID, d.q.worker, interval(wait), dead); err != nil {
		return perr.FromPostgres(err, "pgq nack")
	}
	if dead {
		d.q.log.Warn().Str("id", d.m.ID).Int("attempt", d.m.Attempt).Bool("requeue", requeue).Msg("pgq message dead-lettered")
	}
	return nil
}

var _ queue.Queue = (*Queue)(nil)
