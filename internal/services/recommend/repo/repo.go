// Package repo provides the recommendation repository implementation
package repo

import (
	"context"

	"contextual/internal/modkit/repokit"
	perr "contextual/internal/platform/errors"
	"contextual/internal/platform/store"
	"contextual/internal/services/recommend/domain"

	"github.com/pgvector/pgvector-go"
)

// Repo is the persistence surface used by the worker
type Repo interface {
	Search(ctx context.Context, project string, vec []float32, k int) ([]domain.Candidate, error)
	SaveNotification(ctx context.Context, n domain.Notification) error
}

type (
	// PG is a Postgres implementation of the recommendation repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// Search returns up to k issues of project nearest to vec by cosine distance.
// Issues without an embedding are never returned; no rows is perr.ErrNotFound
func (r *queries) Search(ctx context.Context, project string, vec []float32, k int) ([]domain.Candidate, error) {
	const sql = `
		SELECT jira_key, 1 - (embedding <=> $1) AS score
		FROM jira_issues
		WHERE project_key = $2 AND embedding IS NOT NULL
		ORDER BY embedding <=> $1 ASC, id ASC
		LIMIT $3
	`
	out, err := store.Many(ctx, r.q, func(row store.Row) (domain.Candidate, error) {
		var c domain.Candidate
		err := row.Scan(&c.Key, &c.Score)
		return c, err
	}, sql, pgvector.NewVector(vec), project, k)
	if err != nil {
		return nil, perr.FromPostgres(err, "search issues")
	}
	if len(out) == 0 {
		return nil, perr.ErrNotFound
	}
	return out, nil
}

// SaveNotification upserts on message_id so a redelivered message keeps one row
func (r *queries) SaveNotification(ctx context.Context, n domain.Notification) error {
	const sql = `
		INSERT INTO notifications (
			message_id, trace_id, tenant_id, commit_hash, recommended_jira_key, confidence, delivered_at
		) VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (message_id) DO UPDATE
		SET recommended_jira_key = EXCLUDED.recommended_jira_key,
		    confidence           = EXCLUDED.confidence,
		    delivered_at         = EXCLUDED.delivered_at
	`
	if _, err := r.q.Exec(ctx, sql, n.MessageID, n.TraceID, n.TenantID, n.CommitHash, n.RecommendedKey, n.Confidence); err != nil {
		return perr.FromPostgres(err, "save notification")
	}
	return nil
}
