// Package repo provides the backfill repository implementation
package repo

import (
	"context"

	"contextual/internal/modkit/repokit"
	perr "contextual/internal/platform/errors"
	"contextual/internal/platform/store"
	"contextual/internal/services/backfill/domain"

	"github.com/pgvector/pgvector-go"
)

// Repo is the persistence surface used by the backfill service
type Repo interface {
	// FetchPending claims up to limit issues without an embedding; rows locked by
	// a concurrent run are skipped
	FetchPending(ctx context.Context, project string, limit int) ([]domain.Issue, error)
	WriteEmbeddings(ctx context.Context, vs []domain.Vector) error
	Search(ctx context.Context, project string, vec []float32, k int) ([]domain.Hit, error)
}

type (
	// PG is a Postgres implementation of the backfill repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) FetchPending(ctx context.Context, project string, limit int) ([]domain.Issue, error) {
	if limit <= 0 {
		return nil, nil
	}
	const sql = `
		SELECT id, jira_key, COALESCE(title, ''), COALESCE(description, '')
		FROM jira_issues
		WHERE project_key = $1 AND embedding IS NULL
		ORDER BY updated_at DESC NULLS LAST, id ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`
	out, err := store.Many(ctx, r.q, func(row store.Row) (domain.Issue, error) {
		var is domain.Issue
		err := row.Scan(&is.ID, &is.Key, &is.Title, &is.Description)
		return is, err
	}, sql, project, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "fetch pending issues")
	}
	return out, nil
}

func (r *queries) WriteEmbeddings(ctx context.Context, vs []domain.Vector) error {
	const sql = `UPDATE jira_issues SET embedding = $1 WHERE id = $2`
	for _, v := range vs {
		if err := store.ExecOne(ctx, r.q, sql, pgvector.NewVector(v.Embedding), v.ID); err != nil {
			return perr.WithOp(perr.FromPostgres(err, "write embedding"), "backfill.write")
		}
	}
	return nil
}

func (r *queries) Search(ctx context.Context, project string, vec []float32, k int) ([]domain.Hit, error) {
	const sql = `
		SELECT jira_key, COALESCE(title, ''), COALESCE(status, ''), updated_at,
		       1 - (embedding <=> $1) AS score
		FROM jira_issues
		WHERE project_key = $2 AND embedding IS NOT NULL
		ORDER BY embedding <=> $1 ASC, id ASC
		LIMIT $3
	`
	out, err := store.Many(ctx, r.q, func(row store.Row) (domain.Hit, error) {
		var h domain.Hit
		err := row.Scan(&h.Key, &h.Title, &h.Status, &h.UpdatedAt, &h.Score)
		return h, err
	}, sql, pgvector.NewVector(vec), project, k)
	if err != nil {
		return nil, perr.FromPostgres(err, "search issues")
	}
	return out, nil
}
