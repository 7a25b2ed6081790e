// Package repo provides the feedback repository implementation
package repo

import (
	"context"

	"contextual/internal/modkit/repokit"
	perr "contextual/internal/platform/errors"
	"contextual/internal/platform/store"
	"contextual/internal/services/feedback/domain"
)

// Repo is the persistence surface used by the service layer
type Repo interface {
	AppendInteraction(ctx context.Context, in domain.Interaction) error
	// MarkClicked stamps the most recently delivered matching notification and returns
	// its confidence; found is false when no notification matches
	MarkClicked(ctx context.Context, traceID, commit string) (confidence *float64, found bool, err error)
	UpsertLink(ctx context.Context, l domain.Link) error
}

type (
	// PG is a Postgres implementation of the feedback repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// AppendInteraction writes one audit row; duplicates from retried callbacks are kept
func (r *queries) AppendInteraction(ctx context.Context, in domain.Interaction) error {
	const sql = `
		INSERT INTO interaction_log (
			trace_id, commit_hash, recommended_jira_key, user_feedback, corrected_jira_key, interaction_timestamp
		) VALUES ($1, $2, $3, $4, $5, now())
	`
	if err := store.ExecOne(ctx, r.q, sql, in.TraceID, in.Commit, in.Recommended, in.Feedback, in.Corrected); err != nil {
		return perr.FromPostgres(err, "append interaction")
	}
	return nil
}

// MarkClicked keeps the first click time; later callbacks leave clicked_at alone
func (r *queries) MarkClicked(ctx context.Context, traceID, commit string) (*float64, bool, error) {
	const sql = `
		WITH latest AS (
			SELECT id
			FROM notifications
			WHERE trace_id = $1 AND commit_hash = $2
			ORDER BY delivered_at DESC, id DESC
			LIMIT 1
			FOR UPDATE
		)
		UPDATE notifications n
		SET clicked_at = COALESCE(n.clicked_at, now())
		FROM latest
		WHERE n.id = latest.id
		RETURNING n.confidence
	`
	conf, err := store.Scalar[*float64](ctx, r.q, sql, traceID, commit)
	if perr.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, perr.FromPostgres(err, "mark notification clicked")
	}
	return conf, true, nil
}

// UpsertLink makes l the commit's link, replacing any earlier one
func (r *queries) UpsertLink(ctx context.Context, l domain.Link) error {
	const sql = `
		INSERT INTO commit_links (commit_hash, jira_key, project_key, confidence, trace_id, linked_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (commit_hash) DO UPDATE
		SET jira_key    = EXCLUDED.jira_key,
		    project_key = EXCLUDED.project_key,
		    confidence  = EXCLUDED.confidence,
		    trace_id    = EXCLUDED.trace_id,
		    linked_at   = EXCLUDED.linked_at
	`
	if _, err := r.q.Exec(ctx, sql, l.Commit, l.JiraKey, l.ProjectKey, l.Confidence, l.TraceID); err != nil {
		return perr.FromPostgres(err, "upsert commit link")
	}
	return nil
}
