//go:build integration_pg

package repo

import (
	"context"
	"testing"

	"contextual/internal/modkit/repokit"
	"contextual/internal/platform/store/pgtest"
	"contextual/internal/services/backfill/domain"

	"github.com/stretchr/testify/require"
)

const dim = 1024

func TestIntegration_PendingWriteSearch(t *testing.T) {
	st, _ := pgtest.Start(t)
	ctx := context.Background()

	_, err := st.PG.Exec(ctx, `
		INSERT INTO jira_issues (jira_key, project_key, title, description, status, updated_at) VALUES
		  ('SCRUM-1', 'SCRUM', 'old', NULL, 'Done', now() - interval '2 day'),
		  ('SCRUM-2', 'SCRUM', 'new', 'desc', 'To Do', now()),
		  ('SCRUM-3', 'SCRUM', 'undated', NULL, NULL, NULL),
		  ('OTHER-1', 'OTHER', 'x', NULL, NULL, now())`)
	require.NoError(t, err)

	r := NewPG().Bind(st.PG)
	got, err := r.FetchPending(ctx, "SCRUM", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, []string{"SCRUM-2", "SCRUM-1", "SCRUM-3"}, []string{got[0].Key, got[1].Key, got[2].Key})
	require.Equal(t, "desc", got[0].Description)

	// rows claimed by one transaction are skipped by another
	err = repokit.WithTx(ctx, st.PG, func(q repokit.Queryer) error {
		mine, err := NewPG().Bind(q).FetchPending(ctx, "SCRUM", 1)
		require.NoError(t, err)
		require.Len(t, mine, 1)

		others, err := r.FetchPending(ctx, "SCRUM", 10)
		require.NoError(t, err)
		require.Len(t, others, 2)

		return NewPG().Bind(q).WriteEmbeddings(ctx, []domain.Vector{{ID: mine[0].ID, Embedding: pgtest.Vec(dim, 0, 1)}})
	})
	require.NoError(t, err)

	left, err := r.FetchPending(ctx, "SCRUM", 10)
	require.NoError(t, err)
	require.Len(t, left, 2)

	hits, err := r.Search(ctx, "SCRUM", pgtest.Vec(dim, 0, 1), 3)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "SCRUM-2", hits[0].Key)
	require.Equal(t, "To Do", hits[0].Status)
	require.NotNil(t, hits[0].UpdatedAt)
	require.InDelta(t, 1.0, hits[0].Score, 1e-6)

	require.Error(t, r.WriteEmbeddings(ctx, []domain.Vector{{ID: 99999, Embedding: pgtest.Vec(dim, 0, 1)}}))
}
