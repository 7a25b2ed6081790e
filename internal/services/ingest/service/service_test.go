package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	gh "contextual/internal/adapters/ingest/github"
	"contextual/internal/core/event"
	perr "contextual/internal/platform/errors"
	"contextual/internal/platform/queue"
	"contextual/internal/services/ingest/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePub struct {
	msgs   []queue.Message
	failAt int // 1-based publish that fails, 0 never
}

func (f *fakePub) Publish(_ context.Context, m queue.Message) error {
	if f.failAt > 0 && len(f.msgs)+1 == f.failAt {
		return errors.New("broker gone")
	}
	f.msgs = append(f.msgs, m)
	return nil
}

func push(ids ...string) gh.PushEvent {
	p := gh.PushEvent{Repository: &gh.Repository{FullName: "acme/api"}}
	for _, id := range ids {
		p.Commits = append(p.Commits, gh.Commit{
			ID:       id,
			Message:  "msg " + id,
			Author:   &gh.Person{Email: "dev@acme.io"},
			Added:    []string{"a.go"},
			Modified: []string{"b.go"},
		})
	}
	return p
}

func TestIngest_OneMessagePerCommit(t *testing.T) {
	pub := &fakePub{}
	svc := New(pub, Options{TenantID: "t1"})

	res, err := svc.Ingest(context.Background(), domain.Push{Event: "push", Body: push("abc123def4567890", "0011223344556677", "ffeeddccbbaa9988")})
	require.NoError(t, err)
	assert.Equal(t, domain.Ack{Accepted: true, Published: 3}, res)
	require.Len(t, pub.msgs, 3)

	seen := map[string]bool{}
	for _, m := range pub.msgs {
		assert.Equal(t, event.TypeGitCommitRaw, m.Type)
		var env event.Envelope
		require.NoError(t, json.Unmarshal(m.Body, &env))
		assert.Equal(t, "t1", env.TenantID)
		assert.Equal(t, "1.0", env.SchemaVersion)
		assert.Equal(t, env.TraceID[:12], env.Payload.CommitHash)
		assert.Equal(t, 2, env.Payload.FilesChanged)
		assert.Equal(t, "acme/api", env.Payload.Repo)
		assert.Equal(t, "dev@acme.io", env.Payload.AuthorEmail)
		seen[env.TraceID] = true
	}
	assert.Len(t, seen, 3, "trace ids must be distinct and equal the commit ids")
	assert.True(t, seen["abc123def4567890"])
}

func TestIngest_PartialFailureKeepsEarlierPublishes(t *testing.T) {
	pub := &fakePub{failAt: 2}
	svc := New(pub, Options{})

	res, err := svc.Ingest(context.Background(), domain.Push{Body: push("a1", "b2", "c3")})
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnavailable))
	assert.False(t, res.Accepted)
	assert.Equal(t, 1, res.Published)
	assert.Len(t, pub.msgs, 1)
}

func TestIngest_PingAndEmpty(t *testing.T) {
	pub := &fakePub{}
	svc := New(pub, Options{})

	res, err := svc.Ingest(context.Background(), domain.Push{Event: "ping"})
	require.NoError(t, err)
	assert.Equal(t, domain.Ack{Accepted: true}, res)

	res, err = svc.Ingest(context.Background(), domain.Push{Event: "push", Body: gh.PushEvent{}})
	require.NoError(t, err)
	assert.Equal(t, domain.Ack{Accepted: true}, res)
	assert.Empty(t, pub.msgs)
}

func TestIngest_DefaultRepoAndMissingID(t *testing.T) {
	pub := &fakePub{}
	svc := New(pub, Options{})

	p := gh.PushEvent{Commits: []gh.Commit{{ID: ""}, {ID: "deadbeef"}}}
	res, err := svc.Ingest(context.Background(), domain.Push{Body: p})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Published)

	var env event.Envelope
	require.NoError(t, json.Unmarshal(pub.msgs[0].Body, &env))
	assert.Equal(t, domain.DefaultRepo, env.Payload.Repo)
	assert.Equal(t, "deadbeef", env.Payload.CommitHash)
}

func TestNewPanicsWithoutPublisher(t *testing.T) {
	assert.Panics(t, func() { New(nil, Options{}) })
}
