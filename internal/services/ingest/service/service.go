// Package service turns verified pushes into queued commit events
package service

import (
	"context"
	"encoding/json"

	gh "contextual/internal/adapters/ingest/github"
	"contextual/internal/core/event"
	perr "contextual/internal/platform/errors"
	"contextual/internal/platform/logger"
	"contextual/internal/platform/queue"
	"contextual/internal/services/ingest/domain"
)

// Service is the public service port
type Service interface{ domain.ServicePort }

// Options control service behavior
type Options struct {
	// TenantID is stamped on every envelope
	TenantID string
}

// Svc implements the service port
type Svc struct {
	pub    queue.Publisher
	tenant string
}

// New constructs the service
func New(pub queue.Publisher, opt Options) *Svc {
	if pub == nil {
		panic("ingest.Service requires a non nil Publisher")
	}
	t := opt.TenantID
	if t == "" {
		t = "tenant-demo"
	}
	return &Svc{pub: pub, tenant: t}
}

// Ingest publishes one message per commit, in payload order. Each publish stands on its
// own: the first failure stops the loop and surfaces as unavailable, earlier ones are kept
func (s *Svc) Ingest(ctx context.Context, in domain.Push) (domain.Ack, error) {
	lg := logger.C(ctx)
	if in.Event != "" && in.Event != "push" {
		lg.Info().Str("event", in.Event).Msg("non-push delivery acknowledged")
		return domain.Ack{Accepted: true}, nil
	}

	repo := in.Body.RepoName(domain.DefaultRepo)
	res := domain.Ack{Accepted: true}
	for i, c := range in.Body.Commits {
		if c.ID == "" {
			lg.Warn().Int("index", i).Str("repo", repo).Msg("commit without id skipped")
			continue
		}
		msg, err := s.message(repo, c)
		if err != nil {
			return domain.Ack{Published: res.Published}, err
		}
		if err := s.pub.Publish(ctx, msg); err != nil {
			logger.C(logger.WithEvent(ctx, c.ID, event.ShortHash(c.ID))).
				Error().Err(err).Int("published", res.Published).Msg("publish failed")
			return domain.Ack{Published: res.Published},
				perr.WithOp(perr.Wrapf(err, perr.ErrorCodeUnavailable, "publish commit %s", event.ShortHash(c.ID)), "ingest.publish")
		}
		res.Published++
	}
	lg.Info().Str("repo", repo).Int("commits", len(in.Body.Commits)).Int("published", res.Published).Msg("push ingested")
	return res, nil
}

func (s *Svc) message(repo string, c gh.Commit) (queue.Message, error) {
	env := event.New(s.tenant, event.Commit{
		ID:          c.ID,
		Repo:        repo,
		AuthorEmail: c.AuthorEmail(),
		Message:     c.Message,
		Changed:     c.FilesChanged(),
		Files:       c.Files(event.MaxFiles),
	})
	body, err := json.Marshal(env)
	if err != nil {
		return queue.Message{}, perr.Wrap(err, perr.ErrorCodeJSON, "encode commit event")
	}
	return queue.NewMessage(event.TypeGitCommitRaw, body), nil
}
