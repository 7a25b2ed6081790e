// Package service runs the recommendation consumer loop
package service

import (
	"context"
	"sync/atomic"

	"contextual/internal/adapters/dedupe"
	"contextual/internal/adapters/dingtalk"
	"contextual/internal/adapters/embedding"
	"contextual/internal/core/event"
	"contextual/internal/core/policy"
	"contextual/internal/core/querytext"
	perr "contextual/internal/platform/errors"
	"contextual/internal/platform/logger"
	"contextual/internal/platform/queue"
	"contextual/internal/services/recommend/domain"

	"github.com/google/uuid"
)

// Deps are the collaborators a Worker needs; Dedupe may be nil
type Deps struct {
	Source   queue.Source
	Embedder embedding.Embedder
	Searcher domain.Searcher
	Notifier dingtalk.Sender
	Store    domain.NotificationStore
	Dedupe   dedupe.Set
}

// Worker consumes commit events one at a time
type Worker struct {
	d   Deps
	cfg domain.Config

	processed, notified, dropped, duplicate, retried, rejected atomic.Uint64
}

// New constructs a worker; every dependency but Dedupe is required
func New(d Deps, cfg domain.Config) *Worker {
	switch {
	case d.Source == nil:
		panic("recommend.Worker requires a non nil Source")
	case d.Embedder == nil:
		panic("recommend.Worker requires a non nil Embedder")
	case d.Searcher == nil:
		panic("recommend.Worker requires a non nil Searcher")
	case d.Notifier == nil:
		panic("recommend.Worker requires a non nil Notifier")
	case d.Store == nil:
		panic("recommend.Worker requires a non nil NotificationStore")
	}
	if d.Dedupe == nil {
		d.Dedupe = dedupe.Nop{}
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.DefaultKey == "" {
		cfg.DefaultKey = "DEMO-1"
	}
	return &Worker{d: d, cfg: cfg}
}

// Run pulls deliveries until ctx is cancelled and the source closes its channel.
// The message being processed when ctx ends runs to completion; anything still
// buffered is handed back with requeue
func (w *Worker) Run(ctx context.Context) error {
	log := logger.Named("recommend")
	ch, err := w.d.Source.Deliveries(ctx)
	if err != nil {
		return err
	}
	log.Info().Str("project", w.cfg.ProjectKey).Int("topk", w.cfg.TopK).Msg("consumer started")

	// in-flight work is not cut short by shutdown; each network call has its own timeout
	work := context.WithoutCancel(ctx)
	for d := range ch {
		if ctx.Err() != nil {
			if err := d.Nack(work, true); err != nil {
				log.Warn().Err(err).Str("message_id", d.Message().ID).Msg("requeue on shutdown failed")
			}
			continue
		}
		w.handle(work, d)
	}
	log.Info().Interface("stats", w.Stats()).Msg("consumer drained")
	return nil
}

func (w *Worker) handle(ctx context.Context, d queue.Delivery) {
	msg := d.Message()
	out, ev := w.process(ctx, msg)
	lg := logger.C(logger.WithEvent(ctx, ev.TraceID, ev.CommitHash))

	var err error
	switch out {
	case domain.OutcomeRetry:
		err = d.Nack(ctx, true)
	case domain.OutcomeRejected:
		err = d.Nack(ctx, false)
	default:
		err = d.Ack(ctx)
	}
	if err != nil {
		lg.Error().Err(err).Str("outcome", out.String()).Str("message_id", msg.ID).Msg("settle failed")
		return
	}
	if out == domain.OutcomeNotified {
		if err := w.d.Dedupe.Mark(ctx, ev.TraceID); err != nil {
			lg.Warn().Err(err).Msg("dedupe mark failed")
		}
	}
}

// Process runs one message through query, embed, search, gate, dispatch and persist
func (w *Worker) Process(ctx context.Context, msg queue.Message) domain.Outcome {
	out, _ := w.process(ctx, msg)
	return out
}

func (w *Worker) process(ctx context.Context, msg queue.Message) (domain.Outcome, event.CommitEvent) {
	w.processed.Add(1)

	ev, err := event.Parse(msg.Body)
	if err != nil {
		w.rejected.Add(1)
		logger.C(ctx).Error().Err(err).Str("message_id", msg.ID).Int("attempt", msg.Attempt).Msg("undecodable event rejected")
		return domain.OutcomeRejected, ev
	}
	ctx = logger.WithEvent(ctx, ev.TraceID, ev.CommitHash)
	lg := logger.C(ctx)

	seen, err := w.d.Dedupe.Seen(ctx, ev.TraceID)
	if err != nil {
		lg.Warn().Err(err).Msg("dedupe lookup failed, processing anyway")
	}
	if seen {
		w.duplicate.Add(1)
		lg.Info().Msg("trace already notified")
		return domain.OutcomeDuplicate, ev
	}

	rec := w.Recommend(ctx, ev)

	decision := w.cfg.Gate.Decide(rec.Score)
	if decision == policy.Drop {
		w.dropped.Add(1)
		lg.Info().Str("top1", rec.Top1).Float64("score", *rec.Score).Float64("min", w.cfg.Gate.Min).Msg("below min score, dropped")
		return domain.OutcomeDropped, ev
	}

	cands := make([]dingtalk.Candidate, len(rec.Candidates))
	for i, c := range rec.Candidates {
		cands[i] = dingtalk.Candidate{Key: c.Key, Score: c.Score}
	}
	card := dingtalk.BuildActionCard(dingtalk.CardInput{
		TraceID:    ev.TraceID,
		Commit:     ev.CommitHash,
		Repo:       ev.Repo,
		Top1:       rec.Top1,
		Score:      rec.Score,
		Candidates: cands,
	}, w.cfg.Card)

	if err := w.d.Notifier.Send(ctx, card); err != nil {
		w.retried.Add(1)
		lg.Error().Err(err).Str("top1", rec.Top1).Int("attempt", msg.Attempt).Msg("dispatch failed, requeue")
		return domain.OutcomeRetry, ev
	}

	tenant := ev.TenantID
	if tenant == "" {
		tenant = w.cfg.TenantID
	}
	id := msg.ID
	if id == "" {
		id = uuid.NewString()
	}
	if err := w.d.Store.SaveNotification(ctx, domain.Notification{
		MessageID:      id,
		TraceID:        ev.TraceID,
		TenantID:       tenant,
		CommitHash:     ev.CommitHash,
		RecommendedKey: rec.Top1,
		Confidence:     rec.Score,
	}); err != nil {
		w.retried.Add(1)
		lg.Error().Err(err).Str("top1", rec.Top1).Msg("notification not saved, requeue")
		return domain.OutcomeRetry, ev
	}

	w.notified.Add(1)
	e := lg.Info().Str("top1", rec.Top1).Str("tier", decision.String())
	if rec.Score != nil {
		e = e.Float64("score", *rec.Score)
	}
	e.Msg("notified")
	return domain.OutcomeNotified, ev
}

// Recommend embeds the event's query and searches for candidates. Any failure
// degrades to the default key with no score
func (w *Worker) Recommend(ctx context.Context, ev event.CommitEvent) domain.Recommendation {
	lg := logger.C(ctx)
	fallback := func(reason string) domain.Recommendation {
		return domain.Recommendation{Top1: w.cfg.DefaultKey, Degraded: reason}
	}

	q := querytext.Build(ev.Payload)
	vec, err := embedding.EmbedOne(ctx, w.d.Embedder, q)
	if err != nil {
		le := lg.Warn()
		if perr.IsDimensionMismatch(err) {
			le = lg.Error()
		}
		le.Err(err).Str("fallback", w.cfg.DefaultKey).Msg("embedding failed, degrading")
		return fallback("embed")
	}

	cands, err := w.d.Searcher.Search(ctx, w.cfg.ProjectKey, vec, w.cfg.TopK)
	if perr.IsNotFound(err) {
		lg.Info().Str("project", w.cfg.ProjectKey).Str("fallback", w.cfg.DefaultKey).Msg("no candidates")
		return fallback("empty")
	}
	if err != nil {
		lg.Warn().Err(err).Str("fallback", w.cfg.DefaultKey).Msg("search failed, degrading")
		return fallback("search")
	}

	score := cands[0].Score
	lg.Debug().Str("top1", cands[0].Key).Float64("score", score).Str("q", querytext.Preview(q, 120)).Msg("ranked")
	return domain.Recommendation{Top1: cands[0].Key, Score: &score, Candidates: cands}
}

// Stats returns outcome counters
func (w *Worker) Stats() domain.Stats {
	return domain.Stats{
		Processed: w.processed.Load(),
		Notified:  w.notified.Load(),
		Dropped:   w.dropped.Load(),
		Duplicate: w.duplicate.Load(),
		Retried:   w.retried.Load(),
		Rejected:  w.rejected.Load(),
	}
}
