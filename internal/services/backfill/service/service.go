// Package service embeds indexed issues that have no vector yet
package service

import (
	"context"
	"strings"
	"time"

	"contextual/internal/adapters/embedding"
	"contextual/internal/core/adf"
	"contextual/internal/modkit/repokit"
	perr "contextual/internal/platform/errors"
	"contextual/internal/platform/logger"
	"contextual/internal/services/backfill/domain"
	"contextual/internal/services/backfill/guardrails"
	"contextual/internal/services/backfill/repo"
)

// Config holds the backfill knobs
type Config struct {
	Batch        int           // issues per provider call; <=0 -> 32
	Limit        int           // max issues per run; <=0 -> 1000
	RetryDelay   time.Duration // pause before the single retry on a provider error; <=0 -> 2s
	MaxDescRunes int           // description cap; <=0 -> 4000
	ADFDepth     int           // <=0 -> adf.DefaultMaxDepth
	Timeouts     guardrails.Timeouts
}

// Service implements domain.RunnerPort
type Service struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Repo]
	emb    embedding.Embedder
	dim    int
	cfg    Config

	// sleep is swapped in tests
	sleep func(context.Context, time.Duration) error
}

// New constructs the backfill service; dim is the expected vector length
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], emb embedding.Embedder, dim int, cfg Config) *Service {
	if db == nil {
		panic("backfill.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("backfill.Service requires a non nil Repo binder")
	}
	if emb == nil {
		panic("backfill.Service requires a non nil Embedder")
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 32
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 1000
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.MaxDescRunes <= 0 {
		cfg.MaxDescRunes = 4000
	}
	if cfg.ADFDepth <= 0 {
		cfg.ADFDepth = adf.DefaultMaxDepth
	}
	return &Service{db: db, binder: binder, emb: emb, dim: dim, cfg: cfg, sleep: sleepCtx}
}

// Text is what gets embedded for one issue: the trimmed title, a blank line, then the
// flattened description capped at maxRunes
func Text(title, description string, maxRunes, adfDepth int) string {
	d := strings.TrimSpace(adf.PlainText(description, adfDepth))
	if r := []rune(d); len(r) > maxRunes {
		d = string(r[:maxRunes])
	}
	return strings.TrimSpace(strings.TrimSpace(title) + "\n\n" + d)
}

// Run embeds pending issues of req.Project batch by batch until none are left or
// req.Limit is reached. Each batch commits on its own, so a failure keeps earlier batches
func (s *Service) Run(ctx context.Context, req domain.Request) (domain.Report, error) {
	batch, limit := req.Batch, req.Limit
	if batch <= 0 {
		batch = s.cfg.Batch
	}
	if limit <= 0 {
		limit = s.cfg.Limit
	}
	lg := logger.C(ctx).With().Str("project", req.Project).Int("dim", s.dim).Logger()
	lg.Info().Int("batch", batch).Int("limit", limit).Msg("embedding backfill starting")

	var rep domain.Report
	for rep.Embedded < limit {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		n, last, err := s.runBatch(ctx, req.Project, min(batch, limit-rep.Embedded))
		if err != nil {
			lg.Error().Err(err).Int("total", rep.Embedded).Msg("embedding batch failed")
			return rep, err
		}
		if n == 0 {
			break
		}
		rep.Embedded += n
		rep.Batches++
		rep.Last = last
		lg.Info().Int("size", n).Int("total", rep.Embedded).Str("last", last).Msg("embedding batch written")
	}
	lg.Info().Int("embedded", rep.Embedded).Int("batches", rep.Batches).Msg("embedding backfill done")
	return rep, nil
}

func (s *Service) runBatch(ctx context.Context, project string, size int) (n int, last string, err error) {
	bctx, cancel := guardrails.ForBatch(ctx, s.cfg.Timeouts)
	defer cancel()

	err = s.db.Tx(bctx, func(q repokit.Queryer) error {
		r := repokit.MustBind(s.binder, q)
		issues, err := r.FetchPending(bctx, project, size)
		if err != nil || len(issues) == 0 {
			return err
		}

		texts := make([]string, len(issues))
		for i, is := range issues {
			texts[i] = Text(is.Title, is.Description, s.cfg.MaxDescRunes, s.cfg.ADFDepth)
		}
		vecs, err := s.embed(bctx, texts)
		if err != nil {
			return err
		}

		out := make([]domain.Vector, len(issues))
		for i, is := range issues {
			out[i] = domain.Vector{ID: is.ID, Embedding: vecs[i]}
		}
		if err := r.WriteEmbeddings(bctx, out); err != nil {
			return err
		}
		n, last = len(issues), issues[len(issues)-1].Key
		return nil
	})
	return n, last, err
}

// embed calls the provider once more after RetryDelay when the first call fails upstream
func (s *Service) embed(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := s.embedOnce(ctx, texts)
	if err == nil || !perr.IsUpstream(err) {
		return vecs, err
	}
	logger.C(ctx).Warn().Err(err).Dur("delay", s.cfg.RetryDelay).Msg("embedding provider failed, retrying once")
	if err := s.sleep(ctx, s.cfg.RetryDelay); err != nil {
		return nil, err
	}
	return s.embedOnce(ctx, texts)
}

func (s *Service) embedOnce(ctx context.Context, texts []string) ([][]float32, error) {
	ectx, cancel := guardrails.ForEmbed(ctx, s.cfg.Timeouts)
	defer cancel()

	vecs, err := s.emb.Embed(ectx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, perr.Upstreamf("embedding count %d, expected %d", len(vecs), len(texts))
	}
	for _, v := range vecs {
		if len(v) != s.dim {
			return nil, perr.DimensionMismatch(len(v), s.dim)
		}
	}
	return vecs, nil
}

// Search embeds text and returns the k nearest issues of project
func (s *Service) Search(ctx context.Context, project, text string, k int) ([]domain.Hit, error) {
	if k <= 0 {
		k = 3
	}
	vec, err := embedding.EmbedOne(ctx, s.emb, strings.TrimSpace(text))
	if err != nil {
		return nil, err
	}
	if len(vec) != s.dim {
		return nil, perr.DimensionMismatch(len(vec), s.dim)
	}
	return s.binder.Bind(s.db).Search(ctx, project, vec, k)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
