// Command contextual-core consumes commit events, recommends issues and sends the chat cards
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"contextual/internal/adapters/dedupe"
	"contextual/internal/adapters/dingtalk"
	"contextual/internal/adapters/embedding"
	"contextual/internal/modkit"
	"contextual/internal/modkit/httpkit"
	"contextual/internal/modkit/repokit"
	"contextual/internal/modkit/swaggerkit"
	"contextual/internal/platform/config"
	"contextual/internal/platform/logger"
	phttp "contextual/internal/platform/net/http"
	"contextual/internal/platform/queue"
	"contextual/internal/platform/queue/dial"
	"contextual/internal/platform/store"
	"contextual/internal/platform/store/migrations"

	metahttp "contextual/internal/services/meta/http"
	metamod "contextual/internal/services/meta/module"
	recomod "contextual/internal/services/recommend/module"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const service = "contextual-core"

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_")
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: service,
		PG:      store.PGFromConf(root.Prefix("SERVICE_PGSQL_")),
	}, store.WithLogger(*l), store.WithMigrator(migrations.Up))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	qcfg := queue.FromConf(root, service)
	q, err := dial.Open(ctx, qcfg, st.PG)
	if err != nil {
		l.Panic().Err(err).Str("driver", qcfg.Driver).Msg("queue open failed")
	}
	defer func() {
		if err := q.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close queue")
		}
	}()
	repokit.MustPing(ctx, "queue", q)

	emb, err := embedding.New(embedding.FromConf(root.Prefix("EMBED_")))
	if err != nil {
		l.Panic().Err(err).Msg("embedding client")
	}
	notifier, err := dingtalk.NewClient(dingtalk.FromConf(root.Prefix("DINGTALK_")))
	if err != nil {
		l.Panic().Err(err).Msg("dingtalk client")
	}
	seen, closeSeen, err := dedupe.Open(ctx, dedupe.FromConf(root.Prefix("DEDUPE_")))
	if err != nil {
		l.Panic().Err(err).Msg("dedupe open failed")
	}
	defer func() {
		if err := closeSeen(); err != nil {
			l.Error().Err(err).Msg("failed to close dedupe")
		}
	}()

	deps := modkit.Deps{Cfg: root, Log: *l, PG: st.PG}
	reco := recomod.New(deps, modkit.WithPorts(recomod.Ports{
		Source:   q,
		Embedder: emb,
		Notifier: notifier,
		Dedupe:   seen,
	}))
	if g := reco.Config().Gate; g.Inverted() {
		l.Warn().Float64("min_score", g.Min).Float64("low_score", g.Low).
			Msg("RECO_LOW_SCORE is not above RECO_MIN_SCORE, low confidence cards will never be flagged")
	}

	srv := phttp.NewServerPort(apiCfg, ":8002", func(m *chi.Mux) { m.Use(httpkit.CommonStack(apiCfg)...) })
	r := srv.Router()
	modkit.Mount(r,
		metamod.New(deps, service, []metahttp.Check{
			{Name: "postgres", Pinger: st},
			{Name: "queue", Pinger: q},
		}),
		reco,
	)
	swaggerkit.Mount(r, apiCfg.MayBool("SWAGGER", false), "/reco", "/health", "/meta")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return reco.Worker().Run(gctx) })
	if err := g.Wait(); err != nil {
		l.Error().Err(err).Msg("core stopped")
		os.Exit(1)
	}
	l.Info().Msg("core stopped")
}
