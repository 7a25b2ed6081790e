// Command contextual-ingest receives GitHub push webhooks and queues one event per commit
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

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

	ingestmod "contextual/internal/services/ingest/module"
	metahttp "contextual/internal/services/meta/http"
	metamod "contextual/internal/services/meta/module"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const service = "contextual-ingest"

func main() {
	root := config.New()
	apiCfg := root.Prefix("INGEST_")
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := modkit.Deps{Cfg: root, Log: *l}
	qcfg := queue.FromConf(root, service)
	checks := []metahttp.Check{}

	// postgres is only needed when it also carries the queue
	if qcfg.Driver == queue.DriverPG {
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
		deps.PG = st.PG
		checks = append(checks, metahttp.Check{Name: "postgres", Pinger: st})
	}

	q, err := dial.Open(ctx, qcfg, deps.PG)
	if err != nil {
		l.Panic().Err(err).Str("driver", qcfg.Driver).Msg("queue open failed")
	}
	defer func() {
		if err := q.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close queue")
		}
	}()
	repokit.MustPing(ctx, "queue", q)
	checks = append(checks, metahttp.Check{Name: "queue", Pinger: q})

	srv := phttp.NewServerPort(apiCfg, ":8001", func(m *chi.Mux) { m.Use(httpkit.CommonStack(apiCfg)...) })
	r := srv.Router()

	modkit.Mount(r,
		metamod.New(deps, service, checks),
		ingestmod.New(deps, modkit.WithPorts(ingestmod.Ports{Publisher: q})),
	)
	swaggerkit.Mount(r, apiCfg.MayBool("SWAGGER", false), "/ingest", "/health", "/meta")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if err := g.Wait(); err != nil {
		l.Error().Err(err).Msg("ingest stopped")
		os.Exit(1)
	}
	l.Info().Msg("ingest stopped")
}
