// Command contextual-callback records chat button feedback and commit links
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"contextual/internal/modkit"
	"contextual/internal/modkit/httpkit"
	"contextual/internal/modkit/swaggerkit"
	"contextual/internal/platform/config"
	"contextual/internal/platform/logger"
	phttp "contextual/internal/platform/net/http"
	"contextual/internal/platform/store"
	"contextual/internal/platform/store/migrations"

	feedbackmod "contextual/internal/services/feedback/module"
	metahttp "contextual/internal/services/meta/http"
	metamod "contextual/internal/services/meta/module"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const service = "contextual-callback"

func main() {
	root := config.New()
	apiCfg := root.Prefix("CALLBACK_")
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

	deps := modkit.Deps{Cfg: root, Log: *l, PG: st.PG}

	srv := phttp.NewServerPort(apiCfg, ":8003", func(m *chi.Mux) { m.Use(httpkit.CommonStack(apiCfg)...) })
	r := srv.Router()

	modkit.Mount(r,
		metamod.New(deps, service, []metahttp.Check{{Name: "postgres", Pinger: st}}),
		feedbackmod.New(deps),
	)
	swaggerkit.Mount(r, apiCfg.MayBool("SWAGGER", false), "/callback", "/health", "/meta")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if err := g.Wait(); err != nil {
		l.Error().Err(err).Msg("callback stopped")
		os.Exit(1)
	}
	l.Info().Msg("callback stopped")
}
