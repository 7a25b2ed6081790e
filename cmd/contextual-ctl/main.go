// Command contextual-ctl is the operator tool: schema migrations, an ad-hoc
// similarity search and the issue embedding backfill
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"contextual/internal/adapters/embedding"
	"contextual/internal/modkit"
	"contextual/internal/modkit/module"
	"contextual/internal/platform/config"
	"contextual/internal/platform/logger"
	"contextual/internal/platform/store"

	bfdom "contextual/internal/services/backfill/domain"
	bfmod "contextual/internal/services/backfill/module"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "contextual-ctl",
	Short:         "Operator commands for the commit to issue linker",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		os.Exit(1)
	}
}

// backfillRunner opens postgres and the embedding client and returns the backfill port
func backfillRunner(ctx context.Context) (bfdom.RunnerPort, embedding.Config, func(), error) {
	root := config.New()
	l := logger.Get()

	ecfg := embedding.FromConf(root.Prefix("EMBED_"))
	emb, err := embedding.New(ecfg)
	if err != nil {
		return nil, ecfg, nil, err
	}

	st, err := store.Open(ctx, store.Config{
		AppName: "contextual-ctl",
		PG:      store.PGFromConf(root.Prefix("SERVICE_PGSQL_")),
	}, store.WithLogger(*l))
	if err != nil {
		return nil, ecfg, nil, err
	}
	closeFn := func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}

	m := bfmod.New(modkit.Deps{Cfg: root, Log: *l, PG: st.PG},
		modkit.WithPorts(bfmod.Ports{Embedder: emb, Dim: ecfg.Dim}))
	return module.MustPortsOf[bfdom.RunnerPort](m), ecfg, closeFn, nil
}
