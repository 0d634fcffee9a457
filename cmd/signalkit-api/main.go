// @title         signalkit API
// @version       0.1.0
// @description   Classifies agent evidence bundles into actionable signals

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"signalkit/internal/core/engine"
	"signalkit/internal/core/rulepack"
	"signalkit/internal/platform/config"
	"signalkit/internal/platform/logger"
	phttp "signalkit/internal/platform/net/http"

	"signalkit/internal/services/api"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// service-scoped config (CORE_API_*, CORE_SIGNALS_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	apiSettings := config.LoadAPI(apiCfg)
	sigSettings := config.LoadSignals(root.Prefix("CORE_SIGNALS_"))

	// bring up logging early
	l := logger.Get()

	// fail fast on a broken rule pack rather than on the first request
	pack, err := rulepack.Load()
	if err != nil {
		l.Fatal().Err(err).Msg("rule pack failed to load")
	}
	opts := []engine.Option{engine.WithExcerptLimit(sigSettings.ExcerptLimit)}
	if sigSettings.LogFaults {
		opts = append(opts, engine.WithLogger(*logger.Named("engine")))
	}
	eng := engine.New(pack, opts...)

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(apiSettings)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:  apiCfg,
			Engine:  eng,
			Logger:  l,
			API:     apiSettings,
			Signals: sigSettings,
		},
	)

	// run until SIGINT/SIGTERM, then drain
	if err := srv.Run(ctx); err != nil {
		l.Error().Err(err).Msg("http server stopped")
		stop()
		os.Exit(1)
	}
	l.Info().Msg("bye")
}
