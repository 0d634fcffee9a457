// Package api provides the HTTP API for signal extraction
package api

import (
	"signalkit/internal/core/engine"
	"signalkit/internal/platform/config"
	"signalkit/internal/platform/logger"
	phttp "signalkit/internal/platform/net/http"

	"signalkit/internal/modkit"
	"signalkit/internal/modkit/httpkit"
	"signalkit/internal/modkit/module"
	"signalkit/internal/modkit/swaggerkit"

	metamod "signalkit/internal/services/api/meta/module"
	signalsdomain "signalkit/internal/services/api/signals/domain"
	signalsmod "signalkit/internal/services/api/signals/module"
)

// Options are the API options
type Options struct {
	Config  config.Conf
	Engine  *engine.Engine
	Logger  *logger.Logger
	API     config.API
	Signals config.Signals
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	log := opt.Logger
	if log == nil {
		log = logger.Named("api")
	}

	// shared deps for modules
	deps := modkit.Deps{
		Log:     *log,
		Cfg:     opt.Config,
		Engine:  opt.Engine,
		API:     opt.API,
		Signals: opt.Signals,
	}
	if !deps.Ready() {
		deps.Engine = engine.Default()
	}

	// signals first; meta reads its pack port for readiness
	signals := signalsmod.New(deps)
	pack := module.MustPortsOf[signalsdomain.PackPort](signals)

	mods := []module.Module{
		metamod.New(deps, modkit.WithPorts(metamod.Ports{Pack: pack})),
		signals,
	}

	httpkit.Fallbacks(r)

	// Swagger + profiler live outside the versioned scope
	swaggerkit.Mount(r, opt.API.Swagger)
	phttp.MountProfiler(r, "/debug", opt.API.Profiler)

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(opt.API), func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})

	log.Info().
		Int("modules", len(mods)).
		Bool("swagger", opt.API.Swagger).
		Int("pack_version", pack.PackVersion()).
		Int("rules", pack.RuleTotal()).
		Msg("api mounted")
}
