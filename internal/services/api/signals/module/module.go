// Package module wires signals into the API using modkit
package module

import (
	"net/http"

	modkit "signalkit/internal/modkit"
	"signalkit/internal/modkit/httpkit"
	str "signalkit/internal/platform/strings"
	"signalkit/internal/services/api/signals/domain"
	signalshttp "signalkit/internal/services/api/signals/http"
	signalssvc "signalkit/internal/services/api/signals/service"
)

// Ports is what the signals module exposes to other modules
type Ports struct {
	Service domain.ServicePort
	Pack    domain.PackPort
}

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     Ports
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc signalssvc.Service
}

// New constructs a signals module. deps.Engine is required
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("signals"), modkit.WithPrefix("/signals")}, opts...)...)

	svc := signalssvc.New(deps.Engine, deps.Signals)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
		ports:     Ports{Service: svc, Pack: svc},
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		signalshttp.Register(r, m.svc, deps.API.MaxBodyBytes)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
