// Package http provides http transport for signals
package http

import (
	stdhttp "net/http"
	"sync"

	"signalkit/internal/core/signal"
	"signalkit/internal/modkit/httpkit"
	"signalkit/internal/modkit/swaggerkit"
	"signalkit/internal/platform/logger"
	"signalkit/internal/platform/net/http/bind"
	"signalkit/internal/services/api/signals/domain"
)

var registerOnce sync.Once

func init() {
	// the document ships without the enum so it never drifts from the build
	swaggerkit.Register(func(spec map[string]any) {
		comps, _ := spec["components"].(map[string]any)
		schemas, _ := comps["schemas"].(map[string]any)
		if s, ok := schemas["SignalName"].(map[string]any); ok {
			enum := make([]any, 0, len(signal.Known))
			for _, n := range signal.Known {
				enum = append(enum, string(n))
			}
			s["enum"] = enum
		}
	})
}

// registerValidators adds the signal_name tag used by the DTOs
func registerValidators() {
	registerOnce.Do(func() {
		err := bind.RegisterValidation("signal_name", func(fl bind.FieldLevel) bool {
			return signal.IsKnown(signal.Name(fl.Field().String()))
		}, "{0} must be a known signal name")
		if err != nil {
			logger.Named("signals").Error().Err(err).Msg("register signal_name validator")
		}
	})
}

// Register mounts signals endpoints on the given router. maxBody caps request bodies (0 means default)
func Register(r httpkit.Router, s domain.ServicePort, maxBody int64) {
	registerValidators()

	h := &handlers{svc: s}
	opts := httpkit.JSONOptions{MaxBytes: maxBody, DisallowUnknown: true}
	httpkit.PostJSON(r, "/", h.extract, opts)
	httpkit.PostJSON(r, "/batch", h.batch, opts)
	httpkit.Get(r, "/vocabulary", h.vocabulary)
}

type handlers struct{ svc domain.ServicePort }

// swagger:route POST /signals Signals signalsExtract
// @Summary Extract signals from one evidence bundle
// @Tags Signals
// @Accept json
// @Produce json
// @Param payload body domain.ExtractInput true "Evidence"
// @Success 200 {object} domain.ExtractOutput "ok"
// @Router /signals [post]
func (h *handlers) extract(r *stdhttp.Request, in domain.ExtractInput) (any, error) {
	return h.svc.Extract(r.Context(), in)
}

// swagger:route POST /signals/batch Signals signalsBatch
// @Summary Extract signals from many bundles, results in input order
// @Tags Signals
// @Accept json
// @Produce json
// @Param payload body domain.BatchInput true "Bundles"
// @Success 200 {object} domain.BatchOutput "ok"
// @Router /signals/batch [post]
func (h *handlers) batch(r *stdhttp.Request, in domain.BatchInput) (any, error) {
	return h.svc.Batch(r.Context(), in)
}

// swagger:route GET /signals/vocabulary Signals signalsVocabulary
// @Summary Signal vocabulary with rule counts per language
// @Tags Signals
// @Produce json
// @Success 200 {object} domain.Vocabulary "ok"
// @Router /signals/vocabulary [get]
func (h *handlers) vocabulary(r *stdhttp.Request) (any, error) {
	return h.svc.Vocabulary(r.Context()), nil
}
