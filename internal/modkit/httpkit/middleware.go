package httpkit

import (
	"compress/flate"
	"net/http"

	"signalkit/internal/platform/config"
	phttp "signalkit/internal/platform/net/http"
	"signalkit/internal/platform/net/middleware"
)

// CommonStack returns the baseline middleware for the API scope.
// Order matters: the request id must exist before the access log and the
// panic envelope read it
func CommonStack(cfg config.API) []func(http.Handler) http.Handler {
	stack := []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),
		middleware.RealIP(),

		// observability
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: cfg.RequestTimeout / 3}),

		// safety
		middleware.RecoverJSON,

		// cache / freshness
		middleware.NoCache(),

		middleware.CORS(middleware.CORSOptions{AllowedOrigins: cfg.CORSOrigins}),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes(),
	}
	if cfg.RequestTimeout > 0 {
		stack = append(stack, middleware.Timeout(cfg.RequestTimeout))
	}
	return stack
}

// Fallbacks answers unknown routes and methods with the JSON envelope
// instead of chi's plain text
func Fallbacks(r Router) {
	r.NotFound(phttp.NotFound)
	r.MethodNotAllowed(phttp.MethodNotAllowed)
}
