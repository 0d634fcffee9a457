package middleware

import (
	"net/http"
	"strings"

	pnet "signalkit/internal/platform/net"

	"github.com/google/uuid"
)

// HeaderRequestID carries the request id in and out
const HeaderRequestID = "X-Request-ID"

// maxInboundID bounds caller supplied ids so they cannot bloat logs
const maxInboundID = 128

// newID is a seam for tests
var newID = uuid.NewString

// RequestID propagates a sane inbound X-Request-ID or mints a UUID, stores it
// on the context (chi compatible) and echoes it on the response
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(HeaderRequestID))
			if id == "" || len(id) > maxInboundID || strings.ContainsAny(id, "\r\n") {
				id = newID()
			}
			w.Header().Set(HeaderRequestID, id)
			next.ServeHTTP(w, r.WithContext(pnet.WithRequestID(r.Context(), id)))
		})
	}
}

// RequestIDFrom is a convenience for handlers holding only the request
func RequestIDFrom(r *http.Request) string { return pnet.RequestID(r.Context()) }
