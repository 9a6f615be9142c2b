// Package recovery converts handler panics into structured 500 responses so
// a single bad request can never take the process down.
package recovery

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	dErrors "riskserve/pkg/domain-errors"
	"riskserve/pkg/platform/httputil"
	"riskserve/pkg/requestcontext"
)

// Middleware recovers panics, logs the stack, and responds with an internal
// error. The panic value is never sent to the client.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorContext(r.Context(), "panic recovered",
						"request_id", requestcontext.RequestID(r.Context()),
						"panic", rec,
						"stack", string(debug.Stack()),
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "unexpected failure"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
