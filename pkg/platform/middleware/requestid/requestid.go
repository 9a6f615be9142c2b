// Package requestid assigns a correlation ID to every request.
package requestid

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"riskserve/pkg/requestcontext"
)

const headerName = "X-Request-Id"

// Middleware propagates an incoming X-Request-Id or generates a new UUID,
// storing it in the request context and echoing it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerName))
		if id == "" {
			id = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), id)
		w.Header().Set(headerName, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
