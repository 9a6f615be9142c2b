// Package admin guards the registry admin surface with bearer tokens.
package admin

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "riskserve/pkg/domain-errors"
	"riskserve/pkg/platform/httputil"
	"riskserve/pkg/requestcontext"
)

// TokenValidator validates an admin bearer token string.
type TokenValidator interface {
	Validate(tokenString string) error
}

// RequireBearer rejects requests without a valid Authorization bearer token.
func RequireBearer(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "bearer token required"))
				return
			}

			if err := validator.Validate(strings.TrimPrefix(authHeader, bearerPrefix)); err != nil {
				logger.WarnContext(r.Context(), "admin token rejected",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", err,
				)
				httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
