// backend/src/handlers/middleware.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/username/jababank/backend/src/logger"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// RequestIDHeader echoes the generated id back to the caller.
const RequestIDHeader = "X-Request-ID"

// ContextualLoggerMiddleware creates a logger carrying a requestID for each request.
func ContextualLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Generate the request id
		requestID := uuid.New().String()

		// 2. Derive a logger enriched with it
		ctxLogger := logger.L.With(slog.String("requestID", requestID))

		// 3. Put logger and id in the context
		ctx := logger.ToContext(r.Context(), ctxLogger)
		ctx = context.WithValue(ctx, requestIDContextKey, requestID)

		w.Header().Set(RequestIDHeader, requestID)

		// 4. Hand over to the next handler
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the id set by ContextualLoggerMiddleware.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey).(string)
	return id, ok
}
