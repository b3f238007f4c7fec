package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/stagelink/stagelink-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID propagates a caller-supplied request id or mints one. Inbound
// values must be UUIDs; anything else is replaced.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(reqID); err != nil {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
