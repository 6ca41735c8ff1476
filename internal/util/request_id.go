package util

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type ctxKeyRequestID struct{}

const requestIDHeader = "X-Request-Id"

// maxInboundIDLen caps ids accepted from clients so log fields stay bounded.
const maxInboundIDLen = 64

// WithRequestID tags every request with a correlation id. An inbound
// X-Request-Id is reused when present and sane; otherwise a fresh one is
// minted. The id is echoed on the response, and a request-scoped logger
// carrying it is stored in the context for LoggerFromContext callers.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := inboundRequestID(r)
		if id == "" {
			id = NewID()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := context.WithValue(r.Context(), ctxKeyRequestID{}, id)
		ctx = ContextWithLogger(ctx, slog.Default().With("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func inboundRequestID(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(requestIDHeader))
	if len(id) > maxInboundIDLen {
		return ""
	}
	return id
}

// RequestIDFromContext returns the correlation id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return id
}

// RequestIDFromRequest is RequestIDFromContext on the request context.
func RequestIDFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	return RequestIDFromContext(r.Context())
}
