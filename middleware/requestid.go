package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const RequestIDContextKey = contextKey("request_id")

// RequestIDHeader is echoed back to clients and attached to the context so
// log lines can be tied to a request.
const RequestIDHeader = "X-Request-Id"

// RequestIDMiddleware assigns every request an id, honoring one supplied by
// the client.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), RequestIDContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request id, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}
