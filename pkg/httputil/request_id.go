package httputil

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

const maxRequestIDLen = 64

type reqIDKey struct{}

// MiddlewareRequestID keeps a well-formed incoming X-Request-ID and
// generates a uuid otherwise. The id is echoed back in the response.
func MiddlewareRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), reqIDKey{}, id)))
	})
}

func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(reqIDKey{}).(string)
	return id, ok
}

// Logger is the default logger with req_id attached when ctx carries one.
func Logger(ctx context.Context) *slog.Logger {
	if id, ok := FromContext(ctx); ok {
		return slog.Default().With("req_id", id)
	}
	return slog.Default()
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}
