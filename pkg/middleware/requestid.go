package middleware

import (
	"net/http"

	"github.com/inkwell-hq/inkwell-engine/pkg/requestid"
)

// RequestIDHeader carries the request identifier on responses and, when a
// trusted caller supplies one, on requests.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request a ULID and makes it available in the
// request context and the response header. An incoming X-Request-ID is
// reused so callers can correlate retries.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = requestid.New()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(requestid.WithRequestID(r.Context(), id)))
	})
}
