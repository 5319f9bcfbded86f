package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds each request to d. A zero or negative d disables it.
// The 503 body is JSON; headers set by next replace the preset Content-Type
// when next finishes in time.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		th := http.TimeoutHandler(next, d, `{"error":"request timed out"}`)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			th.ServeHTTP(w, r)
		})
	}
}
