// Package middleware provides the HTTP middleware chain for the
// EventPress server: access logging, panic recovery, session loading,
// the admin gate, and the login rate limiter.
package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder notes the status and body size a handler produced so
// the access log can report them. The first WriteHeader wins, matching
// net/http semantics.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	wrote  bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.wrote {
		sr.status = code
		sr.wrote = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.wrote {
		sr.status = http.StatusOK
		sr.wrote = true
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// Logger emits one access-log line per request. Admin API calls and
// public page hits share the same shape, with the client address
// resolved through the same proxy-header logic the login limiter uses.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		slog.Info("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"elapsed", time.Since(start).Round(time.Millisecond).String(),
			"client", clientIP(r),
		)
	})
}
