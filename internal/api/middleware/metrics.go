package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/metrics"
)

// statusWriter wraps http.ResponseWriter to capture status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Metrics returns middleware that records Prometheus metrics.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		metrics.HTTPRequestsTotal.WithLabelValues(
			r.Method, path, strconv.Itoa(wrapped.status),
		).Inc()

		metrics.HTTPRequestDuration.WithLabelValues(
			r.Method, path,
		).Observe(duration)
	})
}

// normalizePath collapses message ids and static asset paths to keep label
// cardinality bounded.
func normalizePath(path string) string {
	const prefix = "/api/messages/"
	if strings.HasPrefix(path, prefix) && len(path) > len(prefix) {
		rest := path[len(prefix):]
		switch {
		case rest == "archived":
			return path
		case strings.HasSuffix(rest, "/archive"):
			return prefix + ":id/archive"
		default:
			return prefix + ":id"
		}
	}
	if strings.HasPrefix(path, "/api/") || path == "/api" || path == "/health" || path == "/metrics" || path == "/" {
		return path
	}
	return "/static"
}
