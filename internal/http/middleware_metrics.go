package httpx

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/target/aihub-dashboard/internal/observability/metrics"
)

// Metrics counts and times requests, tagged by method, route section and status class.
func Metrics(sink metrics.Sink) func(http.Handler) http.Handler {
	if sink == nil {
		sink = metrics.Discard
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			tags := metrics.Tags{
				"method":  r.Method,
				"section": routeSection(r.URL.Path),
				"status":  strconv.Itoa(ww.status/100) + "xx",
			}
			sink.Count("http.request", 1, tags)
			sink.Timing("http.latency", time.Since(start), tags)
		})
	}
}

// routeSection buckets a path into a bounded set of tag values.
func routeSection(path string) string {
	seg, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	switch seg {
	case "":
		return "root"
	case "api", "auth", "user", "admin", "static":
		return seg
	case "healthz":
		return "health"
	default:
		return "other"
	}
}
