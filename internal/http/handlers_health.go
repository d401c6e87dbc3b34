package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	healthResponse   = `{"status":"ok"}`
	unhealthResponse = `{"status":"unavailable"}`
)

// HealthHandler serves readiness/liveness checks.
// When Ping is set it must succeed within Timeout for the check to pass.
type HealthHandler struct {
	Ping    func(ctx context.Context) error
	Timeout time.Duration
	Logger  *slog.Logger
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status, body := http.StatusOK, healthResponse
	if h != nil && h.Ping != nil {
		timeout := h.Timeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			logger := h.Logger
			if logger == nil {
				logger = slog.Default()
			}
			logger.WarnContext(r.Context(), "health check failed", "error", err)
			status, body = http.StatusServiceUnavailable, unhealthResponse
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, body); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

// healthHandler is the dependency-free check.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	(*HealthHandler)(nil).ServeHTTP(w, r)
}
