package httpx

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/aihub-dashboard/internal/observability/metrics"
)

type countingSink struct {
	mu      sync.Mutex
	counts  []metrics.Tags
	timings int
}

func (s *countingSink) Count(_ string, _ int64, tags metrics.Tags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = append(s.counts, tags)
}

func (s *countingSink) Timing(string, time.Duration, metrics.Tags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timings++
}

func TestMetrics_TagsRequests(t *testing.T) {
	sink := &countingSink{}
	h := Metrics(sink)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/chat" {
			w.WriteHeader(http.StatusPaymentRequired)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	for _, target := range []string{"/api/chat", "/user/credits?x=1", "/wp-login.php"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, target, nil))
	}

	require.Len(t, sink.counts, 3)
	assert.Equal(t, 3, sink.timings)
	assert.Equal(t, metrics.Tags{"method": "POST", "section": "api", "status": "4xx"}, sink.counts[0])
	assert.Equal(t, metrics.Tags{"method": "POST", "section": "user", "status": "2xx"}, sink.counts[1])
	assert.Equal(t, "other", sink.counts[2]["section"])
}

func TestMetrics_NilSink(t *testing.T) {
	h := Metrics(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouteSection(t *testing.T) {
	assert.Equal(t, "root", routeSection("/"))
	assert.Equal(t, "admin", routeSection("/admin/users"))
	assert.Equal(t, "health", routeSection("/healthz"))
	assert.Equal(t, "static", routeSection("/static/css/app.css"))
}
