package httpx

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveCompressed(t *testing.T, h http.Handler, method, acceptEncoding string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/user", nil)
	if acceptEncoding != "" {
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}
	rec := httptest.NewRecorder()
	Compression(CompressionConfig{})(h).ServeHTTP(rec, req)
	return rec
}

func TestCompression(t *testing.T) {
	body := strings.Repeat("Hello, World! ", 1000)
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, body)
	})

	tests := []struct {
		name           string
		acceptEncoding string
		expectGzip     bool
	}{
		{name: "client accepts gzip", acceptEncoding: "gzip, deflate", expectGzip: true},
		{name: "client does not accept gzip", acceptEncoding: "deflate"},
		{name: "no accept-encoding header"},
		{name: "gzip explicitly refused", acceptEncoding: "gzip;q=0, br"},
		{name: "gzip with weight", acceptEncoding: "br;q=1.0, gzip;q=0.8", expectGzip: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveCompressed(t, handler, http.MethodGet, tt.acceptEncoding)
			if !tt.expectGzip {
				assert.Empty(t, rec.Header().Get("Content-Encoding"))
				assert.Equal(t, body, rec.Body.String())
				return
			}
			assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
			assert.Contains(t, rec.Header().Values("Vary"), "Accept-Encoding")
			zr, err := gzip.NewReader(rec.Body)
			require.NoError(t, err)
			got, err := io.ReadAll(zr)
			require.NoError(t, err)
			assert.Equal(t, body, string(got))
		})
	}
}

func TestCompression_SkipsNonTextAndEmptyStatuses(t *testing.T) {
	png := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	})
	rec := serveCompressed(t, png, http.MethodGet, "gzip")
	assert.Empty(t, rec.Header().Get("Content-Encoding"))

	noContent := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusNoContent)
	})
	rec = serveCompressed(t, noContent, http.MethodGet, "gzip")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))

	head := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
	})
	rec = serveCompressed(t, head, http.MethodHead, "gzip")
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
}

func TestCompression_DetectsContentTypeOnFirstWrite(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<!DOCTYPE html><html><body>hi</body></html>")
	})
	rec := serveCompressed(t, h, http.MethodGet, "gzip")
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestAcceptsGzip(t *testing.T) {
	assert.True(t, acceptsGzip("gzip"))
	assert.True(t, acceptsGzip("deflate, GZIP"))
	assert.False(t, acceptsGzip(""))
	assert.False(t, acceptsGzip("x-gzip"))
	assert.False(t, acceptsGzip("gzip; q=0"))
}
