package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/coursecat/internal/infrastructure/config"
	"github.com/campushub/coursecat/internal/infrastructure/tracing"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Data.Dir = t.TempDir()
	cfg.Telemetry.FlushInterval = 50 * time.Millisecond
	cfg.RateLimit.Enabled = false
	cfg.Logging.Level = "warn"
	return cfg
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := NewServer(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

func (s *Server) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestServerRoutesWired(t *testing.T) {
	srv := newTestServer(t)

	for _, target := range []string{
		"/", "/health", "/catalog", "/add_course",
		"/manual-trace", "/auto-instrumented", "/contacts", "/metrics",
	} {
		w := srv.get(t, target)
		assert.Equal(t, http.StatusOK, w.Code, target)
	}
}

func TestServerTraceHeadersOnEveryResponse(t *testing.T) {
	srv := newTestServer(t)

	w := srv.get(t, "/catalog")

	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestServerAddCourseEndToEnd(t *testing.T) {
	srv := newTestServer(t)

	form := url.Values{
		"code": {"CS101"}, "name": {"Intro"}, "instructor": {"Dr. X"},
	}
	req := httptest.NewRequest(http.MethodPost, "/add_course", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusFound, w.Code)

	w = srv.get(t, "/course/CS101")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Course struct {
			Code string `json:"code"`
		} `json:"course"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "CS101", body.Course.Code)
}

func TestServerWritesSpanFile(t *testing.T) {
	cfg := testConfig(t)
	srv, err := NewServer(cfg)
	require.NoError(t, err)

	srv.get(t, "/manual-trace")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	f, err := os.Open(cfg.Telemetry.SpanPath(cfg.Data.Dir))
	require.NoError(t, err)
	defer f.Close()

	names := map[string]bool{}
	dec := json.NewDecoder(f)
	for {
		var rec tracing.Record
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("span file is not a stream of JSON documents: %v", err)
		}
		names[rec.Name] = true
		assert.Equal(t, ServiceName, rec.Resource["service.name"])
	}
	assert.True(t, names["manual-span"], "handler span exported")
	assert.True(t, names["/manual-trace"], "middleware server span exported")
}

func TestServerTelemetryDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.Enabled = false
	srv, err := NewServer(cfg)
	require.NoError(t, err)

	w := srv.get(t, "/catalog")
	assert.Equal(t, http.StatusOK, w.Code)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	_, err = os.Stat(cfg.Telemetry.SpanPath(cfg.Data.Dir))
	assert.True(t, os.IsNotExist(err))
}

func TestServerMetricsExposition(t *testing.T) {
	srv := newTestServer(t)
	srv.get(t, "/catalog")

	w := srv.get(t, "/metrics")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "coursecat_http_requests_total")
}
