package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/config"
	apperrors "salesdash/internal/errors"
	"salesdash/internal/shared/testutil"
)

const page = "<!DOCTYPE html><html><body><h1>Sales Performance Dashboard</h1></body></html>"

func testConfig(debug bool) *config.Config {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Server.Debug = debug
	cfg.Server.ShutdownTimeout = 2 * time.Second
	cfg.Security.RateLimit.Enabled = false
	cfg.Telemetry.Enabled = false
	return cfg
}

func newTestApp(t *testing.T, debug bool) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	a, err := New(testConfig(debug), logger, nil)
	require.NoError(t, err)
	return a
}

func do(a *Application, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem), rec.Body.String())
	return problem
}

func TestRouter_Routes(t *testing.T) {
	a := newTestApp(t, false)

	rec := do(a, http.MethodGet, "/api/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(a, http.MethodGet, "/")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	a.Pages.Publish([]byte(page), time.Millisecond)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "page", method: http.MethodGet, path: "/", wantStatus: http.StatusOK, wantBody: "<h1>Sales Performance Dashboard</h1>"},
		{name: "head page", method: http.MethodHead, path: "/", wantStatus: http.StatusOK},
		{name: "health", method: http.MethodGet, path: "/api/health", wantStatus: http.StatusOK, wantBody: `"status":"ok"`},
		{name: "ready", method: http.MethodGet, path: "/api/health/ready", wantStatus: http.StatusOK, wantBody: `"status":"ready"`},
		{name: "live", method: http.MethodGet, path: "/api/health/live", wantStatus: http.StatusOK, wantBody: `"status":"alive"`},
		{name: "version", method: http.MethodGet, path: "/api/version", wantStatus: http.StatusOK, wantBody: `"version"`},
		{name: "unknown route", method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound, wantBody: "/errors/not-found"},
		{name: "wrong method", method: http.MethodPost, path: "/", wantStatus: http.StatusMethodNotAllowed, wantBody: "Method POST is not allowed"},
		{name: "metrics disabled", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(a, tt.method, tt.path)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestRouter_PageETagAcrossEncodings(t *testing.T) {
	a := newTestApp(t, false)
	a.Pages.Publish([]byte(page), time.Millisecond)

	get := func(encoding, ifNoneMatch string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if encoding != "" {
			req.Header.Set("Accept-Encoding", encoding)
		}
		if ifNoneMatch != "" {
			req.Header.Set("If-None-Match", ifNoneMatch)
		}
		rec := httptest.NewRecorder()
		a.Router.ServeHTTP(rec, req)
		return rec
	}

	identity := get("", "")
	gzipped := get("gzip", "")
	require.Equal(t, http.StatusOK, identity.Code)
	require.Equal(t, http.StatusOK, gzipped.Code)
	assert.Equal(t, "gzip", gzipped.Header().Get("Content-Encoding"))
	assert.Empty(t, identity.Header().Get("Content-Encoding"))

	etag := identity.Header().Get("ETag")
	assert.Equal(t, etag, gzipped.Header().Get("ETag"))
	assert.True(t, strings.HasPrefix(etag, `W/"`), etag)

	assert.Equal(t, http.StatusNotModified, get("gzip", etag).Code)
	assert.Equal(t, http.StatusNotModified, get("", etag).Code)
}

func TestRouter_ErrorVerbosity(t *testing.T) {
	tests := []struct {
		name       string
		debug      bool
		wantDetail string
		wantStack  bool
	}{
		{name: "production", debug: false, wantDetail: "An unexpected error occurred"},
		{name: "debug", debug: true, wantDetail: "An unexpected error occurred", wantStack: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t, tt.debug)
			a.Router.Get("/boom", func(http.ResponseWriter, *http.Request) {
				panic("chart exploded")
			})

			rec := do(a, http.MethodGet, "/boom")
			assert.Equal(t, http.StatusInternalServerError, rec.Code)

			problem := decodeProblem(t, rec)
			assert.Equal(t, tt.wantDetail, problem["detail"])
			assert.NotEmpty(t, problem["trace_id"])

			_, hasStack := problem["stack"]
			assert.Equal(t, tt.wantStack, hasStack)
			if tt.debug {
				assert.Equal(t, "chart exploded", problem["panic"])
			} else {
				assert.NotContains(t, rec.Body.String(), "chart exploded")
			}
		})
	}
}

func TestApplication_ServeLifecycle(t *testing.T) {
	a := newTestApp(t, false)
	a.Pages.Publish([]byte(page), time.Millisecond)

	addr, err := a.Listen()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	resp, err := http.Get("http://" + addr.String() + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, page, string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServe_BindError(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	port := taken.Addr().(*net.TCPAddr).Port
	logger, _ := testutil.NewTestLogger(t)

	err = Serve(context.Background(), []byte(page), config.ServerConfig{Host: "127.0.0.1", Port: port}, logger)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBindError)
	assert.Contains(t, err.Error(), fmt.Sprintf("127.0.0.1:%d", port))
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Serve(ctx, []byte(page), config.ServerConfig{Host: "127.0.0.1", Port: 0}, nil)
	assert.NoError(t, err)
}

func TestWithServerDefaults(t *testing.T) {
	def := config.Default().Server
	got := withServerDefaults(config.ServerConfig{Port: 9000, Debug: true}, def)

	assert.Equal(t, def.Host, got.Host)
	assert.Equal(t, 9000, got.Port)
	assert.True(t, got.Debug)
	assert.Equal(t, def.ShutdownTimeout, got.ShutdownTimeout)
	assert.Equal(t, def.MaxHeaderBytes, got.MaxHeaderBytes)
}

func writeDatasets(t *testing.T) config.DataConfig {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	return config.DataConfig{
		SalesFile: write("sales.csv", strings.Join([]string{
			"month-year,anonymized_category,anonymized_product,anonymized_business,total_value,quantity",
			"2024-01,Cat A,Prod 1,Biz 1,100,2",
			"2024-01,Cat B,Prod 2,Biz 2,250,5",
			"2024-02,Cat A,Prod 3,Biz 1,75.5,1",
		}, "\n")),
		SegmentsFile: write("segments.csv", strings.Join([]string{
			"anonymized_business,segment,total_value,total_quantity",
			"Biz 1,High,175.5,3",
			"Biz 2,Medium,250,5",
		}, "\n")),
		GroupsFile: write("groups.csv", strings.Join([]string{
			"anonymized_business,total_value,quantity,frequency,group",
			"Biz 1,175.5,3,2,Loyal",
			"Biz 2,250,5,1,New",
		}, "\n")),
	}
}

func TestApplication_Prepare(t *testing.T) {
	a := newTestApp(t, false)
	a.Config.Data = writeDatasets(t)

	require.NoError(t, a.Prepare(context.Background()))
	require.True(t, a.Pages.Ready())

	rec := do(a, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := rec.Body.String()
	assert.Contains(t, doc, "<h1>Sales Performance Dashboard</h1>")
	srcs := testutil.ImageSources(t, rec.Body.Bytes())
	require.Len(t, srcs, 5)
	for _, src := range srcs {
		assert.True(t, strings.HasPrefix(src, "data:image/svg+xml;base64,"), src)
	}
	assert.Contains(t, doc, "Customer Segmentation Summary")
}

func TestApplication_PrepareMissingColumn(t *testing.T) {
	a := newTestApp(t, false)
	data := writeDatasets(t)
	require.NoError(t, os.WriteFile(data.SalesFile, []byte("month-year,total_value\n2024-01,1\n"), 0o600))
	a.Config.Data = data

	err := a.Prepare(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrMissingField)
	assert.False(t, a.Pages.Ready())
}
