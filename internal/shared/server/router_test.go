package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/analyses"
	"resume-analyzer/internal/extract"
	"resume-analyzer/internal/services/health"
	"resume-analyzer/internal/shared/config"
	"resume-analyzer/internal/skills"
)

type downDB struct{}

func (downDB) PingContext(context.Context) error { return errors.New("connection refused") }

func newTestRouter(t *testing.T, cfg config.Config, healthSvc *health.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := analyses.NewService(analyses.NewMemoryRepo(),
		analyses.NewPipeline(extract.New(), skills.Default(), cfg.Analysis.ContentSampleChars),
		analyses.PoolOptions{Concurrency: 1, QueueSize: 1})
	t.Cleanup(func() { _ = svc.Close(context.Background()) })
	validator, err := analyses.NewUploadValidator(cfg.Upload)
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	return NewRouter(RouterDeps{
		Config:          cfg,
		AnalysisHandler: analyses.NewHandler(svc, validator, cfg.Analysis.ContentSampleChars),
		Health:          healthSvc,
	})
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
	return resp
}

func TestRootAndHealth(t *testing.T) {
	r := newTestRouter(t, config.Defaults(), nil)

	resp := get(r, "/")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Resume Analyzer API is running") {
		t.Fatalf("unexpected root response %d %s", resp.Code, resp.Body.String())
	}

	for _, path := range []string{"/health", "/api/v1/health"} {
		resp = get(r, path)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
		if body["status"] != "healthy" {
			t.Fatalf("%s: expected healthy, got %v", path, body)
		}
	}
}

func TestHealthReportsUnreachableDatabase(t *testing.T) {
	r := newTestRouter(t, config.Defaults(), health.NewService(downDB{}))

	resp := get(r, "/health")
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, config.Defaults(), nil)

	resp := get(r, "/metrics")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "analysis_completed_total") {
		t.Fatalf("expected analysis metrics, got %s", resp.Body.String())
	}
}

func TestAnalysisRoutesUseConfiguredPrefix(t *testing.T) {
	cfg := config.Defaults()
	cfg.APIPrefix = "/v2"
	r := newTestRouter(t, cfg, nil)

	if resp := get(r, "/v2/result/not-a-uuid"); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 from prefixed route, got %d", resp.Code)
	}
	if resp := get(r, "/api/v1/result/not-a-uuid"); resp.Code != http.StatusNotFound {
		t.Fatalf("expected default prefix to be unmounted, got %d", resp.Code)
	}
}

func TestEmptyPrefixMountsAtRoot(t *testing.T) {
	cfg := config.Defaults()
	cfg.APIPrefix = ""
	r := newTestRouter(t, cfg, nil)

	if resp := get(r, "/result/not-a-uuid"); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 from root route, got %d", resp.Code)
	}
	if resp := get(r, "/health"); resp.Code != http.StatusOK {
		t.Fatalf("expected health at root, got %d", resp.Code)
	}
}

func TestAddr(t *testing.T) {
	cases := map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
