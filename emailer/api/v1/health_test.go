package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v5"
	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func TestHealthz(t *testing.T) {
	e := echo.New()
	e.GET("/healthz", Healthz("1.2.3", "abcdef", map[string]string{"dry_run": "enabled"}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}

	if resp.Status != "ok" {
		t.Errorf("Status = %q, want ok", resp.Status)
	}
	if resp.Version != "1.2.3" || resp.Commit != "abcdef" {
		t.Errorf("build info = %s/%s, want 1.2.3/abcdef", resp.Version, resp.Commit)
	}
	if resp.Features["dry_run"] != "enabled" {
		t.Errorf("Features = %v, want dry_run enabled", resp.Features)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	e := echo.New()
	e.Use(MetricsMiddleware())
	e.GET("/metrics", MetricsHandler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("metrics body should not be empty")
	}
}
