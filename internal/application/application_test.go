package application

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/lesson-condenser/internal/config"
)

func TestNewInitializesDependencies(t *testing.T) {
	cfg := baseTestConfig(":8085")
	cfg.DataFile = writeCatalog(t, `[
		{"lesson": "1", "title": "One", "duration": "0:30"},
		{"lesson": "2", "title": "Two", "duration": "1:00"}
	]`)
	logger := zaptest.NewLogger(t)

	app, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	list, err := app.storage.GetLessons()
	if err != nil {
		t.Fatalf("GetLessons returned error: %v", err)
	}
	if len(list) != 2 || list[1].Minutes != 60 {
		t.Fatalf("unexpected catalog %v", list)
	}
	if app.server == nil || app.router == nil || app.handler == nil || app.planner == nil {
		t.Fatalf("expected server, router, planner, and handler to be initialized")
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}
}

func TestNewWithoutDataFileStartsEmpty(t *testing.T) {
	app, err := New(baseTestConfig(":0"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	list, err := app.storage.GetLessons()
	if err != nil {
		t.Fatalf("GetLessons returned error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty catalog, got %v", list)
	}
}

func TestNewReturnsErrorForInvalidCatalog(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.DataFile = writeCatalog(t, `[{"lesson": "1", "title": "Broken", "duration": "thirty"}]`)

	if _, err := New(cfg, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for invalid catalog")
	}

	cfg.DataFile = filepath.Join(t.TempDir(), "missing.json")
	if _, err := New(cfg, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for missing catalog")
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig("9090")
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	if server.Addr != ":9090" {
		t.Fatalf("expected address :9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout ||
		server.WriteTimeout != cfg.WriteTimeout ||
		server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func TestLoadCatalogFindsBundledData(t *testing.T) {
	list, err := LoadCatalog(filepath.Join("data", "lessons.json"))
	if err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}
	if len(list) == 0 {
		t.Fatalf("expected bundled catalog to contain lessons")
	}
}

func TestResolveProjectPathFindsGoMod(t *testing.T) {
	path, err := resolveProjectPath("go.mod")
	if err != nil {
		t.Fatalf("resolveProjectPath returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected go.mod to exist at %s: %v", path, err)
	}
}

func TestResolveProjectPathUnknownTarget(t *testing.T) {
	if _, err := resolveProjectPath("definitely-not-a-real-file"); err == nil {
		t.Fatalf("expected error for missing resource")
	}
}

func TestApplicationFlow(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.AlreadyComplete = 1
	cfg.TotalDays = 2
	cfg.DataFile = writeCatalog(t, `[
		{"lesson": "0", "title": "Done", "duration": "5:00"},
		{"lesson": "1", "title": "A", "duration": "0:30"},
		{"lesson": "2", "title": "B", "duration": "0:30"},
		{"lesson": "3", "title": "C", "duration": "0:20"},
		{"lesson": "4", "title": "D", "duration": "0:40"}
	]`)

	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	handler := app.Server().Handler

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected index to respond 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/schedule", bytes.NewReader(nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from schedule, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Average int `json:"average"`
		Days    []struct {
			Minutes int      `json:"minutes"`
			Lessons []string `json:"lessons"`
		} `json:"days"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Average != 60 || len(body.Days) != 2 {
		t.Fatalf("unexpected schedule: %+v", body)
	}
	if body.Days[0].Minutes != 60 || body.Days[1].Minutes != 60 {
		t.Fatalf("expected two one-hour days, got %+v", body.Days)
	}
}

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lessons.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func baseTestConfig(port string) config.Config {
	return config.Config{
		Port:                 port,
		AlreadyComplete:      7,
		TotalDays:            13,
		LogLevel:             "info",
		Output:               config.OutputConfig{Format: config.FormatText},
		ShutdownGracePeriod:  50 * time.Millisecond,
		ReadHeaderTimeout:    20 * time.Millisecond,
		WriteTimeout:         30 * time.Millisecond,
		IdleTimeout:          40 * time.Millisecond,
		EnableRequestLogging: false,
		RateLimitRPS:         0,
		RateLimitBurst:       0,
	}
}
