package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/lesson-condenser/internal/api"
	"github.com/eugenenazirov/lesson-condenser/internal/config"
	"github.com/eugenenazirov/lesson-condenser/internal/lessons"
	"github.com/eugenenazirov/lesson-condenser/internal/planner"
	"github.com/eugenenazirov/lesson-condenser/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage storage.Storage
	planner planner.Planner
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
// An empty DataFile starts the service with an empty catalog.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if cfg.DataFile != "" {
		catalog, err := LoadCatalog(cfg.DataFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load lesson catalog: %w", err)
		}
		if err := store.SetLessons(catalog); err != nil {
			return nil, fmt.Errorf("failed to apply lesson catalog: %w", err)
		}
		logger.Info("lesson catalog loaded",
			zap.String("path", cfg.DataFile),
			zap.Int("lessons", len(catalog)),
			zap.Int("total_minutes", lessons.TotalMinutes(catalog)),
		)
	}

	plan := planner.New()
	handler := api.NewHandler(plan, store, api.WithDefaults(cfg.Request()))
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		storage: store,
		planner: plan,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(cfg, BuildRootHandler(apiRouter)),
	}, nil
}

// BuildRootHandler constructs the root HTTP handler that lists the API on "/" and routes API requests.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"service": "lesson-condenser",
			"endpoints": []string{
				"GET /api/health",
				"GET /api/lessons",
				"PUT /api/lessons",
				"POST /api/schedule",
				"POST /api/balance",
			},
		})
	}))
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// LoadCatalog reads the lesson catalog. Relative paths that do not exist in the
// working directory are looked up from the project root.
func LoadCatalog(path string) ([]lessons.Lesson, error) {
	resolved := path
	if !filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			found, lookupErr := resolveProjectPath(path)
			if lookupErr != nil {
				return nil, lookupErr
			}
			resolved = found
		}
	}
	return lessons.LoadFile(resolved)
}

// resolveProjectPath locates a file or directory relative to the project root by walking up the directory tree.
func resolveProjectPath(relative string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, relative)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("unable to locate %s", relative)
}
