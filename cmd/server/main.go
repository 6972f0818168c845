package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"segment-studio/internal/composer"
	"segment-studio/internal/platform/config"
	"segment-studio/internal/platform/logger"
	"segment-studio/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()
	cfg := config.FromEnv()

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	repo, err := newRepository(cfg)
	if err != nil {
		log.Error("store init failed", "error", err)
		os.Exit(1)
	}

	catalog, err := newCatalog(cfg, log)
	if err != nil {
		log.Error("material catalog load failed", "error", err)
		os.Exit(1)
	}

	svc := composer.NewService(repo, catalog, composer.Owner{Name: cfg.DefaultController})

	var met *metrics.Metrics
	if cfg.EnableMetrics {
		met = metrics.New()
	}
	h := composer.NewHandler(svc, log, met)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	if met != nil {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			met.Handler(func() {
				met.SetOpenSessions(svc.OpenCount())
				met.SetStoredProjects(repo.ProjectCount())
			}).ServeHTTP(w, r)
		})
	}
	h.Routes(r)

	addr := ":" + cfg.Port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", cfg.Port,
		"log_level", cfg.LogLevel,
		"projects_dir", cfg.ProjectsDir,
		"materials", len(catalog.ListMaterials()),
		"controller", cfg.DefaultController,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// newRepository keeps projects on disk when PROJECTS_DIR is set, in memory
// otherwise.
func newRepository(cfg config.Settings) (*composer.StoreRepository, error) {
	if cfg.ProjectsDir == "" {
		return composer.NewInMemoryRepository(), nil
	}
	store, err := composer.NewFileStore(cfg.ProjectsDir)
	if err != nil {
		return nil, err
	}
	return composer.NewRepositoryWithStore(store), nil
}

func newCatalog(cfg config.Settings, log *slog.Logger) (*composer.InMemoryCatalog, error) {
	if cfg.MaterialsFile == "" {
		log.Warn("MATERIALS_FILE not set, material catalog is empty")
		return composer.NewInMemoryCatalog(), nil
	}
	return composer.LoadCatalogFile(cfg.MaterialsFile)
}
