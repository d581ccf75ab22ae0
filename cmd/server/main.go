package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/loopmobile/loop-og/internal/config"
	"github.com/loopmobile/loop-og/internal/db"
	routes "github.com/loopmobile/loop-og/internal/http"
	"github.com/loopmobile/loop-og/internal/logger"
	"github.com/loopmobile/loop-og/internal/metrics"
	"github.com/loopmobile/loop-og/internal/preview"
	"github.com/loopmobile/loop-og/internal/storage"
	"github.com/loopmobile/loop-og/internal/store"
)

func main() {
	// Load .env first so config sees it. Running without one is fine
	// in production, where env vars are set directly.
	_ = godotenv.Load()

	log := logger.New("og-preview")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	m := metrics.New("og_preview")

	// Data backend: GORM query builder against our own database, or
	// the Supabase REST API. Both satisfy store.Store.
	var dataStore store.Store
	switch cfg.DataBackend {
	case config.DataBackendSupabase:
		dataStore = store.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseServiceKey)
		log.Info("Using Supabase REST data backend")
	default:
		database, err := db.Init(cfg.DatabaseURL, log)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		log.Info("Running database migrations...")
		if err := db.Migrate(database); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		dataStore = store.NewGormStore(database)
	}

	var objects storage.ObjectStore
	switch cfg.StorageBackend {
	case config.StorageBackendDisk:
		objects = storage.NewDiskStorage(cfg.DiskRoot, cfg.PublicBaseURL)
		log.WithField("root", cfg.DiskRoot).Info("Using disk storage backend")
	default:
		objects = storage.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.StorageBucket)
		log.WithField("bucket", cfg.StorageBucket).Info("Using Supabase storage backend")
	}

	renderer, err := preview.NewRenderer(preview.NewHTTPAvatarFetcher())
	if err != nil {
		log.Fatalf("Failed to initialize renderer: %v", err)
	}

	previews := preview.NewService(dataStore, objects, renderer, log, m)

	router := gin.New()
	env := &routes.Env{Previews: previews, Log: log}
	routes.SetupRoutes(router, env, log, m, cfg.CORSOrigin)

	// With disk storage the service also has to serve the artifacts it
	// publishes, so the recorded URLs actually resolve.
	if cfg.StorageBackend == config.StorageBackendDisk {
		router.Static("/previews", filepath.Join(cfg.DiskRoot, "previews"))
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithField("port", cfg.Port).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s", err)
		}
	}()

	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exiting")
}
