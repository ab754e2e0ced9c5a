// Package entrypoint composes the bridge and runs the HTTP server.
package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kobobridge/internal/abs"
	"github.com/mrlokans/kobobridge/internal/config"
	"github.com/mrlokans/kobobridge/internal/database"
	"github.com/mrlokans/kobobridge/internal/database/syncrecords"
	http_controllers "github.com/mrlokans/kobobridge/internal/http"
	"github.com/mrlokans/kobobridge/internal/scheduler"
	"github.com/mrlokans/kobobridge/internal/store"
	"github.com/mrlokans/kobobridge/internal/sync"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then drains it within
// the configured shutdown timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires every component from config and serves the bridge.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting kobobridge v%s", version)

	if cfg.Abs.BaseURL == "" {
		log.Printf("WARNING: ABS_BASE_URL is not set. Devices will sync the vendor store only.")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	absClient := abs.NewClient(cfg.Abs.BaseURL)
	storeProxy := store.NewProxy(cfg.KoboStore.BaseURL, cfg.KoboStore.Timeout)
	records := syncrecords.NewRepository(db.DB)

	syncService := sync.NewService(
		db,
		absClient,
		records,
		storeProxy,
		cfg.HTTP.PublicURL,
		cfg.Sync.ItemLimit,
	)

	var cleanup *scheduler.CleanupScheduler
	if cfg.Cleanup.Enabled {
		cleanup = scheduler.NewCleanupScheduler(db, cfg.Cleanup.Schedule)
		if err := cleanup.Start(context.Background()); err != nil {
			log.Printf("WARNING: failed to start cleanup scheduler: %v", err)
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:    db,
		SyncService: syncService,
		AbsClient:   absClient,
		AdminAPIKey: cfg.Abs.APIKey,
		PublicURL:   cfg.HTTP.PublicURL,
		Version:     version,
	})

	Serve(router, cfg, func(ctx context.Context) {
		if cleanup != nil {
			cleanup.Stop()
		}
		if err := db.Close(); err != nil {
			log.Printf("WARNING: failed to close database: %v", err)
		}
	})
}
