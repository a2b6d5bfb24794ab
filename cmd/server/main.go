// ============================================================================
// cmd/server/main.go
// Main API server: auth, catalog, enrollment, progress, admin overrides
// ============================================================================

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"closercollege/internal/admin"
	"closercollege/internal/auth"
	"closercollege/internal/certificate"
	"closercollege/internal/course"
	"closercollege/internal/enrollment"
	"closercollege/internal/gateway"
	"closercollege/internal/progress"
	"closercollege/internal/shared"
	"closercollege/internal/storage/mongodb"
)

func main() {
	shared.LoadEnv("")

	config, err := shared.LoadConfig("server")
	if err != nil {
		log.Fatalf("FATAL: Config error: %v", err)
	}

	logger, err := shared.NewLogger(config.Environment)
	if err != nil {
		log.Fatalf("FATAL: Logger error: %v", err)
	}
	defer logger.Sync()

	logger.Infow("starting server", "environment", config.Environment, "port", config.HTTPPort)

	// 1. Storage
	client, db, err := shared.ConnectMongoDB(&config.MongoDB)
	if err != nil {
		logger.Fatalw("mongodb connection failed", "error", err)
	}
	defer shared.DisconnectMongoDB(client)

	store := mongodb.New(client, db)

	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.EnsureIndexes(indexCtx); err != nil {
		cancel()
		logger.Fatalw("index creation failed", "error", err)
	}
	cancel()

	// 2. Services
	authService := auth.NewService(store, store, config, logger)
	courseService := course.NewService(store, logger)
	certService := certificate.NewService(store, logger)
	progressService := progress.NewService(store, store, store, certService, logger)
	enrollService := enrollment.NewService(store, store, store, progressService, logger)
	syncer := enrollment.NewSyncer(store, store, config.Sync.Concurrency, logger)
	adminService := admin.NewService(progressService, store, logger)

	// 3. Router
	router := gateway.SetupRoutes(config, &gateway.Services{
		Auth:         authService,
		Courses:      courseService,
		Enrollments:  enrollService,
		Syncer:       syncer,
		Progress:     progressService,
		Certificates: certService,
		Admin:        adminService,
	})

	server := &http.Server{
		Addr:         ":" + config.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 4. Start Server in a Goroutine
	go func() {
		logger.Infow("listening", "port", config.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("http server error", "error", err)
		}
	}()

	// 5. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infow("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("shutdown error", "error", err)
	}
	logger.Infow("server stopped")
}
