// ============================================================================
// cmd/syncer/main.go
// Reconciliation sweep CLI: re-derives enrollment docs from progress records
// ============================================================================

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"closercollege/internal/enrollment"
	"closercollege/internal/shared"
	"closercollege/internal/storage/mongodb"
)

func main() {
	userID := flag.String("user", "", "limit the sweep to one user")
	courseID := flag.String("course", "", "limit the sweep to one course")
	concurrency := flag.Int("concurrency", 0, "max pairs processed in parallel (default from SYNC_CONCURRENCY)")
	flag.Parse()

	shared.LoadEnv("")

	config, err := shared.LoadConfig("syncer")
	if err != nil {
		log.Fatalf("FATAL: Config error: %v", err)
	}
	if *concurrency > 0 {
		config.Sync.Concurrency = *concurrency
	}

	logger, err := shared.NewLogger(config.Environment)
	if err != nil {
		log.Fatalf("FATAL: Logger error: %v", err)
	}
	defer logger.Sync()

	client, db, err := shared.ConnectMongoDB(&config.MongoDB)
	if err != nil {
		logger.Fatalw("mongodb connection failed", "error", err)
	}
	defer shared.DisconnectMongoDB(client)

	store := mongodb.New(client, db)
	syncer := enrollment.NewSyncer(store, store, config.Sync.Concurrency, logger)

	// Sweep deadline plus Ctrl-C cancellation.
	ctx, cancel := context.WithTimeout(context.Background(), config.Sync.Timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := syncer.Sync(ctx, *userID, *courseID)
	if err != nil {
		logger.Errorw("sweep aborted", "error", err)
	}
	if report != nil {
		logger.Infow("sweep finished",
			"synced", report.Synced, "skipped", report.Skipped, "failed", report.Failed)
		for _, d := range report.Details {
			if d.Error != "" {
				logger.Warnw("pair failed", "user_id", d.UserID, "course_id", d.CourseID, "error", d.Error)
			}
		}
	}
	if err != nil || (report != nil && report.Failed > 0) {
		os.Exit(1)
	}
}
