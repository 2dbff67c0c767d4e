package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/edukita/campus-assignment-api/internal/repository"
	"github.com/edukita/campus-assignment-api/internal/service"
	"github.com/edukita/campus-assignment-api/pkg/config"
	"github.com/edukita/campus-assignment-api/pkg/database"
	"github.com/edukita/campus-assignment-api/pkg/logger"
)

// Offline runner that backfills campus assignments from legacy enrollment
// data. Safe to re-run; both passes skip rows that already exist.
func main() {
	dryRun := flag.Bool("dry-run", false, "report changes without writing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backfillRepo := repository.NewBackfillRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	userRepo := repository.NewUserRepository(db)
	svc := service.NewBackfillService(backfillRepo, assignmentRepo, userRepo, cfg.Backfill, logr)

	summary, err := svc.Run(ctx, *dryRun)
	if err != nil {
		logr.Sugar().Fatalw("backfill failed", "error", err)
	}

	logr.Sugar().Infow("backfill complete",
		"dry_run", summary.DryRun,
		"pairs_scanned", summary.PairsScanned,
		"assignments_created", summary.AssignmentsCreated,
		"pairs_skipped", summary.PairsSkipped,
		"primaries_elected", summary.PrimariesElected,
		"duration", summary.Duration.String())
}
