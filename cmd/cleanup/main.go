package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/qs3c/career_compass/config"
	"github.com/qs3c/career_compass/internal/database"
	"github.com/qs3c/career_compass/internal/pkg/logger"
	"github.com/qs3c/career_compass/internal/repository"
)

var (
	dryRun     = flag.Bool("dry-run", true, "Dry run mode, don't actually delete sessions")
	inactive   = flag.Int("inactive-days", 90, "Delete sessions not updated for this many days")
	batchLimit = flag.Int("batch", 500, "Sessions deleted per transaction")
)

func main() {
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.SetupDefault(os.Stdout, cfg.Log.Level)

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cutoff := time.Now().Add(-time.Duration(*inactive) * 24 * time.Hour)
	log.Info("starting session cleanup",
		slog.Bool("dry_run", *dryRun),
		slog.Time("cutoff", cutoff),
	)

	pruner := &sessionPruner{
		sessions: repository.NewSessionRepository(db),
		batch:    *batchLimit,
		log:      log,
	}

	report, err := pruner.Prune(context.Background(), cutoff, *dryRun)
	if err != nil {
		log.Error("cleanup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Cleanup Summary")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Inactive sessions: %d\n", report.Found)
	fmt.Printf("Deleted sessions:  %d\n", report.Deleted)
	if *dryRun {
		fmt.Println("DRY RUN MODE - nothing was deleted, run with -dry-run=false to delete")
	}
	fmt.Println(strings.Repeat("=", 60))
}
