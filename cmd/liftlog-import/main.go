package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/meltforce/liftlog/internal/config"
	"github.com/meltforce/liftlog/internal/importer"
	"github.com/meltforce/liftlog/internal/ingest/alpha"
	"github.com/meltforce/liftlog/internal/oracle"
	"github.com/meltforce/liftlog/internal/splitparse"
	"github.com/meltforce/liftlog/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("path", "", "Alpha Progression CSV export, or a directory of exports")
	splitPath := flag.String("split", "", "text file with the training split to save")
	userID := flag.Int("user", storage.LocalUserID, "user ID to import for")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" && *splitPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-import -config config.yaml [-path export.csv|dir] [-split split.txt] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *dryRun {
		if *exportPath == "" {
			log.Error("-dry-run only applies to -path")
			os.Exit(1)
		}
		log.Info("DRY RUN mode: no data will be written to the database")
		stats, err := importer.New(nil, log, true).Import(context.Background(), *exportPath, *userID)
		printStats(log, stats)
		if err != nil {
			log.Error("import failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	if *splitPath != "" {
		parser := splitparse.NewParser(oracle.New(cfg.Oracle.Client(), log), log)
		saved, err := importer.ImportSplit(ctx, db, parser, cfg.Oracle.Settings(), *splitPath, *userID)
		if err != nil {
			log.Error("split import failed", "error", err)
			os.Exit(1)
		}
		log.Info("split saved", "days", len(saved.Split.Days))
	}

	if *exportPath != "" {
		imp := importer.New(alpha.NewProvider(db, log), log, false)
		stats, err := imp.Import(ctx, *exportPath, *userID)
		printStats(log, stats)
		if err != nil {
			log.Error("import failed", "error", err)
			os.Exit(1)
		}
		log.Info("import complete")
	}
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_errored", stats.FilesErrored,
		"sessions_received", stats.SessionsReceived,
		"sessions_inserted", stats.SessionsInserted,
		"sessions_skipped", stats.SessionsSkipped,
		"sets_received", stats.SetsReceived,
		"sets_inserted", stats.SetsInserted,
		"warmups_dropped", stats.WarmupsDropped,
	)
}
