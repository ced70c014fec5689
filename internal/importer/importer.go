// Package importer loads Alpha Progression exports and split text files from
// disk straight into the database, without going through the HTTP API.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/meltforce/liftlog/internal/ingest"
	"github.com/meltforce/liftlog/internal/ingest/alpha"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/oracle"
	"github.com/meltforce/liftlog/internal/splitparse"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesErrored   int
	ingest.Result
}

// Importer reads CSV exports from a file or directory and stores them
// through the Alpha provider.
type Importer struct {
	provider *alpha.Provider
	log      *slog.Logger
	dryRun   bool
	stats    Stats
}

// New creates a new Importer. provider may be nil in dry-run mode.
func New(provider *alpha.Provider, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{provider: provider, log: log, dryRun: dryRun}
}

// Import processes path, a single export or a directory searched recursively
// for .csv files. A file that fails is logged and counted; the rest continue.
func (imp *Importer) Import(ctx context.Context, path string, userID int) (*Stats, error) {
	files, err := csvFiles(path)
	if err != nil {
		return &imp.stats, fmt.Errorf("scanning %s: %w", path, err)
	}
	if len(files) == 0 {
		return &imp.stats, fmt.Errorf("no .csv exports found in %s", path)
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &imp.stats, err
		}
		if err := imp.importFile(ctx, f, userID); err != nil {
			imp.log.Warn("import failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}
		imp.stats.FilesProcessed++
	}
	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, path string, userID int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if imp.dryRun {
		parsed, err := alpha.Parse(bytes.NewReader(data))
		if err != nil {
			return err
		}
		for _, a := range parsed {
			s, warmups := alpha.ToSession(a, userID)
			imp.stats.SessionsReceived++
			imp.stats.WarmupsDropped += warmups
			imp.stats.SetsReceived += len(s.Rows())
		}
		return nil
	}

	result, err := imp.provider.Ingest(ctx, bytes.NewReader(data), userID)
	if result != nil {
		imp.stats.Add(result)
	}
	return err
}

func csvFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".csv") {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

// SplitStore saves a user's split.
type SplitStore interface {
	SaveSplit(ctx context.Context, userID int, text string, split models.ParsedSplit) (*models.SavedSplit, error)
}

// ImportSplit parses a split text file and saves it for userID.
func ImportSplit(ctx context.Context, store SplitStore, parser *splitparse.Parser, settings oracle.Settings, path string, userID int) (*models.SavedSplit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading split: %w", err)
	}
	text := string(data)
	split := parser.ParseWithFallback(ctx, text, settings)
	if len(split.Days) == 0 {
		return nil, fmt.Errorf("no training days found in %s", path)
	}
	return store.SaveSplit(ctx, userID, text, split)
}
