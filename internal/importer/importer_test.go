package importer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/meltforce/liftlog/internal/ingest/alpha"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/oracle"
	"github.com/meltforce/liftlog/internal/splitparse"
)

const exportCSV = "\"Legs\";\"2026-02-19 4:54 h\";\"1:02 hr\"\n" +
	"\"1. Squat · Barbell · 5 reps\";\"WU1 · 60 kg · 5 reps\"\n" +
	"#;KG;REPS;RIR\n1;100;5;1\n2;100;5;0\n"

type memStore struct {
	sessions []models.LoggedSession
	split    *models.SavedSplit
	fail     bool
}

func (m *memStore) ReplaceSession(_ context.Context, s models.LoggedSession) (string, error) {
	if m.fail {
		return "", errors.New("db down")
	}
	m.sessions = append(m.sessions, s)
	return "id", nil
}

func (m *memStore) SaveSplit(_ context.Context, _ int, text string, split models.ParsedSplit) (*models.SavedSplit, error) {
	m.split = &models.SavedSplit{Text: text, Split: split}
	return m.split, nil
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestImportDirectory(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.csv", exportCSV)
	write(t, dir, "b.csv", exportCSV)
	write(t, dir, "readme.md", "not an export")

	store := &memStore{}
	imp := New(alpha.NewProvider(store, slog.Default()), slog.Default(), false)
	stats, err := imp.Import(context.Background(), dir, 1)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesProcessed != 2 || stats.SessionsInserted != 2 || stats.SetsInserted != 4 || stats.WarmupsDropped != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if len(store.sessions) != 2 {
		t.Errorf("stored = %d sessions, want 2", len(store.sessions))
	}
}

// TestImportDryRun verifies nothing is stored and counts still add up.
func TestImportDryRun(t *testing.T) {
	path := write(t, t.TempDir(), "a.csv", exportCSV)

	stats, err := New(nil, slog.Default(), true).Import(context.Background(), path, 1)
	if err != nil {
		t.Fatal(err)
	}
	if stats.SessionsReceived != 1 || stats.SetsReceived != 2 || stats.SessionsInserted != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestImportStoreError(t *testing.T) {
	path := write(t, t.TempDir(), "a.csv", exportCSV)
	store := &memStore{fail: true}

	stats, err := New(alpha.NewProvider(store, slog.Default()), slog.Default(), false).Import(context.Background(), path, 1)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesErrored != 1 || stats.FilesProcessed != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestImportEmptyDirectory(t *testing.T) {
	if _, err := New(nil, slog.Default(), true).Import(context.Background(), t.TempDir(), 1); err == nil {
		t.Error("expected error for a directory without exports")
	}
}

func TestImportSplit(t *testing.T) {
	dir := t.TempDir()
	good := write(t, dir, "split.txt", "PUSH A\nBench Press - 3x8-10\n\nPULL A\nRow: 3x10\n")
	bad := write(t, dir, "empty.txt", "just some notes\n")
	store := &memStore{}
	parser := splitparse.NewParser(nil, slog.Default())

	saved, err := ImportSplit(context.Background(), store, parser, oracle.Settings{}, good, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(saved.Split.Days) != 2 || saved.Split.Days[1].Name != "PULL A" {
		t.Errorf("split = %+v", saved.Split)
	}

	if _, err := ImportSplit(context.Background(), store, parser, oracle.Settings{}, bad, 1); err == nil {
		t.Error("expected error for text without days")
	}
}
