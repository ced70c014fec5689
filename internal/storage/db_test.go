package storage

import (
	"path/filepath"
	"strings"
	"testing"
)

// TestRunMigrationsMissingDir verifies a missing migrations directory is
// reported before any database connection is attempted.
func TestRunMigrationsMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	err := RunMigrations("postgres://liftlog@127.0.0.1:1/liftlog?sslmode=disable", dir)
	if err == nil {
		t.Fatal("expected error for missing migrations directory")
	}
	if !strings.Contains(err.Error(), "creating migrator") {
		t.Errorf("err = %v, want creating migrator error", err)
	}
}
