// Package dbtest opens migrated throwaway databases for package tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nerrad567/vizgate/internal/infrastructure/database"
	"github.com/nerrad567/vizgate/migrations"
)

// Open returns a file-backed database in t.TempDir() with every migration
// applied. It is closed when the test ends.
func Open(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "vizgate.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	if _, err := db.CheckSchemaVersion(ctx, migrations.SchemaVersion, false); err != nil {
		t.Fatalf("checking schema version: %v", err)
	}
	return db
}
