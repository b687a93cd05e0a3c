package database

import (
	"context"
	"errors"
	"testing"
)

func TestCheckSchemaVersion(t *testing.T) {
	ctx := context.Background()

	t.Run("missing meta table", func(t *testing.T) {
		db := openTestDB(t)
		defer db.Close() //nolint:errcheck // Test cleanup

		_, err := db.CheckSchemaVersion(ctx, "1", false)
		if !errors.Is(err, ErrNotVizgateDatabase) {
			t.Errorf("CheckSchemaVersion() error = %v, want %v", err, ErrNotVizgateDatabase)
		}
	})

	setup := func(t *testing.T, version string) *DB {
		t.Helper()
		db := openTestDB(t)
		if _, err := db.ExecContext(ctx, "CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT NOT NULL)"); err != nil {
			t.Fatalf("CREATE TABLE error = %v", err)
		}
		if version != "" {
			if _, err := db.ExecContext(ctx, "INSERT INTO meta (key, value) VALUES ('version', ?)", version); err != nil {
				t.Fatalf("INSERT error = %v", err)
			}
		}
		return db
	}

	t.Run("missing version row", func(t *testing.T) {
		db := setup(t, "")
		defer db.Close() //nolint:errcheck // Test cleanup

		_, err := db.CheckSchemaVersion(ctx, "1", false)
		if !errors.Is(err, ErrNotVizgateDatabase) {
			t.Errorf("CheckSchemaVersion() error = %v, want %v", err, ErrNotVizgateDatabase)
		}
	})

	t.Run("matching", func(t *testing.T) {
		db := setup(t, "1")
		defer db.Close() //nolint:errcheck // Test cleanup

		got, err := db.CheckSchemaVersion(ctx, "1", false)
		if err != nil {
			t.Fatalf("CheckSchemaVersion() error = %v", err)
		}
		if got != "1" {
			t.Errorf("version = %q, want 1", got)
		}
	})

	t.Run("mismatch is fatal", func(t *testing.T) {
		db := setup(t, "0.9")
		defer db.Close() //nolint:errcheck // Test cleanup

		_, err := db.CheckSchemaVersion(ctx, "1", false)
		if !errors.Is(err, ErrSchemaVersionMismatch) {
			t.Errorf("CheckSchemaVersion() error = %v, want %v", err, ErrSchemaVersionMismatch)
		}
	})

	t.Run("mismatch ignored", func(t *testing.T) {
		db := setup(t, "0.9")
		defer db.Close() //nolint:errcheck // Test cleanup

		got, err := db.CheckSchemaVersion(ctx, "1", true)
		if err != nil {
			t.Fatalf("CheckSchemaVersion() error = %v", err)
		}
		if got != "0.9" {
			t.Errorf("version = %q, want 0.9", got)
		}
	})
}
