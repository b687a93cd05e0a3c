package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Schema version errors.
var (
	// ErrSchemaVersionMismatch is returned when the stored schema version
	// differs from the version this binary was built for.
	ErrSchemaVersionMismatch = errors.New("database: schema version mismatch")

	// ErrNotVizgateDatabase is returned when the meta table or its version
	// row is missing.
	ErrNotVizgateDatabase = errors.New("database: no schema version recorded")
)

// SchemaVersion reads the version row from the meta table.
func (db *DB) SchemaVersion(ctx context.Context) (string, error) {
	var version string
	err := db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = 'version'").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotVizgateDatabase
	}
	if err != nil {
		// A missing meta table means the file was not created by vizgate.
		var exists int
		if qerr := db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'meta'",
		).Scan(&exists); qerr == nil && exists == 0 {
			return "", ErrNotVizgateDatabase
		}
		return "", fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

// CheckSchemaVersion compares the stored schema version with expected.
// A mismatch is an error unless ignore is set, in which case the stored
// version is returned with a nil error and the caller decides what to log.
func (db *DB) CheckSchemaVersion(ctx context.Context, expected string, ignore bool) (string, error) {
	stored, err := db.SchemaVersion(ctx)
	if err != nil {
		return "", err
	}
	if stored != expected && !ignore {
		return stored, fmt.Errorf("%w: database has %q, expected %q", ErrSchemaVersionMismatch, stored, expected)
	}
	return stored, nil
}
