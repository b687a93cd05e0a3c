// Package database provides the SQLite handle behind the credential store
// and the project and view registries.
//
// This package manages:
//   - Connection setup (WAL, busy timeout, immediate write transactions)
//   - Embedded schema migrations and the meta-table version check
//   - WithTx, the scoped transaction every mutating operation runs in
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//	if _, err := db.CheckSchemaVersion(ctx, cfg.Database.SchemaVersion, cfg.Database.IgnoreVersion); err != nil {
//	    return err
//	}
//
// All queries use ? placeholders. The file is chmod 0600 because it holds
// password hashes and live tokens.
package database
