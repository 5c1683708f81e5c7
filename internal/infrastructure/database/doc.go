// Package database provides access to the Logi Options+ settings database.
//
// The database belongs to Logi Options+. It holds a single table:
//
//	CREATE TABLE data (_id INTEGER PRIMARY KEY, file BLOB)
//
// with exactly one row (_id 1) whose file column is the JSON settings blob.
//
// This package manages:
//   - Opening an existing database file (never creating one)
//   - Driver selection: mattn/go-sqlite3 (cgo) or modernc.org/sqlite (pure Go)
//   - Loading and saving the settings blob with row count/id checks
//   - Timestamped whole-database snapshots via VACUUM INTO
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	store := database.NewSettingsStore(db)
//	payload, err := store.Load(ctx)
//
// Backups:
//
// Snapshot must succeed before any Save that replaces user data; callers
// must not write when it fails.
package database
