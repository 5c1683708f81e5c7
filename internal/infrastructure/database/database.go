package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // SQLite driver "sqlite" (pure Go)
)

// Database configuration constants.
const (
	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second

	// Driver names as registered with database/sql.
	driverCGO    = "sqlite3"
	driverPureGo = "sqlite"
)

// uriEscaper escapes the characters that would end the path part of a
// SQLite URI filename.
var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// DB wraps a sql.DB connection to an existing settings database.
type DB struct {
	*sql.DB
	path string
}

// Config contains database configuration options.
// These map to the database section of the config file.
type Config struct {
	// Path is the filesystem path to the SQLite database file.
	// The file must already exist; it is never created.
	Path string

	// Driver selects "sqlite3" (mattn/go-sqlite3) or "sqlite" (modernc.org/sqlite).
	// Empty means "sqlite3".
	Driver string

	// BusyTimeout is the maximum time to wait for a database lock (seconds).
	BusyTimeout int
}

// Open connects to an existing database file.
//
// It performs the following setup:
//  1. Checks the database file exists
//  2. Opens it read-write without permission to create it
//  3. Configures the busy timeout for the chosen driver
//  4. Verifies the connection with a ping
//
// Parameters:
//   - ctx: Context for the connection check
//   - cfg: Database configuration
//
// Returns:
//   - *DB: Connected database wrapper
//   - error: If the file is missing or the connection fails
func Open(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: database path is empty", ErrStorage)
	}
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("%w: opening settings database: %w", ErrStorage, err)
	}

	driver, connStr, err := connectionString(cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", ErrStorage, err)
	}

	// One tool instance, one connection.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	db := &DB{
		DB:   sqlDB,
		path: cfg.Path,
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("%w: verifying database connection: %w", ErrStorage, err)
	}

	return db, nil
}

// connectionString builds the driver name and DSN for cfg.
// See: https://github.com/mattn/go-sqlite3#connection-string
// and https://pkg.go.dev/modernc.org/sqlite#Driver.Open
func connectionString(cfg Config) (driver, connStr string, err error) {
	timeoutMS := cfg.BusyTimeout * msPerSecond
	base := "file:" + uriEscaper.Replace(cfg.Path) + "?mode=rw"

	switch cfg.Driver {
	case "", driverCGO:
		return driverCGO, fmt.Sprintf("%s&_busy_timeout=%d", base, timeoutMS), nil
	case driverPureGo:
		return driverPureGo, fmt.Sprintf("%s&_pragma=busy_timeout(%d)", base, timeoutMS), nil
	default:
		return "", "", fmt.Errorf("%w: unsupported driver %q", ErrStorage, cfg.Driver)
	}
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Path returns the filesystem path to the database file.
func (db *DB) Path() string {
	return db.path
}

// ExecContext executes a query that doesn't return rows.
// This is a convenience wrapper that provides consistent error handling.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - query: SQL query with ? placeholders
//   - args: Arguments for placeholders
//
// Returns:
//   - sql.Result: Contains RowsAffected
//   - error: If execution fails
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	result, err := db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	return result, nil
}
