package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// settingsRowID is the _id of the single row holding the settings blob.
const settingsRowID = 1

// snapshotTimeFormat is appended to the database path to name a backup.
const snapshotTimeFormat = "2006-01-02_15-04-05"

// SettingsStore reads and writes the settings blob held in the single row of
// the data table:
//
//	CREATE TABLE data (_id INTEGER PRIMARY KEY, file BLOB)
type SettingsStore struct {
	db  *DB
	now func() time.Time
}

// NewSettingsStore creates a store over an open database.
func NewSettingsStore(db *DB) *SettingsStore {
	return &SettingsStore{
		db:  db,
		now: time.Now,
	}
}

// Load returns the settings payload.
//
// It fails with ErrUnexpectedRowCount unless the data table holds exactly one
// row, and with ErrUnexpectedRowID unless that row has _id 1.
func (s *SettingsStore) Load(ctx context.Context) ([]byte, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM data").Scan(&count); err != nil {
		return nil, fmt.Errorf("%w: counting settings rows: %w", ErrStorage, err)
	}
	if count != 1 {
		return nil, fmt.Errorf("%w: %w: found %d row(s)", ErrStorage, ErrUnexpectedRowCount, count)
	}

	var (
		id      int64
		payload []byte
	)
	err := s.db.QueryRowContext(ctx, "SELECT _id, file FROM data").Scan(&id, &payload)
	if err != nil {
		return nil, fmt.Errorf("%w: reading settings row: %w", ErrStorage, err)
	}
	if id != settingsRowID {
		return nil, fmt.Errorf("%w: %w: got %d, want %d", ErrStorage, ErrUnexpectedRowID, id, settingsRowID)
	}

	return payload, nil
}

// Save replaces the settings payload.
func (s *SettingsStore) Save(ctx context.Context, payload []byte) error {
	result, err := s.db.ExecContext(ctx, "UPDATE data SET file = ? WHERE _id = ?", payload, settingsRowID)
	if err != nil {
		return fmt.Errorf("%w: saving settings: %w", ErrStorage, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: saving settings: %w", ErrStorage, err)
	}
	if rows != 1 {
		return fmt.Errorf("%w: %w: %d row(s) affected", ErrStorage, ErrNoRowUpdated, rows)
	}
	return nil
}

// Snapshot copies the whole database to "<path>.<YYYY-MM-DD_HH-MM-SS>" using
// VACUUM INTO and returns the new path. The copy is confirmed on disk before
// Snapshot returns; an existing file is never overwritten.
func (s *SettingsStore) Snapshot(ctx context.Context) (string, error) {
	target := s.db.Path() + "." + s.now().Format(snapshotTimeFormat)

	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("%w: %s already exists", ErrBackupFailed, target)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: checking %s: %w", ErrBackupFailed, target, err)
	}

	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", target); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBackupFailed, err)
	}

	info, err := os.Stat(target)
	if err != nil {
		return "", fmt.Errorf("%w: confirming %s: %w", ErrBackupFailed, target, err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("%w: %s is empty", ErrBackupFailed, target)
	}

	return target, nil
}
