package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// drivers lists every driver the package registers.
var drivers = []string{driverCGO, driverPureGo}

// settingsRow is a row of the data table used to build fixtures.
type settingsRow struct {
	id   int64
	file []byte
}

// createSettingsDB writes a Logi Options+ shaped database with the given rows.
func createSettingsDB(t *testing.T, driver string, rows ...settingsRow) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "settings.db")
	raw, err := sql.Open(driver, dbPath)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer raw.Close() //nolint:errcheck // Test cleanup

	if _, err := raw.Exec(`CREATE TABLE data (_id INTEGER PRIMARY KEY, file BLOB)`); err != nil {
		t.Fatalf("CREATE TABLE error = %v", err)
	}
	for _, row := range rows {
		if _, err := raw.Exec(`INSERT INTO data (_id, file) VALUES (?, ?)`, row.id, row.file); err != nil {
			t.Fatalf("INSERT error = %v", err)
		}
	}
	return dbPath
}

func openTestDB(t *testing.T, driver, dbPath string) *DB {
	t.Helper()

	db, err := Open(context.Background(), Config{
		Path:        dbPath,
		Driver:      driver,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	return db
}

// TestOpen verifies database connection establishment.
func TestOpen(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			dbPath := createSettingsDB(t, driver, settingsRow{id: 1, file: []byte(`{}`)})

			db := openTestDB(t, driver, dbPath)
			if db.Path() != dbPath {
				t.Errorf("Path() = %v, want %v", db.Path(), dbPath)
			}
		})
	}

	t.Run("missing file is not created", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "missing.db")

		_, err := Open(context.Background(), Config{Path: dbPath})
		if !errors.Is(err, ErrStorage) {
			t.Fatalf("Open() error = %v, want ErrStorage", err)
		}
		if _, statErr := os.Stat(dbPath); !os.IsNotExist(statErr) {
			t.Error("Open() must not create a database file")
		}
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := Open(context.Background(), Config{})
		if !errors.Is(err, ErrStorage) {
			t.Errorf("Open() error = %v, want ErrStorage", err)
		}
	})

	t.Run("unsupported driver", func(t *testing.T) {
		dbPath := createSettingsDB(t, driverCGO)
		_, err := Open(context.Background(), Config{Path: dbPath, Driver: "postgres"})
		if err == nil || !strings.Contains(err.Error(), "unsupported driver") {
			t.Errorf("Open() error = %v, want unsupported driver", err)
		}
	})
}

func TestConnectionString(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		wantDriver string
		wantConn   string
	}{
		{
			name:       "default driver",
			cfg:        Config{Path: "/data/settings.db", BusyTimeout: 5},
			wantDriver: "sqlite3",
			wantConn:   "file:/data/settings.db?mode=rw&_busy_timeout=5000",
		},
		{
			name:       "pure go driver",
			cfg:        Config{Path: "/data/settings.db", Driver: "sqlite", BusyTimeout: 2},
			wantDriver: "sqlite",
			wantConn:   "file:/data/settings.db?mode=rw&_pragma=busy_timeout(2000)",
		},
		{
			name:       "path with reserved characters",
			cfg:        Config{Path: "/data/what?#50%.db", Driver: "sqlite3"},
			wantDriver: "sqlite3",
			wantConn:   "file:/data/what%3f%2350%25.db?mode=rw&_busy_timeout=0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver, conn, err := connectionString(tt.cfg)
			if err != nil {
				t.Fatalf("connectionString() error = %v", err)
			}
			if driver != tt.wantDriver {
				t.Errorf("driver = %q, want %q", driver, tt.wantDriver)
			}
			if conn != tt.wantConn {
				t.Errorf("conn = %q, want %q", conn, tt.wantConn)
			}
		})
	}
}

// TestClose verifies graceful shutdown.
func TestClose(t *testing.T) {
	dbPath := createSettingsDB(t, driverCGO)
	db, err := Open(context.Background(), Config{Path: dbPath})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	// Second close should not error (nil check)
	db.DB = nil
	if err := db.Close(); err != nil {
		t.Errorf("Close() on nil DB error = %v", err)
	}
}

func TestSettingsStore_Load(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			payload := []byte(`{"profile_keys": []}`)
			db := openTestDB(t, driver, createSettingsDB(t, driver, settingsRow{id: 1, file: payload}))

			got, err := NewSettingsStore(db).Load(context.Background())
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if string(got) != string(payload) {
				t.Errorf("Load() = %s, want %s", got, payload)
			}
		})
	}
}

func TestSettingsStore_LoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		rows    []settingsRow
		wantErr error
	}{
		{
			name:    "empty table",
			wantErr: ErrUnexpectedRowCount,
		},
		{
			name:    "two rows",
			rows:    []settingsRow{{id: 1, file: []byte(`{}`)}, {id: 2, file: []byte(`{}`)}},
			wantErr: ErrUnexpectedRowCount,
		},
		{
			name:    "wrong row id",
			rows:    []settingsRow{{id: 7, file: []byte(`{}`)}},
			wantErr: ErrUnexpectedRowID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openTestDB(t, driverCGO, createSettingsDB(t, driverCGO, tt.rows...))

			_, err := NewSettingsStore(db).Load(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrStorage) {
				t.Errorf("Load() error = %v, want it to wrap ErrStorage", err)
			}
		})
	}
}

func TestSettingsStore_LoadMissingTable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "other.db")
	raw, err := sql.Open(driverCGO, dbPath)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	if _, err := raw.Exec(`CREATE TABLE unrelated (id INTEGER)`); err != nil {
		t.Fatalf("CREATE TABLE error = %v", err)
	}
	raw.Close() //nolint:errcheck // Test cleanup

	db := openTestDB(t, driverCGO, dbPath)
	_, err = NewSettingsStore(db).Load(context.Background())
	if !errors.Is(err, ErrStorage) {
		t.Errorf("Load() error = %v, want ErrStorage", err)
	}
}

func TestSettingsStore_Save(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			db := openTestDB(t, driver, createSettingsDB(t, driver, settingsRow{id: 1, file: []byte(`{"old": true}`)}))
			store := NewSettingsStore(db)
			ctx := context.Background()

			if err := store.Save(ctx, []byte(`{"new": true}`)); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := store.Load(ctx)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if string(got) != `{"new": true}` {
				t.Errorf("Load() after Save() = %s", got)
			}
		})
	}
}

func TestSettingsStore_SaveWithoutSettingsRow(t *testing.T) {
	db := openTestDB(t, driverCGO, createSettingsDB(t, driverCGO, settingsRow{id: 2, file: []byte(`{}`)}))

	err := NewSettingsStore(db).Save(context.Background(), []byte(`{}`))
	if !errors.Is(err, ErrNoRowUpdated) {
		t.Errorf("Save() error = %v, want ErrNoRowUpdated", err)
	}
}

func TestSettingsStore_Snapshot(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			payload := []byte(`{"profile_keys": ["p"]}`)
			dbPath := createSettingsDB(t, driver, settingsRow{id: 1, file: payload})
			store := NewSettingsStore(openTestDB(t, driver, dbPath))
			store.now = func() time.Time {
				return time.Date(2026, 10, 19, 8, 30, 5, 0, time.Local)
			}
			ctx := context.Background()

			backup, err := store.Snapshot(ctx)
			if err != nil {
				t.Fatalf("Snapshot() error = %v", err)
			}
			if want := dbPath + ".2026-10-19_08-30-05"; backup != want {
				t.Errorf("Snapshot() = %q, want %q", backup, want)
			}

			// Writes after the snapshot must not reach it.
			if err := store.Save(ctx, []byte(`{}`)); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			copied, err := NewSettingsStore(openTestDB(t, driver, backup)).Load(ctx)
			if err != nil {
				t.Fatalf("Load() from snapshot error = %v", err)
			}
			if string(copied) != string(payload) {
				t.Errorf("snapshot payload = %s, want %s", copied, payload)
			}
		})
	}
}

func TestSettingsStore_SnapshotNeverOverwrites(t *testing.T) {
	dbPath := createSettingsDB(t, driverCGO, settingsRow{id: 1, file: []byte(`{}`)})
	store := NewSettingsStore(openTestDB(t, driverCGO, dbPath))
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)
	store.now = func() time.Time { return fixed }

	existing := dbPath + ".2026-01-02_03-04-05"
	if err := os.WriteFile(existing, []byte("keep me"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := store.Snapshot(context.Background())
	if !errors.Is(err, ErrBackupFailed) {
		t.Fatalf("Snapshot() error = %v, want ErrBackupFailed", err)
	}

	content, err := os.ReadFile(existing)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(content) != "keep me" {
		t.Error("Snapshot() overwrote an existing file")
	}
}

func TestSettingsStore_SnapshotUnwritableDirectory(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "settings.db")
	src := createSettingsDB(t, driverCGO, settingsRow{id: 1, file: []byte(`{}`)})
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if err := os.WriteFile(dbPath, data, 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	store := NewSettingsStore(openTestDB(t, driverCGO, dbPath))
	if err := os.Chmod(dir, 0500); err != nil {
		t.Fatalf("Chmod() error = %v", err)
	}
	t.Cleanup(func() { os.Chmod(dir, 0700) }) //nolint:errcheck // Test cleanup

	_, err = store.Snapshot(context.Background())
	if !errors.Is(err, ErrBackupFailed) {
		t.Errorf("Snapshot() error = %v, want ErrBackupFailed", err)
	}
}
