package database

import "errors"

// Domain errors for the database package.
//
// Every storage failure wraps ErrStorage; backup failures wrap
// ErrBackupFailed. Use errors.Is() to check them:
//
//	if errors.Is(err, database.ErrUnexpectedRowCount) {
//	    // not a Logi Options+ settings database
//	}
var (
	// ErrStorage is wrapped by every failure to read or write the settings store.
	ErrStorage = errors.New("database: storage error")

	// ErrUnexpectedRowCount is returned when the data table does not hold exactly one row.
	ErrUnexpectedRowCount = errors.New("database: settings table must contain exactly one row")

	// ErrUnexpectedRowID is returned when the settings row has an unexpected _id.
	ErrUnexpectedRowID = errors.New("database: unexpected settings row id")

	// ErrNoRowUpdated is returned when a save did not update the settings row.
	ErrNoRowUpdated = errors.New("database: settings row not updated")

	// ErrBackupFailed is returned when a snapshot could not be created or confirmed.
	ErrBackupFailed = errors.New("database: backup failed")
)
