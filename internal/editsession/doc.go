// Package editsession implements the logisettings commands on top of the
// settings model and four narrow collaborators:
//
//   - Store: loads and saves the raw settings payload
//   - Backup: snapshots the store before any write
//   - Editor: lets the user edit the payload
//   - Companion: tells Logi Options+ to reload after a write
//
// Each command is one load, at most one save. A write is always preceded by
// a confirmed backup, and a failed backup means no write. Restarting the
// companion is best effort.
//
// The collaborators are interfaces so that the commands can be tested
// without a database, an editor or a running Logi Options+.
package editsession
