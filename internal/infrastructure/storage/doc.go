// Package storage persists the whole schema document as a single blob.
//
// Backends:
//   - memory: process-local, used by tests and ephemeral servers
//   - file: JSON or YAML by extension, written via temp-file rename
//   - bolt: bucket "schemas" in a bbolt database
//   - sqlite: table "schemas" in a SQLite database (modernc, pure Go)
//
// Repository layers encoding, optional zstd compression and metrics over a
// Store. Watcher turns external edits of a schema file into raw-text updates.
package storage
