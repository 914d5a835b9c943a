// Package store persists flattened entity snapshots in SQLite.
//
// Every Put appends one row: the entity name, a caller-chosen key, the
// canonical JSON of the flattened values and a content hash computed with
// ir.SnapshotHash. Rows are never updated. Ordering uses a logical seq
// column, never timestamps, so reads are deterministic:
//
//	ORDER BY seq ASC, id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON
package store
