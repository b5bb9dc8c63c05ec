// Package repositories implements SQLite persistence for run history.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Runs support soft deletes via deleted_at timestamps and deleted runs are excluded from queries by default.
//
// Key Implementations:
//   - [RunRepository] : one row per extract or import stage, with status and counts
//   - [RunTrackRepository] : per-track outcome of a run, in source order
//   - [RunStore] : combines both and records stage results for the pipeline
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
