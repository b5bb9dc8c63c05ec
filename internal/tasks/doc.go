// Package tasks orchestrates the two stages of a playlist transfer with real-time progress reporting.
//
// # Core Operations
//
// The [SyncEngine] interface defines three operations:
//
//  1. [SyncEngine.Extract] : playlist page → persisted record set
//     - Launches a browser through a [Launcher] and runs the scraper
//     - Writes the records as CSV (the import input) and a JSON backup
//
//  2. [SyncEngine.Import] : record set → catalog playlist
//     - Creates the destination playlist, searches each record once
//     - Writes unmatched records to "<name>_unmatched.csv"
//     - Commit gate: below the match threshold the destination is deleted and a
//     [*GateError] returned; otherwise matched tracks are added in batches of 100
//
//  3. [SyncEngine.Run] : both stages, each toggled by configuration
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default so reporting never blocks a stage.
//
// # Run History
//
// The optional [RunRecorder] persists each stage's outcome
// (repositories.RunStore). Recording errors are logged and never fail a stage.
package tasks
