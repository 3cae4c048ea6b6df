// Package history records worker runs in a small SQLite database so the
// CLI can list what was processed, when, and with which outcome.
//
// Each run is inserted as running when the pipeline starts and stamped with
// its final status (completed, cancelled, failed) when it ends. Runs left
// running by a crashed worker can be reaped to failed explicitly.
package history
