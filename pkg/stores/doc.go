// Package stores provides the optional run-history persistence layer.
// It includes SQLite-based storage with WAL mode and embedded schema
// migrations, recording each reconciliation run and its per-bucket
// outcomes for later inspection.
package stores
