// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Sessions and scans use soft deletes via deleted_at timestamps and exclude deleted records from
// queries by default; decisions are hard-deleted because each (scan, artist) pair is unique and
// gets rewritten wholesale when a review is redone.
//
// Key Implementations:
//   - [SessionRepository] : OAuth token persistence; the newest session answers for the credential provider
//   - [ScanRepository] : Scan history with snapshot blobs and denormalized totals columns
//   - [DecisionRepository] : Review verdicts keyed by (scan, artist)
//
// Sequence numbers provide stable, human-readable ordering (e.g., scan #12, session #3) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
