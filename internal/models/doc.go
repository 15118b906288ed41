// Package models defines domain entities and persistence interfaces for the sift library scanner.
//
// The package contains the persistent entities backing the CLI:
//   - [Session] : OAuth tokens for the Spotify Web API; the newest session answers for the credential provider
//   - [Scan] : One completed library scan, carrying its totals and exported snapshot JSON
//   - [Decision] : One review verdict (keep or remove) for an artist within a scan
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
