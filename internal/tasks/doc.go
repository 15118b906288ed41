// Package tasks orchestrates library scans with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines two operations:
//
//  1. [Engine.Run] : Full library scan
//     - Fetches every playlist in the authenticated user's library
//     - Aggregates deduplicated track and artist tables per playlist
//     - Enriches artists with catalog metadata (display images)
//     - Ranks the result into a [stats.Snapshot]
//
//  2. [Engine.DownloadImages] : Bulk artist image download
//     - Fans downloads out to a rate-limited worker pool
//     - Writes each image next to the report and a manifest of the outcome
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Concurrency
//
// [ScanEngine.Run] fetches sequentially by default. With [ScanOpts.Workers]
// above one, playlist track fetching fans out to a worker pool gated by a
// shared rate limiter. Workers only fetch; every merge into the accumulator
// tables happens on the engine goroutine, so per-playlist increments land
// exactly once no matter how fetches interleave.
//
// # Implementation
//
// [ScanEngine] implements [Engine] with a single dependency on
// [services.Service], the provider's fetch surface.
package tasks
