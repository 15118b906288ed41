// Package stats implements the playlist aggregation engine.
//
// It normalizes raw playlist items, deduplicates tracks across playlists,
// accumulates per-artist and per-track counts in [Tables], and derives the
// ranked views and percentage shares that make up a scan's [Snapshot].
// State is owned by a single scan invocation; nothing persists between
// scans.
package stats
