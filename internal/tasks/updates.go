package tasks

import (
	"fmt"

	"github.com/desertthunder/sift/internal/stats"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ScanStarted Phase = iota
	FetchPlaylists
	FetchTracks
	EnrichArtists
	BuildSnapshot
	ScanCompleted
	ScanFailed
	FetchImages
)

func (p Phase) String() string {
	switch p {
	case ScanStarted:
		return "scan_started"
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchTracks:
		return "fetch_tracks"
	case EnrichArtists:
		return "enrich_artists"
	case BuildSnapshot:
		return "build_snapshot"
	case ScanCompleted:
		return "scan_completed"
	case ScanFailed:
		return "scan_failed"
	case FetchImages:
		return "fetch_images"
	default:
		return ""
	}
}

func scanStartedUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanStarted,
		Step:    1,
		Total:   1,
		Message: "Starting library scan...",
	}
}

func fetchPlaylistsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    1,
		Total:   1,
		Message: "Fetching playlists from Spotify...",
	}
}

func playlistsFoundUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d playlists", count),
		Data:    count,
	}
}

func fetchTracksUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, name),
	}
}

func enrichArtistsUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EnrichArtists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching metadata for %d artists...", count),
	}
}

func buildSnapshotUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildSnapshot,
		Step:    1,
		Total:   1,
		Message: "Computing rankings...",
	}
}

func scanCompletedUpdate(snapshot *stats.Snapshot) ProgressUpdate {
	return ProgressUpdate{
		Phase: ScanCompleted,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("✓ Scan complete: %d playlists, %d artists, %d unique tracks",
			snapshot.Totals.TotalPlaylists,
			snapshot.Totals.TotalArtists,
			snapshot.Totals.TotalUniqueTracks),
		Data: snapshot,
	}
}

func scanFailedUpdate(err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanFailed,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("✗ Scan failed: %v", err),
	}
}

func imageCompletedUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchImages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, name),
	}
}

func imageFailedUpdate(step, total int, name, errMsg string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchImages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, name, errMsg),
	}
}
