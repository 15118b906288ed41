package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/sift/internal/services"
	"github.com/desertthunder/sift/internal/shared"
	"github.com/desertthunder/sift/internal/stats"
)

const (
	maxFetchWorkers  = 8
	defaultFetchRate = 5.0
)

// ScanResult contains everything a completed scan produced.
type ScanResult struct {
	Snapshot     *stats.Snapshot // Deduplicated, ranked view of the library
	ItemsFetched int             // Raw playlist entries fetched, before filtering and dedup
	Duration     time.Duration   // Wall time for the whole scan
}

// ScanOpts configures a single scan run.
type ScanOpts struct {
	Credentials map[string]string // Session credentials; access_token is required
	Workers     int               // Concurrent track fetchers (default 1 = sequential, cap 8)
	RateLimit   float64           // Fetch requests per second when Workers > 1 (default 5)
}

// Engine defines the long-running operations the CLI and TUI drive.
type Engine interface {
	// Run performs a full library scan by fetching every playlist, aggregating track and artist tables, enriching artist metadata, and ranking the result.
	Run(ctx context.Context, progress chan<- ProgressUpdate, opts ScanOpts) (*ScanResult, error)

	// DownloadImages fetches the artist images a snapshot references into a local directory and writes a manifest of the outcome.
	DownloadImages(ctx context.Context, progress chan<- ProgressUpdate, snapshot *stats.Snapshot, opts ImageDownloadOpts) (*ImageDownloadResult, error)
}

// ScanEngine implements Engine against a single music service.
type ScanEngine struct {
	service services.Service
}

// NewScanEngine creates a new ScanEngine over the provided service.
func NewScanEngine(svc services.Service) *ScanEngine {
	return &ScanEngine{service: svc}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ScanEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run performs a full library scan.
//
// The scan is all or nothing: any fetch failure discards accumulated state
// and returns the error. An absent access token is terminal before any
// provider call is made. Phases arrive in order ScanStarted, FetchPlaylists,
// FetchTracks (once per playlist), EnrichArtists, BuildSnapshot, then
// ScanCompleted or ScanFailed.
func (e *ScanEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts ScanOpts) (*ScanResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Credentials["access_token"] == "" {
		return nil, fmt.Errorf("%w: no access token; run 'sift auth login' first", shared.ErrNotAuthenticated)
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Workers > maxFetchWorkers {
		opts.Workers = maxFetchWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultFetchRate
	}

	started := time.Now()
	e.sendProgress(progress, scanStartedUpdate())

	if err := e.service.Authenticate(ctx, opts.Credentials); err != nil {
		return nil, e.fail(progress, err)
	}

	e.sendProgress(progress, fetchPlaylistsUpdate())
	playlists, err := e.service.FetchAllPlaylists(ctx)
	if err != nil {
		return nil, e.fail(progress, fmt.Errorf("failed to fetch playlists: %w", err))
	}
	e.sendProgress(progress, playlistsFoundUpdate(len(playlists)))

	tables := stats.NewTables()
	var fetched int
	if opts.Workers > 1 {
		fetched, err = e.fetchConcurrent(ctx, progress, playlists, tables, opts)
	} else {
		fetched, err = e.fetchSequential(ctx, progress, playlists, tables)
	}
	if err != nil {
		return nil, e.fail(progress, err)
	}

	e.sendProgress(progress, enrichArtistsUpdate(tables.TotalArtists()))
	if err := stats.Enrich(ctx, e.service, tables); err != nil {
		return nil, e.fail(progress, fmt.Errorf("failed to enrich artists: %w", err))
	}

	e.sendProgress(progress, buildSnapshotUpdate())
	snapshot := stats.BuildSnapshot(tables)

	e.sendProgress(progress, scanCompletedUpdate(snapshot))
	return &ScanResult{
		Snapshot:     snapshot,
		ItemsFetched: fetched,
		Duration:     time.Since(started),
	}, nil
}

// fetchSequential walks playlists one at a time, merging each one's items
// into the tables as soon as they arrive.
func (e *ScanEngine) fetchSequential(ctx context.Context, progress chan<- ProgressUpdate, playlists []services.Playlist, tables *stats.Tables) (int, error) {
	fetched := 0
	for i, playlist := range playlists {
		e.sendProgress(progress, fetchTracksUpdate(i+1, len(playlists), playlist.Name))

		items, err := e.service.FetchAllPlaylistTracks(ctx, playlist.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to fetch tracks for %q: %w", playlist.Name, err)
		}

		fetched += len(items)
		tables.MergePlaylist(items)
	}
	return fetched, nil
}

// fail reports the terminal phase and hands the error back unchanged.
func (e *ScanEngine) fail(progress chan<- ProgressUpdate, err error) error {
	e.sendProgress(progress, scanFailedUpdate(err))
	return err
}
