package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/sift/internal/services"
	"github.com/desertthunder/sift/internal/stats"
	"golang.org/x/time/rate"
)

// trackFetchResult carries one playlist's complete item set from a fetch
// worker back to the engine goroutine.
type trackFetchResult struct {
	playlist services.Playlist
	items    []services.PlaylistItem
	err      error
}

// fetchConcurrent fans track fetching out to a worker pool gated by a shared
// rate limiter. Workers only fetch; every merge into the tables happens here
// on the calling goroutine, so the accumulator keeps a single mutator and
// per-playlist increments land exactly once regardless of arrival order.
//
// The first failed fetch cancels the pool and aborts the whole run.
func (e *ScanEngine) fetchConcurrent(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	playlists []services.Playlist,
	tables *stats.Tables,
	opts ScanOpts,
) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan services.Playlist, len(playlists))
	results := make(chan trackFetchResult, len(playlists))

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go e.fetchWorker(ctx, &wg, limiter, jobs, results)
	}

	for _, playlist := range playlists {
		jobs <- playlist
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	fetched := 0
	merged := 0
	var firstErr error
	for res := range results {
		if firstErr != nil {
			continue // Pool is draining after the first failure
		}
		if res.err != nil {
			firstErr = fmt.Errorf("failed to fetch tracks for %q: %w", res.playlist.Name, res.err)
			cancel()
			continue
		}

		merged++
		e.sendProgress(progress, fetchTracksUpdate(merged, len(playlists), res.playlist.Name))
		fetched += len(res.items)
		tables.MergePlaylist(res.items)
	}

	if firstErr != nil {
		return 0, firstErr
	}
	// Workers bail out without posting a result when the caller's context
	// ends; a clean error beats returning a partially merged scan.
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return fetched, nil
}

// fetchWorker pulls playlists off the jobs channel and fetches their full
// track listings. Aggregation is not this goroutine's job.
func (e *ScanEngine) fetchWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan services.Playlist,
	results chan<- trackFetchResult,
) {
	defer wg.Done()

	for playlist := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := limiter.Wait(ctx); err != nil {
			return
		}

		items, err := e.service.FetchAllPlaylistTracks(ctx, playlist.ID)
		results <- trackFetchResult{playlist: playlist, items: items, err: err}
	}
}
