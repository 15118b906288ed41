package tasks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/sift/internal/shared"
	"github.com/desertthunder/sift/internal/stats"
	"golang.org/x/time/rate"
)

// ImageDownloadOpts contains configuration for bulk artist image downloads.
type ImageDownloadOpts struct {
	OutputDir  string       // Target directory (default: artist_images_{epoch})
	NumWorkers int          // Concurrent downloads (default: 5, cap 10)
	RateLimit  float64      // Requests per second (default: 5)
	Client     *http.Client // HTTP client override, mainly for testing
}

// ImageDownloadResult summarizes a bulk artist image download.
type ImageDownloadResult struct {
	TotalImages     int           `json:"total_images"`
	Downloaded      int           `json:"downloaded"`
	Failed          int           `json:"failed"`
	Skipped         int           `json:"skipped"`
	OutputDirectory string        `json:"output_directory"`
	ManifestPath    string        `json:"manifest_path,omitempty"`
	Results         []ImageResult `json:"results"`
}

// ImageResult records the outcome for a single artist image.
type ImageResult struct {
	ArtistID   string `json:"artist_id"`
	ArtistName string `json:"artist_name"`
	URL        string `json:"url"`
	File       string `json:"file,omitempty"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

type imageJob struct {
	artistID   string
	artistName string
	url        string
}

// DownloadImages downloads the artist images a snapshot references, one file
// per artist, using a worker pool with rate limiting and progress tracking.
//
// Artists without an image URL are skipped, failed downloads are recorded
// rather than aborting the batch, and a manifest file summarizing the
// outcome is written into the output directory.
func (e *ScanEngine) DownloadImages(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	snapshot *stats.Snapshot,
	opts ImageDownloadOpts,
) (*ImageDownloadResult, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("%w: nothing to download images for", shared.ErrNoSnapshot)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("artist_images_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ImageDownloadResult{
		OutputDirectory: opts.OutputDir,
		Results:         make([]ImageResult, 0, len(snapshot.ArtistTable)),
	}

	jobs := make(chan imageJob, len(snapshot.ArtistTable))
	results := make(chan ImageResult, len(snapshot.ArtistTable))

	for _, row := range snapshot.ArtistTable {
		if row.ImageURL == nil || *row.ImageURL == "" {
			result.Skipped++
			continue
		}
		jobs <- imageJob{artistID: row.ArtistID, artistName: row.ArtistName, url: *row.ImageURL}
		result.TotalImages++
	}
	close(jobs)

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.downloadWorker(ctx, &wg, limiter, jobs, results, opts)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.Downloaded++
			e.sendProgress(progress, imageCompletedUpdate(completed, result.TotalImages, res.ArtistName))
		} else {
			result.Failed++
			e.sendProgress(progress, imageFailedUpdate(completed, result.TotalImages, res.ArtistName, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "image_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("download completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("download completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// downloadWorker is a worker goroutine that downloads images from the jobs channel.
func (e *ScanEngine) downloadWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan imageJob,
	results chan<- ImageResult,
	opts ImageDownloadOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := limiter.Wait(ctx); err != nil {
			return
		}

		results <- e.downloadImage(ctx, job, opts)
	}
}

// downloadImage fetches a single artist image onto disk.
func (e *ScanEngine) downloadImage(ctx context.Context, job imageJob, opts ImageDownloadOpts) ImageResult {
	result := ImageResult{
		ArtistID:   job.artistID,
		ArtistName: job.artistName,
		URL:        job.url,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.url, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	resp, err := opts.Client.Do(req)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		result.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		return result
	}

	path := filepath.Join(opts.OutputDir, job.artistID+imageExtension(resp.Header.Get("Content-Type")))
	file, err := os.Create(path)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		result.Error = err.Error()
		return result
	}
	if err := file.Close(); err != nil {
		result.Error = err.Error()
		return result
	}

	result.File = path
	result.Success = true
	return result
}

// imageExtension picks a file extension from the response content type.
// Spotify image URLs carry no extension of their own.
func imageExtension(contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "gif"):
		return ".gif"
	case strings.Contains(contentType, "webp"):
		return ".webp"
	default:
		return ".jpg"
	}
}
