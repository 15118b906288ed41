package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/sift/internal/models"
	"github.com/desertthunder/sift/internal/services"
	"github.com/desertthunder/sift/internal/shared"
	"github.com/desertthunder/sift/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Scan fetches the full library, aggregates the snapshot, and stores it.
func (r *Runner) Scan(ctx context.Context, cmd *cli.Command) error {
	r.applyVerbosity(cmd)
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	workers := cmd.Int("workers")
	if workers == 0 {
		workers = r.config.Scan.Workers
	}
	rate := cmd.Float("rate")
	if rate == 0 {
		rate = r.config.Scan.RateLimit
	}

	if svc, ok := r.service.(*services.SpotifyService); ok {
		svc.SetPageSizes(r.config.Scan.PlaylistPageSize, r.config.Scan.TrackPageSize)
		svc.SetTokenRefreshCallback(r.storeRefreshedToken)
	}

	credentials, err := r.sessionCredentials(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("starting library scan", "workers", workers, "rate", rate)

	// Progress channel and goroutine to surface updates as they arrive.
	// The done channel guarantees all updates are written before the summary.
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.ScanStarted:
				r.writePlain("%s\n", update.Message)
			case tasks.FetchPlaylists:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.FetchTracks:
				r.writePlain("   %s\n", update.Message)
			case tasks.EnrichArtists:
				r.writePlain("\n🔍 %s\n", update.Message)
			case tasks.BuildSnapshot:
				r.writePlain("\n📊 %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.Run(ctx, progressCh, tasks.ScanOpts{
		Credentials: credentials,
		Workers:     workers,
		RateLimit:   rate,
	})
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	snapshot := result.Snapshot

	r.writePlain("\n═══════════════════════════════════════\n")
	r.writePlain("Scan Complete!\n")
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("Playlists: %d\n", snapshot.Totals.TotalPlaylists)
	r.writePlain("Artists: %d\n", snapshot.Totals.TotalArtists)
	r.writePlain("Unique tracks: %d\n", snapshot.Totals.TotalUniqueTracks)
	r.writePlain("Items fetched: %d\n", result.ItemsFetched)
	r.writePlain("Duration: %s\n", result.Duration.Round(time.Millisecond))

	data, err := shared.MarshalJSON(snapshot, true)
	if err != nil {
		return err
	}

	if !cmd.Bool("no-save") {
		if _, err := r.database(); err != nil {
			return err
		}

		scan := models.NewScan(0, snapshot.Totals.TotalPlaylists, snapshot.Totals.TotalArtists, snapshot.Totals.TotalUniqueTracks, string(data))
		if err := r.scans.Create(scan); err != nil {
			return fmt.Errorf("failed to store snapshot: %w", err)
		}

		r.writePlain("\n✓ Snapshot stored as scan %s\n", scan.ID())
	}

	if output := cmd.String("output"); output != "" {
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("failed to write snapshot file: %w", err)
		}
		r.writePlain("✓ Snapshot written to %s\n", output)
	}

	if cmd.Bool("json") {
		return r.writeJSON(snapshot, cmd.Bool("pretty"))
	}

	return nil
}

// scanCommand handles the library scan.
func scanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "Scan the full Spotify library and build a stats snapshot",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Concurrent track fetchers (max 8)",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Fetch requests per second when workers > 1",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the snapshot as JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the snapshot JSON to a file",
			},
			&cli.BoolFlag{
				Name:  "no-save",
				Usage: "Skip storing the snapshot in the database",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: r.Scan,
	}
}
