// submodule cmd contains command definitions and shared command helpers
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sift/internal/models"
	"github.com/desertthunder/sift/internal/services"
	"github.com/desertthunder/sift/internal/shared"
	"github.com/desertthunder/sift/internal/stats"
	"github.com/desertthunder/sift/internal/tasks"
	"github.com/urfave/cli/v3"
)

// applyVerbosity lowers the runner's log level when --verbose is set.
func (r *Runner) applyVerbosity(cmd *cli.Command) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
}

// reloadConfig reloads configuration when --config points somewhere other
// than the path the runner was built with. The Spotify service is rebuilt so
// new credentials take effect; a config without usable credentials keeps the
// existing service.
func (r *Runner) reloadConfig(cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" || path == r.configPath {
		return nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	config.ApplyEnv()

	r.config = config
	r.configPath = path

	if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
		svc.SetPageSizes(config.Scan.PlaylistPageSize, config.Scan.TrackPageSize)
		r.service = svc
		r.engine = tasks.NewScanEngine(svc)
	}

	return nil
}

// resolveSnapshot loads the snapshot a command operates on: an exported file
// when input is set, a stored scan by ID when scanID is set, the latest
// stored scan otherwise. The returned scan is nil when the snapshot came
// from a file.
func (r *Runner) resolveSnapshot(input, scanID string) (*stats.Snapshot, *models.Scan, error) {
	if input != "" {
		data, err := os.ReadFile(input)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read snapshot file: %w", err)
		}

		snapshot, err := stats.ParseSnapshot(data)
		if err != nil {
			return nil, nil, err
		}

		return snapshot, nil, nil
	}

	if _, err := r.database(); err != nil {
		return nil, nil, err
	}

	var (
		scan *models.Scan
		err  error
	)

	if scanID != "" {
		scan, err = r.scans.Get(scanID)
	} else {
		scan, err = r.scans.GetLatest()
	}

	if err != nil {
		return nil, nil, err
	}
	if scan == nil {
		return nil, nil, fmt.Errorf("%w: run 'sift scan' first", shared.ErrNoSnapshot)
	}

	snapshot, err := stats.ParseSnapshot([]byte(scan.Snapshot()))
	if err != nil {
		return nil, nil, err
	}

	return snapshot, scan, nil
}
