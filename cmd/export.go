package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/sift/internal/formatter"
	"github.com/desertthunder/sift/internal/models"
	"github.com/desertthunder/sift/internal/shared"
	"github.com/desertthunder/sift/internal/stats"
	"github.com/desertthunder/sift/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export writes the snapshot as a report file, optionally downloading the
// artist images it references alongside.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	r.applyVerbosity(cmd)
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	snapshot, _, err := r.resolveSnapshot(cmd.String("input"), cmd.String("scan"))
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(snapshot, cmd.String("format"), cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("report exported", "path", path, "format", cmd.String("format"))
	r.writePlain("✓ Report written to %s\n", path)

	if !cmd.Bool("images") {
		return nil
	}

	dir := strings.TrimSuffix(path, filepath.Ext(path)) + "_images"

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if update.Phase == tasks.FetchImages {
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	r.writePlain("\n📥 Downloading artist images...\n")
	result, err := r.engine.DownloadImages(ctx, progressCh, snapshot, tasks.ImageDownloadOpts{
		OutputDir: dir,
		Client:    r.httpClient,
	})
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n✓ Images saved to %s\n", result.OutputDirectory)
	r.writePlain("Downloaded: %d, Skipped: %d, Failed: %d\n", result.Downloaded, result.Skipped, result.Failed)

	if result.Failed > 0 {
		r.writePlain("\nFailed downloads:\n")
		for _, image := range result.Results {
			if !image.Success {
				r.writePlain("  - %s: %s\n", image.ArtistName, image.Error)
			}
		}
	}

	return nil
}

// Import validates an exported snapshot file and stores it as a new scan.
// The file's bytes are stored as-is, so a later export round-trips.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	r.applyVerbosity(cmd)
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: path to an exported snapshot file", shared.ErrMissingArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	snapshot, err := stats.ParseSnapshot(data)
	if err != nil {
		return err
	}

	if _, err := r.database(); err != nil {
		return err
	}

	scan := models.NewScan(0, snapshot.Totals.TotalPlaylists, snapshot.Totals.TotalArtists, snapshot.Totals.TotalUniqueTracks, string(data))
	if err := r.scans.Create(scan); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	r.writePlain("✓ Imported %s as scan %s\n", path, scan.ID())
	r.writePlain("Playlists: %d, Artists: %d, Unique tracks: %d\n", snapshot.Totals.TotalPlaylists, snapshot.Totals.TotalArtists, snapshot.Totals.TotalUniqueTracks)

	return nil
}

// exportCommand handles report exports.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the snapshot as a JSON, CSV, Markdown, or text report",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Report format: json, csv, markdown, or text",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path",
			},
			&cli.BoolFlag{
				Name:  "images",
				Usage: "Also download the artist images the snapshot references",
			},
			&cli.StringFlag{
				Name:  "scan",
				Usage: "Scan ID to export (default: latest)",
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Read the snapshot from an exported JSON file",
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
		Action: r.Export,
	}
}

// importCommand handles snapshot imports.
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Store an exported snapshot file as a new scan",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "file",
			},
		},
		Flags: []cli.Flag{
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
		Action: r.Import,
	}
}
