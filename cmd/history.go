package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/sift/internal/models"
	"github.com/urfave/cli/v3"
)

// scanSummary is the JSON shape of one stored scan without its snapshot blob.
type scanSummary struct {
	ID                string    `json:"id"`
	Sequence          int       `json:"sequence"`
	TotalPlaylists    int       `json:"totalPlaylists"`
	TotalArtists      int       `json:"totalArtists"`
	TotalUniqueTracks int       `json:"totalUniqueTracks"`
	CreatedAt         time.Time `json:"createdAt"`
}

func summarize(scan *models.Scan) scanSummary {
	return scanSummary{
		ID:                scan.ID(),
		Sequence:          scan.Sequence(),
		TotalPlaylists:    scan.TotalPlaylists(),
		TotalArtists:      scan.TotalArtists(),
		TotalUniqueTracks: scan.TotalUniqueTracks(),
		CreatedAt:         scan.CreatedAt(),
	}
}

// HistoryList prints stored scans newest-first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	r.applyVerbosity(cmd)
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	if _, err := r.database(); err != nil {
		return err
	}

	criteria := map[string]any{}
	if limit := cmd.Int("limit"); limit > 0 {
		criteria["limit"] = limit
	}

	scans, err := r.scans.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		summaries := make([]scanSummary, 0, len(scans))
		for _, scan := range scans {
			summaries = append(summaries, summarize(scan))
		}
		return r.writeJSON(summaries, cmd.Bool("pretty"))
	}

	if len(scans) == 0 {
		r.writePlain("No scans stored yet. Run 'sift scan' first.\n")
		return nil
	}

	for _, scan := range scans {
		r.writePlain("#%d %s\n", scan.Sequence(), scan.ID())
		r.writePlain("   Scanned: %s\n", scan.CreatedAt().Format(time.RFC1123))
		r.writePlain("   Playlists: %d, Artists: %d, Unique tracks: %d\n", scan.TotalPlaylists(), scan.TotalArtists(), scan.TotalUniqueTracks())
	}

	return nil
}

// HistoryShow prints one stored scan, the latest when no ID is given.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	r.applyVerbosity(cmd)
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	snapshot, scan, err := r.resolveSnapshot("", cmd.StringArg("id"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(snapshot, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Scan #%d", scan.Sequence()))
	r.writePlain("ID: %s\n", scan.ID())
	r.writePlain("Scanned: %s\n", scan.CreatedAt().Format(time.RFC1123))
	r.writePlain("Playlists: %d\n", snapshot.Totals.TotalPlaylists)
	r.writePlain("Artists: %d\n", snapshot.Totals.TotalArtists)
	r.writePlain("Unique tracks: %d\n", snapshot.Totals.TotalUniqueTracks)

	if len(snapshot.TopArtistsBySongs) > 0 {
		r.writePlainln("Top artists by songs:")
		for i, artist := range snapshot.TopArtistsBySongs {
			r.writePlain("%d. %s - %d songs (%.1f%%)\n", i+1, artist.ArtistName, artist.Value, artist.Percent)
		}
	}

	return nil
}

// HistoryClear removes every stored scan and the review decisions tied to them.
func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	r.applyVerbosity(cmd)
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	if _, err := r.database(); err != nil {
		return err
	}

	scans, err := r.scans.List(map[string]any{})
	if err != nil {
		return err
	}

	if err := r.decisions.DeleteAll(); err != nil {
		return err
	}
	if err := r.scans.DeleteAll(); err != nil {
		return err
	}

	r.writePlain("✓ Cleared %d stored scans\n", len(scans))
	return nil
}

// historyCommand handles stored scan management.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Manage stored scans",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored scans newest-first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of scans to show",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
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
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show one stored scan (default: latest)",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the full snapshot as JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
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
				Action: r.HistoryShow,
			},
			{
				Name:  "clear",
				Usage: "Delete every stored scan and its review decisions",
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
				Action: r.HistoryClear,
			},
		},
	}
}
