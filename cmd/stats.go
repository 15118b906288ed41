package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/sift/internal/shared"
	"github.com/desertthunder/sift/internal/stats"
	"github.com/urfave/cli/v3"
)

// StatsTotals prints the library's deduplicated totals.
func (r *Runner) StatsTotals(ctx context.Context, cmd *cli.Command) error {
	r.applyVerbosity(cmd)
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	snapshot, _, err := r.resolveSnapshot(cmd.String("input"), cmd.String("scan"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(snapshot.Totals, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Library Totals")
	r.writePlain("Playlists: %d\n", snapshot.Totals.TotalPlaylists)
	r.writePlain("Artists: %d\n", snapshot.Totals.TotalArtists)
	r.writePlain("Unique tracks: %d\n", snapshot.Totals.TotalUniqueTracks)

	return nil
}

// StatsTop prints one of the top-5 rankings: songs, playlists, or tracks.
func (r *Runner) StatsTop(ctx context.Context, cmd *cli.Command) error {
	r.applyVerbosity(cmd)
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	kind := cmd.StringArg("kind")
	if kind == "" {
		kind = "songs"
	}

	snapshot, _, err := r.resolveSnapshot(cmd.String("input"), cmd.String("scan"))
	if err != nil {
		return err
	}

	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	switch kind {
	case "songs":
		if useJSON {
			return r.writeJSON(snapshot.TopArtistsBySongs, pretty)
		}
		r.writePlainHeader("Top Artists by Songs")
		for i, artist := range snapshot.TopArtistsBySongs {
			r.writePlain("%d. %s - %d songs (%.1f%%)\n", i+1, artist.ArtistName, artist.Value, artist.Percent)
		}
	case "playlists":
		if useJSON {
			return r.writeJSON(snapshot.TopArtistsByPlaylists, pretty)
		}
		r.writePlainHeader("Top Artists by Playlists")
		for i, artist := range snapshot.TopArtistsByPlaylists {
			r.writePlain("%d. %s - in %d playlists (%.1f%%)\n", i+1, artist.ArtistName, artist.Value, artist.Percent)
		}
	case "tracks":
		if useJSON {
			return r.writeJSON(snapshot.TopTracksByPlaylists, pretty)
		}
		r.writePlainHeader("Top Tracks by Playlists")
		for i, track := range snapshot.TopTracksByPlaylists {
			r.writePlain("%d. %s - %s - in %d playlists (%.1f%%)\n", i+1, track.MainArtistName, track.TrackName, track.PlaylistCount, track.Percent)
		}
	default:
		return fmt.Errorf("%w: unknown ranking '%s' (must be 'songs', 'playlists', or 'tracks')", shared.ErrInvalidArgument, kind)
	}

	return nil
}

// StatsTable prints the full artist table sorted by the requested column.
func (r *Runner) StatsTable(ctx context.Context, cmd *cli.Command) error {
	r.applyVerbosity(cmd)
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	column := cmd.String("sort")
	switch column {
	case stats.ColumnName, stats.ColumnSongs, stats.ColumnPlaylists:
	default:
		return fmt.Errorf("%w: unknown sort column '%s' (must be 'name', 'songs', or 'playlists')", shared.ErrInvalidFlag, column)
	}

	snapshot, _, err := r.resolveSnapshot(cmd.String("input"), cmd.String("scan"))
	if err != nil {
		return err
	}

	rows := make([]stats.ArtistRow, len(snapshot.ArtistTable))
	copy(rows, snapshot.ArtistTable)
	stats.SortArtistRows(rows, column, cmd.Bool("desc"))

	if cmd.Bool("json") {
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	r.writePlain("%-30s %8s %7s %10s %7s\n", "Artist", "Songs", "%", "Playlists", "%")
	for _, row := range rows {
		r.writePlain("%-30s %8d %6.1f%% %10d %6.1f%%\n", row.ArtistName, row.SongCount, row.SongPercent, row.PlaylistCount, row.PlaylistPercent)
	}

	return nil
}

// statsCommand handles snapshot statistics queries.
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Query stored library statistics",
		Commands: []*cli.Command{
			{
				Name:  "totals",
				Usage: "Show deduplicated library totals",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
					&cli.StringFlag{
						Name:  "scan",
						Usage: "Scan ID to read (default: latest)",
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
				Action: r.StatsTotals,
			},
			{
				Name:  "top",
				Usage: "Show a top-5 ranking: songs (default), playlists, or tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "kind",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
					&cli.StringFlag{
						Name:  "scan",
						Usage: "Scan ID to read (default: latest)",
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
				Action: r.StatsTop,
			},
			{
				Name:  "table",
				Usage: "Show the full per-artist table",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "sort",
						Usage: "Sort column: name, songs, or playlists",
						Value: "songs",
					},
					&cli.BoolFlag{
						Name:  "desc",
						Usage: "Sort descending",
						Value: true,
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
						Name:  "scan",
						Usage: "Scan ID to read (default: latest)",
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
				Action: r.StatsTable,
			},
		},
	}
}
