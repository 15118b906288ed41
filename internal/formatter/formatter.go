// package formatter renders library snapshots to exportable formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/sift/internal/shared"
	"github.com/desertthunder/sift/internal/stats"
)

// ExportToJSON renders the snapshot as indented JSON, byte-for-byte the
// shape that survives a round trip through stats.ParseSnapshot.
func ExportToJSON(snapshot *stats.Snapshot) ([]byte, error) {
	return shared.MarshalJSON(snapshot, true)
}

// ExportToCSV renders the full artist table with columns: artistId, artistName, imageUrl, songCount, songPercent, playlistCount, playlistPercent
func ExportToCSV(snapshot *stats.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"artistId", "artistName", "imageUrl", "songCount", "songPercent", "playlistCount", "playlistPercent"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range snapshot.ArtistTable {
		record := []string{
			row.ArtistID,
			row.ArtistName,
			stringOrEmpty(row.ImageURL),
			strconv.Itoa(row.SongCount),
			formatShare(row.SongPercent),
			strconv.Itoa(row.PlaylistCount),
			formatShare(row.PlaylistPercent),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders the full report: totals, the three top rankings, and the artist table
func ExportToMarkdown(snapshot *stats.Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Library Statistics\n\n")
	buf.WriteString(fmt.Sprintf("**Playlists**: %d\n", snapshot.Totals.TotalPlaylists))
	buf.WriteString(fmt.Sprintf("**Artists**: %d\n", snapshot.Totals.TotalArtists))
	buf.WriteString(fmt.Sprintf("**Unique Tracks**: %d\n\n", snapshot.Totals.TotalUniqueTracks))

	buf.WriteString("## Top Artists by Songs\n\n")
	for i, artist := range snapshot.TopArtistsBySongs {
		buf.WriteString(fmt.Sprintf("%d. %s - %d songs (%s%%)\n", i+1, artist.ArtistName, artist.Value, formatShare(artist.Percent)))
	}

	buf.WriteString("\n## Top Artists by Playlist Presence\n\n")
	for i, artist := range snapshot.TopArtistsByPlaylists {
		buf.WriteString(fmt.Sprintf("%d. %s - in %d playlists (%s%%)\n", i+1, artist.ArtistName, artist.Value, formatShare(artist.Percent)))
	}

	buf.WriteString("\n## Top Tracks by Playlist Presence\n\n")
	for i, track := range snapshot.TopTracksByPlaylists {
		buf.WriteString(fmt.Sprintf("%d. %s - %s - in %d playlists (%s%%)\n",
			i+1, track.MainArtistName, track.TrackName, track.PlaylistCount, formatShare(track.Percent)))
	}

	buf.WriteString("\n## Artist Table\n\n")
	buf.WriteString("| Artist | Songs | Song Share | Playlists | Playlist Share |\n")
	buf.WriteString("| --- | ---: | ---: | ---: | ---: |\n")
	for _, row := range snapshot.ArtistTable {
		buf.WriteString(fmt.Sprintf("| %s | %d | %s%% | %d | %s%% |\n",
			row.ArtistName, row.SongCount, formatShare(row.SongPercent), row.PlaylistCount, formatShare(row.PlaylistPercent)))
	}

	return buf.Bytes(), nil
}

// ExportToText renders a plain text summary: totals plus the three rankings
func ExportToText(snapshot *stats.Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("Library Statistics\n\n")
	buf.WriteString(fmt.Sprintf("Playlists: %d\n", snapshot.Totals.TotalPlaylists))
	buf.WriteString(fmt.Sprintf("Artists: %d\n", snapshot.Totals.TotalArtists))
	buf.WriteString(fmt.Sprintf("Unique Tracks: %d\n", snapshot.Totals.TotalUniqueTracks))

	buf.WriteString("\nTop Artists by Songs\n")
	for i, artist := range snapshot.TopArtistsBySongs {
		buf.WriteString(fmt.Sprintf("%d. %s - %d songs (%s%%)\n", i+1, artist.ArtistName, artist.Value, formatShare(artist.Percent)))
	}

	buf.WriteString("\nTop Artists by Playlist Presence\n")
	for i, artist := range snapshot.TopArtistsByPlaylists {
		buf.WriteString(fmt.Sprintf("%d. %s - in %d playlists (%s%%)\n", i+1, artist.ArtistName, artist.Value, formatShare(artist.Percent)))
	}

	buf.WriteString("\nTop Tracks by Playlist Presence\n")
	for i, track := range snapshot.TopTracksByPlaylists {
		buf.WriteString(fmt.Sprintf("%d. %s - %s - in %d playlists (%s%%)\n",
			i+1, track.MainArtistName, track.TrackName, track.PlaylistCount, formatShare(track.Percent)))
	}

	return buf.Bytes(), nil
}

// Render serializes a snapshot in the requested format.
//
// An empty format defaults to JSON; "md" and "txt" are accepted aliases.
func Render(snapshot *stats.Snapshot, format string) ([]byte, error) {
	switch format {
	case "", "json":
		return ExportToJSON(snapshot)
	case "csv":
		return ExportToCSV(snapshot)
	case "markdown", "md":
		return ExportToMarkdown(snapshot)
	case "text", "txt":
		return ExportToText(snapshot)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// Extension returns the filename extension for an export format.
func Extension(format string) string {
	switch format {
	case "csv":
		return "csv"
	case "markdown", "md":
		return "md"
	case "text", "txt":
		return "txt"
	default:
		return "json"
	}
}

// WriteExport renders the snapshot and writes it to path.
//
// Defaults to sift_stats_{epoch}.{ext} in the working directory when path is empty.
func WriteExport(snapshot *stats.Snapshot, format, path string) (string, error) {
	data, err := Render(snapshot, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = fmt.Sprintf("sift_stats_%d.%s", time.Now().Unix(), Extension(format))
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// formatShare renders an already-rounded percentage with one decimal place.
func formatShare(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
