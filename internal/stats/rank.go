package stats

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// topSize is how many entries each ranked view keeps.
const topSize = 5

// Round1 rounds to one decimal place. Every percentage in a snapshot is
// rounded exactly once, here, so derivation and display always agree.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// Percent returns x as a share of denom in percent, rounded to one decimal.
// A zero or negative denominator yields 0 rather than dividing by zero.
func Percent(x, denom int) float64 {
	if denom <= 0 {
		return 0
	}
	return Round1(float64(x) / float64(denom) * 100)
}

// lessName orders display names ascending and case-insensitive, falling back
// to a raw comparison so equal-folded names still order deterministically.
func lessName(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// rankedArtists returns the artist entries sorted descending by the given
// count, ties broken by ascending case-insensitive name.
func rankedArtists(t *Tables, count func(*ArtistAccumulator) int) []*ArtistAccumulator {
	entries := make([]*ArtistAccumulator, 0, len(t.Artists))
	for _, entry := range t.Artists {
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if count(a) != count(b) {
			return count(a) > count(b)
		}
		return lessName(a.Name, b.Name)
	})

	return entries
}

// rankedTracks returns the track entries sorted descending by playlist
// count, ties broken by ascending case-insensitive track name.
func rankedTracks(t *Tables) []*TrackAccumulator {
	entries := make([]*TrackAccumulator, 0, len(t.Tracks))
	for _, entry := range t.Tracks {
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.PlaylistCount != b.PlaylistCount {
			return a.PlaylistCount > b.PlaylistCount
		}
		return lessName(a.Name, b.Name)
	})

	return entries
}

// BuildSnapshot derives the read-only [Snapshot] from the accumulator
// tables. The tables are not mutated; the snapshot owns no references back
// into them.
func BuildSnapshot(t *Tables) *Snapshot {
	totals := Totals{
		TotalPlaylists:    t.TotalPlaylists(),
		TotalArtists:      t.TotalArtists(),
		TotalUniqueTracks: t.TotalUniqueTracks(),
	}

	bySongs := rankedArtists(t, func(a *ArtistAccumulator) int { return a.SongCount })
	byPlaylists := rankedArtists(t, func(a *ArtistAccumulator) int { return a.PlaylistCount })
	byTrackPresence := rankedTracks(t)

	snapshot := &Snapshot{
		Totals:                totals,
		TopArtistsBySongs:     make([]RankedArtist, 0, topSize),
		TopArtistsByPlaylists: make([]RankedArtist, 0, topSize),
		TopTracksByPlaylists:  make([]RankedTrack, 0, topSize),
		ArtistTable:           make([]ArtistRow, 0, len(bySongs)),
		Artists:               make([]ReviewArtist, 0, len(bySongs)),
	}

	for _, entry := range bySongs[:min(topSize, len(bySongs))] {
		snapshot.TopArtistsBySongs = append(snapshot.TopArtistsBySongs, RankedArtist{
			ArtistID:   entry.ID,
			ArtistName: entry.Name,
			ImageURL:   nullableURL(entry.ImageURL),
			Value:      entry.SongCount,
			Percent:    Percent(entry.SongCount, totals.TotalUniqueTracks),
		})
	}

	for _, entry := range byPlaylists[:min(topSize, len(byPlaylists))] {
		snapshot.TopArtistsByPlaylists = append(snapshot.TopArtistsByPlaylists, RankedArtist{
			ArtistID:   entry.ID,
			ArtistName: entry.Name,
			ImageURL:   nullableURL(entry.ImageURL),
			Value:      entry.PlaylistCount,
			Percent:    Percent(entry.PlaylistCount, totals.TotalPlaylists),
		})
	}

	for _, entry := range byTrackPresence[:min(topSize, len(byTrackPresence))] {
		ranked := RankedTrack{
			TrackID:        entry.ID,
			TrackName:      entry.Name,
			MainArtistName: entry.MainArtistName,
			PlaylistCount:  entry.PlaylistCount,
			Percent:        Percent(entry.PlaylistCount, totals.TotalPlaylists),
		}
		if id := entry.MainArtistID; id != "" {
			ranked.MainArtistID = &id
		}
		ranked.MainArtistImageURL = nullableURL(entry.MainArtistImageURL)
		snapshot.TopTracksByPlaylists = append(snapshot.TopTracksByPlaylists, ranked)
	}

	// Canonical order for the table and the review list is the by-songs
	// ranking, full length.
	for _, entry := range bySongs {
		snapshot.ArtistTable = append(snapshot.ArtistTable, ArtistRow{
			ArtistID:        entry.ID,
			ArtistName:      entry.Name,
			ImageURL:        nullableURL(entry.ImageURL),
			SongCount:       entry.SongCount,
			SongPercent:     Percent(entry.SongCount, totals.TotalUniqueTracks),
			PlaylistCount:   entry.PlaylistCount,
			PlaylistPercent: Percent(entry.PlaylistCount, totals.TotalPlaylists),
		})

		snapshot.Artists = append(snapshot.Artists, ReviewArtist{
			ArtistID:   entry.ID,
			ArtistName: entry.Name,
			ImageURL:   nullableURL(entry.ImageURL),
			TrackCount: entry.SongCount,
		})
	}

	return snapshot
}

func nullableURL(url string) *string {
	if url == "" {
		return nil
	}
	return &url
}

// Sortable artist table columns.
const (
	ColumnName      = "name"
	ColumnSongs     = "songs"
	ColumnPlaylists = "playlists"
)

var nameCollator = collate.New(language.Und, collate.IgnoreCase)

// SortArtistRows reorders a copy of the artist table in place by the given
// column. Numeric columns compare numerically; the name column compares
// locale-aware. Ties on numeric columns fall back to ascending name.
func SortArtistRows(rows []ArtistRow, column string, desc bool) {
	var less func(a, b ArtistRow) bool

	switch column {
	case ColumnSongs:
		less = func(a, b ArtistRow) bool {
			if a.SongCount != b.SongCount {
				return a.SongCount < b.SongCount
			}
			return nameCollator.CompareString(a.ArtistName, b.ArtistName) < 0
		}
	case ColumnPlaylists:
		less = func(a, b ArtistRow) bool {
			if a.PlaylistCount != b.PlaylistCount {
				return a.PlaylistCount < b.PlaylistCount
			}
			return nameCollator.CompareString(a.ArtistName, b.ArtistName) < 0
		}
	default:
		less = func(a, b ArtistRow) bool {
			return nameCollator.CompareString(a.ArtistName, b.ArtistName) < 0
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}
