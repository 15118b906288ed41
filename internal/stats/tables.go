package stats

import (
	"sort"

	"github.com/desertthunder/sift/internal/services"
)

// unknownArtist is the display name given to tracks with no credited artists.
const unknownArtist = "Unknown Artist"

// ArtistAccumulator holds the running counts for one artist across a scan.
//
// SongCount is the number of distinct tracks the artist appears on, counted
// once across all playlists. PlaylistCount is the number of distinct
// playlists containing at least one of the artist's tracks. The first-seen
// display name wins; ImageURL stays empty until enrichment fills it.
type ArtistAccumulator struct {
	ID            string
	Name          string
	ImageURL      string
	SongCount     int
	PlaylistCount int
}

// TrackAccumulator holds the running counts for one deduplicated track.
//
// The main artist mirrors the track's first credit as listed, so its
// identifier stays empty for an unkeyed credit. MainArtistName falls back
// to a placeholder for uncredited tracks.
type TrackAccumulator struct {
	ID                 string
	Name               string
	MainArtistID       string
	MainArtistName     string
	MainArtistImageURL string
	PlaylistCount      int
}

// Tables is the mutable accumulator state of one scan. Track entries double
// as the global dedup set: a track identifier is "seen" exactly when it has
// an entry.
type Tables struct {
	Artists map[string]*ArtistAccumulator
	Tracks  map[string]*TrackAccumulator

	playlists int
}

// NewTables returns empty accumulator tables for a fresh scan.
func NewTables() *Tables {
	return &Tables{
		Artists: make(map[string]*ArtistAccumulator),
		Tracks:  make(map[string]*TrackAccumulator),
	}
}

// artist returns the accumulator for id, inserting a zero-valued entry on
// first sight.
func (t *Tables) artist(id, name string) *ArtistAccumulator {
	if entry, ok := t.Artists[id]; ok {
		return entry
	}

	entry := &ArtistAccumulator{ID: id, Name: name}
	t.Artists[id] = entry
	return entry
}

// MergePlaylist folds one playlist's items into the tables.
//
// Song counts increment only when a track identifier is globally new, once
// per contributing artist. Playlist-presence counts are deferred to the end
// of the playlist via playlist-local seen sets, so duplicate entries within
// a playlist never double-increment: each (artist, playlist) and
// (track, playlist) pair contributes at most one.
func (t *Tables) MergePlaylist(items []services.PlaylistItem) {
	artistsSeen := make(map[string]struct{})
	tracksSeen := make(map[string]struct{})

	for _, item := range items {
		track, ok := Normalize(item)
		if !ok {
			continue
		}

		tracksSeen[track.TrackID] = struct{}{}

		if _, dup := t.Tracks[track.TrackID]; !dup {
			t.Tracks[track.TrackID] = newTrackAccumulator(track)
			for _, ref := range track.Artists {
				t.artist(ref.ID, ref.Name).SongCount++
			}
		}

		for _, ref := range track.Artists {
			t.artist(ref.ID, ref.Name)
			artistsSeen[ref.ID] = struct{}{}
		}
	}

	for id := range artistsSeen {
		t.Artists[id].PlaylistCount++
	}
	for id := range tracksSeen {
		t.Tracks[id].PlaylistCount++
	}

	t.playlists++
}

func newTrackAccumulator(track NormalizedTrack) *TrackAccumulator {
	entry := &TrackAccumulator{
		ID:             track.TrackID,
		Name:           track.TrackName,
		MainArtistID:   track.MainArtist.ID,
		MainArtistName: track.MainArtist.Name,
	}

	if entry.MainArtistName == "" {
		entry.MainArtistName = unknownArtist
	}

	return entry
}

// TotalPlaylists reports how many playlists have been merged, including
// playlists whose items were all filtered out.
func (t *Tables) TotalPlaylists() int {
	return t.playlists
}

// TotalUniqueTracks reports the number of distinct track identifiers seen.
func (t *Tables) TotalUniqueTracks() int {
	return len(t.Tracks)
}

// TotalArtists reports the number of distinct artist identifiers seen.
func (t *Tables) TotalArtists() int {
	return len(t.Artists)
}

// ArtistIDs returns every artist identifier in the tables, sorted for
// deterministic batching.
func (t *Tables) ArtistIDs() []string {
	ids := make([]string, 0, len(t.Artists))
	for id := range t.Artists {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
