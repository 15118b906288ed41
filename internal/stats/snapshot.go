package stats

import (
	"encoding/json"
	"fmt"

	"github.com/desertthunder/sift/internal/shared"
)

// Totals are the headline counts of one scan.
type Totals struct {
	TotalPlaylists    int `json:"totalPlaylists"`
	TotalArtists      int `json:"totalArtists"`
	TotalUniqueTracks int `json:"totalUniqueTracks"`
}

// RankedArtist is one entry of a top-artists view. Value carries the count
// the ranking was built from (songs or playlists); Percent is that count's
// share of the view's denominator.
type RankedArtist struct {
	ArtistID   string  `json:"artistId"`
	ArtistName string  `json:"artistName"`
	ImageURL   *string `json:"imageUrl"`
	Value      int     `json:"value"`
	Percent    float64 `json:"percent"`
}

// RankedTrack is one entry of the top-tracks view. Main-artist fields are
// null for tracks without credited artists.
type RankedTrack struct {
	TrackID            string  `json:"trackId"`
	TrackName          string  `json:"trackName"`
	MainArtistID       *string `json:"mainArtistId"`
	MainArtistName     string  `json:"mainArtistName"`
	MainArtistImageURL *string `json:"mainArtistImageUrl"`
	PlaylistCount      int     `json:"playlistCount"`
	Percent            float64 `json:"percent"`
}

// ArtistRow is one row of the full artist table, carrying both counts and
// both percentage shares.
type ArtistRow struct {
	ArtistID        string  `json:"artistId"`
	ArtistName      string  `json:"artistName"`
	ImageURL        *string `json:"imageUrl"`
	SongCount       int     `json:"songCount"`
	SongPercent     float64 `json:"songPercent"`
	PlaylistCount   int     `json:"playlistCount"`
	PlaylistPercent float64 `json:"playlistPercent"`
}

// ReviewArtist is one entry of the flat artist list consumed by the review
// deck.
type ReviewArtist struct {
	ArtistID   string  `json:"artistId"`
	ArtistName string  `json:"artistName"`
	ImageURL   *string `json:"imageUrl"`
	TrackCount int     `json:"trackCount"`
}

// Snapshot is the immutable result of one scan: totals plus the five derived
// views. Its JSON shape is a persisted contract; exports, imports, and the
// review progress file all round-trip through it.
type Snapshot struct {
	Totals                Totals         `json:"totals"`
	TopArtistsBySongs     []RankedArtist `json:"topArtistsBySongs"`
	TopArtistsByPlaylists []RankedArtist `json:"topArtistsByPlaylists"`
	TopTracksByPlaylists  []RankedTrack  `json:"topTracksByPlaylists"`
	ArtistTable           []ArtistRow    `json:"artistTable"`
	Artists               []ReviewArtist `json:"artists"`
}

// Validate checks the structural integrity of a snapshot, typically one
// restored from disk. It catches negative totals, missing sections, and
// entries without identifiers; it does not re-derive counts.
func (s *Snapshot) Validate() error {
	if s.Totals.TotalPlaylists < 0 || s.Totals.TotalArtists < 0 || s.Totals.TotalUniqueTracks < 0 {
		return fmt.Errorf("totals cannot be negative")
	}

	if s.TopArtistsBySongs == nil || s.TopArtistsByPlaylists == nil ||
		s.TopTracksByPlaylists == nil || s.ArtistTable == nil || s.Artists == nil {
		return fmt.Errorf("snapshot is missing required sections")
	}

	for _, entry := range s.TopArtistsBySongs {
		if entry.ArtistID == "" {
			return fmt.Errorf("top artist by songs is missing an artist id")
		}
	}
	for _, entry := range s.TopArtistsByPlaylists {
		if entry.ArtistID == "" {
			return fmt.Errorf("top artist by playlists is missing an artist id")
		}
	}
	for _, entry := range s.TopTracksByPlaylists {
		if entry.TrackID == "" {
			return fmt.Errorf("top track is missing a track id")
		}
	}
	for _, row := range s.ArtistTable {
		if row.ArtistID == "" {
			return fmt.Errorf("artist table row is missing an artist id")
		}
	}
	for _, entry := range s.Artists {
		if entry.ArtistID == "" {
			return fmt.Errorf("artist list entry is missing an artist id")
		}
	}

	return nil
}

// ParseSnapshot decodes and validates a serialized snapshot. Both decode and
// validation failures wrap [shared.ErrMalformedImport], so callers can treat
// any bad input file uniformly.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrMalformedImport, err)
	}

	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrMalformedImport, err)
	}

	return &snapshot, nil
}
