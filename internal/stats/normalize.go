package stats

import "github.com/desertthunder/sift/internal/services"

// NormalizedTrack is a playlist item reduced to the fields the aggregation
// tables care about.
type NormalizedTrack struct {
	TrackID   string
	TrackName string
	// MainArtist is the first credit in the raw artist list, kept even when
	// it carries no identifier. Zero-valued for uncredited tracks.
	MainArtist services.ArtistRef
	Artists    []services.ArtistRef
}

// Normalize reduces one raw playlist item to a [NormalizedTrack], or reports
// false for items that take no part in aggregation: entries without a track
// payload, non-track entries (podcast episodes), locally-added files, and
// tracks without a stable identifier.
//
// Artist credits without an identifier are dropped from the normalized
// record; they cannot be keyed or enriched. The main-artist reference is
// taken from the raw list before that filtering, so it follows the credit
// order as listed.
func Normalize(item services.PlaylistItem) (NormalizedTrack, bool) {
	if item.Kind != "track" || item.Local || item.TrackID == "" {
		return NormalizedTrack{}, false
	}

	normalized := NormalizedTrack{
		TrackID:   item.TrackID,
		TrackName: item.TrackName,
	}
	if len(item.Artists) > 0 {
		normalized.MainArtist = item.Artists[0]
	}

	for _, artist := range item.Artists {
		if artist.ID == "" {
			continue
		}
		normalized.Artists = append(normalized.Artists, artist)
	}

	return normalized, true
}
