package stats

import (
	"context"

	"github.com/desertthunder/sift/internal/services"
)

// Enrich backfills artist image URLs onto the accumulator tables.
//
// It fetches metadata for every collected artist identifier through the
// provider (which chunks requests internally) and fills ImageURL on artist
// entries and MainArtistImageURL on track entries whose main artist matched.
// Identifiers the provider returns nothing for keep an empty image. An empty
// artist set is a no-op; a provider error aborts enrichment with nothing
// backfilled.
func Enrich(ctx context.Context, svc services.Service, t *Tables) error {
	ids := t.ArtistIDs()
	if len(ids) == 0 {
		return nil
	}

	fetched, err := svc.FetchArtistsByIDs(ctx, ids)
	if err != nil {
		return err
	}

	images := make(map[string]string, len(fetched))
	for _, artist := range fetched {
		if artist.ImageURL != "" {
			images[artist.ID] = artist.ImageURL
		}
	}

	for id, entry := range t.Artists {
		if url, ok := images[id]; ok {
			entry.ImageURL = url
		}
	}

	for _, entry := range t.Tracks {
		if entry.MainArtistID == "" {
			continue
		}
		if url, ok := images[entry.MainArtistID]; ok {
			entry.MainArtistImageURL = url
		}
	}

	return nil
}
