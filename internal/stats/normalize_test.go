package stats

import (
	"testing"

	"github.com/desertthunder/sift/internal/services"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		item services.PlaylistItem
		want bool
	}{
		{
			name: "playable track",
			item: services.PlaylistItem{TrackID: "t1", TrackName: "Song", Kind: "track", Artists: []services.ArtistRef{{ID: "a1", Name: "Artist"}}},
			want: true,
		},
		{
			name: "missing payload",
			item: services.PlaylistItem{},
			want: false,
		},
		{
			name: "episode",
			item: services.PlaylistItem{TrackID: "e1", TrackName: "Episode", Kind: "episode"},
			want: false,
		},
		{
			name: "no identifier",
			item: services.PlaylistItem{TrackName: "Untitled", Kind: "track"},
			want: false,
		},
		{
			name: "locally added file",
			item: services.PlaylistItem{TrackID: "t2", TrackName: "Rip", Kind: "track", Local: true},
			want: false,
		},
		{
			name: "zero artists still normalizes",
			item: services.PlaylistItem{TrackID: "t3", TrackName: "Orphan", Kind: "track"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.item)
			if ok != tt.want {
				t.Fatalf("Normalize(%s) ok = %v, want %v", tt.item.TrackName, ok, tt.want)
			}
			if ok && got.TrackID != tt.item.TrackID {
				t.Errorf("expected track id %s, got %s", tt.item.TrackID, got.TrackID)
			}
		})
	}

	t.Run("Drops Artist Credits Without Ids", func(t *testing.T) {
		item := services.PlaylistItem{
			TrackID:   "t1",
			TrackName: "Song",
			Kind:      "track",
			Artists: []services.ArtistRef{
				{ID: "a1", Name: "Keyed"},
				{Name: "Unkeyed"},
			},
		}

		got, ok := Normalize(item)
		if !ok {
			t.Fatal("expected item to normalize")
		}

		if len(got.Artists) != 1 || got.Artists[0].ID != "a1" {
			t.Errorf("expected only keyed credits to survive, got %+v", got.Artists)
		}
		if got.MainArtist.ID != "a1" || got.MainArtist.Name != "Keyed" {
			t.Errorf("expected the raw first credit as main artist, got %+v", got.MainArtist)
		}
	})
}
