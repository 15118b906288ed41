package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/sift/internal/review"
	"github.com/desertthunder/sift/internal/stats"
)

var _ tea.Model = (*Model)(nil)

func deckSnapshot() *stats.Snapshot {
	imgA := "http://img.example/a1"

	return &stats.Snapshot{
		Totals: stats.Totals{TotalPlaylists: 2, TotalArtists: 3, TotalUniqueTracks: 3},
		TopArtistsBySongs: []stats.RankedArtist{
			{ArtistID: "a1", ArtistName: "Aurora", ImageURL: &imgA, Value: 2, Percent: 66.7},
			{ArtistID: "a2", ArtistName: "Brume", Value: 1, Percent: 33.3},
		},
		TopArtistsByPlaylists: []stats.RankedArtist{
			{ArtistID: "a2", ArtistName: "Brume", Value: 2, Percent: 100},
			{ArtistID: "a1", ArtistName: "Aurora", ImageURL: &imgA, Value: 1, Percent: 50},
		},
		TopTracksByPlaylists: []stats.RankedTrack{
			{TrackID: "t1", TrackName: "Dawn", MainArtistName: "Aurora", PlaylistCount: 2, Percent: 100},
		},
		ArtistTable: []stats.ArtistRow{
			{ArtistID: "a1", ArtistName: "Aurora", ImageURL: &imgA, SongCount: 2, SongPercent: 66.7, PlaylistCount: 1, PlaylistPercent: 50},
			{ArtistID: "a2", ArtistName: "Brume", SongCount: 1, SongPercent: 33.3, PlaylistCount: 2, PlaylistPercent: 100},
			{ArtistID: "a3", ArtistName: "Cassia", SongCount: 1, SongPercent: 33.3, PlaylistCount: 1, PlaylistPercent: 50},
		},
		Artists: []stats.ReviewArtist{
			{ArtistID: "a1", ArtistName: "Aurora", ImageURL: &imgA, TrackCount: 2},
			{ArtistID: "a2", ArtistName: "Brume", TrackCount: 1},
			{ArtistID: "a3", ArtistName: "Cassia", TrackCount: 1},
		},
	}
}

func newTestModel() *Model {
	snapshot := deckSnapshot()
	return NewModel(snapshot, review.NewDeck(snapshot))
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, m *Model, keys ...string) *Model {
	t.Helper()
	for _, k := range keys {
		updated, _ := m.Update(keyMsg(k))
		next, ok := updated.(*Model)
		if !ok {
			t.Fatalf("Update returned %T, expected *Model", updated)
		}
		m = next
	}
	return m
}

func TestModel_DeckKeys(t *testing.T) {
	t.Run("Keep Remove And Skip Advance", func(t *testing.T) {
		m := press(t, newTestModel(), "l", "h", "s")

		if got := m.Deck().Position(); got != 3 {
			t.Errorf("expected position 3, got %d", got)
		}

		kept, removed := m.Deck().Counts()
		if kept != 1 || removed != 1 {
			t.Errorf("expected 1 kept and 1 removed, got %d/%d", kept, removed)
		}

		if m.view != SummaryView {
			t.Errorf("expected the finished deck to open the summary, got view %d", m.view)
		}
	})

	t.Run("Arrow Keys Mirror The Letters", func(t *testing.T) {
		m := press(t, newTestModel(), "right", "left")

		kept, removed := m.Deck().Counts()
		if kept != 1 || removed != 1 {
			t.Errorf("expected 1 kept and 1 removed, got %d/%d", kept, removed)
		}
	})

	t.Run("Undo Steps Back", func(t *testing.T) {
		m := press(t, newTestModel(), "l", "u")

		if got := m.Deck().Position(); got != 0 {
			t.Errorf("expected position 0 after undo, got %d", got)
		}

		kept, _ := m.Deck().Counts()
		if kept != 0 {
			t.Errorf("expected the undone verdict forgotten, got %d kept", kept)
		}
		if m.view != DeckView {
			t.Errorf("expected to stay on the deck, got view %d", m.view)
		}
	})

	t.Run("Undo From The Summary Reopens The Deck", func(t *testing.T) {
		m := press(t, newTestModel(), "l", "l", "l")
		if m.view != SummaryView {
			t.Fatalf("expected the summary after the last card, got view %d", m.view)
		}

		m = press(t, m, "u")
		if m.view != DeckView {
			t.Errorf("expected undo to reopen the deck, got view %d", m.view)
		}
		if got := m.Deck().Position(); got != 2 {
			t.Errorf("expected position 2, got %d", got)
		}
	})
}

func TestModel_ViewCycle(t *testing.T) {
	m := newTestModel()

	want := []ViewState{InsightsView, TableView, SummaryView, DeckView}
	for _, expected := range want {
		m = press(t, m, "tab")
		if m.view != expected {
			t.Fatalf("expected view %d after tab, got %d", expected, m.view)
		}
	}
}

func TestModel_TableSort(t *testing.T) {
	t.Run("Cycles The Sort Column", func(t *testing.T) {
		m := press(t, newTestModel(), "tab", "tab") // deck -> insights -> table

		m = press(t, m, "s")
		if m.sortCol != stats.ColumnPlaylists {
			t.Errorf("expected playlists column, got %q", m.sortCol)
		}
		if m.rows[0].ArtistID != "a2" {
			t.Errorf("expected a2 first by playlists desc, got %q", m.rows[0].ArtistID)
		}

		m = press(t, m, "s")
		if m.sortCol != stats.ColumnName {
			t.Errorf("expected name column, got %q", m.sortCol)
		}

		m = press(t, m, "s")
		if m.sortCol != stats.ColumnSongs {
			t.Errorf("expected the cycle back to songs, got %q", m.sortCol)
		}
	})

	t.Run("Toggles The Direction", func(t *testing.T) {
		m := press(t, newTestModel(), "tab", "tab")

		m = press(t, m, "d")
		if m.sortDesc {
			t.Error("expected ascending after toggling")
		}
		if m.rows[0].ArtistID != "a2" && m.rows[0].ArtistID != "a3" {
			t.Errorf("expected a single-song artist first ascending, got %q", m.rows[0].ArtistID)
		}
	})

	t.Run("Sorting Leaves The Deck Order Alone", func(t *testing.T) {
		m := press(t, newTestModel(), "tab", "tab", "s", "s", "d")

		if m.snapshot.ArtistTable[0].ArtistID != "a1" {
			t.Errorf("expected canonical order preserved, got %q first", m.snapshot.ArtistTable[0].ArtistID)
		}
	})
}

func TestModel_View(t *testing.T) {
	t.Run("Renders The Current Card", func(t *testing.T) {
		m := newTestModel()
		updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
		m = updated.(*Model)

		out := m.View()
		for _, want := range []string{"Review Artists", "Aurora", "http://img.example/a1", "Songs: 2 (66.7%)", "Playlists: 1 (50.0%)", "card 1 of 3"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected the deck view to contain %q", want)
			}
		}
	})

	t.Run("Shows A Placeholder Without An Image", func(t *testing.T) {
		m := press(t, newTestModel(), "s")

		if out := m.View(); !strings.Contains(out, "no image") {
			t.Error("expected an image placeholder for Brume")
		}
	})

	t.Run("Pages Through The Rankings", func(t *testing.T) {
		m := newTestModel()
		updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
		m = updated.(*Model)
		m = press(t, m, "tab")

		out := m.View()
		if !strings.Contains(out, "Top Artists by Songs (1/3)") {
			t.Errorf("expected the first ranking page, got %q", out)
		}
		if !strings.Contains(out, "█") {
			t.Error("expected rendered bars")
		}

		m = press(t, m, "l")
		if out := m.View(); !strings.Contains(out, "Top Artists by Playlists (2/3)") {
			t.Errorf("expected the second ranking page, got %q", out)
		}

		m = press(t, m, "h", "h")
		if out := m.View(); !strings.Contains(out, "Top Tracks by Playlist Presence (3/3)") {
			t.Errorf("expected the page cycle to wrap backwards, got %q", out)
		}
	})

	t.Run("Renders The Summary Counts", func(t *testing.T) {
		m := press(t, newTestModel(), "l", "h", "s")

		out := m.View()
		for _, want := range []string{"Review Summary", "Reviewed 3 of 3", "Kept: 1", "Removed: 1", "Skipped: 1"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected the summary to contain %q, got %q", want, out)
			}
		}
	})

	t.Run("Announces A Finished Deck", func(t *testing.T) {
		m := press(t, newTestModel(), "l", "l", "l", "tab") // summary -> deck
		if m.view != DeckView {
			t.Fatalf("expected the deck view, got %d", m.view)
		}

		if out := m.View(); !strings.Contains(out, "All cards reviewed") {
			t.Error("expected the finished-deck notice")
		}
	})
}

func TestNewModel_ResumedDeck(t *testing.T) {
	snapshot := deckSnapshot()
	deck := review.NewDeck(snapshot)
	deck.Keep()
	deck.Keep()
	deck.Keep()

	if m := NewModel(snapshot, deck); m.view != SummaryView {
		t.Errorf("expected a finished deck to open on the summary, got view %d", m.view)
	}
}
