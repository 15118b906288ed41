package review

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/sift/internal/shared"
)

func TestProgressFile(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		snapshot := testSnapshot()
		deck := NewDeck(snapshot)
		deck.Keep()
		deck.Remove()

		path := filepath.Join(t.TempDir(), "progress.json")
		if err := SaveProgress(path, NewProgress(snapshot, deck)); err != nil {
			t.Fatalf("failed to save progress: %v", err)
		}

		progress, err := LoadProgress(path)
		if err != nil {
			t.Fatalf("failed to load progress: %v", err)
		}

		if progress.Version != "1" {
			t.Errorf("expected version 1, got %q", progress.Version)
		}
		if progress.Position != 2 {
			t.Errorf("expected position 2, got %d", progress.Position)
		}
		if len(progress.Decisions) != 2 {
			t.Errorf("expected 2 saved decisions, got %d", len(progress.Decisions))
		}

		restored := progress.RestoreDeck()
		if restored.Position() != 2 {
			t.Errorf("expected restored cursor at 2, got %d", restored.Position())
		}

		card, ok := restored.Current()
		if !ok || card.ArtistID != "a3" {
			t.Errorf("expected resume on a3, got %+v", card)
		}

		kept, removed := restored.Counts()
		if kept != 1 || removed != 1 {
			t.Errorf("expected restored counts 1/1, got %d/%d", kept, removed)
		}
	})

	t.Run("Save Replaces Existing File", func(t *testing.T) {
		snapshot := testSnapshot()
		deck := NewDeck(snapshot)
		path := filepath.Join(t.TempDir(), "progress.json")

		if err := SaveProgress(path, NewProgress(snapshot, deck)); err != nil {
			t.Fatalf("failed to save progress: %v", err)
		}

		deck.Keep()
		if err := SaveProgress(path, NewProgress(snapshot, deck)); err != nil {
			t.Fatalf("failed to overwrite progress: %v", err)
		}

		progress, err := LoadProgress(path)
		if err != nil {
			t.Fatalf("failed to load progress: %v", err)
		}
		if progress.Position != 1 {
			t.Errorf("expected overwritten position 1, got %d", progress.Position)
		}

		entries, err := os.ReadDir(filepath.Dir(path))
		if err != nil {
			t.Fatalf("failed to read dir: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("expected no temp files left behind, found %d entries", len(entries))
		}
	})

	t.Run("Finished Deck Saves And Restores", func(t *testing.T) {
		snapshot := testSnapshot()
		deck := NewDeck(snapshot)
		deck.Keep()
		deck.Keep()
		deck.Keep()

		path := filepath.Join(t.TempDir(), "progress.json")
		if err := SaveProgress(path, NewProgress(snapshot, deck)); err != nil {
			t.Fatalf("failed to save progress: %v", err)
		}

		progress, err := LoadProgress(path)
		if err != nil {
			t.Fatalf("position equal to deck size must be legal: %v", err)
		}
		if !progress.RestoreDeck().Done() {
			t.Error("expected restored deck to be done")
		}
	})
}

func TestLoadProgressRejects(t *testing.T) {
	writeFile := func(t *testing.T, contents string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "progress.json")
		if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}
		return path
	}

	validProgress := func(t *testing.T) *ProgressFile {
		t.Helper()
		return NewProgress(testSnapshot(), NewDeck(testSnapshot()))
	}

	saveMutated := func(t *testing.T, mutate func(*ProgressFile)) string {
		t.Helper()
		progress := validProgress(t)
		mutate(progress)

		data, err := shared.MarshalJSON(progress, false)
		if err != nil {
			t.Fatalf("failed to marshal fixture: %v", err)
		}
		return writeFile(t, string(data))
	}

	t.Run("Garbage", func(t *testing.T) {
		path := writeFile(t, "{not json")
		if _, err := LoadProgress(path); !errors.Is(err, shared.ErrMalformedImport) {
			t.Errorf("expected ErrMalformedImport, got %v", err)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := LoadProgress(filepath.Join(t.TempDir(), "absent.json"))
		if err == nil {
			t.Error("expected error for missing file")
		}
		if errors.Is(err, shared.ErrMalformedImport) {
			t.Error("a missing file is not a malformed one")
		}
	})

	t.Run("Wrong Version", func(t *testing.T) {
		path := saveMutated(t, func(p *ProgressFile) { p.Version = "2" })
		if _, err := LoadProgress(path); !errors.Is(err, shared.ErrMalformedImport) {
			t.Errorf("expected ErrMalformedImport for version 2, got %v", err)
		}
	})

	t.Run("No Snapshot", func(t *testing.T) {
		path := saveMutated(t, func(p *ProgressFile) { p.Snapshot = nil })
		if _, err := LoadProgress(path); !errors.Is(err, shared.ErrMalformedImport) {
			t.Errorf("expected ErrMalformedImport for nil snapshot, got %v", err)
		}
	})

	t.Run("Negative Position", func(t *testing.T) {
		path := saveMutated(t, func(p *ProgressFile) { p.Position = -1 })
		if _, err := LoadProgress(path); !errors.Is(err, shared.ErrMalformedImport) {
			t.Errorf("expected ErrMalformedImport for negative position, got %v", err)
		}
	})

	t.Run("Position Past The End", func(t *testing.T) {
		path := saveMutated(t, func(p *ProgressFile) { p.Position = 4 })
		if _, err := LoadProgress(path); !errors.Is(err, shared.ErrMalformedImport) {
			t.Errorf("expected ErrMalformedImport for out-of-range position, got %v", err)
		}
	})

	t.Run("Unknown Verdict", func(t *testing.T) {
		path := saveMutated(t, func(p *ProgressFile) {
			p.Decisions = append(p.Decisions, SavedDecision{ArtistID: "a1", Verdict: "maybe"})
		})
		if _, err := LoadProgress(path); !errors.Is(err, shared.ErrMalformedImport) {
			t.Errorf("expected ErrMalformedImport for unknown verdict, got %v", err)
		}
	})

	t.Run("Invalid Snapshot Inside", func(t *testing.T) {
		path := saveMutated(t, func(p *ProgressFile) {
			p.Snapshot.Totals.TotalPlaylists = -5
		})
		if _, err := LoadProgress(path); !errors.Is(err, shared.ErrMalformedImport) {
			t.Errorf("expected ErrMalformedImport for invalid snapshot, got %v", err)
		}
	})
}
