package review

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/sift/internal/models"
	"github.com/desertthunder/sift/internal/shared"
	"github.com/desertthunder/sift/internal/stats"
)

// progressVersion tags the progress file format. Bump on breaking changes.
const progressVersion = "1"

// SavedDecision is one verdict as persisted in a progress file.
type SavedDecision struct {
	ArtistID string `json:"artistId"`
	Verdict  string `json:"verdict"`
}

// ProgressFile is a self-contained review session: the snapshot under
// review, the verdicts so far, and the cursor position.
type ProgressFile struct {
	Version   string          `json:"version"`
	SavedAt   time.Time       `json:"savedAt"`
	Snapshot  *stats.Snapshot `json:"snapshot"`
	Decisions []SavedDecision `json:"decisions"`
	Position  int             `json:"position"`
}

// NewProgress captures the deck's state against its snapshot for saving.
func NewProgress(snapshot *stats.Snapshot, deck *Deck) *ProgressFile {
	decisions := make([]SavedDecision, 0, len(deck.verdicts))
	for _, decision := range deck.Decisions() {
		decisions = append(decisions, SavedDecision{
			ArtistID: decision.ArtistID,
			Verdict:  string(decision.Verdict),
		})
	}

	return &ProgressFile{
		Version:   progressVersion,
		SavedAt:   time.Now(),
		Snapshot:  snapshot,
		Decisions: decisions,
		Position:  deck.Position(),
	}
}

// Validate checks the progress file's structure before any state is
// replaced: version tag, snapshot validity, position bounds, and verdict
// values. A position equal to the artist count means a finished deck and is
// legal; anything past it is not.
func (p *ProgressFile) Validate() error {
	if p.Version != progressVersion {
		return fmt.Errorf("unsupported progress file version %q", p.Version)
	}

	if p.Snapshot == nil {
		return fmt.Errorf("progress file has no snapshot")
	}
	if err := p.Snapshot.Validate(); err != nil {
		return err
	}

	if p.Position < 0 || p.Position > len(p.Snapshot.Artists) {
		return fmt.Errorf("position %d out of range for %d artists", p.Position, len(p.Snapshot.Artists))
	}

	for _, decision := range p.Decisions {
		if decision.ArtistID == "" {
			return fmt.Errorf("decision is missing an artist id")
		}
		if !models.Verdict(decision.Verdict).Valid() {
			return fmt.Errorf("decision verdict %q is not valid", decision.Verdict)
		}
	}

	return nil
}

// RestoreDeck rebuilds a deck from a validated progress file, cursor and
// verdicts included.
func (p *ProgressFile) RestoreDeck() *Deck {
	deck := NewDeck(p.Snapshot)
	deck.position = p.Position

	for _, decision := range p.Decisions {
		deck.verdicts[decision.ArtistID] = models.Verdict(decision.Verdict)
	}

	return deck
}

// SaveProgress atomically writes the progress file: the JSON lands in a
// temp file beside the target and is renamed into place, so an interrupted
// save never leaves a torn file.
func SaveProgress(path string, progress *ProgressFile) error {
	data, err := shared.MarshalJSON(progress, true)
	if err != nil {
		return fmt.Errorf("failed to serialize progress: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write progress: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move progress file into place: %w", err)
	}

	return nil
}

// LoadProgress reads and validates a progress file. Any structural problem
// wraps [shared.ErrMalformedImport] and leaves the caller's state untouched.
func LoadProgress(path string) (*ProgressFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read progress file: %w", err)
	}

	var progress ProgressFile
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrMalformedImport, err)
	}

	if err := progress.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrMalformedImport, err)
	}

	return &progress, nil
}
