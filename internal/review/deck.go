package review

import (
	"github.com/desertthunder/sift/internal/models"
	"github.com/desertthunder/sift/internal/stats"
)

// Decision pairs an artist with a review verdict.
type Decision struct {
	ArtistID   string
	ArtistName string
	Verdict    models.Verdict
}

// Deck is a cursor over a snapshot's artist list in canonical order.
//
// Keep, Remove, and Skip advance the cursor; only Keep and Remove record a
// verdict. Undo steps back one card and forgets whatever verdict that card
// had, so skipped cards undo cleanly too.
type Deck struct {
	artists  []stats.ReviewArtist
	position int
	verdicts map[string]models.Verdict
}

// NewDeck builds a deck over the snapshot's artist list, starting at the
// first card.
func NewDeck(snapshot *stats.Snapshot) *Deck {
	artists := make([]stats.ReviewArtist, len(snapshot.Artists))
	copy(artists, snapshot.Artists)

	return &Deck{
		artists:  artists,
		verdicts: make(map[string]models.Verdict),
	}
}

// Current returns the card under the cursor, or false when the deck is done.
func (d *Deck) Current() (stats.ReviewArtist, bool) {
	if d.position >= len(d.artists) {
		return stats.ReviewArtist{}, false
	}
	return d.artists[d.position], true
}

// Keep records a keep verdict for the current card and advances.
func (d *Deck) Keep() {
	d.decide(models.VerdictKeep)
}

// Remove records a remove verdict for the current card and advances.
func (d *Deck) Remove() {
	d.decide(models.VerdictRemove)
}

// Skip advances past the current card without recording a verdict.
func (d *Deck) Skip() {
	if d.position < len(d.artists) {
		d.position++
	}
}

// Undo steps back one card and forgets its verdict. Returns false at the
// start of the deck.
func (d *Deck) Undo() bool {
	if d.position == 0 {
		return false
	}

	d.position--
	delete(d.verdicts, d.artists[d.position].ArtistID)
	return true
}

func (d *Deck) decide(verdict models.Verdict) {
	if d.position >= len(d.artists) {
		return
	}

	d.verdicts[d.artists[d.position].ArtistID] = verdict
	d.position++
}

// Position is the index of the card under the cursor; equal to Size when
// the deck is done.
func (d *Deck) Position() int {
	return d.position
}

// Size is the total number of cards.
func (d *Deck) Size() int {
	return len(d.artists)
}

// Remaining is the number of cards at and after the cursor.
func (d *Deck) Remaining() int {
	return len(d.artists) - d.position
}

// Done reports whether every card has been passed.
func (d *Deck) Done() bool {
	return d.position >= len(d.artists)
}

// Counts reports how many cards were kept and removed so far.
func (d *Deck) Counts() (kept, removed int) {
	for _, verdict := range d.verdicts {
		switch verdict {
		case models.VerdictKeep:
			kept++
		case models.VerdictRemove:
			removed++
		}
	}
	return kept, removed
}

// Decisions returns the recorded verdicts in canonical artist order.
// Skipped cards are absent.
func (d *Deck) Decisions() []Decision {
	decisions := make([]Decision, 0, len(d.verdicts))
	for _, artist := range d.artists {
		verdict, ok := d.verdicts[artist.ArtistID]
		if !ok {
			continue
		}
		decisions = append(decisions, Decision{
			ArtistID:   artist.ArtistID,
			ArtistName: artist.ArtistName,
			Verdict:    verdict,
		})
	}
	return decisions
}
