package models

import (
	"fmt"
	"time"
)

// Verdict is the review outcome for a single artist.
type Verdict string

const (
	VerdictKeep   Verdict = "keep"
	VerdictRemove Verdict = "remove"
)

// Valid reports whether v is one of the known verdicts.
func (v Verdict) Valid() bool {
	return v == VerdictKeep || v == VerdictRemove
}

// Decision records one review verdict for an artist within a scan.
// At most one decision exists per (scan, artist) pair.
type Decision struct {
	id         string
	sequence   int
	scanID     string
	artistID   string
	artistName string
	verdict    Verdict
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
}

// NewDecision creates a Decision for the given scan and artist.
func NewDecision(sequence int, scanID, artistID, artistName string, verdict Verdict) *Decision {
	now := time.Now()
	return &Decision{
		sequence:   sequence,
		scanID:     scanID,
		artistID:   artistID,
		artistName: artistName,
		verdict:    verdict,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (d *Decision) ID() string { return d.id }

func (d *Decision) Sequence() int { return d.sequence }

func (d *Decision) ScanID() string { return d.scanID }

func (d *Decision) ArtistID() string { return d.artistID }

func (d *Decision) ArtistName() string { return d.artistName }

func (d *Decision) Verdict() Verdict { return d.verdict }

func (d *Decision) CreatedAt() time.Time { return d.createdAt }

func (d *Decision) UpdatedAt() time.Time { return d.updatedAt }

func (d *Decision) DeletedAt() *time.Time { return d.deletedAt }

func (d *Decision) SetID(id string) { d.id = id }

func (d *Decision) SetSequence(seq int) { d.sequence = seq }

func (d *Decision) SetCreatedAt(t time.Time) { d.createdAt = t }

func (d *Decision) SetUpdatedAt(t time.Time) { d.updatedAt = t }

func (d *Decision) SetDeletedAt(t *time.Time) { d.deletedAt = t }

// SetVerdict changes the recorded verdict, for re-reviews.
func (d *Decision) SetVerdict(v Verdict) {
	d.verdict = v
	d.updatedAt = time.Now()
}

// Validate checks that the decision names a scan, an artist, and a known verdict.
func (d *Decision) Validate() error {
	if d.scanID == "" {
		return fmt.Errorf("decision scan id is required")
	}
	if d.artistID == "" {
		return fmt.Errorf("decision artist id is required")
	}
	if !d.verdict.Valid() {
		return fmt.Errorf("decision verdict %q is not valid", d.verdict)
	}
	return nil
}
