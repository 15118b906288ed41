package models

import (
	"fmt"
	"time"
)

// Scan represents one completed library scan.
//
// Totals are duplicated out of the snapshot into columns so list views can
// skip decoding the blob; the snapshot itself is the exported JSON contract
// and round-trips through import unchanged.
type Scan struct {
	id                string
	sequence          int
	totalPlaylists    int
	totalArtists      int
	totalUniqueTracks int
	snapshot          string
	createdAt         time.Time
	updatedAt         time.Time
	deletedAt         *time.Time
}

// NewScan creates a Scan from a finished aggregation run.
func NewScan(sequence, totalPlaylists, totalArtists, totalUniqueTracks int, snapshot string) *Scan {
	now := time.Now()
	return &Scan{
		sequence:          sequence,
		totalPlaylists:    totalPlaylists,
		totalArtists:      totalArtists,
		totalUniqueTracks: totalUniqueTracks,
		snapshot:          snapshot,
		createdAt:         now,
		updatedAt:         now,
	}
}

func (s *Scan) ID() string { return s.id }

func (s *Scan) Sequence() int { return s.sequence }

func (s *Scan) TotalPlaylists() int { return s.totalPlaylists }

func (s *Scan) TotalArtists() int { return s.totalArtists }

func (s *Scan) TotalUniqueTracks() int { return s.totalUniqueTracks }

// Snapshot returns the scan's exported JSON document.
func (s *Scan) Snapshot() string { return s.snapshot }

func (s *Scan) CreatedAt() time.Time { return s.createdAt }

func (s *Scan) UpdatedAt() time.Time { return s.updatedAt }

func (s *Scan) DeletedAt() *time.Time { return s.deletedAt }

func (s *Scan) SetID(id string) { s.id = id }

func (s *Scan) SetSequence(seq int) { s.sequence = seq }

func (s *Scan) SetCreatedAt(t time.Time) { s.createdAt = t }

func (s *Scan) SetUpdatedAt(t time.Time) { s.updatedAt = t }

func (s *Scan) SetDeletedAt(t *time.Time) { s.deletedAt = t }

// Validate checks that the scan has a snapshot and coherent totals.
func (s *Scan) Validate() error {
	if s.snapshot == "" {
		return fmt.Errorf("scan snapshot is required")
	}
	if s.totalPlaylists < 0 || s.totalArtists < 0 || s.totalUniqueTracks < 0 {
		return fmt.Errorf("scan totals must not be negative")
	}
	return nil
}
