package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/sift/internal/models"
	"github.com/desertthunder/sift/internal/shared"
)

// ScanRepository implements [models.Repository] for [models.Scan] persistence.
//
// Totals live in their own columns so history listings never decode the
// snapshot blob.
type ScanRepository struct {
	db *sql.DB
}

// NewScanRepository creates a new [ScanRepository] with the given database connection
func NewScanRepository(db *sql.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

// Create inserts a new scan into the database with generated ID and sequence
func (r *ScanRepository) Create(scan *models.Scan) error {
	sequence, err := NextSequence(r.db, "scans")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	scan.SetID(id)
	scan.SetSequence(sequence)

	if err := scan.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO scans (id, sequence, total_playlists, total_artists, total_unique_tracks, snapshot, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, scan.TotalPlaylists(), scan.TotalArtists(), scan.TotalUniqueTracks(),
		scan.Snapshot(), scan.CreatedAt(), scan.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert scan: %w", err)
	}

	return nil
}

// Get retrieves a scan by ID, excluding soft-deleted scans
func (r *ScanRepository) Get(id string) (*models.Scan, error) {
	query := `
		SELECT id, sequence, total_playlists, total_artists, total_unique_tracks, snapshot, created_at, updated_at, deleted_at
		FROM scans
		WHERE id = ? AND deleted_at IS NULL
	`

	scan, err := r.scanOne(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrScanNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query scan: %w", err)
	}

	return scan, nil
}

// GetLatest retrieves the most recent non-deleted scan, or nil if the
// history is empty.
func (r *ScanRepository) GetLatest() (*models.Scan, error) {
	query := `
		SELECT id, sequence, total_playlists, total_artists, total_unique_tracks, snapshot, created_at, updated_at, deleted_at
		FROM scans
		WHERE deleted_at IS NULL
		ORDER BY sequence DESC
		LIMIT 1
	`

	scan, err := r.scanOne(r.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest scan: %w", err)
	}

	return scan, nil
}

// Update modifies an existing scan in the database
func (r *ScanRepository) Update(scan *models.Scan) error {
	if err := scan.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	scan.SetUpdatedAt(now)

	query := `
		UPDATE scans
		SET total_playlists = ?, total_artists = ?, total_unique_tracks = ?, snapshot = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, scan.TotalPlaylists(), scan.TotalArtists(), scan.TotalUniqueTracks(),
		scan.Snapshot(), now, scan.ID())
	if err != nil {
		return fmt.Errorf("failed to update scan: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrScanNotFound, scan.ID())
	}

	return nil
}

// Delete soft-deletes a scan by ID
func (r *ScanRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE scans
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrScanNotFound, id)
	}

	return nil
}

// DeleteAll soft-deletes every scan. Callers clearing history should also
// drop the scans' decisions via [DecisionRepository.DeleteAll].
func (r *ScanRepository) DeleteAll() error {
	query := `
		UPDATE scans
		SET deleted_at = ?
		WHERE deleted_at IS NULL
	`

	if _, err := r.db.Exec(query, time.Now()); err != nil {
		return fmt.Errorf("failed to delete scans: %w", err)
	}

	return nil
}

// List retrieves scans newest-first, excluding soft-deleted scans.
// Criteria: "limit" (int) caps the result set.
func (r *ScanRepository) List(criteria map[string]any) ([]*models.Scan, error) {
	query := `
		SELECT id, sequence, total_playlists, total_artists, total_unique_tracks, snapshot, created_at, updated_at, deleted_at
		FROM scans
		WHERE deleted_at IS NULL
		ORDER BY sequence DESC
	`

	args := []any{}

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	var scans []*models.Scan
	for rows.Next() {
		scan, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return scans, nil
}

// scanOne scans a single [sql.Row] into a [models.Scan]
func (r *ScanRepository) scanOne(row *sql.Row) (*models.Scan, error) {
	var (
		id                string
		sequence          int
		totalPlaylists    int
		totalArtists      int
		totalUniqueTracks int
		snapshot          string
		createdAt         time.Time
		updatedAt         time.Time
		deletedAt         sql.NullTime
	)

	err := row.Scan(&id, &sequence, &totalPlaylists, &totalArtists, &totalUniqueTracks, &snapshot, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	return buildScan(id, sequence, totalPlaylists, totalArtists, totalUniqueTracks, snapshot, createdAt, updatedAt, deletedAt), nil
}

// scanRow scans a row from [sql.Rows] into a [models.Scan]
func (r *ScanRepository) scanRow(rows *sql.Rows) (*models.Scan, error) {
	var (
		id                string
		sequence          int
		totalPlaylists    int
		totalArtists      int
		totalUniqueTracks int
		snapshot          string
		createdAt         time.Time
		updatedAt         time.Time
		deletedAt         sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &totalPlaylists, &totalArtists, &totalUniqueTracks, &snapshot, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan scan row: %w", err)
	}

	return buildScan(id, sequence, totalPlaylists, totalArtists, totalUniqueTracks, snapshot, createdAt, updatedAt, deletedAt), nil
}

func buildScan(id string, sequence, totalPlaylists, totalArtists, totalUniqueTracks int, snapshot string,
	createdAt, updatedAt time.Time, deletedAt sql.NullTime) *models.Scan {
	scan := models.NewScan(sequence, totalPlaylists, totalArtists, totalUniqueTracks, snapshot)
	scan.SetID(id)
	scan.SetCreatedAt(createdAt)
	scan.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		scan.SetDeletedAt(&deletedAt.Time)
	}

	return scan
}
