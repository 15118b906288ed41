package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/sift/internal/models"
	"github.com/desertthunder/sift/internal/shared"
)

// DecisionRepository implements [models.Repository] for [models.Decision] persistence.
//
// Decisions are soft-deleted like scans, so clearing history or redoing a
// review leaves the old verdicts on disk. The (scan_id, artist_id) pair is
// unique among live rows only; a redone review soft-deletes the previous
// verdicts via [DecisionRepository.ReplaceForScan] and writes fresh ones.
type DecisionRepository struct {
	db *sql.DB
}

// NewDecisionRepository creates a new [DecisionRepository] with the given database connection
func NewDecisionRepository(db *sql.DB) *DecisionRepository {
	return &DecisionRepository{db: db}
}

// Create inserts a new decision into the database with generated ID and sequence
func (r *DecisionRepository) Create(decision *models.Decision) error {
	sequence, err := NextSequence(r.db, "decisions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	decision.SetID(id)
	decision.SetSequence(sequence)

	if err := decision.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO decisions (id, sequence, scan_id, artist_id, artist_name, verdict, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, decision.ScanID(), decision.ArtistID(), decision.ArtistName(),
		string(decision.Verdict()), decision.CreatedAt(), decision.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert decision: %w", err)
	}

	return nil
}

// Get retrieves a decision by ID, excluding soft-deleted decisions
func (r *DecisionRepository) Get(id string) (*models.Decision, error) {
	query := `
		SELECT id, sequence, scan_id, artist_id, artist_name, verdict, created_at, updated_at, deleted_at
		FROM decisions
		WHERE id = ? AND deleted_at IS NULL
	`

	decision, err := r.scanOne(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("decision not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query decision: %w", err)
	}

	return decision, nil
}

// Update modifies an existing decision's verdict
func (r *DecisionRepository) Update(decision *models.Decision) error {
	if err := decision.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	decision.SetUpdatedAt(now)

	query := `
		UPDATE decisions
		SET artist_name = ?, verdict = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, decision.ArtistName(), string(decision.Verdict()), now, decision.ID())
	if err != nil {
		return fmt.Errorf("failed to update decision: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("decision not found: %s", decision.ID())
	}

	return nil
}

// Delete soft-deletes a decision by ID
func (r *DecisionRepository) Delete(id string) error {
	query := `
		UPDATE decisions
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete decision: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("decision not found: %s", id)
	}

	return nil
}

// DeleteForScan soft-deletes every decision recorded for the given scan.
func (r *DecisionRepository) DeleteForScan(scanID string) error {
	query := `
		UPDATE decisions
		SET deleted_at = ?
		WHERE scan_id = ? AND deleted_at IS NULL
	`

	if _, err := r.db.Exec(query, time.Now(), scanID); err != nil {
		return fmt.Errorf("failed to delete decisions for scan %s: %w", scanID, err)
	}

	return nil
}

// DeleteAll soft-deletes every decision. Used when clearing scan history.
func (r *DecisionRepository) DeleteAll() error {
	query := `
		UPDATE decisions
		SET deleted_at = ?
		WHERE deleted_at IS NULL
	`

	if _, err := r.db.Exec(query, time.Now()); err != nil {
		return fmt.Errorf("failed to delete decisions: %w", err)
	}

	return nil
}

// ReplaceForScan atomically replaces a scan's decisions with the given set.
// The previous verdicts are soft-deleted and the incoming decisions are
// assigned fresh ids and sequences inside the transaction, so a half-written
// review never survives a failure.
func (r *DecisionRepository) ReplaceForScan(scanID string, decisions []*models.Decision) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	retire := `
		UPDATE decisions
		SET deleted_at = ?
		WHERE scan_id = ? AND deleted_at IS NULL
	`
	if _, err := tx.Exec(retire, time.Now(), scanID); err != nil {
		return fmt.Errorf("failed to clear decisions for scan %s: %w", scanID, err)
	}

	query := `
		INSERT INTO decisions (id, sequence, scan_id, artist_id, artist_name, verdict, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, decision := range decisions {
		var sequence int
		if err := tx.QueryRow("UPDATE decisions_sequence SET value = value + 1 WHERE id = 1 RETURNING value").Scan(&sequence); err != nil {
			return fmt.Errorf("failed to advance decisions_sequence: %w", err)
		}

		decision.SetID(shared.GenerateID())
		decision.SetSequence(sequence)

		if err := decision.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		_, err = tx.Exec(query, decision.ID(), sequence, scanID, decision.ArtistID(), decision.ArtistName(),
			string(decision.Verdict()), decision.CreatedAt(), decision.UpdatedAt())
		if err != nil {
			return fmt.Errorf("failed to insert decision: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit decisions: %w", err)
	}

	return nil
}

// List retrieves all decisions matching the given criteria, excluding
// soft-deleted decisions.
// Criteria: "scan_id" and "verdict" filter; results order by sequence.
func (r *DecisionRepository) List(criteria map[string]any) ([]*models.Decision, error) {
	query := `
		SELECT id, sequence, scan_id, artist_id, artist_name, verdict, created_at, updated_at, deleted_at
		FROM decisions
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if scanID, ok := criteria["scan_id"].(string); ok && scanID != "" {
		query += " AND scan_id = ?"
		args = append(args, scanID)
	}

	if verdict, ok := criteria["verdict"].(string); ok && verdict != "" {
		query += " AND verdict = ?"
		args = append(args, verdict)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*models.Decision
	for rows.Next() {
		decision, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, decision)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return decisions, nil
}

// scanOne scans a single [sql.Row] into a [models.Decision]
func (r *DecisionRepository) scanOne(row *sql.Row) (*models.Decision, error) {
	var (
		id         string
		sequence   int
		scanID     string
		artistID   string
		artistName string
		verdict    string
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := row.Scan(&id, &sequence, &scanID, &artistID, &artistName, &verdict, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	return buildDecision(id, sequence, scanID, artistID, artistName, verdict, createdAt, updatedAt, deletedAt), nil
}

// scanRow scans a row from [sql.Rows] into a [models.Decision]
func (r *DecisionRepository) scanRow(rows *sql.Rows) (*models.Decision, error) {
	var (
		id         string
		sequence   int
		scanID     string
		artistID   string
		artistName string
		verdict    string
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &scanID, &artistID, &artistName, &verdict, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan decision: %w", err)
	}

	return buildDecision(id, sequence, scanID, artistID, artistName, verdict, createdAt, updatedAt, deletedAt), nil
}

func buildDecision(id string, sequence int, scanID, artistID, artistName, verdict string, createdAt, updatedAt time.Time, deletedAt sql.NullTime) *models.Decision {
	decision := models.NewDecision(sequence, scanID, artistID, artistName, models.Verdict(verdict))
	decision.SetID(id)
	decision.SetCreatedAt(createdAt)
	decision.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		decision.SetDeletedAt(&deletedAt.Time)
	}

	return decision
}
