package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/sift/internal/models"
	"github.com/desertthunder/sift/internal/shared"
)

// SessionRepository implements [models.Repository] for [models.Session] persistence.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session into the database with generated ID and sequence
func (r *SessionRepository) Create(session *models.Session) error {
	sequence, err := NextSequence(r.db, "sessions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	session.SetID(id)
	session.SetSequence(sequence)

	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO sessions (id, sequence, access_token, refresh_token, token_type, expires_at, spotify_user_id, display_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, session.AccessToken(), session.RefreshToken(), session.TokenType(),
		nullableTime(session.ExpiresAt()), session.SpotifyUserID(), session.DisplayName(), session.CreatedAt(), session.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID, excluding soft-deleted sessions
func (r *SessionRepository) Get(id string) (*models.Session, error) {
	query := `
		SELECT id, sequence, access_token, refresh_token, token_type, expires_at, spotify_user_id, display_name, created_at, updated_at, deleted_at
		FROM sessions
		WHERE id = ? AND deleted_at IS NULL
	`

	session, err := r.scanOne(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return session, nil
}

// GetLatest retrieves the most recently created non-deleted session, or nil
// if none exist. The credential provider treats nil as "not logged in".
func (r *SessionRepository) GetLatest() (*models.Session, error) {
	query := `
		SELECT id, sequence, access_token, refresh_token, token_type, expires_at, spotify_user_id, display_name, created_at, updated_at, deleted_at
		FROM sessions
		WHERE deleted_at IS NULL
		ORDER BY sequence DESC
		LIMIT 1
	`

	session, err := r.scanOne(r.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest session: %w", err)
	}

	return session, nil
}

// Update modifies an existing session in the database
func (r *SessionRepository) Update(session *models.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	session.SetUpdatedAt(now)

	query := `
		UPDATE sessions
		SET access_token = ?, refresh_token = ?, token_type = ?, expires_at = ?, spotify_user_id = ?, display_name = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, session.AccessToken(), session.RefreshToken(), session.TokenType(),
		nullableTime(session.ExpiresAt()), session.SpotifyUserID(), session.DisplayName(), now, session.ID())
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session not found or already deleted: %s", session.ID())
	}

	return nil
}

// Delete soft-deletes a session by ID
func (r *SessionRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE sessions
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session not found or already deleted: %s", id)
	}

	return nil
}

// DeleteAll soft-deletes every session, logging the account out everywhere.
func (r *SessionRepository) DeleteAll() error {
	query := `
		UPDATE sessions
		SET deleted_at = ?
		WHERE deleted_at IS NULL
	`

	if _, err := r.db.Exec(query, time.Now()); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}

	return nil
}

// List retrieves all sessions matching the given criteria, excluding soft-deleted sessions
func (r *SessionRepository) List(criteria map[string]any) ([]*models.Session, error) {
	query := `
		SELECT id, sequence, access_token, refresh_token, token_type, expires_at, spotify_user_id, display_name, created_at, updated_at, deleted_at
		FROM sessions
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if userID, ok := criteria["spotify_user_id"].(string); ok && userID != "" {
		query += " AND spotify_user_id = ?"
		args = append(args, userID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sessions, nil
}

// scanOne scans a single [sql.Row] into a [models.Session]
func (r *SessionRepository) scanOne(row *sql.Row) (*models.Session, error) {
	var (
		id            string
		sequence      int
		accessToken   string
		refreshToken  string
		tokenType     string
		expiresAt     sql.NullTime
		spotifyUserID string
		displayName   string
		createdAt     time.Time
		updatedAt     time.Time
		deletedAt     sql.NullTime
	)

	err := row.Scan(&id, &sequence, &accessToken, &refreshToken, &tokenType, &expiresAt, &spotifyUserID, &displayName, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	return buildSession(id, sequence, accessToken, refreshToken, tokenType, expiresAt, spotifyUserID, displayName, createdAt, updatedAt, deletedAt), nil
}

// scanRow scans a row from [sql.Rows] into a [models.Session]
func (r *SessionRepository) scanRow(rows *sql.Rows) (*models.Session, error) {
	var (
		id            string
		sequence      int
		accessToken   string
		refreshToken  string
		tokenType     string
		expiresAt     sql.NullTime
		spotifyUserID string
		displayName   string
		createdAt     time.Time
		updatedAt     time.Time
		deletedAt     sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &accessToken, &refreshToken, &tokenType, &expiresAt, &spotifyUserID, &displayName, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	return buildSession(id, sequence, accessToken, refreshToken, tokenType, expiresAt, spotifyUserID, displayName, createdAt, updatedAt, deletedAt), nil
}

func buildSession(id string, sequence int, accessToken, refreshToken, tokenType string, expiresAt sql.NullTime,
	spotifyUserID, displayName string, createdAt, updatedAt time.Time, deletedAt sql.NullTime) *models.Session {
	var expiry time.Time
	if expiresAt.Valid {
		expiry = expiresAt.Time
	}

	session := models.NewSession(sequence, accessToken, refreshToken, tokenType, expiry)
	session.SetID(id)
	session.SetUser(spotifyUserID, displayName)
	session.SetCreatedAt(createdAt)
	session.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		session.SetDeletedAt(&deletedAt.Time)
	}

	return session
}

// nullableTime maps the zero time to NULL so "no expiry" round-trips.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
