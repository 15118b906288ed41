package models

import (
	"fmt"
	"time"
)

// Session represents a persisted OAuth token set for the Spotify Web API.
//
// The newest non-deleted session is what the credential provider hands to a
// scan; an expired session with a refresh token is refreshed in place.
type Session struct {
	id            string
	sequence      int
	accessToken   string
	refreshToken  string
	tokenType     string
	expiresAt     time.Time
	spotifyUserID string
	displayName   string
	createdAt     time.Time
	updatedAt     time.Time
	deletedAt     *time.Time
}

// NewSession creates a Session from a completed token exchange.
// A zero expiresAt means the token carries no known expiry.
func NewSession(sequence int, accessToken, refreshToken, tokenType string, expiresAt time.Time) *Session {
	now := time.Now()
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &Session{
		sequence:     sequence,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		tokenType:    tokenType,
		expiresAt:    expiresAt,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Sequence() int { return s.sequence }

func (s *Session) AccessToken() string { return s.accessToken }

func (s *Session) RefreshToken() string { return s.refreshToken }

func (s *Session) TokenType() string { return s.tokenType }

func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

func (s *Session) SpotifyUserID() string { return s.spotifyUserID }

func (s *Session) DisplayName() string { return s.displayName }

func (s *Session) CreatedAt() time.Time { return s.createdAt }

func (s *Session) UpdatedAt() time.Time { return s.updatedAt }

func (s *Session) DeletedAt() *time.Time { return s.deletedAt }

func (s *Session) SetID(id string) { s.id = id }

func (s *Session) SetSequence(seq int) { s.sequence = seq }

func (s *Session) SetCreatedAt(t time.Time) { s.createdAt = t }

func (s *Session) SetUpdatedAt(t time.Time) { s.updatedAt = t }

func (s *Session) SetDeletedAt(t *time.Time) { s.deletedAt = t }

// SetUser records the Spotify account the session belongs to.
func (s *Session) SetUser(spotifyUserID, displayName string) {
	s.spotifyUserID = spotifyUserID
	s.displayName = displayName
}

// UpdateTokens replaces the token set after a refresh. An empty refreshToken
// keeps the existing one; Spotify omits it when the old token stays valid.
func (s *Session) UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) {
	s.accessToken = accessToken
	if refreshToken != "" {
		s.refreshToken = refreshToken
	}
	s.expiresAt = expiresAt
	s.updatedAt = time.Now()
}

// Expired reports whether the access token is past its expiry.
// Sessions without a known expiry never report expired.
func (s *Session) Expired() bool {
	if s.expiresAt.IsZero() {
		return false
	}
	return time.Now().After(s.expiresAt)
}

// Validate checks that the session carries a usable access token.
func (s *Session) Validate() error {
	if s.accessToken == "" {
		return fmt.Errorf("session access token is required")
	}
	return nil
}
