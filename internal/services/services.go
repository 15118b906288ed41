// package services defines interface Service for interacting with music service HTTP APIs
package services

import (
	"context"

	"golang.org/x/oauth2"
)

// Service defines the interface for music service providers that sift can
// scan: credential handling plus the paginated fetch surface the aggregation
// engine consumes.
type Service interface {
	// Authenticate performs OAuth2 token authentication with the service.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// CurrentUser retrieves the authenticated user's account info.
	CurrentUser(ctx context.Context) (*User, error)

	// FetchAllPlaylists retrieves every playlist in the authenticated user's
	// library, following pagination until the set is complete.
	FetchAllPlaylists(ctx context.Context) ([]Playlist, error)

	// FetchAllPlaylistTracks retrieves every item of one playlist, following
	// pagination until the set is complete.
	FetchAllPlaylistTracks(ctx context.Context, playlistID string) ([]PlaylistItem, error)

	// FetchArtistsByIDs retrieves artist metadata for the given identifiers.
	// Accepts more identifiers than one request can hold and chunks
	// internally; callers pass the full set.
	FetchArtistsByIDs(ctx context.Context, ids []string) ([]Artist, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends Service for providers using the three-legged
// authorization-code flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the provider's authorization URL bound to state.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the OAuth2 configuration backing the flow, for
	// callback handling and code exchange.
	GetOAuthConfig() *oauth2.Config

	// Refresh exchanges a refresh token for a fresh token set without user
	// interaction.
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)

	// SetTokenRefreshCallback registers a hook invoked when the client
	// refreshes transparently mid-request, so new tokens can be persisted.
	SetTokenRefreshCallback(cb func(*oauth2.Token))
}

// User represents an authenticated account on a music service
type User struct {
	ID          string
	DisplayName string
}

// Playlist represents a playlist as listed in the user's library
type Playlist struct {
	ID         string
	Name       string
	Owner      string
	TrackCount int
	Public     bool
}

// ArtistRef is a track's credited artist reference (identifier + display name)
type ArtistRef struct {
	ID   string
	Name string
}

// PlaylistItem represents one entry of a playlist's track list.
//
// Kind carries the service's type tag ("track", "episode", ...); items whose
// payload was missing have a zero Kind. Local marks locally-added files,
// which carry no stable identifier.
type PlaylistItem struct {
	TrackID   string
	TrackName string
	Kind      string
	Local     bool
	Artists   []ArtistRef
}

// Artist represents full artist metadata from the service catalog
type Artist struct {
	ID       string
	Name     string
	ImageURL string
}
