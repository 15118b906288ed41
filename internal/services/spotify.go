// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/desertthunder/sift/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// artistChunkSize is the Spotify cap on ids per /artists request.
	artistChunkSize = 50

	defaultPlaylistPageSize = 50
	defaultTrackPageSize    = 100
)

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Genres []string       `json:"genres"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
//
// Type distinguishes tracks from episodes in playlist contexts; locally-added
// files report IsLocal and carry no id.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	IsLocal    bool            `json:"is_local"`
	Artists    []SpotifyArtist `json:"artists"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifyPlaylistTrack represents a track entry within a playlist context.
// Track is null for entries whose payload is unavailable.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	IsLocal bool          `json:"is_local"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlaylistTracks represents one page of a playlist's items.
type SpotifyPaginatedPlaylistTracks struct {
	Items    []SpotifyPlaylistTrack `json:"items"`
	Total    int                    `json:"total"`
	Limit    int                    `json:"limit"`
	Offset   int                    `json:"offset"`
	Next     *string                `json:"next"`
	Previous *string                `json:"previous"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items    []SpotifySimplePlaylist `json:"items"`
	Total    int                     `json:"total"`
	Limit    int                     `json:"limit"`
	Offset   int                     `json:"offset"`
	Next     *string                 `json:"next"`
	Previous *string                 `json:"previous"`
}

type simplePlaylistTrack struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Owner       Owner               `json:"owner"`
	Public      bool                `json:"public"`
	Tracks      simplePlaylistTrack `json:"tracks"`
	Images      []SpotifyImage      `json:"images"`
	URI         string              `json:"uri"`
}

type severalArtists struct {
	Artists []*SpotifyArtist `json:"artists"`
}

// SpotifyService implements the Service interface for Spotify API interactions.
// Uses [oauth2] for authentication and provides methods for playlist and artist operations.
type SpotifyService struct {
	config           *oauth2.Config
	token            *oauth2.Token
	httpClient       *http.Client
	credentials      map[string]string
	playlistPageSize int
	trackPageSize    int
	onTokenRefresh   func(*oauth2.Token)
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://127.0.0.1:3000/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-read-private",
			"playlist-read-collaborative",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:           config,
		httpClient:       http.DefaultClient,
		credentials:      credentials,
		playlistPageSize: defaultPlaylistPageSize,
		trackPageSize:    defaultTrackPageSize,
	}, nil
}

// SetPageSizes overrides the pagination page sizes, clamped to the API maxima.
// Zero or negative values keep the defaults.
func (s *SpotifyService) SetPageSizes(playlists, tracks int) {
	if playlists > 0 {
		s.playlistPageSize = min(playlists, defaultPlaylistPageSize)
	}
	if tracks > 0 {
		s.trackPageSize = min(tracks, defaultTrackPageSize)
	}
}

// SetTokenRefreshCallback registers a callback invoked whenever the underlying
// token source vends a new access token, so callers can persist refreshed
// tokens. Pass nil to clear it.
func (s *SpotifyService) SetTokenRefreshCallback(cb func(*oauth2.Token)) {
	s.onTokenRefresh = cb
}

// Authenticate performs OAuth2 authentication with Spotify. Expects either an "access_token" or "auth_code" in credentials.
//
// A "refresh_token" alongside the access token lets the client refresh
// transparently mid-scan; refreshed tokens are reported through the
// registered callback.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		token := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
		if refresh := credentials["refresh_token"]; refresh != "" {
			token.RefreshToken = refresh
		}
		s.setToken(ctx, token)
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %s", shared.ErrAuthFailed, err)
		}
		s.setToken(ctx, token)
		return nil
	}

	return fmt.Errorf("%w: missing access_token or auth_code in credentials", shared.ErrNotAuthenticated)
}

// setToken installs the token and rebuilds the HTTP client around a
// refresh-aware token source.
func (s *SpotifyService) setToken(ctx context.Context, token *oauth2.Token) {
	s.token = token
	source := &refreshableTokenSource{
		source:   s.config.TokenSource(ctx, token),
		callback: s.onTokenRefresh,
		last:     token.AccessToken,
	}
	s.httpClient = oauth2.NewClient(ctx, source)
}

// Token returns the current token set, nil before authentication.
func (s *SpotifyService) Token() *oauth2.Token {
	return s.token
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig exposes the OAuth2 configuration for callback handling.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// Refresh exchanges a refresh token for a fresh token set without user interaction.
func (s *SpotifyService) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}

	source := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrRefreshFailed, err)
	}

	return token, nil
}

// doRequest performs an authenticated HTTP request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body interface{}, result interface{}) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	apiURL := spotifyBaseURL + endpoint

	var req *http.Request
	var err error

	if body != nil {
		// TODO: handle request body if needed for POST/PUT
		return fmt.Errorf("%w request body", shared.ErrNotImplemented)
	}

	req, err = http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %s", shared.ErrFetchFailed, method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s: status %d", shared.ErrFetchFailed, method, endpoint, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, "GET", "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserPlaylists retrieves one page of the current user's playlists.
func (s *SpotifyService) UserPlaylists(ctx context.Context, limit, offset int) (*SpotifyPaginatedPlaylists, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > defaultPlaylistPageSize {
		limit = defaultPlaylistPageSize
	}

	endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)

	var response SpotifyPaginatedPlaylists
	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// PlaylistTracks retrieves one page of a playlist's items.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (*SpotifyPaginatedPlaylistTracks, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > defaultTrackPageSize {
		limit = defaultTrackPageSize
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", url.PathEscape(playlistID), limit, offset)

	var response SpotifyPaginatedPlaylistTracks
	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// SeveralArtists retrieves multiple artists by their IDs (up to 50).
// Unknown ids come back as null entries and are dropped.
func (s *SpotifyService) SeveralArtists(ctx context.Context, artistIDs []string) ([]SpotifyArtist, error) {
	if len(artistIDs) == 0 {
		return nil, fmt.Errorf("no artist IDs provided")
	}
	if len(artistIDs) > artistChunkSize {
		return nil, fmt.Errorf("maximum %d artist IDs allowed", artistChunkSize)
	}

	ids := strings.Join(artistIDs, ",")
	endpoint := fmt.Sprintf("/artists?ids=%s", url.QueryEscape(ids))

	var response severalArtists
	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	var artists []SpotifyArtist
	for _, artist := range response.Artists {
		if artist != nil {
			artists = append(artists, *artist)
		}
	}

	return artists, nil
}

// Service interface implementation

// CurrentUser retrieves the authenticated user's account info.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*User, error) {
	profile, err := s.UserProfile(ctx)
	if err != nil {
		return nil, err
	}

	return &User{
		ID:          profile.ID,
		DisplayName: profile.DisplayName,
	}, nil
}

// FetchAllPlaylists retrieves all playlists for the authenticated user.
func (s *SpotifyService) FetchAllPlaylists(ctx context.Context) ([]Playlist, error) {
	var allPlaylists []Playlist
	limit := s.playlistPageSize
	offset := 0

	for {
		response, err := s.UserPlaylists(ctx, limit, offset)
		if err != nil {
			return nil, err
		}

		for _, sp := range response.Items {
			allPlaylists = append(allPlaylists, Playlist{
				ID:         sp.ID,
				Name:       sp.Name,
				Owner:      sp.Owner.DisplayName,
				TrackCount: sp.Tracks.Total,
				Public:     sp.Public,
			})
		}

		if response.Next == nil {
			break
		}
		offset += limit
	}

	return allPlaylists, nil
}

// FetchAllPlaylistTracks retrieves every item of a playlist across all pages.
//
// Entries are mapped as-is; filtering of episodes, local files, and id-less
// tracks is the aggregation engine's job.
func (s *SpotifyService) FetchAllPlaylistTracks(ctx context.Context, playlistID string) ([]PlaylistItem, error) {
	var items []PlaylistItem
	limit := s.trackPageSize
	offset := 0

	for {
		response, err := s.PlaylistTracks(ctx, playlistID, limit, offset)
		if err != nil {
			return nil, err
		}

		for _, entry := range response.Items {
			item := PlaylistItem{Local: entry.IsLocal}

			if entry.Track != nil {
				item.TrackID = entry.Track.ID
				item.TrackName = entry.Track.Name
				item.Kind = entry.Track.Type
				item.Local = item.Local || entry.Track.IsLocal

				for _, artist := range entry.Track.Artists {
					item.Artists = append(item.Artists, ArtistRef{ID: artist.ID, Name: artist.Name})
				}
			}

			items = append(items, item)
		}

		if response.Next == nil {
			break
		}
		offset += limit
	}

	return items, nil
}

// FetchArtistsByIDs retrieves artist metadata for all given ids, chunking
// requests at the API's 50-id cap. The first catalog image wins.
func (s *SpotifyService) FetchArtistsByIDs(ctx context.Context, ids []string) ([]Artist, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var artists []Artist
	for start := 0; start < len(ids); start += artistChunkSize {
		end := min(start+artistChunkSize, len(ids))

		chunk, err := s.SeveralArtists(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}

		for _, sa := range chunk {
			artist := Artist{ID: sa.ID, Name: sa.Name}
			if len(sa.Images) > 0 {
				artist.ImageURL = sa.Images[0].URL
			}
			artists = append(artists, artist)
		}
	}

	return artists, nil
}

// refreshableTokenSource wraps an [oauth2.TokenSource] and reports newly
// vended tokens through a callback, so refreshed credentials can be persisted.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)
	mu       sync.Mutex
	last     string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := token.AccessToken != r.last
	r.last = token.AccessToken
	r.mu.Unlock()

	if changed && r.callback != nil {
		r.callback(token)
	}

	return token, nil
}
