// Package services defines the [Service] interface for music streaming providers and implements it for Spotify.
//
// # Service Interface
//
// Providers implement a common abstraction so the scan engine can fetch a
// library without knowing which provider backs it: authenticate, list
// playlists, list the items of each playlist, and enrich artist metadata.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token refresh.
//
// The [oauth2.Client] transparently refreshes expired tokens using the refresh
// token; [SpotifyService.SetTokenRefreshCallback] lets callers persist the
// replacement token set when that happens. Paginated endpoints are followed to
// exhaustion with configurable page sizes, and artist lookups are chunked to
// the batch limit the API accepts.
//
// # OAuth Service Extension
//
// The [OAuthService] interface extends Service for providers using the
// authorization-code flow.
//
// [SpotifyService] implements it for the local-callback login flow the CLI
// drives: build the authorization URL, exchange the callback code, and refresh
// stored tokens between runs.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : OAuth token expired, reauthorization needed
//   - [shared.ErrFetchFailed] : HTTP request failed or returned a non-2xx status
//   - [shared.ErrRefreshFailed] : refresh token exchange rejected
//
// # API Mappings
//
// Responses are converted to the neutral DTOs the engine consumes: playlists
// to [Playlist], playlist entries to [PlaylistItem] (episodes and local files
// flagged so aggregation can skip them), and artist lookups to [Artist].
package services
