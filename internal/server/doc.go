// Package server provides HTTP routing, middleware, and the handlers behind
// sift's two local HTTP surfaces: the OAuth callback used during login and
// the read-only stats API exposed by 'sift serve'.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added wraps first), so
// requests pass through middleware in registration order. [RequestLogger] is
// the stock middleware; it logs one line per request.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method
// filtering, and answers unmatched paths with a JSON 404 body.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the
// authorization code for tokens, and sends the result through a channel. It
// only processes one callback to prevent replay attacks.
//
// 'sift auth login' starts a temporary HTTP server on the configured redirect
// address, waits for the callback, and shuts the server down after receiving
// the token.
//
// # Stats API
//
// [StatsHandler] serves the latest stored snapshot over four read-only
// endpoints: /health, /api/snapshot, /api/totals, and /api/artists. The
// snapshot comes from a [SnapshotSource] function, keeping the handler
// decoupled from storage. There are no mutation endpoints.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib
// handler interface and adds routes, allowing a handler to register every
// path it owns in one place.
package server
