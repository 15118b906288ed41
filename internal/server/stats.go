package server

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/sift/internal/shared"
	"github.com/desertthunder/sift/internal/stats"
)

// SnapshotSource returns the snapshot the stats API serves, typically the
// most recent stored scan. Implementations return [shared.ErrNoSnapshot]
// when nothing has been scanned yet.
type SnapshotSource func() (*stats.Snapshot, error)

// StatsHandler serves library statistics from the latest snapshot.
// Implements the [Handler] interface. All endpoints are read-only.
type StatsHandler struct {
	source SnapshotSource
	logger *log.Logger
}

// NewStatsHandler creates a [StatsHandler] over the given snapshot source.
func NewStatsHandler(source SnapshotSource, logger *log.Logger) *StatsHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &StatsHandler{source: source, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *StatsHandler) Routes() []string {
	return []string{"/health", "/api/snapshot", "/api/totals", "/api/artists"}
}

// ServeHTTP dispatches the stats API endpoints.
//
// Every endpoint except /health loads the snapshot first; a missing snapshot
// answers 404 with a hint to run a scan.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if r.URL.Path == "/health" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	if h.source == nil {
		writeError(w, http.StatusInternalServerError, "no snapshot source configured")
		return
	}

	snapshot, err := h.source()
	if err != nil {
		if errors.Is(err, shared.ErrNoSnapshot) {
			writeError(w, http.StatusNotFound, "no snapshot stored; run 'sift scan' first")
			return
		}

		h.logger.Error("failed to load snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}

	switch r.URL.Path {
	case "/api/snapshot":
		writeJSON(w, http.StatusOK, snapshot)
	case "/api/totals":
		writeJSON(w, http.StatusOK, snapshot.Totals)
	case "/api/artists":
		writeJSON(w, http.StatusOK, snapshot.ArtistTable)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}
