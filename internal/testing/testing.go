// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/sift/internal/services"
)

// MockService is a configurable test double for [services.Service].
//
// Fixtures are returned as-is; error fields short-circuit the corresponding
// call. Call counters are safe for concurrent fetches.
type MockService struct {
	User      *services.User
	Playlists []services.Playlist
	Items     map[string][]services.PlaylistItem
	Artists   []services.Artist

	AuthErr      error
	UserErr      error
	PlaylistsErr error
	TracksErr    error
	TracksErrFor string // playlist id whose track fetch fails; empty fails all when TracksErr is set
	ArtistsErr   error

	mu            sync.Mutex
	AuthCalls     int
	TrackCalls    []string
	ArtistIDCalls [][]string
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	m.mu.Lock()
	m.AuthCalls++
	m.mu.Unlock()
	return m.AuthErr
}

func (m *MockService) CurrentUser(ctx context.Context) (*services.User, error) {
	if m.UserErr != nil {
		return nil, m.UserErr
	}
	if m.User == nil {
		return &services.User{ID: "mock_user", DisplayName: "Mock User"}, nil
	}
	return m.User, nil
}

func (m *MockService) FetchAllPlaylists(ctx context.Context) ([]services.Playlist, error) {
	if m.PlaylistsErr != nil {
		return nil, m.PlaylistsErr
	}
	return m.Playlists, nil
}

func (m *MockService) FetchAllPlaylistTracks(ctx context.Context, playlistID string) ([]services.PlaylistItem, error) {
	m.mu.Lock()
	m.TrackCalls = append(m.TrackCalls, playlistID)
	m.mu.Unlock()

	if m.TracksErr != nil && (m.TracksErrFor == "" || m.TracksErrFor == playlistID) {
		return nil, m.TracksErr
	}
	return m.Items[playlistID], nil
}

func (m *MockService) FetchArtistsByIDs(ctx context.Context, ids []string) ([]services.Artist, error) {
	m.mu.Lock()
	m.ArtistIDCalls = append(m.ArtistIDCalls, ids)
	m.mu.Unlock()

	if m.ArtistsErr != nil {
		return nil, m.ArtistsErr
	}

	requested := make(map[string]bool, len(ids))
	for _, id := range ids {
		requested[id] = true
	}

	var matched []services.Artist
	for _, artist := range m.Artists {
		if requested[artist.ID] {
			matched = append(matched, artist)
		}
	}
	return matched, nil
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// RoundTripFunc adapts a function into an [http.RoundTripper], letting tests
// route responses by request URL.
type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
