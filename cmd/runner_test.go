package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/sift/internal/models"
	"github.com/desertthunder/sift/internal/shared"
	"github.com/desertthunder/sift/internal/stats"
	tu "github.com/desertthunder/sift/internal/testing"
	"golang.org/x/oauth2"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// sampleSnapshot is a minimal valid snapshot for command tests.
func sampleSnapshot() *stats.Snapshot {
	img := "http://img.example/aurora"
	mainA := "a1"
	return &stats.Snapshot{
		Totals: stats.Totals{TotalPlaylists: 2, TotalArtists: 2, TotalUniqueTracks: 3},
		TopArtistsBySongs: []stats.RankedArtist{
			{ArtistID: "a1", ArtistName: "Aurora", ImageURL: &img, Value: 2, Percent: 66.7},
			{ArtistID: "a2", ArtistName: "Brume", Value: 1, Percent: 33.3},
		},
		TopArtistsByPlaylists: []stats.RankedArtist{
			{ArtistID: "a1", ArtistName: "Aurora", ImageURL: &img, Value: 2, Percent: 100},
		},
		TopTracksByPlaylists: []stats.RankedTrack{
			{TrackID: "t1", TrackName: "Dawn", MainArtistID: &mainA, MainArtistName: "Aurora", PlaylistCount: 2, Percent: 100},
		},
		ArtistTable: []stats.ArtistRow{
			{ArtistID: "a1", ArtistName: "Aurora", ImageURL: &img, SongCount: 2, SongPercent: 66.7, PlaylistCount: 2, PlaylistPercent: 100},
			{ArtistID: "a2", ArtistName: "Brume", SongCount: 1, SongPercent: 33.3, PlaylistCount: 1, PlaylistPercent: 50},
		},
		Artists: []stats.ReviewArtist{
			{ArtistID: "a1", ArtistName: "Aurora", ImageURL: &img, TrackCount: 2},
			{ArtistID: "a2", ArtistName: "Brume", TrackCount: 1},
		},
	}
}

// storeSnapshot persists a snapshot as a scan row for commands to find.
func storeSnapshot(t *testing.T, r *Runner, snapshot *stats.Snapshot) *models.Scan {
	t.Helper()

	data, err := shared.MarshalJSON(snapshot, true)
	if err != nil {
		t.Fatalf("failed to marshal snapshot: %v", err)
	}

	scan := models.NewScan(0, snapshot.Totals.TotalPlaylists, snapshot.Totals.TotalArtists, snapshot.Totals.TotalUniqueTracks, string(data))
	if err := r.scans.Create(scan); err != nil {
		t.Fatalf("failed to store scan: %v", err)
	}

	return scan
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			service := &tu.MockService{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Service:    service,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.service != service {
				t.Error("expected service to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be built over the service")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses timeout client", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				HTTPClient: nil,
			})

			if runner.httpClient == nil {
				t.Fatal("expected default httpClient to be set")
			}
			if runner.httpClient.Timeout == 0 {
				t.Error("expected default httpClient to carry a timeout")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "/test/path/sift.toml",
			})

			if runner.configPath != "/test/path/sift.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with empty configPath resolves default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "",
			})

			if runner.configPath == "" {
				t.Error("expected configPath to resolve to a default")
			}
		})

		t.Run("with database attaches repositories", func(t *testing.T) {
			db := setupTestDB(t)
			runner := NewRunner(RunnerOpts{DB: db})

			if runner.db != db {
				t.Error("expected db handle to be set")
			}
			if runner.scans == nil || runner.sessions == nil || runner.decisions == nil {
				t.Error("expected repositories to be attached")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writes plain text without formatting", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("simple text")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "simple text" {
				t.Errorf("expected 'simple text', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlainln", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		err := runner.writePlainln("done %d", 1)

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "\ndone 1\n" {
			t.Errorf("expected text wrapped in newlines, got %q", output.String())
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		names := make(map[string]bool, len(commands))
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, name := range []string{"setup", "auth", "scan", "stats", "review", "history", "export", "import", "serve"} {
			if !names[name] {
				t.Errorf("expected %q command to be registered", name)
			}
		}
	})

	t.Run("SetLogger", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		original := runner.logger

		replacement := shared.NewLogger(&bytes.Buffer{})
		prev := runner.SetLogger(replacement)

		if prev != original {
			t.Error("expected SetLogger to return the previous logger")
		}
		if runner.logger != replacement {
			t.Error("expected logger to be replaced")
		}
	})

	t.Run("database", func(t *testing.T) {
		t.Run("opens and migrates on first use", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Database.Path = filepath.Join(t.TempDir(), "sift.db")
			runner := NewRunner(RunnerOpts{Config: config})

			db, err := runner.database()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			t.Cleanup(func() { db.Close() })

			if runner.scans == nil || runner.sessions == nil || runner.decisions == nil {
				t.Error("expected repositories to be attached")
			}

			again, err := runner.database()
			if err != nil {
				t.Fatalf("expected no error on second call, got %v", err)
			}
			if again != db {
				t.Error("expected second call to reuse the open handle")
			}
		})

		t.Run("reuses an attached handle", func(t *testing.T) {
			db := setupTestDB(t)
			runner := NewRunner(RunnerOpts{DB: db})

			got, err := runner.database()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != db {
				t.Error("expected the attached handle back")
			}
		})
	})

	t.Run("resolveSnapshot", func(t *testing.T) {
		t.Run("from exported file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "snapshot.json")
			data, err := shared.MarshalJSON(sampleSnapshot(), true)
			if err != nil {
				t.Fatalf("failed to marshal snapshot: %v", err)
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				t.Fatalf("failed to write snapshot file: %v", err)
			}

			runner := NewRunner(RunnerOpts{DB: setupTestDB(t)})

			snapshot, scan, err := runner.resolveSnapshot(path, "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if scan != nil {
				t.Error("expected nil scan for file input")
			}
			if snapshot.Totals.TotalUniqueTracks != 3 {
				t.Errorf("expected totals from file, got %+v", snapshot.Totals)
			}
		})

		t.Run("missing file", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{DB: setupTestDB(t)})

			_, _, err := runner.resolveSnapshot(filepath.Join(t.TempDir(), "absent.json"), "")

			if err == nil {
				t.Fatal("expected error for missing file")
			}
			if !strings.Contains(err.Error(), "failed to read snapshot file") {
				t.Errorf("expected read error, got %v", err)
			}
		})

		t.Run("malformed file wraps import error", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "broken.json")
			if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
				t.Fatalf("failed to write file: %v", err)
			}

			runner := NewRunner(RunnerOpts{DB: setupTestDB(t)})

			_, _, err := runner.resolveSnapshot(path, "")

			if !errors.Is(err, shared.ErrMalformedImport) {
				t.Errorf("expected ErrMalformedImport, got %v", err)
			}
		})

		t.Run("from latest stored scan", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{DB: setupTestDB(t)})
			stored := storeSnapshot(t, runner, sampleSnapshot())

			snapshot, scan, err := runner.resolveSnapshot("", "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if scan == nil || scan.ID() != stored.ID() {
				t.Error("expected the stored scan back")
			}
			if snapshot.Totals.TotalPlaylists != 2 {
				t.Errorf("expected stored totals, got %+v", snapshot.Totals)
			}
		})

		t.Run("by scan id", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{DB: setupTestDB(t)})
			first := storeSnapshot(t, runner, sampleSnapshot())

			second := sampleSnapshot()
			second.Totals.TotalPlaylists = 9
			storeSnapshot(t, runner, second)

			snapshot, scan, err := runner.resolveSnapshot("", first.ID())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if scan.ID() != first.ID() {
				t.Errorf("expected scan %s, got %s", first.ID(), scan.ID())
			}
			if snapshot.Totals.TotalPlaylists != 2 {
				t.Errorf("expected the older snapshot, got %+v", snapshot.Totals)
			}
		})

		t.Run("unknown scan id", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{DB: setupTestDB(t)})
			storeSnapshot(t, runner, sampleSnapshot())

			_, _, err := runner.resolveSnapshot("", "no-such-scan")

			if !errors.Is(err, shared.ErrScanNotFound) {
				t.Errorf("expected ErrScanNotFound, got %v", err)
			}
		})

		t.Run("no snapshot stored", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{DB: setupTestDB(t)})

			_, _, err := runner.resolveSnapshot("", "")

			if !errors.Is(err, shared.ErrNoSnapshot) {
				t.Errorf("expected ErrNoSnapshot, got %v", err)
			}
			if !strings.Contains(err.Error(), "sift scan") {
				t.Errorf("expected hint to run a scan, got %v", err)
			}
		})
	})

	t.Run("sessionCredentials", func(t *testing.T) {
		t.Run("no session stored", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{DB: setupTestDB(t)})

			_, err := runner.sessionCredentials(context.Background())

			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
			if !strings.Contains(err.Error(), "sift auth login") {
				t.Errorf("expected login hint, got %v", err)
			}
		})

		t.Run("valid session", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{DB: setupTestDB(t)})

			session := models.NewSession(0, "access_tok", "refresh_tok", "Bearer", time.Now().Add(time.Hour))
			if err := runner.sessions.Create(session); err != nil {
				t.Fatalf("failed to create session: %v", err)
			}

			credentials, err := runner.sessionCredentials(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if credentials["access_token"] != "access_tok" {
				t.Errorf("expected stored access token, got %q", credentials["access_token"])
			}
			if credentials["refresh_token"] != "refresh_tok" {
				t.Errorf("expected stored refresh token, got %q", credentials["refresh_token"])
			}
		})

		t.Run("expired session without refresh token", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{DB: setupTestDB(t)})

			session := models.NewSession(0, "stale_tok", "", "Bearer", time.Now().Add(-time.Hour))
			if err := runner.sessions.Create(session); err != nil {
				t.Fatalf("failed to create session: %v", err)
			}

			_, err := runner.sessionCredentials(context.Background())

			if !errors.Is(err, shared.ErrTokenExpired) {
				t.Errorf("expected ErrTokenExpired, got %v", err)
			}
		})
	})

	t.Run("storeRefreshedToken", func(t *testing.T) {
		t.Run("updates the stored session", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{DB: setupTestDB(t)})

			session := models.NewSession(0, "old_tok", "old_refresh", "Bearer", time.Now().Add(-time.Minute))
			if err := runner.sessions.Create(session); err != nil {
				t.Fatalf("failed to create session: %v", err)
			}

			runner.storeRefreshedToken(&oauth2.Token{
				AccessToken:  "new_tok",
				RefreshToken: "new_refresh",
				Expiry:       time.Now().Add(time.Hour),
			})

			updated, err := runner.sessions.GetLatest()
			if err != nil {
				t.Fatalf("failed to reload session: %v", err)
			}
			if updated.AccessToken() != "new_tok" {
				t.Errorf("expected refreshed access token, got %q", updated.AccessToken())
			}
			if updated.RefreshToken() != "new_refresh" {
				t.Errorf("expected refreshed refresh token, got %q", updated.RefreshToken())
			}
		})

		t.Run("no-op without repositories", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			// Must not panic when nothing is attached
			runner.storeRefreshedToken(&oauth2.Token{AccessToken: "tok"})
		})
	})
}
