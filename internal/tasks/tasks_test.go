package tasks

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/desertthunder/sift/internal/services"
	"github.com/desertthunder/sift/internal/shared"
	tu "github.com/desertthunder/sift/internal/testing"
)

// libraryMock builds a two-playlist library: t1 appears in both playlists,
// t2 credits two artists, and p1 carries a local file that never counts.
func libraryMock() *tu.MockService {
	return &tu.MockService{
		Playlists: []services.Playlist{
			{ID: "p1", Name: "Morning Mix", TrackCount: 3},
			{ID: "p2", Name: "Deep Focus", TrackCount: 2},
		},
		Items: map[string][]services.PlaylistItem{
			"p1": {
				{TrackID: "t1", TrackName: "Dawn", Kind: "track", Artists: []services.ArtistRef{{ID: "a1", Name: "Aurora"}}},
				{TrackID: "t2", TrackName: "Daylight", Kind: "track", Artists: []services.ArtistRef{{ID: "a1", Name: "Aurora"}, {ID: "a2", Name: "Brume"}}},
				{TrackName: "Home Recording", Kind: "track", Local: true},
			},
			"p2": {
				{TrackID: "t1", TrackName: "Dawn", Kind: "track", Artists: []services.ArtistRef{{ID: "a1", Name: "Aurora"}}},
				{TrackID: "t3", TrackName: "Dusk", Kind: "track", Artists: []services.ArtistRef{{ID: "a2", Name: "Brume"}}},
			},
		},
		Artists: []services.Artist{
			{ID: "a1", Name: "Aurora", ImageURL: "http://img/a1"},
			{ID: "a2", Name: "Brume", ImageURL: "http://img/a2"},
		},
	}
}

func sessionCreds() map[string]string {
	return map[string]string{"access_token": "test_token"}
}

func TestScanEngine_Run(t *testing.T) {
	t.Run("Aggregates The Full Library", func(t *testing.T) {
		mock := libraryMock()
		engine := NewScanEngine(mock)

		progressCh := make(chan ProgressUpdate, 100)
		result, err := engine.Run(context.Background(), progressCh, ScanOpts{Credentials: sessionCreds()})
		close(progressCh)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		snap := result.Snapshot
		if snap.Totals.TotalPlaylists != 2 {
			t.Errorf("Run() totalPlaylists = %d, want 2", snap.Totals.TotalPlaylists)
		}
		if snap.Totals.TotalUniqueTracks != 3 {
			t.Errorf("Run() totalUniqueTracks = %d, want 3", snap.Totals.TotalUniqueTracks)
		}
		if snap.Totals.TotalArtists != 2 {
			t.Errorf("Run() totalArtists = %d, want 2", snap.Totals.TotalArtists)
		}

		// The local file still counts as a fetched entry even though the
		// aggregation drops it.
		if result.ItemsFetched != 5 {
			t.Errorf("Run() itemsFetched = %d, want 5", result.ItemsFetched)
		}
		if result.Duration <= 0 {
			t.Errorf("Run() duration = %v, want positive", result.Duration)
		}

		if len(snap.TopArtistsBySongs) != 2 {
			t.Fatalf("Run() topArtistsBySongs length = %d, want 2", len(snap.TopArtistsBySongs))
		}
		// Both artists have two songs; the tie resolves by name.
		if snap.TopArtistsBySongs[0].ArtistName != "Aurora" {
			t.Errorf("Run() top artist = %q, want Aurora", snap.TopArtistsBySongs[0].ArtistName)
		}

		if snap.ArtistTable[0].ImageURL == nil || *snap.ArtistTable[0].ImageURL != "http://img/a1" {
			t.Error("Run() should enrich artist rows with catalog images")
		}

		if mock.AuthCalls != 1 {
			t.Errorf("Run() authenticate calls = %d, want 1", mock.AuthCalls)
		}
		if len(mock.TrackCalls) != 2 {
			t.Errorf("Run() track fetches = %d, want 2", len(mock.TrackCalls))
		}
	})

	t.Run("Reports Phases In Order", func(t *testing.T) {
		engine := NewScanEngine(libraryMock())

		progressCh := make(chan ProgressUpdate, 100)
		if _, err := engine.Run(context.Background(), progressCh, ScanOpts{Credentials: sessionCreds()}); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		close(progressCh)

		var phases []Phase
		var messages []string
		for update := range progressCh {
			phases = append(phases, update.Phase)
			messages = append(messages, update.Message)
		}

		if len(phases) == 0 {
			t.Fatal("Run() sent no progress updates")
		}
		if phases[0] != ScanStarted {
			t.Errorf("first phase = %v, want %v", phases[0], ScanStarted)
		}
		if phases[len(phases)-1] != ScanCompleted {
			t.Errorf("last phase = %v, want %v", phases[len(phases)-1], ScanCompleted)
		}

		trackUpdates := 0
		for _, p := range phases {
			if p == FetchTracks {
				trackUpdates++
			}
		}
		if trackUpdates != 2 {
			t.Errorf("fetch track updates = %d, want one per playlist", trackUpdates)
		}

		sawCounter := false
		for _, m := range messages {
			if m == "[1/2] Morning Mix" {
				sawCounter = true
			}
		}
		if !sawCounter {
			t.Errorf("expected a [1/2] Morning Mix update, got %v", messages)
		}
	})

	t.Run("Requires A Stored Token", func(t *testing.T) {
		mock := libraryMock()
		engine := NewScanEngine(mock)

		result, err := engine.Run(context.Background(), nil, ScanOpts{})
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("Run() error = %v, want ErrNotAuthenticated", err)
		}
		if result != nil {
			t.Error("Run() should not produce a result without a token")
		}
		if mock.AuthCalls != 0 || len(mock.TrackCalls) != 0 {
			t.Error("Run() should not touch the provider without a token")
		}
	})

	t.Run("Rejects A Nil Service", func(t *testing.T) {
		engine := NewScanEngine(nil)

		_, err := engine.Run(context.Background(), nil, ScanOpts{Credentials: sessionCreds()})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("Run() error = %v, want ErrServiceUnavailable", err)
		}
	})

	t.Run("Propagates Playlist Fetch Failures", func(t *testing.T) {
		mock := libraryMock()
		mock.PlaylistsErr = shared.ErrFetchFailed
		engine := NewScanEngine(mock)

		progressCh := make(chan ProgressUpdate, 100)
		result, err := engine.Run(context.Background(), progressCh, ScanOpts{Credentials: sessionCreds()})
		close(progressCh)

		if !errors.Is(err, shared.ErrFetchFailed) {
			t.Errorf("Run() error = %v, want ErrFetchFailed", err)
		}
		if result != nil {
			t.Error("Run() should discard everything on a fetch failure")
		}

		var last ProgressUpdate
		for update := range progressCh {
			last = update
		}
		if last.Phase != ScanFailed {
			t.Errorf("last phase = %v, want %v", last.Phase, ScanFailed)
		}
	})

	t.Run("Aborts When A Track Fetch Fails", func(t *testing.T) {
		mock := libraryMock()
		mock.TracksErr = shared.ErrFetchFailed
		mock.TracksErrFor = "p2"
		engine := NewScanEngine(mock)

		result, err := engine.Run(context.Background(), nil, ScanOpts{Credentials: sessionCreds()})
		if !errors.Is(err, shared.ErrFetchFailed) {
			t.Errorf("Run() error = %v, want ErrFetchFailed", err)
		}
		if result != nil {
			t.Error("Run() must not return a partial snapshot")
		}
	})

	t.Run("Aborts When Enrichment Fails", func(t *testing.T) {
		mock := libraryMock()
		mock.ArtistsErr = shared.ErrFetchFailed
		engine := NewScanEngine(mock)

		result, err := engine.Run(context.Background(), nil, ScanOpts{Credentials: sessionCreds()})
		if !errors.Is(err, shared.ErrFetchFailed) {
			t.Errorf("Run() error = %v, want ErrFetchFailed", err)
		}
		if result != nil {
			t.Error("Run() must not return a snapshot when enrichment fails")
		}
	})

	t.Run("Surfaces Authentication Failures", func(t *testing.T) {
		mock := libraryMock()
		mock.AuthErr = shared.ErrAuthFailed
		engine := NewScanEngine(mock)

		_, err := engine.Run(context.Background(), nil, ScanOpts{Credentials: sessionCreds()})
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("Run() error = %v, want ErrAuthFailed", err)
		}
		if len(mock.TrackCalls) != 0 {
			t.Error("Run() should stop before fetching when authentication fails")
		}
	})

	t.Run("Engine Interface", func(t *testing.T) {
		var _ Engine = NewScanEngine(libraryMock())
	})
}

func TestScanEngine_Workers(t *testing.T) {
	t.Run("Pool Matches Sequential Output", func(t *testing.T) {
		sequential := NewScanEngine(libraryMock())
		seqResult, err := sequential.Run(context.Background(), nil, ScanOpts{Credentials: sessionCreds()})
		if err != nil {
			t.Fatalf("sequential Run() error = %v", err)
		}

		concurrentMock := libraryMock()
		concurrent := NewScanEngine(concurrentMock)
		concResult, err := concurrent.Run(context.Background(), nil, ScanOpts{
			Credentials: sessionCreds(),
			Workers:     4,
			RateLimit:   1000,
		})
		if err != nil {
			t.Fatalf("concurrent Run() error = %v", err)
		}

		if !reflect.DeepEqual(seqResult.Snapshot, concResult.Snapshot) {
			t.Errorf("worker pool snapshot diverges from sequential:\nseq  = %+v\nconc = %+v",
				seqResult.Snapshot, concResult.Snapshot)
		}
		if concResult.ItemsFetched != seqResult.ItemsFetched {
			t.Errorf("worker pool itemsFetched = %d, want %d", concResult.ItemsFetched, seqResult.ItemsFetched)
		}

		fetched := map[string]bool{}
		for _, id := range concurrentMock.TrackCalls {
			fetched[id] = true
		}
		if !fetched["p1"] || !fetched["p2"] {
			t.Errorf("worker pool fetched %v, want both playlists", concurrentMock.TrackCalls)
		}
	})

	t.Run("Pool Aborts On Failure", func(t *testing.T) {
		mock := libraryMock()
		mock.TracksErr = shared.ErrFetchFailed
		mock.TracksErrFor = "p1"
		engine := NewScanEngine(mock)

		result, err := engine.Run(context.Background(), nil, ScanOpts{
			Credentials: sessionCreds(),
			Workers:     4,
			RateLimit:   1000,
		})
		if !errors.Is(err, shared.ErrFetchFailed) {
			t.Errorf("Run() error = %v, want ErrFetchFailed", err)
		}
		if result != nil {
			t.Error("Run() must not return a partial snapshot from the pool")
		}
	})

	t.Run("Caps The Worker Count", func(t *testing.T) {
		// Far more workers than playlists still produces a full scan.
		engine := NewScanEngine(libraryMock())
		result, err := engine.Run(context.Background(), nil, ScanOpts{
			Credentials: sessionCreds(),
			Workers:     100,
			RateLimit:   1000,
		})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if result.Snapshot.Totals.TotalUniqueTracks != 3 {
			t.Errorf("Run() totalUniqueTracks = %d, want 3", result.Snapshot.Totals.TotalUniqueTracks)
		}
	})

	t.Run("Canceled Context Aborts The Pool", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		engine := NewScanEngine(libraryMock())
		result, err := engine.Run(ctx, nil, ScanOpts{
			Credentials: sessionCreds(),
			Workers:     2,
			RateLimit:   1000,
		})
		if err == nil {
			t.Error("Run() should fail once the context is gone")
		}
		if result != nil {
			t.Error("Run() must not return a partially merged scan")
		}
	})
}

func TestProgressUpdate_NonBlocking(t *testing.T) {
	engine := NewScanEngine(libraryMock())

	// Nobody reads from this channel; every send must fall through.
	progressCh := make(chan ProgressUpdate)

	done := make(chan bool)
	go func() {
		_, err := engine.Run(context.Background(), progressCh, ScanOpts{Credentials: sessionCreds()})
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
		done <- true
	}()

	select {
	case <-done:
		// Scan completed even with a blocked progress consumer
	case <-time.After(5 * time.Second):
		t.Error("Run() should not block on progress sends")
	}
}

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{ScanStarted, "scan_started"},
		{FetchPlaylists, "fetch_playlists"},
		{FetchTracks, "fetch_tracks"},
		{EnrichArtists, "enrich_artists"},
		{BuildSnapshot, "build_snapshot"},
		{ScanCompleted, "scan_completed"},
		{ScanFailed, "scan_failed"},
		{FetchImages, "fetch_images"},
		{Phase(99), ""},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}
