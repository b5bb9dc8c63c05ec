package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/shared"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/time/rate"
)

// fakeSpotify records requests against a minimal Spotify Web API.
type fakeSpotify struct {
	mu       sync.Mutex
	queries  []string
	added    [][]string
	deleted  []string
	noResult bool
	failAll  bool
}

func (f *fakeSpotify) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()

	write := func(w http.ResponseWriter, status int, body any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}

	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]any{"id": "user-1", "display_name": "Test User"})
	})

	mux.HandleFunc("/users/user-1/playlists", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		write(w, http.StatusCreated, map[string]any{"id": "pl-1", "name": body["name"]})
	})

	mux.HandleFunc("/playlists/pl-1/followers", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.deleted = append(f.deleted, "pl-1")
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/playlists/pl-1/tracks", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body struct {
			URIs []string `json:"uris"`
		}
		json.Unmarshal(data, &body)
		f.mu.Lock()
		f.added = append(f.added, body.URIs)
		f.mu.Unlock()
		write(w, http.StatusCreated, map[string]any{"snapshot_id": "snap"})
	})

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.queries = append(f.queries, r.URL.Query().Get("q"))
		f.mu.Unlock()

		if f.failAll {
			write(w, http.StatusInternalServerError, map[string]any{"error": map[string]any{"status": 500, "message": "boom"}})
			return
		}

		items := []any{}
		if !f.noResult {
			items = append(items, map[string]any{
				"id":      "track-1",
				"name":    "Song",
				"artists": []any{map[string]any{"name": "A"}, map[string]any{"name": "B"}},
			})
		}
		write(w, http.StatusOK, map[string]any{"tracks": map[string]any{"items": items, "total": len(items)}})
	})

	return mux
}

func newTestCatalog(t *testing.T, f *fakeSpotify) *SpotifyCatalog {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	client := spotify.New(srv.Client(), spotify.WithBaseURL(srv.URL+"/"))
	return NewSpotifyCatalog(client, WithSearchRate(rate.Inf))
}

func TestSpotifyCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("Name", func(t *testing.T) {
		if got := newTestCatalog(t, &fakeSpotify{}).Name(); got != "Spotify" {
			t.Errorf("expected Spotify, got %s", got)
		}
	})

	t.Run("CurrentUser", func(t *testing.T) {
		user, err := newTestCatalog(t, &fakeSpotify{}).CurrentUser(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ID != "user-1" || user.DisplayName != "Test User" {
			t.Errorf("unexpected user %+v", user)
		}
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		id, err := newTestCatalog(t, &fakeSpotify{}).CreatePlaylist(ctx, "user-1", "Road Trip", "desc", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != "pl-1" {
			t.Errorf("expected pl-1, got %s", id)
		}
	})

	t.Run("DeletePlaylist unfollows", func(t *testing.T) {
		f := &fakeSpotify{}
		if err := newTestCatalog(t, f).DeletePlaylist(ctx, "pl-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(f.deleted) != 1 {
			t.Errorf("expected one unfollow call, got %d", len(f.deleted))
		}
	})

	t.Run("SearchTrack", func(t *testing.T) {
		t.Run("first candidate wins", func(t *testing.T) {
			f := &fakeSpotify{}
			got, err := newTestCatalog(t, f).SearchTrack(ctx, models.TrackRecord{Title: "Song", Artists: "A"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == nil || got.ID != "track-1" || got.Artists != "A, B" {
				t.Errorf("unexpected candidate %+v", got)
			}
			if len(f.queries) != 1 || f.queries[0] != "track:Song artist:A" {
				t.Errorf("unexpected queries %v", f.queries)
			}
		})

		t.Run("no candidate", func(t *testing.T) {
			got, err := newTestCatalog(t, &fakeSpotify{noResult: true}).SearchTrack(ctx, models.TrackRecord{Title: "Nope", Artists: "X"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != nil {
				t.Errorf("expected nil candidate, got %+v", got)
			}
		})

		t.Run("API error", func(t *testing.T) {
			_, err := newTestCatalog(t, &fakeSpotify{failAll: true}).SearchTrack(ctx, models.TrackRecord{Title: "Song", Artists: "A"})
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("AddTracks", func(t *testing.T) {
		t.Run("sends track URIs", func(t *testing.T) {
			f := &fakeSpotify{}
			if err := newTestCatalog(t, f).AddTracks(ctx, "pl-1", []string{"a", "b"}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(f.added) != 1 || len(f.added[0]) != 2 || !strings.HasSuffix(f.added[0][0], ":a") {
				t.Errorf("unexpected add calls %v", f.added)
			}
		})

		t.Run("empty batch is a no-op", func(t *testing.T) {
			f := &fakeSpotify{}
			if err := newTestCatalog(t, f).AddTracks(ctx, "pl-1", nil); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(f.added) != 0 {
				t.Error("expected no requests")
			}
		})

		t.Run("oversized batch", func(t *testing.T) {
			ids := make([]string, MaxBatchSize+1)
			err := newTestCatalog(t, &fakeSpotify{}).AddTracks(ctx, "pl-1", ids)
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	})
}

func TestSpotifyAuth(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		_, err := NewSpotifyAuth(shared.DefaultConfig().Credentials.Spotify)
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("AuthURL carries state and scopes", func(t *testing.T) {
		auth, err := NewSpotifyAuth(shared.SpotifyConfig{
			ClientID:     "id",
			ClientSecret: "secret",
			RedirectURI:  "http://127.0.0.1:8888/callback",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		u := auth.AuthURL("state-123")
		for _, want := range []string{"state=state-123", "client_id=id", "playlist-modify-private"} {
			if !strings.Contains(u, want) {
				t.Errorf("expected auth url to contain %q, got %s", want, u)
			}
		}
		if auth.Cache().Path() != ".spotify_token" {
			t.Errorf("expected default token path, got %s", auth.Cache().Path())
		}
	})

	t.Run("CachedCatalog without token", func(t *testing.T) {
		auth, err := NewSpotifyAuth(shared.SpotifyConfig{
			ClientID:     "id",
			ClientSecret: "secret",
			TokenPath:    t.TempDir() + "/token.json",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := auth.CachedCatalog(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}
