package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

var spotifyScopes = []string{
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// defaultSearchRate paces catalog searches; one is issued per extracted track.
const defaultSearchRate = rate.Limit(10)

// SpotifyAuth owns the OAuth2 authenticator and the cached token for Spotify.
type SpotifyAuth struct {
	auth  *spotifyauth.Authenticator
	cache *TokenCache
}

// NewSpotifyAuth validates the configured credentials and builds the authenticator.
func NewSpotifyAuth(cfg shared.SpotifyConfig) (*SpotifyAuth, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials)
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURI),
		spotifyauth.WithScopes(spotifyScopes...),
	)

	tokenPath := cfg.TokenPath
	if tokenPath == "" {
		tokenPath = ".spotify_token"
	}
	return &SpotifyAuth{auth: auth, cache: NewTokenCache(tokenPath)}, nil
}

// AuthURL returns the authorization page URL for state.
func (a *SpotifyAuth) AuthURL(state string) string {
	return a.auth.AuthURL(state)
}

// Exchange trades an authorization code for a token.
func (a *SpotifyAuth) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	return a.auth.Exchange(ctx, code, opts...)
}

// Cache returns the token cache.
func (a *SpotifyAuth) Cache() *TokenCache {
	return a.cache
}

// Catalog returns a catalog client that refreshes token as needed.
func (a *SpotifyAuth) Catalog(ctx context.Context, token *oauth2.Token) *SpotifyCatalog {
	client := spotify.New(a.auth.Client(ctx, token), spotify.WithRetry(true))
	return NewSpotifyCatalog(client)
}

// CachedCatalog builds a catalog from the cached token.
// Returns [shared.ErrNotAuthenticated] when no token has been cached yet.
func (a *SpotifyAuth) CachedCatalog(ctx context.Context) (*SpotifyCatalog, error) {
	token, err := a.cache.Load()
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, fmt.Errorf("%w: no cached token at %s", shared.ErrNotAuthenticated, a.cache.Path())
	}
	return a.Catalog(ctx, token), nil
}

// SaveToken writes the catalog's current (possibly refreshed) token back to the cache.
func (a *SpotifyAuth) SaveToken(c *SpotifyCatalog) error {
	token, err := c.client.Token()
	if err != nil {
		return fmt.Errorf("failed to read current token: %w", err)
	}
	return a.cache.Save(token)
}

// SpotifyCatalog implements [Catalog] for the Spotify Web API.
type SpotifyCatalog struct {
	client  *spotify.Client
	limiter *rate.Limiter
}

// CatalogOption configures a [SpotifyCatalog].
type CatalogOption func(*SpotifyCatalog)

// WithSearchRate overrides the search pacing. [rate.Inf] disables it.
func WithSearchRate(r rate.Limit) CatalogOption {
	return func(c *SpotifyCatalog) {
		c.limiter = rate.NewLimiter(r, 1)
	}
}

// NewSpotifyCatalog wraps an authenticated client.
func NewSpotifyCatalog(client *spotify.Client, opts ...CatalogOption) *SpotifyCatalog {
	c := &SpotifyCatalog{client: client, limiter: rate.NewLimiter(defaultSearchRate, 1)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *SpotifyCatalog) Name() string {
	return "Spotify"
}

// CurrentUser retrieves the authenticated user's profile.
func (c *SpotifyCatalog) CurrentUser(ctx context.Context) (*CatalogUser, error) {
	user, err := c.client.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: current user: %v", shared.ErrAPIRequest, err)
	}
	return &CatalogUser{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// CreatePlaylist creates a non-collaborative playlist for userID.
func (c *SpotifyCatalog) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (string, error) {
	playlist, err := c.client.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return "", fmt.Errorf("%w: create playlist %q: %v", shared.ErrAPIRequest, name, err)
	}
	return playlist.ID.String(), nil
}

// DeletePlaylist unfollows the playlist, which is how Spotify deletes one.
func (c *SpotifyCatalog) DeletePlaylist(ctx context.Context, playlistID string) error {
	if err := c.client.UnfollowPlaylist(ctx, spotify.ID(playlistID)); err != nil {
		return fmt.Errorf("%w: delete playlist %s: %v", shared.ErrAPIRequest, playlistID, err)
	}
	return nil
}

// SearchTrack issues a field-qualified track search limited to one result.
func (c *SpotifyCatalog) SearchTrack(ctx context.Context, track models.TrackRecord) (*CatalogTrack, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := track.SearchQuery()
	results, err := c.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return nil, fmt.Errorf("%w: search %q: %v", shared.ErrAPIRequest, query, err)
	}
	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return nil, nil
	}

	best := results.Tracks.Tracks[0]
	names := make([]string, 0, len(best.Artists))
	for _, a := range best.Artists {
		names = append(names, a.Name)
	}
	return &CatalogTrack{ID: best.ID.String(), Title: best.Name, Artists: strings.Join(names, ", ")}, nil
}

// AddTracks appends one batch of track identifiers.
func (c *SpotifyCatalog) AddTracks(ctx context.Context, playlistID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > MaxBatchSize {
		return fmt.Errorf("%w: batch of %d exceeds %d tracks", shared.ErrInvalidInput, len(ids), MaxBatchSize)
	}

	trackIDs := make([]spotify.ID, len(ids))
	for i, id := range ids {
		trackIDs[i] = spotify.ID(id)
	}

	if _, err := c.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), trackIDs...); err != nil {
		return fmt.Errorf("%w: add %d tracks to %s: %v", shared.ErrAPIRequest, len(ids), playlistID, err)
	}
	return nil
}
