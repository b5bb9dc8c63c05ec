package services

import (
	"context"

	"github.com/desertthunder/tracklift/internal/models"
)

// MaxBatchSize is the most track identifiers a single AddTracks call accepts.
const MaxBatchSize = 100

// Catalog is the destination music service a reconciled playlist is committed to.
type Catalog interface {
	// CurrentUser returns the authenticated account.
	CurrentUser(ctx context.Context) (*CatalogUser, error)

	// CreatePlaylist creates an empty playlist owned by userID and returns its identifier.
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (string, error)

	// DeletePlaylist removes (unfollows) a playlist created earlier in the run.
	DeletePlaylist(ctx context.Context, playlistID string) error

	// SearchTrack runs one best-match search for track.
	// Returns nil and no error when the catalog has no candidate.
	SearchTrack(ctx context.Context, track models.TrackRecord) (*CatalogTrack, error)

	// AddTracks appends up to [MaxBatchSize] identifiers to a playlist.
	AddTracks(ctx context.Context, playlistID string, ids []string) error

	// Name returns the name of the catalog (e.g., "Spotify")
	Name() string
}

// CatalogUser is the authenticated catalog account.
type CatalogUser struct {
	ID          string
	DisplayName string
}

// CatalogTrack is a search candidate.
type CatalogTrack struct {
	ID      string
	Title   string
	Artists string
}
