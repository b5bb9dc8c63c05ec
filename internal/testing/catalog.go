package testing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/services"
)

// MockCatalog is an in-memory [services.Catalog].
//
// Tracks maps "title|artists" to a catalog id; anything else has no candidate.
// Calls records operations in order ("create", "search", "add:<n>", "delete").
type MockCatalog struct {
	mu sync.Mutex

	Tracks     map[string]string
	SearchErrs map[string]error
	CreateErr  error
	AddErr     error
	DeleteErr  error
	UserErr    error

	Calls   []string
	Batches [][]string
	Created []string
	Deleted []string
	nextID  int
}

func NewMockCatalog() *MockCatalog {
	return &MockCatalog{Tracks: map[string]string{}, SearchErrs: map[string]error{}}
}

// Key is the lookup key for a record in Tracks and SearchErrs.
func Key(r models.TrackRecord) string {
	return r.Title + "|" + r.Artists
}

func (m *MockCatalog) record(call string) {
	m.Calls = append(m.Calls, call)
}

func (m *MockCatalog) Name() string { return "mock" }

func (m *MockCatalog) CurrentUser(ctx context.Context) (*services.CatalogUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("user")
	if m.UserErr != nil {
		return nil, m.UserErr
	}
	return &services.CatalogUser{ID: "user-1", DisplayName: "Mock User"}, nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("create")
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	m.nextID++
	id := fmt.Sprintf("playlist-%d", m.nextID)
	m.Created = append(m.Created, id)
	return id, nil
}

func (m *MockCatalog) DeletePlaylist(ctx context.Context, playlistID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("delete")
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Deleted = append(m.Deleted, playlistID)
	return nil
}

func (m *MockCatalog) SearchTrack(ctx context.Context, track models.TrackRecord) (*services.CatalogTrack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("search")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.SearchErrs[Key(track)]; err != nil {
		return nil, err
	}
	id, ok := m.Tracks[Key(track)]
	if !ok {
		return nil, nil
	}
	return &services.CatalogTrack{ID: id, Title: track.Title, Artists: track.Artists}, nil
}

func (m *MockCatalog) AddTracks(ctx context.Context, playlistID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(fmt.Sprintf("add:%d", len(ids)))
	if m.AddErr != nil {
		return m.AddErr
	}
	if len(ids) > services.MaxBatchSize {
		return errors.New("batch too large")
	}
	m.Batches = append(m.Batches, append([]string(nil), ids...))
	return nil
}

// Count returns how many recorded calls equal call.
func (m *MockCatalog) Count(call string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == call {
			n++
		}
	}
	return n
}
