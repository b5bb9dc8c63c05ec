// package tasks implements the extract and import stages of a playlist transfer.
//
// The core abstraction is SyncEngine, which orchestrates extraction, reconciliation, and the commit gate.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/renderer"
	"github.com/desertthunder/tracklift/internal/scraper"
	"github.com/desertthunder/tracklift/internal/services"
	"github.com/desertthunder/tracklift/internal/shared"
)

// Launcher starts the browser used for one extraction. Its pages stop waiting once ctx is done.
type Launcher func(ctx context.Context, opts scraper.Options) (renderer.Browser, error)

// RunRecorder persists stage outcomes for the history commands.
type RunRecorder interface {
	StartRun(run *models.Run) error
	FinishRun(run *models.Run, tracks []*models.RunTrack) error
}

// SyncEngine defines the stages of a playlist transfer.
type SyncEngine interface {
	// Extract loads the playlist page and persists its tracks as CSV and JSON.
	Extract(ctx context.Context, opts ExtractOptions, progress chan<- ProgressUpdate) (*ExtractResult, error)

	// Import reconciles a record set against the catalog and builds the destination playlist.
	Import(ctx context.Context, opts ImportOptions, progress chan<- ProgressUpdate) (*ImportResult, error)

	// Run performs the enabled stages in order.
	Run(ctx context.Context, opts RunOptions, progress chan<- ProgressUpdate) (*PipelineResult, error)
}

// PlaylistEngine implements SyncEngine.
// Contains dependencies on the catalog service and the browser launcher.
type PlaylistEngine struct {
	catalog  services.Catalog
	launch   Launcher
	recorder RunRecorder
	logger   *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine. catalog may be nil for extract-only use.
func NewPlaylistEngine(catalog services.Catalog, launch Launcher, logger *log.Logger) *PlaylistEngine {
	return &PlaylistEngine{catalog: catalog, launch: launch, logger: logger}
}

// SetRecorder enables run history.
func (e *PlaylistEngine) SetRecorder(r RunRecorder) { e.recorder = r }

// SetCatalog replaces the catalog, e.g. after authenticating lazily.
func (e *PlaylistEngine) SetCatalog(c services.Catalog) { e.catalog = c }

func (e *PlaylistEngine) startRun(run *models.Run) {
	run.SetID(shared.GenerateID())
	if e.recorder == nil {
		return
	}
	if err := e.recorder.StartRun(run); err != nil {
		e.logger.Warn("failed to record run start", "stage", run.Stage(), "err", err)
	}
}

func (e *PlaylistEngine) finishRun(run *models.Run, status models.RunStatus, err error, tracks []*models.RunTrack) {
	run.Finish(status, err)
	if e.recorder == nil {
		return
	}
	if recErr := e.recorder.FinishRun(run, tracks); recErr != nil {
		e.logger.Warn("failed to record run result", "stage", run.Stage(), "err", recErr)
	}
}

func runTracks(runID string, matches []models.MatchRecord) []*models.RunTrack {
	tracks := make([]*models.RunTrack, 0, len(matches))
	for _, m := range matches {
		tracks = append(tracks, models.NewRunTrack(runID, m.Record, m.CatalogID))
	}
	return tracks
}
