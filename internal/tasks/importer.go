package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/tracklift/internal/formatter"
	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/shared"
)

// ImportOptions configures one import stage.
type ImportOptions struct {
	Input        string // CSV written by the extract stage
	PlaylistName string
	Description  string
	Public       bool
	Threshold    float64
	UnmatchedDir string
}

// ImportResult contains the outcome of an import, also on gate failure.
type ImportResult struct {
	PlaylistID    string
	Summary       models.ReconciliationSummary
	Matches       []models.MatchRecord
	Unmatched     []models.TrackRecord
	UnmatchedPath string
}

// Import builds the destination playlist from the CSV at opts.Input.
//
// The destination is created only when the input has records. Searches run
// once per record in order; unmatched records are written next to the input
// before the commit gate decides whether to keep or delete the destination.
func (e *PlaylistEngine) Import(ctx context.Context, opts ImportOptions, progress chan<- ProgressUpdate) (*ImportResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}
	if opts.PlaylistName == "" {
		return nil, fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	run := models.NewRun(models.StageImport, opts.Input)
	run.SetDestination(opts.PlaylistName)
	run.SetThreshold(opts.Threshold)
	e.startRun(run)

	result, err := e.importRecords(ctx, opts, progress)
	var tracks []*models.RunTrack
	if result != nil {
		run.ApplySummary(result.Summary)
		run.SetDestinationID(result.PlaylistID)
		tracks = runTracks(run.ID(), result.Matches)
	}

	var gateErr *GateError
	switch {
	case errors.As(err, &gateErr) && gateErr.PlaylistID != "" && gateErr.DeleteErr == nil:
		e.finishRun(run, models.RunStatusRolledBack, err, tracks)
	case err != nil:
		e.finishRun(run, models.RunStatusFailed, err, tracks)
	default:
		e.finishRun(run, models.RunStatusSucceeded, nil, tracks)
	}
	return result, err
}

func (e *PlaylistEngine) importRecords(ctx context.Context, opts ImportOptions, progress chan<- ProgressUpdate) (*ImportResult, error) {
	records, err := formatter.ReadTracksCSV(opts.Input)
	if err != nil {
		return nil, err
	}
	sendProgress(progress, readTracksUpdate(opts.Input, len(records)))

	result := &ImportResult{}
	if len(records) == 0 {
		result.Summary = models.NewReconciliationSummary(0, 0, opts.Threshold)
		e.logger.Error("no tracks to import", "input", opts.Input)
		return result, &GateError{Summary: result.Summary}
	}

	user, err := e.catalog.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to look up current user: %w", err)
	}

	playlistID, err := e.catalog.CreatePlaylist(ctx, user.ID, opts.PlaylistName, opts.Description, opts.Public)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}
	result.PlaylistID = playlistID
	e.logger.Info("created playlist", "name", opts.PlaylistName, "id", playlistID, "catalog", e.catalog.Name())
	sendProgress(progress, createPlaylistUpdate(opts.PlaylistName, playlistID))

	matches, err := Reconcile(ctx, e.catalog, records, progress, shared.WithLogger(e.logger, "stage", models.StageImport))
	result.Matches = matches
	if err != nil {
		e.rollback(ctx, playlistID)
		return result, fmt.Errorf("import interrupted after %d/%d searches: %w", len(matches), len(records), err)
	}

	ids, unmatched := Partition(matches)
	result.Unmatched = unmatched
	if len(unmatched) > 0 {
		path, err := formatter.WriteUnmatchedCSV(opts.UnmatchedDir, opts.PlaylistName, unmatched)
		if err != nil {
			e.logger.Warn("failed to write unmatched tracks", "err", err)
		} else {
			result.UnmatchedPath = path
			e.logger.Info("saved unmatched tracks", "count", len(unmatched), "path", path)
			sendProgress(progress, unmatchedUpdate(path, len(unmatched)))
		}
	}

	result.Summary = models.NewReconciliationSummary(len(records), len(ids), opts.Threshold)
	if err := Apply(ctx, e.catalog, playlistID, result.Summary, ids, progress, e.logger); err != nil {
		return result, err
	}

	e.logger.Info("created playlist", "name", opts.PlaylistName, "matched", len(ids), "total", len(records))
	sendProgress(progress, completeUpdate(fmt.Sprintf("Created playlist '%s' with %d/%d tracks", opts.PlaylistName, len(ids), len(records))))
	return result, nil
}

// rollback deletes a destination left behind by an interrupted import.
func (e *PlaylistEngine) rollback(ctx context.Context, playlistID string) {
	if err := e.catalog.DeletePlaylist(context.WithoutCancel(ctx), playlistID); err != nil {
		e.logger.Error("failed to delete interrupted playlist", "id", playlistID, "err", err)
		return
	}
	e.logger.Warn("deleted interrupted playlist", "id", playlistID)
}
