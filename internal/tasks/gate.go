package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/services"
	"github.com/desertthunder/tracklift/internal/shared"
)

// GateError reports a reconciliation that fell below the match threshold.
// It unwraps to [shared.ErrBelowThreshold].
type GateError struct {
	Summary    models.ReconciliationSummary
	PlaylistID string // destination that was rolled back, empty if none was created
	DeleteErr  error  // set when the rollback itself failed
}

func (e *GateError) Error() string {
	msg := fmt.Sprintf("only matched %d/%d tracks (%.0f%%), below threshold %.0f%%",
		e.Summary.MatchedCount, e.Summary.TotalInput, e.Summary.MatchRatio*100, e.Summary.Threshold*100)
	switch {
	case e.DeleteErr != nil:
		msg += fmt.Sprintf("; failed to delete playlist %s: %v", e.PlaylistID, e.DeleteErr)
	case e.PlaylistID != "":
		msg += "; playlist has been deleted"
	}
	return msg
}

func (e *GateError) Unwrap() error { return shared.ErrBelowThreshold }

// Batches splits ids into consecutive chunks of at most size, preserving order.
func Batches(ids []string, size int) [][]string {
	if size <= 0 {
		size = services.MaxBatchSize
	}
	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}

// Apply commits or rolls back the destination playlist.
//
// Below the threshold the playlist is deleted and a [*GateError] returned.
// Otherwise ids are added in batches of [services.MaxBatchSize]; a failed
// batch stops the commit and is returned wrapped.
func Apply(ctx context.Context, catalog services.Catalog, playlistID string, summary models.ReconciliationSummary, ids []string, progress chan<- ProgressUpdate, logger *log.Logger) error {
	sendProgress(progress, thresholdUpdate(summary))

	if !summary.Passed() {
		logger.Error("match ratio below threshold", "matched", summary.MatchedCount, "total", summary.TotalInput, "threshold", summary.Threshold)
		gateErr := &GateError{Summary: summary, PlaylistID: playlistID}
		if playlistID == "" {
			return gateErr
		}
		sendProgress(progress, deletePlaylistUpdate(playlistID))
		// rollback must run even when the search phase was cancelled
		if err := catalog.DeletePlaylist(context.WithoutCancel(ctx), playlistID); err != nil {
			logger.Error("failed to delete playlist", "id", playlistID, "err", err)
			gateErr.DeleteErr = err
		}
		return gateErr
	}

	batches := Batches(ids, services.MaxBatchSize)
	for i, batch := range batches {
		if err := catalog.AddTracks(ctx, playlistID, batch); err != nil {
			return fmt.Errorf("failed to add batch %d/%d: %w", i+1, len(batches), err)
		}
		sendProgress(progress, addTracksUpdate(i+1, len(batches), len(batch)))
	}
	return nil
}
