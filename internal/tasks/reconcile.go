package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/services"
)

// Reconcile searches the catalog once per record and returns the matches in input order.
//
// The first candidate wins; there are no retries or alternate queries. A failed
// search is logged and leaves the record unmatched. Only cancellation of ctx is
// returned as an error, along with the matches made so far.
func Reconcile(ctx context.Context, catalog services.Catalog, records []models.TrackRecord, progress chan<- ProgressUpdate, logger *log.Logger) ([]models.MatchRecord, error) {
	total := len(records)
	matches := make([]models.MatchRecord, 0, total)
	sendProgress(progress, searchTracksUpdate(0, total, nil))

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return matches, err
		}
		sendProgress(progress, searchTracksUpdate(i+1, total, &record))

		match := models.MatchRecord{Record: record}
		found, err := catalog.SearchTrack(ctx, record)
		switch {
		case err != nil && ctx.Err() != nil:
			return matches, ctx.Err()
		case err != nil:
			logger.Warn("search failed", "title", record.Title, "artists", record.Artists, "err", err)
		case found == nil:
			logger.Info("could not find track", "title", record.Title, "artists", record.Artists)
		default:
			match.CatalogID = found.ID
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// Partition splits matches into catalog ids (in order) and the unmatched records.
func Partition(matches []models.MatchRecord) (ids []string, unmatched []models.TrackRecord) {
	for _, m := range matches {
		if m.Matched() {
			ids = append(ids, m.CatalogID)
		} else {
			unmatched = append(unmatched, m.Record)
		}
	}
	return ids, unmatched
}

// Summarize counts matches against the total input.
func Summarize(matches []models.MatchRecord, threshold float64) models.ReconciliationSummary {
	matched := 0
	for _, m := range matches {
		if m.Matched() {
			matched++
		}
	}
	return models.NewReconciliationSummary(len(matches), matched, threshold)
}
