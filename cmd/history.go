package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/tracklift/internal/formatter"
	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/shared"
	"github.com/urfave/cli/v3"
)

// runView is the JSON shape of a recorded run.
type runView struct {
	ID            string     `json:"id"`
	Sequence      int        `json:"sequence"`
	Stage         string     `json:"stage"`
	Status        string     `json:"status"`
	Source        string     `json:"source"`
	Destination   string     `json:"destination,omitempty"`
	DestinationID string     `json:"destination_id,omitempty"`
	Strategy      string     `json:"strategy,omitempty"`
	ExpectedTotal *int       `json:"expected_total,omitempty"`
	ObservedTotal int        `json:"observed_total"`
	MatchedCount  int        `json:"matched_count,omitempty"`
	Threshold     float64    `json:"threshold,omitempty"`
	Error         string     `json:"error,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func newRunView(run *models.Run) runView {
	return runView{
		ID:            run.ID(),
		Sequence:      run.Sequence(),
		Stage:         string(run.Stage()),
		Status:        string(run.Status()),
		Source:        run.Source(),
		Destination:   run.DestinationName(),
		DestinationID: run.DestinationID(),
		Strategy:      run.Strategy(),
		ExpectedTotal: run.ExpectedTotal(),
		ObservedTotal: run.ObservedTotal(),
		MatchedCount:  run.MatchedCount(),
		Threshold:     run.Threshold(),
		Error:         run.ErrorMessage(),
		StartedAt:     run.StartedAt(),
		CompletedAt:   run.CompletedAt(),
	}
}

// HistoryList prints recent runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.runStore()
	if err != nil {
		return err
	}

	runs, err := store.Recent(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]runView, len(runs))
		for i, run := range runs {
			views[i] = newRunView(run)
		}
		return r.writeJSON(views, cmd.Bool("pretty"))
	}

	if len(runs) == 0 {
		return r.writePlain("No runs recorded yet.\n")
	}

	r.writePlain("Found %d runs:\n\n", len(runs))
	for _, run := range runs {
		r.writePlain("#%d %s [%s] %s\n", run.Sequence(), run.Stage(), run.Status(), run.StartedAt().Format("2006-01-02 15:04:05"))
		r.writePlain("   Source: %s\n", run.Source())
		switch run.Stage() {
		case models.StageImport:
			r.writePlain("   Playlist: %s\n", run.DestinationName())
			r.writePlain("   Matched: %d/%d (%.0f%%)\n", run.MatchedCount(), run.ObservedTotal(), run.MatchRatio()*100)
		default:
			r.writePlain("   Tracks: %d\n", run.ObservedTotal())
		}
		if msg := run.ErrorMessage(); msg != "" {
			r.writePlain("   Error: %s\n", msg)
		}
		r.writePlain("\n")
	}
	return nil
}

// HistoryShow prints one run with its tracks.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.String("id")
	if ref == "" {
		ref = cmd.StringArg("id")
	}
	if ref == "" {
		return fmt.Errorf("%w: run id or number", shared.ErrMissingArgument)
	}

	store, err := r.runStore()
	if err != nil {
		return err
	}
	detail, err := store.Show(ref)
	if err != nil {
		return err
	}

	records := make([]models.TrackRecord, len(detail.Tracks))
	for i, t := range detail.Tracks {
		records[i] = t.Record()
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			runView
			Tracks []models.TrackRecord `json:"tracks"`
		}{newRunView(detail.Run), records}, cmd.Bool("pretty"))
	}

	run := detail.Run
	r.writePlainHeader(fmt.Sprintf("Run #%d (%s)", run.Sequence(), run.Stage()))
	r.writePlain("ID: %s\n", run.ID())
	r.writePlain("Status: %s\n", run.Status())
	r.writePlain("Source: %s\n", run.Source())
	if run.Strategy() != "" {
		r.writePlain("Strategy: %s\n", run.Strategy())
	}
	if expected := run.ExpectedTotal(); expected != nil {
		r.writePlain("Expected: %d\n", *expected)
	}
	if run.Stage() == models.StageImport {
		r.writePlain("Playlist: %s %s\n", run.DestinationName(), run.DestinationID())
		r.writePlain("Matched: %s\n", models.NewReconciliationSummary(run.ObservedTotal(), run.MatchedCount(), run.Threshold()))
	}
	if d := run.Duration(); d > 0 {
		r.writePlain("Duration: %s\n", d.Round(time.Second))
	}
	if msg := run.ErrorMessage(); msg != "" {
		r.writePlain("Error: %s\n", msg)
	}

	r.writePlainln("Tracks:")
	if _, err := r.output.Write(formatter.ExportToText(records)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if unmatched := detail.Unmatched(); run.Stage() == models.StageImport && len(unmatched) > 0 {
		r.writePlainln("Unmatched (%d):", len(unmatched))
		for _, t := range unmatched {
			rec := t.Record()
			r.writePlain("  %d. %s - %s\n", rec.Ordinal, rec.Artists, rec.Title)
		}
	}
	return nil
}
