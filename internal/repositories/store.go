package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/shared"
)

// RunDetail is a run with its tracks in source order.
type RunDetail struct {
	Run    *models.Run
	Tracks []*models.RunTrack
}

// Unmatched returns the tracks without a catalog id.
func (d RunDetail) Unmatched() []*models.RunTrack {
	var out []*models.RunTrack
	for _, t := range d.Tracks {
		if t.CatalogID() == "" {
			out = append(out, t)
		}
	}
	return out
}

// RunStore records pipeline stages and reads them back for the history commands.
type RunStore struct {
	db     *sql.DB
	runs   *RunRepository
	tracks *RunTrackRepository
}

func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db, runs: NewRunRepository(db), tracks: NewRunTrackRepository(db)}
}

// StartRun inserts run in its running state.
func (s *RunStore) StartRun(run *models.Run) error {
	return s.runs.Create(run)
}

// FinishRun stores the final state of run and its tracks in one transaction.
//
// A run whose start was never stored is inserted instead of updated. If any
// track fails, nothing from this call is kept.
func (s *RunStore) FinishRun(run *models.Run, tracks []*models.RunTrack) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	runs := &RunRepository{db: tx}
	err = runs.Update(run)
	if errors.Is(err, shared.ErrNotFound) {
		err = runs.Create(run)
	}
	if err != nil {
		return err
	}

	runTracks := &RunTrackRepository{db: tx}
	for _, t := range tracks {
		if err := runTracks.Create(t); err != nil {
			return fmt.Errorf("failed to store track %d: %w", t.Record().Ordinal, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// Recent lists up to limit runs, newest first; limit <= 0 lists all.
func (s *RunStore) Recent(limit int) ([]*models.Run, error) {
	return s.runs.List(map[string]any{"limit": limit})
}

// Show loads a run by ID, or by sequence number when ref is numeric and no ID matches.
func (s *RunStore) Show(ref string) (*RunDetail, error) {
	run, err := s.runs.Get(ref)
	if errors.Is(err, shared.ErrNotFound) {
		run, err = s.bySequence(ref)
	}
	if err != nil {
		return nil, err
	}

	tracks, err := s.tracks.ListByRun(run.ID())
	if err != nil {
		return nil, err
	}
	return &RunDetail{Run: run, Tracks: tracks}, nil
}

func (s *RunStore) bySequence(ref string) (*models.Run, error) {
	var seq int
	if _, err := fmt.Sscanf(ref, "%d", &seq); err != nil || fmt.Sprint(seq) != ref {
		return nil, fmt.Errorf("%w: run %s", shared.ErrNotFound, ref)
	}

	runs, err := s.runs.List(nil)
	if err != nil {
		return nil, err
	}
	for _, r := range runs {
		if r.Sequence() == seq {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: run #%d", shared.ErrNotFound, seq)
}

// Delete soft-deletes a run.
func (s *RunStore) Delete(id string) error {
	return s.runs.Delete(id)
}
