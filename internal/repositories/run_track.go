package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/shared"
)

const runTrackColumns = `id, sequence, run_id, ordinal, title, artists, source_url, catalog_id, created_at`

// RunTrackRepository implements models.Repository[*models.RunTrack].
//
// Rows belong to a run and are removed with it; there is no soft delete.
type RunTrackRepository struct {
	db querier
}

// NewRunTrackRepository creates a new RunTrackRepository with the given database connection
func NewRunTrackRepository(db *sql.DB) *RunTrackRepository {
	return &RunTrackRepository{db: db}
}

// Create inserts a run track with generated ID and sequence
func (r *RunTrackRepository) Create(track *models.RunTrack) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "run_tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	record := track.Record()

	query := `INSERT INTO run_tracks (` + runTrackColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.Exec(query,
		id,
		sequence,
		track.RunID(),
		record.Ordinal,
		record.Title,
		record.Artists,
		record.SourceURL,
		nullString(track.CatalogID()),
		track.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run track: %w", err)
	}

	track.SetID(id)
	track.SetSequence(sequence)
	return nil
}

// Get retrieves a run track by ID
func (r *RunTrackRepository) Get(id string) (*models.RunTrack, error) {
	query := `SELECT ` + runTrackColumns + ` FROM run_tracks WHERE id = ?`
	return scanRunTrack(r.db.QueryRow(query, id))
}

// Update rewrites the stored record fields and catalog id
func (r *RunTrackRepository) Update(track *models.RunTrack) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	record := track.Record()
	result, err := r.db.Exec(`
		UPDATE run_tracks
		SET ordinal = ?, title = ?, artists = ?, source_url = ?, catalog_id = ?
		WHERE id = ?
	`, record.Ordinal, record.Title, record.Artists, record.SourceURL, nullString(track.CatalogID()), track.ID())
	if err != nil {
		return fmt.Errorf("failed to update run track: %w", err)
	}
	return expectOne(result, "run track", track.ID())
}

// Delete removes a run track by ID
func (r *RunTrackRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM run_tracks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run track: %w", err)
	}
	return expectOne(result, "run track", id)
}

// List retrieves run tracks ordered by run and ordinal.
//
// Supported criteria: "run_id" (string) and "matched" (bool).
func (r *RunTrackRepository) List(criteria map[string]any) ([]*models.RunTrack, error) {
	query := `SELECT ` + runTrackColumns + ` FROM run_tracks WHERE 1 = 1`
	args := []any{}

	if runID, ok := criteria["run_id"].(string); ok && runID != "" {
		query += " AND run_id = ?"
		args = append(args, runID)
	}
	if matched, ok := criteria["matched"].(bool); ok {
		if matched {
			query += " AND catalog_id IS NOT NULL"
		} else {
			query += " AND catalog_id IS NULL"
		}
	}

	query += " ORDER BY run_id, ordinal ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query run tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.RunTrack
	for rows.Next() {
		track, err := scanRunTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tracks, nil
}

// ListByRun retrieves a run's tracks in source order
func (r *RunTrackRepository) ListByRun(runID string) ([]*models.RunTrack, error) {
	return r.List(map[string]any{"run_id": runID})
}

func scanRunTrack(row scanner) (*models.RunTrack, error) {
	var (
		id        string
		sequence  int
		runID     string
		ordinal   int
		title     string
		artists   string
		sourceURL string
		catalogID sql.NullString
		createdAt time.Time
	)

	err := row.Scan(&id, &sequence, &runID, &ordinal, &title, &artists, &sourceURL, &catalogID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: run track", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run track: %w", err)
	}

	record := models.TrackRecord{Title: title, Artists: artists, SourceURL: sourceURL, Ordinal: ordinal}
	track := models.NewRunTrack(runID, record, catalogID.String)
	track.SetID(id)
	track.SetSequence(sequence)
	track.SetCreatedAt(createdAt)
	return track, nil
}
