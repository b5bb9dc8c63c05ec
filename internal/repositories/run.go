package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/shared"
)

const runColumns = `id, sequence, stage, source, destination_name, destination_id, strategy, status,
	expected_total, observed_total, matched_count, threshold, error_message,
	started_at, completed_at, created_at, updated_at, deleted_at`

// RunRepository implements models.Repository[*models.Run] for run history.
//
// Handles run CRUD operations with soft delete support and stage/status filters.
type RunRepository struct {
	db querier
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run with a new sequence. An ID already assigned to run is kept.
func (r *RunRepository) Create(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	if run.ID() == "" {
		run.SetID(shared.GenerateID())
	}

	query := `INSERT INTO runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.Exec(query,
		run.ID(),
		sequence,
		run.Stage(),
		run.Source(),
		run.DestinationName(),
		nullString(run.DestinationID()),
		nullString(run.Strategy()),
		run.Status(),
		nullInt(run.ExpectedTotal()),
		run.ObservedTotal(),
		run.MatchedCount(),
		run.Threshold(),
		nullString(run.ErrorMessage()),
		run.StartedAt(),
		run.CompletedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
		run.DeletedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	run.SetSequence(sequence)
	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ? AND deleted_at IS NULL`
	return scanRun(r.db.QueryRow(query, id))
}

// Update writes the mutable outcome fields of a run
func (r *RunRepository) Update(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET destination_name = ?, destination_id = ?, strategy = ?, status = ?, expected_total = ?,
			observed_total = ?, matched_count = ?, threshold = ?, error_message = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		run.DestinationName(),
		nullString(run.DestinationID()),
		nullString(run.Strategy()),
		run.Status(),
		nullInt(run.ExpectedTotal()),
		run.ObservedTotal(),
		run.MatchedCount(),
		run.Threshold(),
		nullString(run.ErrorMessage()),
		run.CompletedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return expectOne(result, "run", run.ID())
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return expectOne(result, "run", id)
}

// List retrieves runs newest first, excluding soft-deleted runs.
//
// Supported criteria: "stage" (models.Stage or string), "status" (models.RunStatus
// or string) and "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE deleted_at IS NULL`
	args := []any{}

	if stage := criterion(criteria, "stage"); stage != "" {
		query += " AND stage = ?"
		args = append(args, stage)
	}
	if status := criterion(criteria, "status"); status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

// scanner is satisfied by [sql.Row] and [sql.Rows]
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.Run, error) {
	var (
		id              string
		sequence        int
		stage           string
		source          string
		destinationName string
		destinationID   sql.NullString
		strategy        sql.NullString
		status          string
		expectedTotal   sql.NullInt64
		observedTotal   int
		matchedCount    int
		threshold       float64
		errorMessage    sql.NullString
		startedAt       time.Time
		completedAt     sql.NullTime
		createdAt       time.Time
		updatedAt       time.Time
		deletedAt       sql.NullTime
	)

	err := row.Scan(&id, &sequence, &stage, &source, &destinationName, &destinationID, &strategy, &status,
		&expectedTotal, &observedTotal, &matchedCount, &threshold, &errorMessage,
		&startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: run", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewRun(models.Stage(stage), source)
	run.SetID(id)
	run.SetSequence(sequence)
	run.SetDestination(destinationName)
	run.SetDestinationID(destinationID.String)
	run.SetStrategy(strategy.String)
	run.SetStatus(models.RunStatus(status))
	if expectedTotal.Valid {
		n := int(expectedTotal.Int64)
		run.SetExpectedTotal(&n)
	}
	run.SetObservedTotal(observedTotal)
	run.SetMatchedCount(matchedCount)
	run.SetThreshold(threshold)
	run.SetErrorMessage(errorMessage.String)
	run.SetStartedAt(startedAt)
	if completedAt.Valid {
		run.SetCompletedAt(&completedAt.Time)
	}
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}
	return run, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func criterion(criteria map[string]any, key string) string {
	switch v := criteria[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case models.Stage:
		return string(v)
	case models.RunStatus:
		return string(v)
	default:
		return ""
	}
}

func expectOne(result sql.Result, entity, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %s not found or already deleted", shared.ErrNotFound, entity, id)
	}
	return nil
}
