package models

import (
	"errors"
	"fmt"
	"time"
)

// Stage names a pipeline stage recorded in run history.
type Stage string

const (
	StageExtract Stage = "extract"
	StageImport  Stage = "import"
)

// RunStatus is the lifecycle state of a [Run].
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
	// RunStatusRolledBack marks an import whose destination was deleted by the match-ratio gate.
	RunStatusRolledBack RunStatus = "rolled_back"
)

// Run is one extract or import stage invocation.
type Run struct {
	id              string
	sequence        int
	stage           Stage
	source          string
	destinationName string
	destinationID   string
	strategy        string
	status          RunStatus
	expectedTotal   *int
	observedTotal   int
	matchedCount    int
	threshold       float64
	errorMessage    string
	startedAt       time.Time
	completedAt     *time.Time
	createdAt       time.Time
	updatedAt       time.Time
	deletedAt       *time.Time
}

// NewRun creates a running [Run] for stage reading from source.
func NewRun(stage Stage, source string) *Run {
	now := time.Now()
	return &Run{
		stage:     stage,
		source:    source,
		status:    RunStatusRunning,
		startedAt: now,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *Run) ID() string { return r.id }
func (r *Run) Sequence() int { return r.sequence }
func (r *Run) Stage() Stage { return r.stage }
func (r *Run) Source() string { return r.source }
func (r *Run) DestinationName() string { return r.destinationName }
func (r *Run) DestinationID() string { return r.destinationID }
func (r *Run) Strategy() string { return r.strategy }
func (r *Run) Status() RunStatus { return r.status }
func (r *Run) ExpectedTotal() *int { return r.expectedTotal }
func (r *Run) ObservedTotal() int { return r.observedTotal }
func (r *Run) MatchedCount() int { return r.matchedCount }
func (r *Run) Threshold() float64 { return r.threshold }
func (r *Run) ErrorMessage() string { return r.errorMessage }
func (r *Run) StartedAt() time.Time { return r.startedAt }
func (r *Run) CompletedAt() *time.Time { return r.completedAt }
func (r *Run) CreatedAt() time.Time { return r.createdAt }
func (r *Run) UpdatedAt() time.Time { return r.updatedAt }
func (r *Run) DeletedAt() *time.Time { return r.deletedAt }
func (r *Run) SetID(id string) { r.id = id }
func (r *Run) SetSequence(seq int) { r.sequence = seq }
func (r *Run) SetDestinationID(id string) { r.destinationID = id }
func (r *Run) SetStrategy(s string) { r.strategy = s }
func (r *Run) SetObservedTotal(n int) { r.observedTotal = n }
func (r *Run) SetStartedAt(t time.Time) { r.startedAt = t }
func (r *Run) SetCreatedAt(t time.Time) { r.createdAt = t }
func (r *Run) SetUpdatedAt(t time.Time) { r.updatedAt = t }
func (r *Run) SetDeletedAt(t *time.Time) { r.deletedAt = t }
func (r *Run) SetStatus(s RunStatus) { r.status = s }
func (r *Run) SetErrorMessage(m string) { r.errorMessage = m }
func (r *Run) SetCompletedAt(t *time.Time) { r.completedAt = t }

// SetDestination records the playlist name an import targets.
func (r *Run) SetDestination(name string) { r.destinationName = name }

// SetExpectedTotal records the page's advertised total; nil when it could not be read.
func (r *Run) SetExpectedTotal(n *int) { r.expectedTotal = n }

// ApplyValidation copies the totals of an extraction's validation.
func (r *Run) ApplyValidation(v ValidationResult) {
	r.observedTotal = v.ObservedTotal
	r.expectedTotal = nil
	if v.IsReliable {
		n := v.ExpectedTotal
		r.expectedTotal = &n
	}
}

// ApplySummary copies the reconciliation counts of an import.
func (r *Run) ApplySummary(s ReconciliationSummary) {
	r.observedTotal = s.TotalInput
	r.matchedCount = s.MatchedCount
	r.threshold = s.Threshold
}

// SetMatchedCount records how many tracks resolved to a catalog entry.
func (r *Run) SetMatchedCount(n int) { r.matchedCount = n }

// SetThreshold records the match-ratio threshold in effect.
func (r *Run) SetThreshold(t float64) { r.threshold = t }

// Finish marks the run complete with status, recording err's message if non-nil.
func (r *Run) Finish(status RunStatus, err error) {
	now := time.Now()
	r.status = status
	r.completedAt = &now
	r.updatedAt = now
	if err != nil {
		r.errorMessage = err.Error()
	}
}

// MatchRatio derives matched/observed for display.
func (r *Run) MatchRatio() float64 {
	if r.observedTotal == 0 {
		return 0
	}
	return float64(r.matchedCount) / float64(r.observedTotal)
}

// Duration is the elapsed time between start and completion, or zero while running.
func (r *Run) Duration() time.Duration {
	if r.completedAt == nil {
		return 0
	}
	return r.completedAt.Sub(r.startedAt)
}

// Validate checks required fields and known enum values.
func (r *Run) Validate() error {
	switch r.stage {
	case StageExtract, StageImport:
	default:
		return fmt.Errorf("invalid stage %q", r.stage)
	}
	switch r.status {
	case RunStatusRunning, RunStatusSucceeded, RunStatusFailed, RunStatusRolledBack:
	default:
		return fmt.Errorf("invalid status %q", r.status)
	}
	if r.threshold < 0 || r.threshold > 1 {
		return errors.New("threshold must be between 0 and 1")
	}
	return nil
}

// RunTrack is the per-track outcome stored with a [Run].
type RunTrack struct {
	id        string
	sequence  int
	runID     string
	record    TrackRecord
	catalogID string
	createdAt time.Time
}

// NewRunTrack creates a [RunTrack] for record; catalogID is empty when unmatched or not yet reconciled.
func NewRunTrack(runID string, record TrackRecord, catalogID string) *RunTrack {
	return &RunTrack{runID: runID, record: record, catalogID: catalogID, createdAt: time.Now()}
}

func (t *RunTrack) ID() string { return t.id }
func (t *RunTrack) Sequence() int { return t.sequence }
func (t *RunTrack) RunID() string { return t.runID }
func (t *RunTrack) Record() TrackRecord { return t.record }
func (t *RunTrack) CatalogID() string { return t.catalogID }
func (t *RunTrack) CreatedAt() time.Time { return t.createdAt }
func (t *RunTrack) UpdatedAt() time.Time { return t.createdAt }
func (t *RunTrack) SetID(id string) { t.id = id }
func (t *RunTrack) SetSequence(seq int) { t.sequence = seq }
func (t *RunTrack) SetCreatedAt(at time.Time) { t.createdAt = at }

// Validate requires a run, a title and a positive ordinal.
func (t *RunTrack) Validate() error {
	if t.runID == "" {
		return errors.New("run id is required")
	}
	if t.record.Title == "" {
		return errors.New("title is required")
	}
	if t.record.Ordinal < 1 {
		return errors.New("ordinal must be positive")
	}
	return nil
}
