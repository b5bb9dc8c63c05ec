package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/tracklift/internal/shared"
)

// RunOptions configures a full pipeline run.
type RunOptions struct {
	Extract ExtractOptions
	Import  ImportOptions
	Stages  shared.StagesConfig
}

// PipelineResult holds each stage's result; a skipped stage leaves its field nil.
type PipelineResult struct {
	Extract *ExtractResult
	Import  *ImportResult
}

// Run performs the enabled stages in order.
//
// With both stages enabled, import reads the CSV the extract stage just wrote.
// A failed extract stops the pipeline before any destination is created.
func (e *PlaylistEngine) Run(ctx context.Context, opts RunOptions, progress chan<- ProgressUpdate) (*PipelineResult, error) {
	if !opts.Stages.Extract && !opts.Stages.Import {
		return nil, fmt.Errorf("%w: both extract and import are disabled", shared.ErrStageDisabled)
	}

	result := &PipelineResult{}
	if opts.Stages.Extract {
		extracted, err := e.Extract(ctx, opts.Extract, progress)
		if err != nil {
			return result, fmt.Errorf("extract stage failed: %w", err)
		}
		result.Extract = extracted
		if opts.Import.Input == "" {
			opts.Import.Input = extracted.CSVPath
		}
	} else {
		e.logger.Info("extract stage disabled, skipping")
	}

	if !opts.Stages.Import {
		e.logger.Info("import stage disabled, skipping")
		return result, nil
	}

	imported, err := e.Import(ctx, opts.Import, progress)
	result.Import = imported
	if err != nil {
		return result, fmt.Errorf("import stage failed: %w", err)
	}
	return result, nil
}
