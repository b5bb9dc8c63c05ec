package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/tracklift/internal/formatter"
	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/scraper"
	"github.com/desertthunder/tracklift/internal/shared"
)

// ExtractOptions configures one extract stage.
type ExtractOptions struct {
	URL      string
	Scraper  scraper.Options
	CSVPath  string
	JSONPath string // optional backup
}

// ExtractResult contains the scraper result and the files written from it.
type ExtractResult struct {
	*scraper.Result
	CSVPath  string
	JSONPath string
}

// Extract runs the scraper against opts.URL and persists the records.
//
// The browser is closed before returning. A failed JSON backup is logged; a
// failed CSV write fails the stage since import reads it.
func (e *PlaylistEngine) Extract(ctx context.Context, opts ExtractOptions, progress chan<- ProgressUpdate) (*ExtractResult, error) {
	if e.launch == nil {
		return nil, fmt.Errorf("%w: browser launcher not initialized", shared.ErrServiceUnavailable)
	}
	if opts.URL == "" {
		return nil, fmt.Errorf("%w: playlist URL", shared.ErrMissingArgument)
	}
	if opts.CSVPath == "" {
		return nil, fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}

	run := models.NewRun(models.StageExtract, opts.URL)
	e.startRun(run)

	result, err := e.extract(ctx, opts, progress)
	if err != nil {
		e.finishRun(run, models.RunStatusFailed, err, nil)
		return nil, err
	}

	run.SetStrategy(result.Strategy)
	run.ApplyValidation(result.Validation)
	tracks := make([]*models.RunTrack, 0, len(result.Records))
	for _, r := range result.Records {
		tracks = append(tracks, models.NewRunTrack(run.ID(), r, ""))
	}
	e.finishRun(run, models.RunStatusSucceeded, nil, tracks)
	return result, nil
}

func (e *PlaylistEngine) extract(ctx context.Context, opts ExtractOptions, progress chan<- ProgressUpdate) (*ExtractResult, error) {
	sendProgress(progress, launchBrowserUpdate(opts.Scraper.Headless))
	browser, err := e.launch(ctx, opts.Scraper)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := browser.Close(); err != nil {
			e.logger.Warn("failed to close browser", "err", err)
		}
	}()

	s := scraper.New(browser, opts.Scraper, shared.WithLogger(e.logger, "stage", models.StageExtract))
	s.OnProgress(func(done, total int) {
		sendProgress(progress, fetchTrackPageUpdate(done, total))
	})

	sendProgress(progress, extractingUpdate(opts.URL))
	scraped, err := s.Run(ctx, opts.URL)
	if err != nil {
		return nil, err
	}
	sendProgress(progress, extractedUpdate(len(scraped.Records), scraped.Strategy, scraped.Validation))

	result := &ExtractResult{Result: scraped}
	if err := formatter.WriteTracksCSV(opts.CSVPath, scraped.Records); err != nil {
		return nil, err
	}
	result.CSVPath = opts.CSVPath
	e.logger.Info("saved tracks", "count", len(scraped.Records), "path", opts.CSVPath)
	sendProgress(progress, saveTracksUpdate(opts.CSVPath, len(scraped.Records)))

	if opts.JSONPath != "" {
		if err := formatter.WriteTracksJSON(opts.JSONPath, scraped.Records); err != nil {
			e.logger.Warn("failed to write JSON backup", "err", err)
		} else {
			result.JSONPath = opts.JSONPath
			e.logger.Info("saved JSON backup", "path", opts.JSONPath)
		}
	}
	return result, nil
}
