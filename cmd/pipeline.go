package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/tracklift/internal/scraper"
	"github.com/desertthunder/tracklift/internal/shared"
	"github.com/desertthunder/tracklift/internal/tasks"
	"github.com/urfave/cli/v3"
)

// extractOptions merges the extract flags over the config file.
func (r *Runner) extractOptions(cmd *cli.Command) tasks.ExtractOptions {
	cfg := r.config
	opts := tasks.ExtractOptions{
		URL:      cfg.Source.PlaylistURL,
		Scraper:  scraper.OptionsFromConfig(cfg.Scraper),
		CSVPath:  cfg.Output.CSVPath,
		JSONPath: cfg.Output.JSONPath,
	}

	if cmd.IsSet("url") {
		opts.URL = cmd.String("url")
	}
	if cmd.IsSet("headless") {
		opts.Scraper.Headless = cmd.Bool("headless")
	}
	if cmd.IsSet("max-attempts") {
		opts.Scraper.Scroll.MaxStagnant = cmd.Int("max-attempts")
	}
	if cmd.IsSet("output") {
		opts.CSVPath = cmd.String("output")
	}
	if cmd.IsSet("json") {
		opts.JSONPath = cmd.String("json")
	}
	return opts
}

// importOptions merges the import flags over the config file.
func (r *Runner) importOptions(cmd *cli.Command) tasks.ImportOptions {
	cfg := r.config
	opts := tasks.ImportOptions{
		Input:        cfg.Output.CSVPath,
		PlaylistName: cfg.Import.PlaylistName,
		Description:  cfg.Import.Description,
		Public:       cfg.Import.Public,
		Threshold:    cfg.Import.MatchThreshold,
		UnmatchedDir: cfg.Output.UnmatchedDir,
	}

	if cmd.IsSet("input") {
		opts.Input = cmd.String("input")
	}
	if cmd.IsSet("name") {
		opts.PlaylistName = cmd.String("name")
	}
	if cmd.IsSet("description") {
		opts.Description = cmd.String("description")
	}
	if cmd.IsSet("public") {
		opts.Public = cmd.Bool("public")
	}
	if cmd.IsSet("threshold") {
		opts.Threshold = cmd.Float("threshold")
	}
	return opts
}

// runOptions builds both stages; with extract enabled, import reads the CSV extract writes.
func (r *Runner) runOptions(cmd *cli.Command) tasks.RunOptions {
	opts := tasks.RunOptions{
		Extract: r.extractOptions(cmd),
		Import:  r.importOptions(cmd),
		Stages:  r.config.Stages,
	}
	if cmd.IsSet("skip-extract") {
		opts.Stages.Extract = !cmd.Bool("skip-extract")
	}
	if cmd.IsSet("skip-import") {
		opts.Stages.Import = !cmd.Bool("skip-import")
	}
	if opts.Stages.Extract && !cmd.IsSet("input") {
		opts.Import.Input = ""
	}
	return opts
}

func validateImport(opts tasks.ImportOptions) error {
	if opts.PlaylistName == "" {
		return fmt.Errorf("%w: playlist name (--name or import.playlist_name)", shared.ErrMissingArgument)
	}
	if opts.Threshold < 0 || opts.Threshold > 1 {
		return fmt.Errorf("%w: threshold must be between 0.0 and 1.0", shared.ErrInvalidArgument)
	}
	return nil
}

// Extract loads the playlist page and writes its tracks to CSV and JSON.
func (r *Runner) Extract(ctx context.Context, cmd *cli.Command) error {
	opts := r.extractOptions(cmd)
	r.recordHistory()

	progress, stop := r.followProgress()
	result, err := r.engine.Extract(ctx, opts, progress)
	stop()
	if err != nil {
		return err
	}

	r.printExtract(result)
	return nil
}

// Import reconciles the CSV against Spotify and builds the destination playlist.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	opts := r.importOptions(cmd)
	if err := validateImport(opts); err != nil {
		return err
	}
	if err := r.ensureCatalog(ctx); err != nil {
		return err
	}
	defer r.saveRefreshedToken()
	r.recordHistory()

	progress, stop := r.followProgress()
	result, err := r.engine.Import(ctx, opts, progress)
	stop()

	r.printImport(result, err)
	return err
}

// Run performs the enabled stages in order.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	opts := r.runOptions(cmd)
	if opts.Stages.Import {
		if err := validateImport(opts.Import); err != nil {
			return err
		}
		if err := r.ensureCatalog(ctx); err != nil {
			return err
		}
		defer r.saveRefreshedToken()
	}
	r.recordHistory()

	progress, stop := r.followProgress()
	result, err := r.engine.Run(ctx, opts, progress)
	stop()

	if result != nil && result.Extract != nil {
		r.printExtract(result.Extract)
	}
	if result != nil && result.Import != nil {
		r.printImport(result.Import, err)
	}
	return err
}

func (r *Runner) printExtract(result *tasks.ExtractResult) {
	r.writePlainHeader("Extraction")
	r.writePlain("✓ Extracted %d tracks using the %s strategy\n", len(result.Records), result.Strategy)
	r.writePlain("  Validation: %s\n", result.Validation)
	r.writePlain("  CSV: %s\n", result.CSVPath)
	if result.JSONPath != "" {
		r.writePlain("  JSON: %s\n", result.JSONPath)
	}
}

func (r *Runner) printImport(result *tasks.ImportResult, err error) {
	if result == nil {
		return
	}

	r.writePlainHeader("Import")
	r.writePlain("Matched %s\n", result.Summary)
	if result.UnmatchedPath != "" {
		r.writePlain("  Unmatched tracks: %s\n", result.UnmatchedPath)
	}

	var gate *tasks.GateError
	switch {
	case err == nil:
		r.writePlain("✓ Playlist created: %s\n", result.PlaylistID)
	case errors.As(err, &gate):
		r.writePlain("✗ %s\n", gate.Error())
	}
}
