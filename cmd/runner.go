package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracklift/internal/renderer"
	"github.com/desertthunder/tracklift/internal/repositories"
	"github.com/desertthunder/tracklift/internal/scraper"
	"github.com/desertthunder/tracklift/internal/services"
	"github.com/desertthunder/tracklift/internal/shared"
	"github.com/desertthunder/tracklift/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	catalog    services.Catalog
	auth       *services.SpotifyAuth
	launch     tasks.Launcher
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
	runLog     *os.File
	engine     *tasks.PlaylistEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Catalog    services.Catalog // skips OAuth when set
	Launcher   tasks.Launcher
	DB         *sql.DB // run history store; opened from config when nil
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Launcher == nil {
		opts.Launcher = launchChromium
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		catalog:    opts.Catalog,
		launch:     opts.Launcher,
		db:         opts.DB,
		logger:     opts.Logger,
		output:     opts.Output,
		engine:     tasks.NewPlaylistEngine(opts.Catalog, opts.Launcher, opts.Logger),
	}
}

// launchChromium starts the playwright browser used by the extract stage.
func launchChromium(ctx context.Context, opts scraper.Options) (renderer.Browser, error) {
	launch := renderer.DefaultLaunchOptions()
	launch.Headless = opts.Headless
	browser, err := renderer.Launch(ctx, launch)
	if err != nil {
		return nil, err
	}
	return browser, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, extractCommand, importCommand, runCommand, tuiCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reads the --config file when present and applies the log level flags.
func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	r.configPath = path

	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	switch {
	case cmd.Bool("verbose"):
		shared.SetLogLevel(r.logger, log.DebugLevel)
	case cmd.Bool("quiet"):
		shared.SetLogLevel(r.logger, log.WarnLevel)
	}
	return ctx, nil
}

// mirrorRunLog copies logger and plain output into logs/log_<timestamp>.txt for the rest of the command.
//
// A log file that cannot be created is reported and skipped.
func (r *Runner) mirrorRunLog(ctx context.Context, _ *cli.Command) (context.Context, error) {
	f, err := shared.OpenRunLog(r.config.Output.LogDir, time.Now())
	if err != nil {
		r.logger.Warn("console output will not be saved", "err", err)
		return ctx, nil
	}

	r.runLog = f
	r.logger.SetOutput(io.MultiWriter(os.Stderr, f))
	r.output = io.MultiWriter(r.output, f)
	r.logger.Info("saving console output", "path", f.Name())
	return ctx, nil
}

// Close releases the history database and the run log.
func (r *Runner) Close() error {
	var errs []error
	if r.db != nil {
		errs = append(errs, r.db.Close())
		r.db = nil
	}
	if r.runLog != nil {
		errs = append(errs, r.runLog.Close())
		r.runLog = nil
	}
	return errors.Join(errs...)
}

// runStore opens the history database on first use.
func (r *Runner) runStore() (*repositories.RunStore, error) {
	if r.db == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open history database: %w", err)
		}
		r.db = db
	}
	return repositories.NewRunStore(r.db), nil
}

// recordHistory attaches the run store to the engine; history is best effort.
func (r *Runner) recordHistory() {
	store, err := r.runStore()
	if err != nil {
		r.logger.Warn("run history disabled", "err", err)
		return
	}
	r.engine.SetRecorder(store)
}

// followProgress prints updates until the returned stop function is called.
func (r *Runner) followProgress() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			r.reportProgress(update)
		}
	}()

	return progress, func() {
		close(progress)
		<-done
	}
}

func (r *Runner) reportProgress(u tasks.ProgressUpdate) {
	switch u.Phase {
	case tasks.SearchTracks, tasks.FetchTrackPages:
		r.logger.Debug(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
	default:
		r.logger.Info(u.Message, "phase", u.Phase)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
