package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tracklift/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI runs the pipeline inside the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
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

	// Logs go to the run log only so they don't interfere with TUI rendering
	if r.runLog != nil {
		r.logger.SetOutput(r.runLog)
	} else {
		r.logger.SetOutput(io.Discard)
	}

	var history ui.History
	if store, err := r.runStore(); err == nil {
		r.engine.SetRecorder(store)
		history = store
	} else {
		r.logger.Warn("run history disabled", "err", err)
	}

	model := ui.NewModel(ctx, r.engine, history, opts)
	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return model.Err()
}
