package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tracklift/internal/renderer"
	"github.com/desertthunder/tracklift/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set source.playlist_url and import.playlist_name\n")
	r.writePlain("2. Add your Spotify client_id and client_secret under [credentials.spotify]\n")
	r.writePlain("3. Run 'tracklift setup browser' and 'tracklift auth login'\n")
	return nil
}

// SetupDatabase initializes the history database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		r.logger.Warn("config has invalid values", "err", err)
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	if _, err := r.runStore(); err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
}

// SetupBrowser installs the playwright driver and Chromium.
func (r *Runner) SetupBrowser(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("installing playwright driver and chromium")
	if err := renderer.Install(); err != nil {
		return err
	}
	return r.writePlain("✓ Browser installed\n")
}

// beforeRun rejects config values that would only fail mid-run, then starts the run log.
func (r *Runner) beforeRun(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if err := r.config.Validate(); err != nil {
		return ctx, fmt.Errorf("%s: %w", r.configPath, err)
	}
	return r.mirrorRunLog(ctx, cmd)
}
