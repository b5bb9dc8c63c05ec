// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func extractFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "url",
			Aliases: []string{"u"},
			Usage:   "Playlist page URL (overrides source.playlist_url)",
		},
		&cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the browser without a window (--headless=false to watch it)",
		},
		&cli.IntFlag{
			Name:  "max-attempts",
			Usage: "Scroll attempts without new tracks before stopping",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "CSV output path",
		},
		&cli.StringFlag{
			Name:  "json",
			Usage: "JSON backup path",
		},
	}
}

func importFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "CSV file to import",
		},
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   "Name of the playlist to create",
		},
		&cli.StringFlag{
			Name:  "description",
			Usage: "Description of the playlist to create",
		},
		&cli.BoolFlag{
			Name:  "public",
			Usage: "Create a public playlist",
		},
		&cli.FloatFlag{
			Name:    "threshold",
			Aliases: []string{"t"},
			Usage:   "Minimum fraction of tracks that must match (0.0 - 1.0)",
		},
	}
}

func stageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "skip-extract",
			Usage: "Skip the extract stage and import an existing CSV",
		},
		&cli.BoolFlag{
			Name:  "skip-import",
			Usage: "Stop after writing the CSV",
		},
	}
}

func pipelineFlags() []cli.Flag {
	flags := append(extractFlags(), importFlags()...)
	return append(flags, stageFlags()...)
}

// setupCommand handles setup operations for config, database and browser.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config.toml",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the run history database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "browser",
				Usage:  "Install the playwright driver and Chromium",
				Action: r.SetupBrowser,
			},
		},
	}
}

// authCommand handles Spotify authentication
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Spotify using OAuth2 and cache the token",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the cached token and the account it belongs to",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Remove the cached token",
				Action: r.AuthLogout,
			},
		},
	}
}

// extractCommand scrapes a playlist page into CSV and JSON
func extractCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "extract",
		Usage:  "Extract tracks from a playlist page",
		Flags:  extractFlags(),
		Before: r.beforeRun,
		Action: r.Extract,
	}
}

// importCommand builds a Spotify playlist from an extracted CSV
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "import",
		Usage:  "Create a Spotify playlist from an extracted CSV",
		Flags:  importFlags(),
		Before: r.beforeRun,
		Action: r.Import,
	}
}

// runCommand runs both stages
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Extract a playlist and import it into Spotify",
		Flags:  pipelineFlags(),
		Before: r.beforeRun,
		Action: r.Run,
	}
}

// tuiCommand runs both stages in the terminal UI
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Interactive TUI for a playlist transfer",
		Flags:  pipelineFlags(),
		Before: r.beforeRun,
		Action: r.TUI,
	}
}

// historyCommand reads the run history database
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show a run and its tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Run ID or number",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.HistoryShow,
			},
		},
	}
}
