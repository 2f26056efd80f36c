// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// configFlag is shared by every command that reads configuration.
func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles initial setup: config file, database, migrations.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a config file, initialize the database, and run migrations",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.Setup,
	}
}

// refreshCommand runs one refresh cycle in the foreground.
func refreshCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Scrape the watchlist, enrich it against TMDB, and update the cache",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Letterboxd username (overrides config)",
			},
			&cli.StringFlag{
				Name:  "region",
				Usage: "Streaming provider region (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the run summary as JSON",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress per-film progress output",
			},
		},
		Action: r.Refresh,
	}
}

// filmsCommand reads and exports the cached watchlist.
func filmsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "films",
		Aliases: []string{"ls"},
		Usage:   "Cached film operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached films",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.FilmsList,
			},
			{
				Name:  "export",
				Usage: "Export cached films to a file",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (csv, markdown, text, json)",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.FilmsExport,
			},
		},
	}
}

// serveCommand starts the web server and the background refresh scheduler.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the watchlist page, JSON API, and background refresh job",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "no-scheduler",
				Usage: "Disable the interval refresh job",
			},
		},
		Action: r.Serve,
	}
}
