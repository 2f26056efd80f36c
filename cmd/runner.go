package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lbxd/internal/repositories"
	"github.com/desertthunder/lbxd/internal/services"
	"github.com/desertthunder/lbxd/internal/shared"
	"github.com/desertthunder/lbxd/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	watchlist services.WatchlistSource
	metadata  services.MetadataSource
	logger    *log.Logger
	output    io.Writer
	db        *sql.DB // injected for tests; commands open their own otherwise
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	Watchlist services.WatchlistSource
	Metadata  services.MetadataSource
	Logger    *log.Logger
	Output    io.Writer
	DB        *sql.DB
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

	return &Runner{
		config:    opts.Config,
		watchlist: opts.Watchlist,
		metadata:  opts.Metadata,
		logger:    opts.Logger,
		output:    opts.Output,
		db:        opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, refreshCommand, filmsCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig resolves the effective config for a command invocation.
//
// The --config flag wins when the file exists; otherwise the Runner's
// config (loaded at startup or defaults) is used.
func (r *Runner) loadConfig(cmd *cli.Command) *shared.Config {
	configPath := cmd.String("config")
	if configPath == "" {
		return r.config
	}

	if _, err := os.Stat(configPath); err != nil {
		return r.config
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		return r.config
	}
	return config
}

// openRepository opens the film database and returns a repository over it.
//
// The returned closer is a no-op when the Runner carries an injected
// database connection.
func (r *Runner) openRepository(config *shared.Config) (*repositories.FilmRepository, func(), error) {
	if r.db != nil {
		return repositories.NewFilmRepository(r.db), func() {}, nil
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repositories.NewFilmRepository(db), func() { db.Close() }, nil
}

// buildEngine assembles the refresh engine from the effective config.
//
// Injected sources take precedence over config-derived ones so tests can
// drive the pipeline without touching the network.
func (r *Runner) buildEngine(config *shared.Config, store tasks.FilmStore) *tasks.RefreshEngine {
	watchlist := r.watchlist
	if watchlist == nil {
		watchlist = services.NewLetterboxdService("", config.Letterboxd.RequestDelay())
	}

	metadata := r.metadata
	if metadata == nil {
		metadata = services.NewTMDBService("", config.TMDB.APIKey)
	}

	return tasks.NewRefreshEngine(watchlist, metadata, store, r.logger, config.Refresh.Workers)
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
