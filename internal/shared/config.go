package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Letterboxd LetterboxdConfig `toml:"letterboxd"`
	TMDB       TMDBConfig       `toml:"tmdb"`
	Database   DatabaseConfig   `toml:"database"`
	Server     ServerConfig     `toml:"server"`
	Refresh    RefreshConfig    `toml:"refresh"`
}

// LetterboxdConfig identifies the watchlist to mirror.
type LetterboxdConfig struct {
	Username string `toml:"username"`
	// Milliseconds to wait between successive watchlist page requests.
	RequestDelayMS int `toml:"request_delay_ms"`
}

// RequestDelay returns the inter-page crawl delay as a [time.Duration].
func (c LetterboxdConfig) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMS) * time.Millisecond
}

// TMDBConfig contains TMDB API credentials and the provider region.
type TMDBConfig struct {
	APIKey string `toml:"api_key"`
	Region string `toml:"region"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// RefreshConfig controls the background refresh job.
type RefreshConfig struct {
	Enabled  bool   `toml:"enabled"`
	Interval string `toml:"interval"`
	Workers  int    `toml:"workers"`
}

// IntervalDuration parses the refresh interval (e.g. "168h" for weekly).
func (c RefreshConfig) IntervalDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 0, fmt.Errorf("%w: refresh interval %q: %v", ErrInvalidConfig, c.Interval, err)
	}
	return d, nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the settings the refresh pipeline depends on are present.
func (c *Config) Validate() error {
	if c.Letterboxd.Username == "" {
		return ErrMissingUsername
	}
	if c.TMDB.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Refresh.Enabled {
		if _, err := c.Refresh.IntervalDuration(); err != nil {
			return err
		}
	}
	return nil
}
