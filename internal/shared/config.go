package shared

import (
	"bytes"
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
	Source      SourceConfig      `toml:"source"`
	Scraper     ScraperConfig     `toml:"scraper"`
	Credentials CredentialsConfig `toml:"credentials"`
	Import      ImportConfig      `toml:"import"`
	Stages      StagesConfig      `toml:"stages"`
	Output      OutputConfig      `toml:"output"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// SourceConfig identifies the playlist page to extract.
type SourceConfig struct {
	PlaylistURL string `toml:"playlist_url"`
}

// ScraperConfig tunes the browser session and the scrolling loop.
type ScraperConfig struct {
	MaxStagnantAttempts int  `toml:"max_stagnant_attempts"`
	Headless            bool `toml:"headless"`
	NavigationTimeoutMS int  `toml:"navigation_timeout_ms"`
	SettleDelayMS       int  `toml:"settle_delay_ms"`
	ScrollStep          int  `toml:"scroll_step"`
	FetchDelayMS        int  `toml:"fetch_delay_ms"`
}

// NavigationTimeout returns the page navigation timeout.
func (c ScraperConfig) NavigationTimeout() time.Duration {
	return time.Duration(c.NavigationTimeoutMS) * time.Millisecond
}

// SettleDelay returns the wait after each scroll action.
func (c ScraperConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

// FetchDelay returns the pause between per-track page fetches.
func (c ScraperConfig) FetchDelay() time.Duration {
	return time.Duration(c.FetchDelayMS) * time.Millisecond
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	TokenPath    string `toml:"token_path"`
}

// Configured reports whether real client credentials are present.
func (c SpotifyConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.ClientID != "your_spotify_client_id"
}

// ImportConfig controls playlist creation and the match-ratio gate.
type ImportConfig struct {
	PlaylistName   string  `toml:"playlist_name"`
	Description    string  `toml:"description"`
	MatchThreshold float64 `toml:"match_threshold"`
	Public         bool    `toml:"public"`
}

// StagesConfig toggles the two pipeline stages.
type StagesConfig struct {
	Extract bool `toml:"extract"`
	Import  bool `toml:"import"`
}

// OutputConfig contains artifact paths.
type OutputConfig struct {
	CSVPath      string `toml:"csv_path"`
	JSONPath     string `toml:"json_path"`
	UnmatchedDir string `toml:"unmatched_dir"`
	LogDir       string `toml:"log_dir"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains the OAuth callback server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
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
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks value ranges that would otherwise surface mid-run.
func (c *Config) Validate() error {
	if c.Scraper.MaxStagnantAttempts < 1 {
		return fmt.Errorf("%w: scraper.max_stagnant_attempts must be at least 1", ErrInvalidConfig)
	}
	if c.Import.MatchThreshold < 0 || c.Import.MatchThreshold > 1 {
		return fmt.Errorf("%w: import.match_threshold must be between 0.0 and 1.0", ErrInvalidConfig)
	}
	if c.Scraper.NavigationTimeoutMS <= 0 {
		return fmt.Errorf("%w: scraper.navigation_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.Output.CSVPath == "" {
		return fmt.Errorf("%w: output.csv_path is required", ErrInvalidConfig)
	}
	return nil
}
