package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./tracklift.db" {
			t.Errorf("expected database path ./tracklift.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8888 {
			t.Errorf("expected server port 8888, got %d", config.Server.Port)
		}

		if config.Scraper.MaxStagnantAttempts != 3 {
			t.Errorf("expected max_stagnant_attempts 3, got %d", config.Scraper.MaxStagnantAttempts)
		}

		if config.Import.MatchThreshold != 0.8 {
			t.Errorf("expected match_threshold 0.8, got %v", config.Import.MatchThreshold)
		}

		if !config.Stages.Extract || !config.Stages.Import {
			t.Error("both stages should be enabled by default")
		}

		if config.Credentials.Spotify.RedirectURI != "http://127.0.0.1:8888/callback" {
			t.Errorf("unexpected redirect uri %s", config.Credentials.Spotify.RedirectURI)
		}

		if config.Credentials.Spotify.Configured() {
			t.Error("placeholder credentials should not count as configured")
		}

		if config.Scraper.NavigationTimeout() != 30*time.Second {
			t.Errorf("expected 30s navigation timeout, got %v", config.Scraper.NavigationTimeout())
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Output.CSVPath != DefaultConfig().Output.CSVPath {
			t.Errorf("created config csv path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig keeps defaults for missing keys", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[source]
playlist_url = "https://music.example.com/playlist/abc"

[scraper]
headless = false

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"

[import]
playlist_name = "Road Trip"
match_threshold = 0.5

[stages]
extract = false
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Source.PlaylistURL != "https://music.example.com/playlist/abc" {
			t.Errorf("unexpected playlist url %s", config.Source.PlaylistURL)
		}
		if config.Scraper.Headless {
			t.Error("headless should be overridden to false")
		}
		if config.Scraper.MaxStagnantAttempts != 3 {
			t.Errorf("expected default max_stagnant_attempts 3, got %d", config.Scraper.MaxStagnantAttempts)
		}
		if !config.Credentials.Spotify.Configured() {
			t.Error("expected credentials to be configured")
		}
		if config.Import.MatchThreshold != 0.5 {
			t.Errorf("expected threshold 0.5, got %v", config.Import.MatchThreshold)
		}
		if config.Stages.Extract || !config.Stages.Import {
			t.Errorf("unexpected stages %+v", config.Stages)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("SaveConfig round trip", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Import.PlaylistName = "Saved"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.Import.PlaylistName != "Saved" {
			t.Errorf("expected playlist name Saved, got %s", loaded.Import.PlaylistName)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*Config)
			field  string
		}{
			{"zero stagnant attempts", func(c *Config) { c.Scraper.MaxStagnantAttempts = 0 }, "max_stagnant_attempts"},
			{"threshold above one", func(c *Config) { c.Import.MatchThreshold = 1.2 }, "match_threshold"},
			{"negative threshold", func(c *Config) { c.Import.MatchThreshold = -0.1 }, "match_threshold"},
			{"zero timeout", func(c *Config) { c.Scraper.NavigationTimeoutMS = 0 }, "navigation_timeout_ms"},
			{"missing csv path", func(c *Config) { c.Output.CSVPath = "" }, "csv_path"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)

				err := config.Validate()
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("expected ErrInvalidConfig, got %v", err)
				}
				if !strings.Contains(err.Error(), tt.field) {
					t.Errorf("expected error to mention %s, got %v", tt.field, err)
				}
			})
		}
	})
}

func TestRunLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	f, err := OpenRunLog(dir, at)
	if err != nil {
		t.Fatalf("failed to open run log: %v", err)
	}
	defer f.Close()

	want := filepath.Join(dir, "log_2024-03-09_14-05-07.txt")
	if f.Name() != want {
		t.Errorf("expected %s, got %s", want, f.Name())
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("log file should exist: %v", err)
	}
}
