// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for docent.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.docent/config.toml
//   - ~/.docent/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/docent-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete docent configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Backend service configuration
	Backend BackendConfig `toml:"backend" json:"backend"`

	// Training configuration
	Training TrainingConfig `toml:"training" json:"training"`

	// Storage configuration
	Storage StorageConfig `toml:"storage" json:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// BackendConfig contains the backend service connection settings.
type BackendConfig struct {
	// BaseURL is the backend service root; most endpoints hang off it
	// directly, the quiz ones under /api
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs is the per-request timeout for regular API calls
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// UploadTimeoutSecs is the timeout for PDF uploads, which include
	// server-side indexing and can run for minutes
	UploadTimeoutSecs int `toml:"upload_timeout_secs" json:"upload_timeout_secs"`
	// RequestsPerSecond caps the outbound request rate (0 = default)
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
}

// Training backend modes.
const (
	// TrainingModeProcess runs the trainer executable locally and watches
	// for the finished index on disk.
	TrainingModeProcess = "process"
	// TrainingModeUpload ships PDFs to the backend service, which trains
	// and registers the chatbot itself.
	TrainingModeUpload = "upload"
)

// TrainingConfig contains local trainer settings.
type TrainingConfig struct {
	// Mode selects the training backend: "process" runs TrainerPath
	// locally, "upload" ships PDFs to the backend service
	Mode string `toml:"mode" json:"mode"`
	// TrainerPath is the trainer executable or script for process mode
	TrainerPath string `toml:"trainer_path" json:"trainer_path"`
	// Interpreter is prepended to the command line when TrainerPath is a
	// bare script (e.g. "python3")
	Interpreter string `toml:"interpreter" json:"interpreter"`
	// WatchDebounceMillis is the index watcher debounce window
	WatchDebounceMillis int `toml:"watch_debounce_millis" json:"watch_debounce_millis"`
}

// StorageConfig contains local data storage settings.
type StorageConfig struct {
	// DataDir is the docent data directory (empty = ~/.docent)
	DataDir string `toml:"data_dir" json:"data_dir"`
	// ChatHistory persists chat transcripts in a local database
	ChatHistory bool `toml:"chat_history" json:"chat_history"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// CompactMode uses a more compact UI layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
	// RenderMarkdown renders chat answers as styled markdown
	RenderMarkdown bool `toml:"render_markdown" json:"render_markdown"`
	// ShowSources displays retrieved source pages under each answer
	ShowSources bool `toml:"show_sources" json:"show_sources"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Backend: BackendConfig{
			BaseURL:           "http://127.0.0.1:8088",
			TimeoutSecs:       30,
			UploadTimeoutSecs: 600,
			RequestsPerSecond: 10,
		},

		Training: TrainingConfig{
			Mode:                TrainingModeUpload,
			TrainerPath:         "",
			Interpreter:         "python3",
			WatchDebounceMillis: 500,
		},

		Storage: StorageConfig{
			DataDir:     "", // resolved against the home directory
			ChatHistory: true,
		},

		UI: UIConfig{
			Theme:          "dark",
			CompactMode:    false,
			RenderMarkdown: true,
			ShowSources:    true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the docent configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".docent"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// DataDir resolves the data directory, defaulting to the config directory.
func (c *Config) DataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir, nil
	}
	return ConfigDir()
}

// Timeout returns the regular request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// UploadTimeout returns the upload timeout as a duration.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.Backend.UploadTimeoutSecs) * time.Second
}

// WatchDebounce returns the index watcher debounce window as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Training.WatchDebounceMillis) * time.Millisecond
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	// Try JSON as fallback
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	cfg, err = finish(cfg)
	if err != nil {
		return nil, err
	}
	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// finish applies env overrides, defaults and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	return finish(cfg)
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = defaults.Backend.BaseURL
	}
	if cfg.Backend.TimeoutSecs <= 0 {
		cfg.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	if cfg.Backend.UploadTimeoutSecs <= 0 {
		cfg.Backend.UploadTimeoutSecs = defaults.Backend.UploadTimeoutSecs
	}
	if cfg.Backend.RequestsPerSecond <= 0 {
		cfg.Backend.RequestsPerSecond = defaults.Backend.RequestsPerSecond
	}

	if cfg.Training.Mode == "" {
		cfg.Training.Mode = defaults.Training.Mode
	}
	if cfg.Training.Interpreter == "" {
		cfg.Training.Interpreter = defaults.Training.Interpreter
	}
	if cfg.Training.WatchDebounceMillis <= 0 {
		cfg.Training.WatchDebounceMillis = defaults.Training.WatchDebounceMillis
	}

	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies DOCENT_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DOCENT_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("DOCENT_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Backend.TimeoutSecs = n
		}
	}
	if v := os.Getenv("DOCENT_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("DOCENT_TRAINER"); v != "" {
		c.Training.TrainerPath = v
		c.Training.Mode = TrainingModeProcess
	}
	if v := os.Getenv("DOCENT_TRAINING_MODE"); v != "" {
		c.Training.Mode = v
	}
	if v := os.Getenv("DOCENT_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url %q is not a valid URL", c.Backend.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.base_url scheme %q is not http or https", u.Scheme)
	}

	switch c.Training.Mode {
	case TrainingModeProcess, TrainingModeUpload:
	default:
		return fmt.Errorf("training.mode %q is not %q or %q", c.Training.Mode, TrainingModeProcess, TrainingModeUpload)
	}
	if c.Training.Mode == TrainingModeProcess && c.Training.TrainerPath == "" {
		return fmt.Errorf("training.mode is %q but training.trainer_path is empty", TrainingModeProcess)
	}

	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return fmt.Errorf("ui.theme %q is not dark, light or auto", c.UI.Theme)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the TOML config file atomically.
func (c *Config) Save() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to a specific path. JSON paths get JSON,
// everything else TOML.
func (c *Config) SaveTo(path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		var sb strings.Builder
		err = toml.NewEncoder(&sb).Encode(c)
		data = []byte(sb.String())
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, data, 0o600)
}
