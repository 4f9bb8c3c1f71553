// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Backend.BaseURL != "http://127.0.0.1:8088" {
		t.Errorf("default base URL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Training.Mode != "upload" {
		t.Errorf("default training mode = %q", cfg.Training.Mode)
	}
}

func TestLoadTOMLFillsMissingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[backend]
base_url = "http://backend.local:9999/api"

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend.BaseURL != "http://backend.local:9999/api" {
		t.Errorf("base URL = %q", cfg.Backend.BaseURL)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
	// Unset values fall back to defaults.
	if cfg.Backend.TimeoutSecs != 30 {
		t.Errorf("timeout = %d, want default 30", cfg.Backend.TimeoutSecs)
	}
	if cfg.Training.Mode != "upload" {
		t.Errorf("training mode = %q, want default", cfg.Training.Mode)
	}
}

func TestLoadJSONConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"backend": {"base_url": "https://svc.example.com/api"}, "storage": {"data_dir": "/srv/docent"}}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend.BaseURL != "https://svc.example.com/api" {
		t.Errorf("base URL = %q", cfg.Backend.BaseURL)
	}
	dir, err := cfg.DataDir()
	if err != nil || dir != "/srv/docent" {
		t.Errorf("data dir = %q, %v", dir, err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad url", func(c *Config) { c.Backend.BaseURL = "::not-a-url" }},
		{"bad scheme", func(c *Config) { c.Backend.BaseURL = "ftp://host/api" }},
		{"bad training mode", func(c *Config) { c.Training.Mode = "teleport" }},
		{"process mode without trainer", func(c *Config) { c.Training.Mode = "process"; c.Training.TrainerPath = "" }},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("want validation error")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DOCENT_BACKEND_URL", "http://10.0.0.5:8088/api")
	t.Setenv("DOCENT_TRAINER", "/opt/docent/train_index.py")
	t.Setenv("DOCENT_TIMEOUT_SECS", "5")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Backend.BaseURL != "http://10.0.0.5:8088/api" {
		t.Errorf("base URL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Training.Mode != "process" || cfg.Training.TrainerPath != "/opt/docent/train_index.py" {
		t.Errorf("trainer override: mode=%q path=%q", cfg.Training.Mode, cfg.Training.TrainerPath)
	}
	if cfg.Backend.TimeoutSecs != 5 {
		t.Errorf("timeout = %d", cfg.Backend.TimeoutSecs)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Backend.BaseURL = "http://saved.local:8088/api"
	cfg.UI.CompactMode = true
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Backend.BaseURL != cfg.Backend.BaseURL {
		t.Errorf("base URL = %q", loaded.Backend.BaseURL)
	}
	if !loaded.UI.CompactMode {
		t.Error("compact mode lost in round trip")
	}
}
