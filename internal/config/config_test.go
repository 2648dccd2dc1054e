// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := Default()

	if cfg.DefaultModel == "" {
		t.Error("default model should not be empty")
	}
	if cfg.Server.URL == "" {
		t.Error("server URL should not be empty")
	}
	if cfg.Server.TimeoutSecs <= 0 {
		t.Errorf("timeout = %d, want positive", cfg.Server.TimeoutSecs)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestConfig_LoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
default_model = "claude-3.5-sonnet"

[server]
url = "https://janus.example.com"
timeout_secs = 60

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.DefaultModel != "claude-3.5-sonnet" {
		t.Errorf("default_model = %q", cfg.DefaultModel)
	}
	if cfg.Server.URL != "https://janus.example.com" {
		t.Errorf("server.url = %q", cfg.Server.URL)
	}
	if cfg.Server.TimeoutSecs != 60 {
		t.Errorf("server.timeout_secs = %d", cfg.Server.TimeoutSecs)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("ui.theme = %q", cfg.UI.Theme)
	}
	// Fields missing from the file keep defaults.
	if cfg.History.MaxEntries != Default().History.MaxEntries {
		t.Errorf("history.max_entries = %d, want default", cfg.History.MaxEntries)
	}
}

func TestConfig_SaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.DefaultModel = "gpt-4-turbo-preview"
	cfg.Server.URL = "http://localhost:9000"
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file permissions = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.DefaultModel != "gpt-4-turbo-preview" {
		t.Errorf("default_model = %q", loaded.DefaultModel)
	}
	if loaded.Server.URL != "http://localhost:9000" {
		t.Errorf("server.url = %q", loaded.Server.URL)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad server url", func(c *Config) { c.Server.URL = "::not a url" }, "server.url"},
		{"bad scheme", func(c *Config) { c.Server.URL = "ftp://example.com" }, "server.url"},
		{"timeout too low", func(c *Config) { c.Server.TimeoutSecs = 0 }, "server.timeout_secs"},
		{"timeout too high", func(c *Config) { c.Server.TimeoutSecs = 9000 }, "server.timeout_secs"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"negative history", func(c *Config) { c.History.MaxEntries = -1 }, "history.max_entries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("JANUS_SERVER_URL", "https://override.example.com")
	t.Setenv("JANUS_MODEL", "claude-3-haiku-20240307")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.URL != "https://override.example.com" {
		t.Errorf("server.url = %q", cfg.Server.URL)
	}
	if cfg.DefaultModel != "claude-3-haiku-20240307" {
		t.Errorf("default_model = %q", cfg.DefaultModel)
	}
}

func TestConfig_DotNotation(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("server.url", "https://dot.example.com"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := cfg.Get("server.url")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "https://dot.example.com" {
		t.Errorf("server.url = %v", got)
	}

	if err := cfg.Set("server.timeout_secs", "45"); err != nil {
		t.Fatalf("Set int from string: %v", err)
	}
	if cfg.Server.TimeoutSecs != 45 {
		t.Errorf("timeout_secs = %d, want 45", cfg.Server.TimeoutSecs)
	}

	if err := cfg.Set("ui.render_markdown", "false"); err != nil {
		t.Fatalf("Set bool from string: %v", err)
	}
	if cfg.UI.RenderMarkdown {
		t.Error("render_markdown should be false")
	}

	if _, err := cfg.Get("no.such.key"); err == nil {
		t.Error("Get on unknown key should fail")
	}
	if err := cfg.Set("no.such.key", "x"); err == nil {
		t.Error("Set on unknown key should fail")
	}
}

func TestConfig_GetAllKeysResolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("key %q does not resolve: %v", key, err)
		}
	}
}

// TestConfig_ConcurrentAccess verifies Global(), SetGlobal(), and
// ReloadGlobal() can be called concurrently without races.
// Run with: go test -race ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()

		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

func TestConfig_GlobalInitialization(t *testing.T) {
	ResetGlobalForTesting()

	cfg := Global()
	if cfg == nil {
		t.Fatal("Global() returned nil")
	}
	if cfg.Version == "" {
		t.Error("config version should not be empty")
	}
	if cfg.Server.URL == "" {
		t.Error("server URL should not be empty")
	}
}
