package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaultDBPath(t *testing.T) {
	// Test with XDG_CACHE_HOME set
	t.Run("with XDG_CACHE_HOME", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "/custom/cache")
		path := DefaultDBPath()

		expected := "/custom/cache/shopsearch/history.db"
		if path != expected {
			t.Errorf("DefaultDBPath() = %q, want %q", path, expected)
		}
	})

	// Test without XDG_CACHE_HOME
	t.Run("without XDG_CACHE_HOME", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "")
		path := DefaultDBPath()

		if !strings.HasSuffix(path, filepath.Join(".cache", "shopsearch", "history.db")) {
			t.Errorf("DefaultDBPath() = %q, want suffix .cache/shopsearch/history.db", path)
		}
	})
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := DefaultConfigPath(), "/custom/config/shopsearch/config.toml"; got != want {
		t.Errorf("DefaultConfigPath() = %q, want %q", got, want)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %s, want 2s", cfg.PollInterval)
	}
	if cfg.InitialDelay != time.Second {
		t.Errorf("InitialDelay = %s, want 1s", cfg.InitialDelay)
	}
	if cfg.MaxAttempts != 60 {
		t.Errorf("MaxAttempts = %d, want 60", cfg.MaxAttempts)
	}
	if !cfg.AutoDemoFallback {
		t.Error("AutoDemoFallback should default to true")
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want text", cfg.LogFormat)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `
backend_url = "https://shop.example.com"
token = "file-token"
poll_interval = "500ms"
max_attempts = 10
auto_demo_fallback = false
log_format = "json"
`)

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BackendURL != "https://shop.example.com" {
		t.Errorf("BackendURL = %q", cfg.BackendURL)
	}
	if cfg.Token != "file-token" {
		t.Errorf("Token = %q, want file-token", cfg.Token)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Errorf("PollInterval = %s, want 500ms", cfg.PollInterval)
	}
	if cfg.MaxAttempts != 10 {
		t.Errorf("MaxAttempts = %d, want 10", cfg.MaxAttempts)
	}
	if cfg.AutoDemoFallback {
		t.Error("AutoDemoFallback = true, want false")
	}
	// untouched keys keep their defaults
	if cfg.InitialDelay != time.Second {
		t.Errorf("InitialDelay = %s, want 1s", cfg.InitialDelay)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `
token = "file-token"
max_attempts = 10
`)
	t.Setenv("SHOPSEARCH_TOKEN", "env-token")
	t.Setenv("SHOPSEARCH_MAX_ATTEMPTS", "5")
	t.Setenv("SHOPSEARCH_POLL_INTERVAL", "3s")

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Token != "env-token" {
		t.Errorf("Token = %q, want env-token", cfg.Token)
	}
	if cfg.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.MaxAttempts)
	}
	if cfg.PollInterval != 3*time.Second {
		t.Errorf("PollInterval = %s, want 3s", cfg.PollInterval)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "SHOPSEARCH_TOKEN=dotenv-token\n")
	t.Cleanup(func() { os.Unsetenv("SHOPSEARCH_TOKEN") })

	cfg, err := Load(filepath.Join(dir, "missing.toml"), envFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Token != "dotenv-token" {
		t.Errorf("Token = %q, want dotenv-token", cfg.Token)
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.toml"), filepath.Join(dir, ".env")); err != nil {
		t.Errorf("Load() error = %v, want nil for a missing .env", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "malformed toml", file: "backend_url = "},
		{name: "bad duration in env", env: map[string]string{"SHOPSEARCH_POLL_INTERVAL": "soon"}},
		{name: "bad int in env", env: map[string]string{"SHOPSEARCH_MAX_ATTEMPTS": "many"}},
		{name: "bad bool in env", env: map[string]string{"SHOPSEARCH_AUTO_DEMO_FALLBACK": "maybe"}},
		{name: "invalid value", file: "max_attempts = 0"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(dir, "missing.toml")
			if tt.file != "" {
				path = writeFile(t, dir, "c"+string(rune('a'+i))+".toml", tt.file)
			}
			if _, err := Load(path, ""); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty backend", mutate: func(c *Config) { c.BackendURL = " " }, wantErr: true},
		{name: "zero interval", mutate: func(c *Config) { c.PollInterval = 0 }, wantErr: true},
		{name: "negative delay", mutate: func(c *Config) { c.InitialDelay = -time.Second }, wantErr: true},
		{name: "zero delay", mutate: func(c *Config) { c.InitialDelay = 0 }},
		{name: "zero attempts", mutate: func(c *Config) { c.MaxAttempts = 0 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.RequestTimeout = 0 }, wantErr: true},
		{name: "empty db path", mutate: func(c *Config) { c.DBPath = "" }, wantErr: true},
		{name: "bad listen address", mutate: func(c *Config) { c.Listen = "nowhere" }, wantErr: true},
		{name: "port only", mutate: func(c *Config) { c.Listen = ":8090" }},
		{name: "unknown log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_NamesTOMLKey(t *testing.T) {
	cfg := Default()
	cfg.MaxAttempts = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "max_attempts") {
		t.Errorf("Validate() error = %q, want it to name max_attempts", err)
	}
}
