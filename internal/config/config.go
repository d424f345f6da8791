package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const envPrefix = "SHOPSEARCH_"

// Config holds application configuration.
type Config struct {
	BackendURL       string        `toml:"backend_url" validate:"required,url"`
	Token            string        `toml:"token"`
	DemoToken        string        `toml:"demo_token"`
	AutoDemoFallback bool          `toml:"auto_demo_fallback"`
	PollInterval     time.Duration `toml:"poll_interval" validate:"gt=0"`
	InitialDelay     time.Duration `toml:"initial_delay" validate:"gte=0"`
	MaxAttempts      int           `toml:"max_attempts" validate:"gt=0"`
	RequestTimeout   time.Duration `toml:"request_timeout" validate:"gt=0"`
	DBPath           string        `toml:"db_path" validate:"required"`
	Listen           string        `toml:"listen" validate:"required,hostname_port"`
	LogLevel         string        `toml:"log_level"`
	LogFormat        string        `toml:"log_format" validate:"oneof=text json"`
}

var validate = newValidator()

// newValidator reports fields by their TOML key.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DefaultDBPath returns the default database path using XDG_CACHE_HOME.
func DefaultDBPath() string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home, _ := os.UserHomeDir()
		cacheDir = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheDir, "shopsearch", "history.db")
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "shopsearch", "config.toml")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BackendURL:       "http://localhost:8000",
		AutoDemoFallback: true,
		PollInterval:     2 * time.Second,
		InitialDelay:     time.Second,
		MaxAttempts:      60,
		RequestTimeout:   30 * time.Second,
		DBPath:           DefaultDBPath(),
		Listen:           "127.0.0.1:8090",
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load builds Config from defaults, the .env file, the TOML file and
// SHOPSEARCH_* environment variables, in that order. Missing files are
// not an error. An empty path means DefaultConfigPath.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg := Default()

	if path == "" {
		path = DefaultConfigPath()
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Env overrides
func (c *Config) applyEnv() error {
	if v, ok := lookup("BACKEND_URL"); ok {
		c.BackendURL = v
	}
	if v, ok := lookup("TOKEN"); ok {
		c.Token = v
	}
	if v, ok := lookup("DEMO_TOKEN"); ok {
		c.DemoToken = v
	}
	if v, ok := lookup("DB"); ok {
		c.DBPath = v
	}
	if v, ok := lookup("LISTEN"); ok {
		c.Listen = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		c.LogFormat = v
	}
	if v, ok := lookup("AUTO_DEMO_FALLBACK"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("AUTO_DEMO_FALLBACK", err)
		}
		c.AutoDemoFallback = b
	}
	if v, ok := lookup("MAX_ATTEMPTS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("MAX_ATTEMPTS", err)
		}
		c.MaxAttempts = n
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"POLL_INTERVAL", &c.PollInterval},
		{"INITIAL_DELAY", &c.InitialDelay},
		{"REQUEST_TIMEOUT", &c.RequestTimeout},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return envError(d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		return fmt.Errorf("config: %s: invalid value %v (%s)", fe.Field(), fe.Value(), rule)
	}
	return fmt.Errorf("config: %w", err)
}

func lookup(key string) (string, bool) {
	v := os.Getenv(envPrefix + key)
	return v, v != ""
}

func envError(key string, err error) error {
	return fmt.Errorf("config: %s%s: %w", envPrefix, key, err)
}
