package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey       string `toml:"api_key"`
	BaseURL      string `toml:"base_url"`
	ImageBaseURL string `toml:"image_base_url"`
	Language     string `toml:"language"`
}

// Enrich controls the metadata lookup fan-out. Concurrency 0 means
// unbounded; an empty timeout means none.
type Enrich struct {
	Concurrency int    `toml:"concurrency"`
	Timeout     string `toml:"timeout"`

	timeout time.Duration
}

// RequestTimeout is the parsed per-lookup timeout, valid after Normalize.
func (e Enrich) RequestTimeout() time.Duration {
	return e.timeout
}

// Server configures the HTTP listener.
type Server struct {
	Port      string `toml:"port"`
	RateLimit int    `toml:"rate_limit"` // requests per minute per client
}

// Log configures the process logger.
type Log struct {
	Level string `toml:"level"`
}

// Config is the complete application configuration.
type Config struct {
	Source string `toml:"source"`
	TMDB   TMDB   `toml:"tmdb"`
	Enrich Enrich `toml:"enrich"`
	Server Server `toml:"server"`
	Log    Log    `toml:"log"`
}

// Default returns the configuration used when nothing else is provided.
func Default() Config {
	return Config{
		Source: "films.json",
		TMDB: TMDB{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p/w500",
			Language:     "it-IT",
		},
		Server: Server{
			Port:      "8080",
			RateLimit: 600,
		},
		Log: Log{Level: "info"},
	}
}

// Load builds the configuration from defaults, the optional TOML file at
// path, a .env file in the working directory and the environment, in that
// order of precedence (later wins).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Source, "CATALOG_SOURCE")
	setString(&c.TMDB.APIKey, "TMDB_API_KEY")
	setString(&c.TMDB.BaseURL, "TMDB_BASE_URL")
	setString(&c.TMDB.ImageBaseURL, "TMDB_IMAGE_BASE_URL")
	setString(&c.TMDB.Language, "TMDB_LANGUAGE")
	setString(&c.Enrich.Timeout, "ENRICH_TIMEOUT")
	setString(&c.Server.Port, "PORT")
	setString(&c.Log.Level, "LOG_LEVEL")

	if err := setInt(&c.Enrich.Concurrency, "ENRICH_CONCURRENCY"); err != nil {
		return err
	}
	return setInt(&c.Server.RateLimit, "RATE_LIMIT")
}

// Normalize trims values and validates them. It must be called again after
// fields are overridden by command-line flags.
func (c *Config) Normalize() error {
	c.Source = strings.TrimSpace(c.Source)
	if c.Source == "" {
		return errors.New("source must not be empty")
	}

	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language != "" {
		if _, err := language.Parse(c.TMDB.Language); err != nil {
			return fmt.Errorf("invalid tmdb language %q: %w", c.TMDB.Language, err)
		}
	}

	if c.Enrich.Concurrency < 0 {
		return fmt.Errorf("enrich concurrency must be >= 0, got %d", c.Enrich.Concurrency)
	}
	c.Enrich.timeout = 0
	if raw := strings.TrimSpace(c.Enrich.Timeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid enrich timeout %q: %w", raw, err)
		}
		if d < 0 {
			return fmt.Errorf("enrich timeout must be >= 0, got %s", raw)
		}
		c.Enrich.timeout = d
	}

	c.Server.Port = strings.TrimPrefix(strings.TrimSpace(c.Server.Port), ":")
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid port %q", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit must be >= 0, got %d", c.Server.RateLimit)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// EnrichmentEnabled reports whether metadata lookups can be made.
func (c *Config) EnrichmentEnabled() bool {
	return c.TMDB.APIKey != ""
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", level)
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}
