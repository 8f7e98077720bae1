// Package config loads and persists the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// HTTP server configuration
	Server ServerConfig `toml:"server"`

	// Storage backend configuration
	Storage StorageConfig `toml:"storage"`

	// Scryfall client configuration
	Scryfall ScryfallConfig `toml:"scryfall"`

	// Bulk import pipeline configuration
	Import ImportConfig `toml:"import"`

	// Authentication configuration
	Auth AuthConfig `toml:"auth"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port           int      `toml:"port"`            // Listen port
	AllowedOrigins []string `toml:"allowed_origins"` // CORS origins
}

// StorageConfig contains persistence settings.
type StorageConfig struct {
	Driver string `toml:"driver"` // "sqlite" or "postgres"
	Path   string `toml:"path"`   // SQLite database file path
	DSN    string `toml:"dsn"`    // Postgres connection string
}

// ScryfallConfig contains card lookup settings.
type ScryfallConfig struct {
	BaseURL      string `toml:"base_url"`      // API base URL
	UserAgent    string `toml:"user_agent"`    // User-Agent header
	RequestDelay string `toml:"request_delay"` // Spacing between requests (e.g., "100ms")
	Timeout      string `toml:"timeout"`       // Per-request timeout (e.g., "30s")
}

// ImportConfig contains bulk import pipeline settings.
type ImportConfig struct {
	Cooldown string `toml:"cooldown"` // Pause after a 429 (e.g., "500ms")
}

// AuthConfig contains token settings.
type AuthConfig struct {
	Secret   string `toml:"secret"`    // Token signing secret
	TokenTTL string `toml:"token_ttl"` // Token lifetime (e.g., "24h")
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "",
			DSN:    "",
		},
		Scryfall: ScryfallConfig{
			BaseURL:      "https://api.scryfall.com",
			UserAgent:    "MTGBinder/1.0",
			RequestDelay: "100ms",
			Timeout:      "30s",
		},
		Import: ImportConfig{
			Cooldown: "500ms",
		},
		Auth: AuthConfig{
			Secret:   "",
			TokenTTL: "24h",
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// DefaultPath returns the default configuration file path.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".mtgbinder")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from the given path. An empty path uses
// the default location. Returns the default config if the file doesn't
// exist.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to the given path. An empty path uses
// the default location.
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return err
		}
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Storage.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		return fmt.Errorf("postgres driver requires a dsn")
	}

	if _, err := time.ParseDuration(c.Scryfall.RequestDelay); err != nil {
		return fmt.Errorf("invalid request delay %q: %w", c.Scryfall.RequestDelay, err)
	}
	if _, err := time.ParseDuration(c.Scryfall.Timeout); err != nil {
		return fmt.Errorf("invalid scryfall timeout %q: %w", c.Scryfall.Timeout, err)
	}
	if _, err := time.ParseDuration(c.Import.Cooldown); err != nil {
		return fmt.Errorf("invalid import cooldown %q: %w", c.Import.Cooldown, err)
	}
	if _, err := time.ParseDuration(c.Auth.TokenTTL); err != nil {
		return fmt.Errorf("invalid token TTL %q: %w", c.Auth.TokenTTL, err)
	}

	return nil
}

// GetRequestDelay returns the Scryfall request spacing as a duration.
func (c *Config) GetRequestDelay() (time.Duration, error) {
	return time.ParseDuration(c.Scryfall.RequestDelay)
}

// GetScryfallTimeout returns the Scryfall request timeout as a duration.
func (c *Config) GetScryfallTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Scryfall.Timeout)
}

// GetImportCooldown returns the post-429 pause as a duration.
func (c *Config) GetImportCooldown() (time.Duration, error) {
	return time.ParseDuration(c.Import.Cooldown)
}

// GetTokenTTL returns the token lifetime as a duration.
func (c *Config) GetTokenTTL() (time.Duration, error) {
	return time.ParseDuration(c.Auth.TokenTTL)
}
