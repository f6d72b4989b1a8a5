// Package config provides configuration management for the trading journal.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "trade-journal/internal/errors"
)

// Storage backends for the key-value store.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Journal       JournalConfig      `mapstructure:"journal"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Profile       ProfileConfig      `mapstructure:"profile"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Server        ServerConfig       `mapstructure:"server"`
	UI            UIConfig           `mapstructure:"ui"`
}

// JournalConfig holds the location of the SQLite database.
type JournalConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// StorageConfig selects where journal data lives. The sqlite backend uses
// Journal.DBPath; the others keep every collection in a key-value store.
type StorageConfig struct {
	Backend  string `mapstructure:"backend"` // memory, file, redis, sqlite
	FilePath string `mapstructure:"file_path"`
	RedisURL string `mapstructure:"redis_url"`
	Prefix   string `mapstructure:"prefix"`
}

// ProfileConfig seeds the user profile on first run.
type ProfileConfig struct {
	ID    string `mapstructure:"id"`
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
}

// NotificationConfig holds notification configuration.
type NotificationConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Level    string         `mapstructure:"level"` // all, achievements_only, errors_only
	Terminal TerminalConfig `mapstructure:"terminal"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
}

// TerminalConfig holds terminal notification configuration.
type TerminalConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Bell    bool `mapstructure:"bell"`
}

// WebhookConfig holds webhook notification configuration.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// LoggingConfig mirrors logging.LogConfig in file form.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

// UIConfig holds CLI output settings.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

var loadEnvFunc = godotenv.Load

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/trade-journal"
	}
	return filepath.Join(home, ".config", "trade-journal")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is replaced by the commented template and then read.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	loadDotEnv(configDir)

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, err
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config.toml: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.resolvePaths(configDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default(configDir string) *Config {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	v := viper.New()
	setDefaults(v, configDir)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	cfg.resolvePaths(configDir)
	return cfg
}

// loadDotEnv loads .env from the working directory and then the config
// directory. Variables already set in the environment win.
func loadDotEnv(configDir string) {
	for _, p := range []string{".env", filepath.Join(configDir, ".env")} {
		if _, err := os.Stat(p); err == nil {
			_ = loadEnvFunc(p)
		}
	}
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("journal.db_path", filepath.Join(configDir, "journal.db"))

	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.file_path", filepath.Join(configDir, "storage.json"))
	v.SetDefault("storage.redis_url", "redis://localhost:6379/0")
	v.SetDefault("storage.prefix", "journal:")

	v.SetDefault("profile.id", "1")
	v.SetDefault("profile.name", "Trader")

	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.level", "all")
	v.SetDefault("notifications.terminal.enabled", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", false)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.path", filepath.Join(configDir, "logs", "journal.log"))
	v.SetDefault("logging.max_size_mb", 20)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "02-Jan-2006 15:04")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JOURNAL_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Storage.RedisURL = v
	}
	if v := os.Getenv("JOURNAL_DB_PATH"); v != "" {
		cfg.Journal.DBPath = v
	}
	if v := os.Getenv("JOURNAL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("JOURNAL_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

// resolvePaths anchors relative paths at the config directory.
func (c *Config) resolvePaths(configDir string) {
	for _, p := range []*string{&c.Journal.DBPath, &c.Storage.FilePath, &c.Logging.Path} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendSQLite:
	default:
		return apperrors.Wrapf(apperrors.ErrConfigInvalid,
			"invalid storage backend %q (must be memory, file, redis or sqlite)", c.Storage.Backend)
	}

	if c.Storage.Backend == BackendFile && c.Storage.FilePath == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "storage.file_path is required for the file backend")
	}
	if c.Storage.Backend == BackendSQLite && c.Journal.DBPath == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "journal.db_path is required for the sqlite backend")
	}

	switch c.Notifications.Level {
	case "", "all", "achievements_only", "errors_only":
	default:
		return apperrors.Wrapf(apperrors.ErrConfigInvalid,
			"invalid notification level %q (must be all, achievements_only or errors_only)", c.Notifications.Level)
	}

	if c.Notifications.Webhook.Enabled && c.Notifications.Webhook.URL == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "notifications.webhook.url is required when the webhook is enabled")
	}

	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "invalid server mode %q", c.Server.Mode)
	}

	return nil
}
