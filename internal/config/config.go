// Package config loads settings from the config file, environment and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/penwyp/go-claude-usage/internal/data/store"
	"github.com/spf13/viper"
)

const (
	DefaultConfigFile = "~/.go-claude-usage/config.yaml"
	EnvPrefix         = "CLAUDE_USAGE"
)

// Config holds the complete application configuration
type Config struct {
	CLI      CLIConfig     `mapstructure:"cli"`
	Store    StoreConfig   `mapstructure:"store"`
	Logging  LoggingConfig `mapstructure:"logging"`
	Metrics  MetricsConfig `mapstructure:"metrics"`
	Timezone string        `mapstructure:"timezone"`
}

// CLIConfig controls how the claude binary is invoked
type CLIConfig struct {
	BinaryPath string        `mapstructure:"binary_path"` // empty means auto-detect
	Args       []string      `mapstructure:"args"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// StoreConfig selects the shared store backend
type StoreConfig struct {
	Type         string        `mapstructure:"type"`
	Path         string        `mapstructure:"path"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Redis        RedisConfig   `mapstructure:"redis"`
	SQLite       SQLiteConfig  `mapstructure:"sqlite"`
}

// RedisConfig defines the Redis connection
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// SQLiteConfig defines the SQLite database location
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig defines log output
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	File   string `mapstructure:"file"`
	Format string `mapstructure:"format"`
}

// MetricsConfig defines the daemon's Prometheus endpoint
type MetricsConfig struct {
	Address string `mapstructure:"address"` // empty disables the endpoint
}

// Load reads configPath (optional; a missing file is not an error), applies
// CLAUDE_USAGE_* environment overrides and validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		configPath = ExpandPath(configPath)
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// Config file not found, use defaults and environment variables
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.expandPaths()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	cfg.expandPaths()
	return &cfg
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("cli.binary_path", "")
	v.SetDefault("cli.args", []string{"/usage"})
	v.SetDefault("cli.timeout", "30s")

	v.SetDefault("store.type", string(store.TypeFile))
	v.SetDefault("store.path", "~/.go-claude-usage/shared")
	v.SetDefault("store.poll_interval", "2s")
	v.SetDefault("store.redis.addr", "127.0.0.1:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", store.DefaultRedisPrefix)
	v.SetDefault("store.sqlite.path", "~/.go-claude-usage/shared.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "~/.go-claude-usage/logs/app.log")
	v.SetDefault("logging.format", "text")

	v.SetDefault("metrics.address", "")
	v.SetDefault("timezone", "Local")
}

func (c *Config) expandPaths() {
	c.CLI.BinaryPath = expandOptional(c.CLI.BinaryPath)
	c.Store.Path = expandOptional(c.Store.Path)
	c.Store.SQLite.Path = expandOptional(c.Store.SQLite.Path)
	c.Logging.File = expandOptional(c.Logging.File)
}

// Validate checks the configuration for unusable values
func (c *Config) Validate() error {
	if c.CLI.Timeout <= 0 {
		return fmt.Errorf("cli.timeout must be positive, got %s", c.CLI.Timeout)
	}
	if len(c.CLI.Args) == 0 {
		return fmt.Errorf("cli.args must not be empty")
	}

	switch store.Type(c.Store.Type) {
	case store.TypeFile:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the file store")
		}
	case store.TypeRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for the redis store")
		}
	case store.TypeSQLite:
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("store.sqlite.path is required for the sqlite store")
		}
		if c.Store.PollInterval <= 0 {
			return fmt.Errorf("store.poll_interval must be positive, got %s", c.Store.PollInterval)
		}
	default:
		return fmt.Errorf("unknown store.type %q (file, redis, sqlite)", c.Store.Type)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown logging.format %q (text, json)", c.Logging.Format)
	}

	if c.Timezone != "" && c.Timezone != "Local" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
		}
	}
	return nil
}

// StoreOptions converts the store section for store.Open
func (c *Config) StoreOptions() store.Config {
	return store.Config{
		Type:         store.Type(c.Store.Type),
		Path:         c.Store.Path,
		SQLitePath:   c.Store.SQLite.Path,
		PollInterval: c.Store.PollInterval,
		Redis: store.RedisConfig{
			Addr:     c.Store.Redis.Addr,
			Password: c.Store.Redis.Password,
			DB:       c.Store.Redis.DB,
			Prefix:   c.Store.Redis.Prefix,
		},
	}
}

// ExpandPath resolves a leading ~/ and makes the path absolute
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func expandOptional(path string) string {
	if path == "" {
		return ""
	}
	return ExpandPath(path)
}
