// Package config provides dashboard configuration loading and validation.
// Settings come from environment variables (optionally seeded from a .env
// file) and can be overridden by a YAML file with ${VAR} expansion, so the
// dashboard can run against the same .env the indexer already uses.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// StopLatest is the sentinel stop-block value meaning "resolve to the
// newest block in the store at load time".
const StopLatest int64 = -1

// ErrInvalidRange reports a range load where the stop block is below the
// start block. Callers treat it as a fatal configuration error.
var ErrInvalidRange = errors.New("stop block must be greater than or equal to start block")

// Store holds the PostgreSQL connection settings for the blocks table.
type Store struct {
	Host     string `yaml:"host"`     // POSTGRES_HOST
	Port     int    `yaml:"port"`     // POSTGRES_PORT
	User     string `yaml:"user"`     // POSTGRES_USER
	Password string `yaml:"password"` // POSTGRES_PASSWORD
	Database string `yaml:"database"` // POSTGRES_DATABASE
	SSLMode  string `yaml:"sslmode"`  // POSTGRES_SSLMODE (default "disable")
}

// DSN returns the lib/pq connection string for the store.
func (s Store) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		s.Host, s.Port, s.User, s.Password, s.Database, s.SSLMode,
	)
}

// Live holds the settings for the continuously refreshing dashboard.
// The window is expressed as wall-clock minutes and converted to a block
// count using the chain's average block time.
type Live struct {
	WindowMinutes int           `yaml:"window_minutes"` // PLOT_TIME_WINDOW_MINUTES
	BlockSeconds  int           `yaml:"block_seconds"`  // AVERAGE_BLOCK_TIME_SECONDS
	Interval      time.Duration `yaml:"-"`              // UPDATE_INTERVAL
}

// UnmarshalYAML accepts the interval as a duration string ("6s") or a bare
// integer in milliseconds, and only overwrites fields present in the
// document so YAML can overlay environment-sourced values.
func (l *Live) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		WindowMinutes *int    `yaml:"window_minutes"`
		BlockSeconds  *int    `yaml:"block_seconds"`
		Interval      *string `yaml:"interval"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.WindowMinutes != nil {
		l.WindowMinutes = *raw.WindowMinutes
	}
	if raw.BlockSeconds != nil {
		l.BlockSeconds = *raw.BlockSeconds
	}
	if raw.Interval != nil {
		d, err := parseDuration(*raw.Interval)
		if err != nil {
			return fmt.Errorf("live.interval: %w", err)
		}
		l.Interval = d
	}
	return nil
}

// Range holds the bounds for a one-shot historical load.
// Stop may be StopLatest (-1) to use the newest block in the store.
type Range struct {
	Start uint64 `yaml:"start"` // START_BLOCK
	Stop  int64  `yaml:"stop"`  // STOP_BLOCK
}

// Config is the root dashboard configuration.
type Config struct {
	Store      Store  `yaml:"store"`
	Live       Live   `yaml:"live"`
	Range      Range  `yaml:"range"`
	TPSFormula string `yaml:"tps_formula"` // TPS_FORMULA: "block" or "delta"
	Format     string `yaml:"format"`      // FORMAT: "terminal" or "json"
	LogLevel   string `yaml:"log_level"`   // LOG_LEVEL
}

// WindowBlocks converts the live time window to a block count:
// minutes * 60 / average block seconds.
func (c *Config) WindowBlocks() int {
	return c.Live.WindowMinutes * 60 / c.Live.BlockSeconds
}

// Validate checks all settings needed before opening the store. Range
// bounds are validated separately at load time (ValidateRange), because the
// stop sentinel can only be resolved against the store.
func (c *Config) Validate() error {
	if c.Store.Host == "" {
		return fmt.Errorf("store host is required (POSTGRES_HOST)")
	}
	if c.Store.Port <= 0 || c.Store.Port > 65535 {
		return fmt.Errorf("store port %d is out of range (POSTGRES_PORT)", c.Store.Port)
	}
	if c.Store.User == "" {
		return fmt.Errorf("store user is required (POSTGRES_USER)")
	}
	if c.Store.Database == "" {
		return fmt.Errorf("store database is required (POSTGRES_DATABASE)")
	}
	if c.Live.WindowMinutes <= 0 {
		return fmt.Errorf("window minutes must be > 0 (PLOT_TIME_WINDOW_MINUTES)")
	}
	if c.Live.BlockSeconds <= 0 {
		return fmt.Errorf("average block seconds must be > 0 (AVERAGE_BLOCK_TIME_SECONDS)")
	}
	if c.Live.Interval <= 0 {
		return fmt.Errorf("update interval must be > 0 (UPDATE_INTERVAL)")
	}
	if c.TPSFormula != "block" && c.TPSFormula != "delta" {
		return fmt.Errorf("unknown tps formula %q (expected block or delta)", c.TPSFormula)
	}
	if c.Format != "terminal" && c.Format != "json" {
		return fmt.Errorf("unknown output format %q (expected terminal or json)", c.Format)
	}
	if c.Range.Stop < StopLatest {
		return fmt.Errorf("stop block %d is invalid (use %d for latest)", c.Range.Stop, StopLatest)
	}
	return nil
}

// ValidateRange checks explicit range bounds. A stop sentinel passes here
// and is resolved against the store later.
func (c *Config) ValidateRange() error {
	if c.Range.Stop == StopLatest {
		return nil
	}
	if c.Range.Stop < 0 || uint64(c.Range.Stop) < c.Range.Start {
		return fmt.Errorf("%w: start=%d stop=%d", ErrInvalidRange, c.Range.Start, c.Range.Stop)
	}
	return nil
}

// FromEnv builds a Config entirely from environment variables. Defaults
// assume a 5 minute window on a 6 second chain, refreshed every 6 seconds.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Store: Store{
			Host:     os.Getenv("POSTGRES_HOST"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Database: os.Getenv("POSTGRES_DATABASE"),
			SSLMode:  envString("POSTGRES_SSLMODE", "disable"),
		},
		TPSFormula: envString("TPS_FORMULA", "block"),
		Format:     envString("FORMAT", "terminal"),
		LogLevel:   envString("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Store.Port, err = envInt("POSTGRES_PORT", 5432); err != nil {
		return nil, err
	}
	if cfg.Live.WindowMinutes, err = envInt("PLOT_TIME_WINDOW_MINUTES", 5); err != nil {
		return nil, err
	}
	if cfg.Live.BlockSeconds, err = envInt("AVERAGE_BLOCK_TIME_SECONDS", 6); err != nil {
		return nil, err
	}
	if cfg.Live.Interval, err = envDuration("UPDATE_INTERVAL", 6*time.Second); err != nil {
		return nil, err
	}
	start, err := envInt("START_BLOCK", 0)
	if err != nil {
		return nil, err
	}
	if start < 0 {
		return nil, fmt.Errorf("START_BLOCK must be >= 0, got %d", start)
	}
	cfg.Range.Start = uint64(start)

	stop, err := envInt("STOP_BLOCK", int(StopLatest))
	if err != nil {
		return nil, err
	}
	cfg.Range.Stop = int64(stop)

	return cfg, nil
}

// Load builds the configuration from the environment and, when path is
// non-empty, overlays a YAML file on top. The YAML content is passed through
// os.ExpandEnv first, so values like password: ${POSTGRES_PASSWORD} work.
func Load(path string) (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := parseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// parseDuration accepts a Go duration string. A bare integer is read as
// milliseconds, so UPDATE_INTERVAL=6000 means six seconds.
func parseDuration(v string) (time.Duration, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return 0, fmt.Errorf("invalid duration %q", v)
}
