package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/xo/dburl"
	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Observability ObservabilityConfig `yaml:"observability"`
	Feed          FeedConfig          `yaml:"feed"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	// FakeDatetimeNow pins the clock, e.g. "2024-09-08T12:00:00Z" or "next sunday 1pm".
	FakeDatetimeNow string `yaml:"fake_datetime_now"`
	// Picker is the raw layered settings tree: global keys, a _BASE block and
	// one block per league abbreviation.
	Picker map[string]any `yaml:"picker"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	LogLevel       string `yaml:"log_level"`
	Environment    string `yaml:"environment"`
}

// FeedConfig points at the score provider.
type FeedConfig struct {
	BaseURL        string        `yaml:"base_url"`
	RequestsPerSec float64       `yaml:"requests_per_sec"`
	Timeout        time.Duration `yaml:"timeout"`
}

// SchedulerConfig controls kickoff and grading jobs.
type SchedulerConfig struct {
	ResultsPoll string   `yaml:"results_poll"`
	Leagues     []string `yaml:"leagues"`
	MaxWorkers  int      `yaml:"max_workers"`
}

const (
	defaultMetricsAddress = ":9090"
	defaultResultsPoll    = "*/15 * * * *"
	defaultFeedRate       = 1.0
	defaultFeedTimeout    = 10 * time.Second
	defaultMaxWorkers     = 10
)

// LoadConfig loads the configuration from a YAML file. A .env file in the
// working directory, when present, is loaded into the environment first.
func LoadConfig(filename string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("RESULTS_FEED_URL"); v != "" {
		cfg.Feed.BaseURL = v
	}
	if v := os.Getenv("RESULTS_FEED_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RESULTS_FEED_RPS value: %w", err)
		}
		cfg.Feed.RequestsPerSec = f
	}
	if v := os.Getenv("RESULTS_POLL"); v != "" {
		cfg.Scheduler.ResultsPoll = v
	}
	if v := os.Getenv("PICKER_LEAGUES"); v != "" {
		cfg.Scheduler.Leagues = strings.Split(v, ",")
	}
	if v := os.Getenv("FAKE_DATETIME_NOW"); v != "" {
		cfg.FakeDatetimeNow = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Observability.MetricsAddress == "" {
		c.Observability.MetricsAddress = defaultMetricsAddress
	}
	if c.Scheduler.ResultsPoll == "" {
		c.Scheduler.ResultsPoll = defaultResultsPoll
	}
	if c.Scheduler.MaxWorkers <= 0 {
		c.Scheduler.MaxWorkers = defaultMaxWorkers
	}
	if c.Feed.RequestsPerSec <= 0 {
		c.Feed.RequestsPerSec = defaultFeedRate
	}
	if c.Feed.Timeout <= 0 {
		c.Feed.Timeout = defaultFeedTimeout
	}
	if c.Picker == nil {
		c.Picker = map[string]any{}
	}
}

// Validate fails fast on settings the process cannot run with.
func (c *Config) Validate() error {
	if c.Postgres.DSN == "" {
		return errors.New("postgres dsn is required")
	}
	u, err := dburl.Parse(c.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("invalid postgres dsn: %w", err)
	}
	if u.Driver != "postgres" {
		return fmt.Errorf("unsupported database driver %q: only postgres is supported", u.Driver)
	}
	return nil
}

// LogLevel maps the configured level name onto slog.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Observability.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
