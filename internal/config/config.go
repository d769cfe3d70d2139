// Package config loads the eventdesk command configuration from a YAML file
// and EVENTDESK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xraph/eventdesk"
	"github.com/xraph/eventdesk/identity"
	"github.com/xraph/eventdesk/listing"
)

// Journal drivers.
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
)

// Config is the on-disk configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	List    ListConfig    `yaml:"list"`
	Journal JournalConfig `yaml:"journal"`
	Notify  NotifyConfig  `yaml:"notify"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// APIConfig locates the events API.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	IPServiceURL   string        `yaml:"ip_service_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// RateLimit is requests per route per second; 0 disables it.
	RateLimit int `yaml:"rate_limit"`
}

// ListConfig tunes the event list.
type ListConfig struct {
	PerPage        int           `yaml:"per_page"`
	SearchDebounce time.Duration `yaml:"search_debounce"`
}

// JournalConfig selects the mutation journal backend.
type JournalConfig struct {
	Driver string `yaml:"driver"`
	// DSN is a file path for sqlite, a redis:// URL for redis, a
	// mongodb:// URI for mongo.
	DSN      string `yaml:"dsn"`
	Database string `yaml:"database"` // mongo only
}

// NotifyConfig selects where notifications go in addition to the log.
type NotifyConfig struct {
	Desktop      bool   `yaml:"desktop"`
	RedisURL     string `yaml:"redis_url"`
	RedisChannel string `yaml:"redis_channel"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// MetricsConfig exposes Prometheus metrics over HTTP when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		API: APIConfig{
			IPServiceURL:   identity.DefaultServiceURL,
			RequestTimeout: 30 * time.Second,
		},
		List: ListConfig{
			PerPage:        listing.DefaultPerPage,
			SearchDebounce: listing.DefaultDebounce,
		},
		Journal: JournalConfig{Driver: DriverNone},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "eventdesk", "config.yaml"), nil
}

// DefaultJournalPath returns the sqlite journal file next to the config.
func DefaultJournalPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "journal.db")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overrides fields from EVENTDESK_* variables found by lookup
// (usually os.LookupEnv).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("EVENTDESK_API_URL", &c.API.BaseURL)
	str("EVENTDESK_IP_SERVICE_URL", &c.API.IPServiceURL)
	dur("EVENTDESK_REQUEST_TIMEOUT", &c.API.RequestTimeout)
	num("EVENTDESK_RATE_LIMIT", &c.API.RateLimit)
	num("EVENTDESK_PER_PAGE", &c.List.PerPage)
	dur("EVENTDESK_SEARCH_DEBOUNCE", &c.List.SearchDebounce)
	str("EVENTDESK_JOURNAL_DRIVER", &c.Journal.Driver)
	str("EVENTDESK_JOURNAL_DSN", &c.Journal.DSN)
	str("EVENTDESK_JOURNAL_DATABASE", &c.Journal.Database)
	str("EVENTDESK_NOTIFY_REDIS_URL", &c.Notify.RedisURL)
	str("EVENTDESK_LOG_LEVEL", &c.Log.Level)
	str("EVENTDESK_LOG_FORMAT", &c.Log.Format)
	str("EVENTDESK_METRICS_ADDR", &c.Metrics.Addr)
	if v, ok := lookup("EVENTDESK_NOTIFY_DESKTOP"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("EVENTDESK_NOTIFY_DESKTOP: %w", err))
		} else {
			c.Notify.Desktop = b
		}
	}

	return errors.Join(errs...)
}

// Validate checks the values eventdesk.Config does not cover.
func (c Config) Validate() error {
	switch c.Journal.Driver {
	case "", DriverNone, DriverMemory:
	case DriverSQLite, DriverRedis, DriverMongo:
		if c.Journal.DSN == "" {
			return fmt.Errorf("config: journal driver %q needs a dsn", c.Journal.Driver)
		}
	default:
		return fmt.Errorf("config: unknown journal driver %q", c.Journal.Driver)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return c.Core().Validate()
}

// Core converts the file configuration into eventdesk.Config.
func (c Config) Core() eventdesk.Config {
	core := eventdesk.DefaultConfig()
	core.BaseURL = c.API.BaseURL
	if c.API.IPServiceURL != "" {
		core.IPServiceURL = c.API.IPServiceURL
	}
	if c.API.RequestTimeout > 0 {
		core.RequestTimeout = c.API.RequestTimeout
	}
	core.RateLimit = c.API.RateLimit
	if c.List.PerPage != 0 {
		core.PerPage = c.List.PerPage
	}
	if c.List.SearchDebounce != 0 {
		core.SearchDebounce = c.List.SearchDebounce
	}
	return core
}

// ToOptions converts the configuration into eventdesk options.
func (c Config) ToOptions() []eventdesk.Option {
	return []eventdesk.Option{eventdesk.WithConfig(c.Core())}
}

// Logger builds a slog logger writing to w.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config: unknown log level %q", s)
}
