package config_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xraph/eventdesk"
	"github.com/xraph/eventdesk/internal/config"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.List.PerPage != 25 {
		t.Fatalf("per page = %d, want 25", cfg.List.PerPage)
	}
	if cfg.Journal.Driver != config.DriverNone {
		t.Fatalf("driver = %q", cfg.Journal.Driver)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
api:
  base_url: https://events.example.com/api
  request_timeout: 5s
  rate_limit: 4
list:
  per_page: 50
journal:
  driver: sqlite
  dsn: /tmp/journal.db
log:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "https://events.example.com/api" {
		t.Fatalf("base url = %q", cfg.API.BaseURL)
	}
	if cfg.API.RequestTimeout != 5*time.Second {
		t.Fatalf("timeout = %v", cfg.API.RequestTimeout)
	}
	if cfg.List.PerPage != 50 || cfg.API.RateLimit != 4 {
		t.Fatalf("per page %d rate %d", cfg.List.PerPage, cfg.API.RateLimit)
	}
	// Unset keys keep their defaults.
	if cfg.List.SearchDebounce != 150*time.Millisecond {
		t.Fatalf("debounce = %v", cfg.List.SearchDebounce)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := config.Default()
	cfg.API.BaseURL = "http://localhost:8080"
	cfg.Notify.Desktop = true

	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.API.BaseURL != cfg.API.BaseURL || !got.Notify.Desktop {
		t.Fatalf("got %+v", got)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := config.Default()
	err := cfg.ApplyEnv(env(map[string]string{
		"EVENTDESK_API_URL":         "http://api.local",
		"EVENTDESK_PER_PAGE":        "10",
		"EVENTDESK_SEARCH_DEBOUNCE": "300ms",
		"EVENTDESK_JOURNAL_DRIVER":  "redis",
		"EVENTDESK_JOURNAL_DSN":     "redis://localhost:6379/0",
		"EVENTDESK_NOTIFY_DESKTOP":  "true",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.API.BaseURL != "http://api.local" || cfg.List.PerPage != 10 {
		t.Fatalf("got %+v", cfg)
	}
	if cfg.List.SearchDebounce != 300*time.Millisecond {
		t.Fatalf("debounce = %v", cfg.List.SearchDebounce)
	}
	if cfg.Journal.Driver != config.DriverRedis || !cfg.Notify.Desktop {
		t.Fatalf("got %+v", cfg)
	}
}

func TestApplyEnvReportsBadValues(t *testing.T) {
	cfg := config.Default()
	err := cfg.ApplyEnv(env(map[string]string{
		"EVENTDESK_PER_PAGE":        "many",
		"EVENTDESK_REQUEST_TIMEOUT": "soon",
	}))
	if err == nil {
		t.Fatal("expected error")
	}
	for _, key := range []string{"EVENTDESK_PER_PAGE", "EVENTDESK_REQUEST_TIMEOUT"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("error %q does not name %s", err, key)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := config.Default()
	valid.API.BaseURL = "http://api.local"

	tests := []struct {
		name   string
		mutate func(*config.Config)
		target error
	}{
		{"ok", func(*config.Config) {}, nil},
		{"no base url", func(c *config.Config) { c.API.BaseURL = "" }, eventdesk.ErrNoBaseURL},
		{"unknown driver", func(c *config.Config) { c.Journal.Driver = "etcd" }, nil},
		{"driver without dsn", func(c *config.Config) { c.Journal.Driver = config.DriverMongo }, nil},
		{"bad level", func(c *config.Config) { c.Log.Level = "loud" }, nil},
		{"bad format", func(c *config.Config) { c.Log.Format = "xml" }, nil},
		{"bad per page", func(c *config.Config) { c.List.PerPage = -1 }, eventdesk.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.name == "ok" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Fatalf("err = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestCoreMapsFields(t *testing.T) {
	cfg := config.Default()
	cfg.API.BaseURL = "http://api.local"
	cfg.API.RateLimit = 3
	cfg.List.PerPage = 40

	core := cfg.Core()
	if core.BaseURL != "http://api.local" || core.RateLimit != 3 || core.PerPage != 40 {
		t.Fatalf("core = %+v", core)
	}
	if len(cfg.ToOptions()) == 0 {
		t.Fatal("no options")
	}
}

func TestLoggerFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	log := cfg.Logger(&buf)
	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info leaked at warn level: %s", out)
	}
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output %q", out)
	}
}
