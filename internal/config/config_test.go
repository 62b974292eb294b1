package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

// fakeBinder wraps a pflag.FlagSet to satisfy the flagBinder interface.
type fakeBinder struct {
	fs *pflag.FlagSet
}

func (f *fakeBinder) Flags() *pflag.FlagSet { return f.fs }

// newFlagBinder creates a FlagSet with all shared flags registered at their
// defaults, optionally parsed with the given arguments.
func newFlagBinder(t *testing.T, args ...string) *fakeBinder {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, DefaultConfig())
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}
	return &fakeBinder{fs: fs}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "text")
	}
	if cfg.Store.Endpoint != "sqlite:confab.db" {
		t.Errorf("Store.Endpoint = %q, want %q", cfg.Store.Endpoint, "sqlite:confab.db")
	}
	if cfg.Server.ListenAddr != ":7432" {
		t.Errorf("Server.ListenAddr = %q, want %q", cfg.Server.ListenAddr, ":7432")
	}
	if cfg.Server.MaxSentences != 100 {
		t.Errorf("Server.MaxSentences = %d, want 100", cfg.Server.MaxSentences)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(LoadOptions{
		Cmd:      newFlagBinder(t),
		Defaults: DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("Load() = %+v, want the defaults %+v", cfg, DefaultConfig())
	}
}

func TestLoadFlagOverride(t *testing.T) {
	binder := newFlagBinder(t, "--log-level=debug", "--log-format=json", "--store=bolt:/tmp/models.db")

	cfg, err := Load(LoadOptions{
		Cmd:      binder,
		Defaults: DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}
	if cfg.Store.Endpoint != "bolt:/tmp/models.db" {
		t.Errorf("Store.Endpoint = %q, want %q", cfg.Store.Endpoint, "bolt:/tmp/models.db")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CONFAB_LOG_LEVEL", "warn")
	t.Setenv("CONFAB_SERVER_LISTEN_ADDR", ":9999")

	cfg, err := Load(LoadOptions{Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
	if cfg.Server.ListenAddr != ":9999" {
		t.Errorf("Server.ListenAddr = %q, want %q", cfg.Server.ListenAddr, ":9999")
	}
}

func TestLoadConfigFile(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "confab.yaml")
	content := `
log:
  level: error
store:
  endpoint: bolt:models.db
server:
  listen_addr: ":7777"
  model: lovecraft
`
	if err := os.WriteFile(cfgFile, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(LoadOptions{
		ConfigFile: cfgFile,
		Defaults:   DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "error")
	}
	if cfg.Store.Endpoint != "bolt:models.db" {
		t.Errorf("Store.Endpoint = %q, want %q", cfg.Store.Endpoint, "bolt:models.db")
	}
	if cfg.Server.ListenAddr != ":7777" {
		t.Errorf("Server.ListenAddr = %q, want %q", cfg.Server.ListenAddr, ":7777")
	}
	if cfg.Server.Model != "lovecraft" {
		t.Errorf("Server.Model = %q, want %q", cfg.Server.Model, "lovecraft")
	}
	// Untouched sections keep their defaults.
	if cfg.Server.MaxSentences != 100 {
		t.Errorf("Server.MaxSentences = %d, want the default 100", cfg.Server.MaxSentences)
	}
}

func TestLoadMissingExplicitConfigFile(t *testing.T) {
	_, err := Load(LoadOptions{
		ConfigFile: filepath.Join(t.TempDir(), "nope.yaml"),
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Error("Load() with a missing explicit config file should fail")
	}
}

func TestLoadInvalidConfigFile(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(cfgFile, []byte(":\t:bad yaml:::"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(LoadOptions{ConfigFile: cfgFile, Defaults: DefaultConfig()}); err == nil {
		t.Error("Load() with an unparsable config file should fail")
	}
}

func TestValidateRejections(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"endpoint without scheme", func(c *Config) { c.Store.Endpoint = "models.db" }},
		{"endpoint without path", func(c *Config) { c.Store.Endpoint = "sqlite:" }},
		{"unknown backend", func(c *Config) { c.Store.Endpoint = "postgres:models" }},
		{"empty listen addr", func(c *Config) { c.Server.ListenAddr = "" }},
		{"zero max sentences", func(c *Config) { c.Server.MaxSentences = 0 }},
		{"negative timeout", func(c *Config) { c.Server.ReadTimeout = -1 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() accepted %+v", cfg)
			}
		})
	}
}

func TestSplitEndpoint(t *testing.T) {
	scheme, path, err := SplitEndpoint("sqlite:data/models.db")
	if err != nil || scheme != "sqlite" || path != "data/models.db" {
		t.Errorf("SplitEndpoint() = %q, %q, %v", scheme, path, err)
	}

	// Paths may carry further colons; only the first one splits.
	scheme, path, err = SplitEndpoint("bolt:C:/models.db")
	if err != nil || scheme != "bolt" || path != "C:/models.db" {
		t.Errorf("SplitEndpoint() = %q, %q, %v", scheme, path, err)
	}
}

func TestParseLogLevel(t *testing.T) {
	testCases := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"Warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
		{"", 0, true},
	}

	for _, tc := range testCases {
		got, err := ParseLogLevel(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseLogLevel(%q) = %v, want error", tc.in, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseLogLevel(%q) = %v, %v, want %v", tc.in, got, err, tc.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "debug", Format: "json"}.NewLogger(&buf)
	logger.Debug("hello", slog.String("k", "v"))

	out := buf.String()
	if !strings.Contains(out, `"msg":"hello"`) {
		t.Errorf("JSON logger output = %q, want a JSON record", out)
	}

	// Debug records are dropped at the default info level.
	buf.Reset()
	logger = LogConfig{Level: "info", Format: "text"}.NewLogger(&buf)
	logger.Debug("hidden")
	logger.Info("shown")
	out = buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("text logger output = %q, want only the info record", out)
	}
}
