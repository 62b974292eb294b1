// Package config loads confab's configuration from defaults, an optional
// config file, CONFAB_* environment variables, and command-line flags, in
// ascending order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Store  StoreConfig  `mapstructure:"store"`
	Server ServerConfig `mapstructure:"server"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
}

type StoreConfig struct {
	// Endpoint selects the model store backend and its file, in the form
	// "sqlite:path" or "bolt:path".
	Endpoint string `mapstructure:"endpoint"`
}

type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	// Model names the stored model the server generates from.
	Model string `mapstructure:"model"`
	// MaxSentences caps the sentences a single /v1/text request may ask for.
	MaxSentences    int `mapstructure:"max_sentences"`
	ReadTimeout     int `mapstructure:"read_timeout"`     // seconds
	WriteTimeout    int `mapstructure:"write_timeout"`    // seconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // seconds
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			Endpoint: "sqlite:confab.db",
		},
		Server: ServerConfig{
			ListenAddr:      ":7432",
			Model:           "",
			MaxSentences:    100,
			ReadTimeout:     10,
			WriteTimeout:    30,
			ShutdownTimeout: 10,
		},
	}
}

// RegisterFlags declares the flags shared by every command. Command-specific
// flags stay with their commands and override the loaded config after the
// fact.
func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.Log.Level, "Log level (debug|info|warn|error)")
	fs.String("log-format", defaults.Log.Format, "Log format (text|json)")
	fs.String("store", defaults.Store.Endpoint, "Model store endpoint (sqlite:path or bolt:path)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("CONFAB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("confab")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the commands could not act on. It runs
// after every Load, so commands can trust the fields they read.
func (c Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q: want debug, info, warn, or error", c.Log.Level)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q: want text or json", c.Log.Format)
	}

	if _, _, err := SplitEndpoint(c.Store.Endpoint); err != nil {
		return err
	}

	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr must not be empty")
	}
	if c.Server.MaxSentences < 1 {
		return fmt.Errorf("server.max_sentences must be at least 1, got %d", c.Server.MaxSentences)
	}
	for name, secs := range map[string]int{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if secs < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, secs)
		}
	}

	return nil
}

// SplitEndpoint splits a store endpoint into its backend scheme and path.
// Only the "sqlite" and "bolt" schemes exist.
func SplitEndpoint(endpoint string) (scheme, path string, err error) {
	scheme, path, ok := strings.Cut(endpoint, ":")
	if !ok || path == "" {
		return "", "", fmt.Errorf("invalid store endpoint %q: want sqlite:path or bolt:path", endpoint)
	}
	switch scheme {
	case "sqlite", "bolt":
		return scheme, path, nil
	default:
		return "", "", fmt.Errorf("unknown store backend %q: want sqlite or bolt", scheme)
	}
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
	v.SetDefault("store.endpoint", c.Store.Endpoint)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.model", c.Server.Model)
	v.SetDefault("server.max_sentences", c.Server.MaxSentences)
	v.SetDefault("server.read_timeout", c.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", c.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
}

// bindFlags ties each shared flag to its config key. Binding per key keeps
// the precedence right: a flag the user actually set beats everything, an
// untouched one falls through to env, file, and default.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	bindings := map[string]string{
		"log.level":      "log-level",
		"log.format":     "log-format",
		"store.endpoint": "store",
	}
	for key, name := range bindings {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}
