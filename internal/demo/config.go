package demo

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/pthm/genview"
	"github.com/pthm/genview/store/memory"
	"github.com/pthm/genview/store/sqlite"
)

// Config is the demo server configuration, loaded by viper from a YAML
// file, GENVIEW_* environment variables and flags.
type Config struct {
	Addr     string      `mapstructure:"addr" yaml:"addr"`
	Secret   string      `mapstructure:"secret" yaml:"secret"`
	Renderer string      `mapstructure:"renderer" yaml:"renderer"`
	Store    StoreConfig `mapstructure:"store" yaml:"store"`
	Log      LogConfig   `mapstructure:"log" yaml:"log"`
}

// StoreConfig selects the todo store.
type StoreConfig struct {
	// Driver is "memory" or "sqlite".
	Driver string `mapstructure:"driver" yaml:"driver"`
	// Path is the sqlite database file.
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig configures the console logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Addr:     ":8080",
		Renderer: RendererPongo,
		Store: StoreConfig{
			Driver: DriverMemory,
			Path:   "genview-demo.db",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver)
	}
	switch c.Renderer {
	case RendererPongo, RendererTempl:
	default:
		return fmt.Errorf("renderer: unknown renderer %q", c.Renderer)
	}
	if c.Secret != "" && len(c.Secret) < 32 {
		return fmt.Errorf("secret must be at least 32 bytes")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// WriteDefault writes the default configuration as YAML to path, creating
// parent directories. An existing file is left alone unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// OpenStore opens the configured todo store. The returned closer releases
// the database, if any.
func OpenStore(ctx context.Context, cfg StoreConfig) (genview.Store[*Todo], io.Closer, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return memory.New[*Todo](), closerFunc(func() error { return nil }), nil
	case DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		s, err := sqlite.New(db, "todo", NewTodo)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return s, closerFunc(db.Close), nil
	default:
		return nil, nil, fmt.Errorf("demo: unknown store driver %q", cfg.Driver)
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// NewLogger returns a console logger at level.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		Level(lvl).
		With().Timestamp().
		Logger()
}
