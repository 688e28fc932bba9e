// Package config assembles runtime settings from environment variables,
// command-line flags and an optional JSON file.
package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/brunoscheufler/pocketnotes/constants"
	"github.com/brunoscheufler/pocketnotes/store"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Config is the merged application configuration. Earlier sources win:
// environment, then flags, then the JSON file, then defaults.
type Config struct {
	DataDir     string   `env:"DATA_DIR" json:"data_dir"`
	Database    string   `env:"DB" json:"db"`
	BlobDir     string   `env:"BLOB_DIR" json:"blob_dir"`
	Theme       string   `env:"THEME" json:"theme"`
	EnableWAL   bool     `env:"WAL" json:"wal"`
	BusyTimeout Duration `env:"BUSY_TIMEOUT" json:"busy_timeout"`
	LogLevel    string   `env:"LOG_LEVEL" json:"log_level"`

	// ConfigFile points at the JSON file; it is never read from the file itself
	ConfigFile string   `env:"CONFIG" json:"-"`
	// RunGC runs blob garbage collection instead of the terminal UI
	RunGC      bool     `env:"GC" json:"-"`
	// GCGrace is the minimum image age before garbage collection removes it
	GCGrace    Duration `env:"GC_GRACE" json:"gc_grace"`

	Generator Generator `envPrefix:"GEN_" json:"generator"`
}

// Generator configures the built-in load generator
type Generator struct {
	Enabled         bool `env:"ENABLED" json:"enabled"`
	AccountCount    int  `env:"ACCOUNTS" json:"accounts"`
	NotesPerAccount int  `env:"NOTES_PER_ACCOUNT" json:"notes_per_account"`
	RequestsPerMin  int  `env:"RPM" json:"rpm"`
}

// Load builds the configuration for the process arguments (without the
// program name).
func Load(args []string) (*Config, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(args).
		withJSON().
		build()
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "."
	}
	if c.Database == "" {
		c.Database = constants.DefaultDatabaseName
	}
	if c.BlobDir == "" {
		c.BlobDir = filepath.Join(c.DataDir, constants.DefaultBlobDirName)
	}
	if c.Theme == "" {
		c.Theme = constants.DefaultTheme
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = Duration(store.DefaultDatabaseConfig().BusyTimeout)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.GCGrace == 0 {
		c.GCGrace = Duration(constants.DefaultGCGrace)
	}
	if c.Generator.AccountCount == 0 {
		c.Generator.AccountCount = constants.DefaultGenAccounts
	}
	if c.Generator.NotesPerAccount == 0 {
		c.Generator.NotesPerAccount = constants.DefaultGenNotesPerAccount
	}
	if c.Generator.RequestsPerMin == 0 {
		c.Generator.RequestsPerMin = constants.DefaultGenRequestsPerMin
	}
}

func (c *Config) validate() error {
	if c.Database != filepath.Base(c.Database) || c.Database == "." || c.Database == ".." {
		return fmt.Errorf("%w: database name %q must not contain a path", ErrInvalidStorageConfigs, c.Database)
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("%w: negative busy timeout", ErrInvalidStorageConfigs)
	}
	if c.GCGrace < 0 {
		return fmt.Errorf("%w: negative gc grace", ErrInvalidStorageConfigs)
	}

	switch c.Theme {
	case ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("%w: unknown theme %q", ErrInvalidUIConfigs, c.Theme)
	}

	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLogConfigs, err)
	}

	g := c.Generator
	if g.AccountCount < 0 || g.NotesPerAccount < 0 || g.RequestsPerMin < 0 {
		return fmt.Errorf("%w: counts must not be negative", ErrInvalidGeneratorConfigs)
	}

	return nil
}

// Level returns the configured slog level
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}

// StoreOptions maps the storage settings onto the sqlite store options
func (c *Config) StoreOptions() store.StoreOptions {
	opts := store.DefaultStoreOptions(c.Database)
	opts.BasePath = c.DataDir
	opts.Config.BusyTimeout = time.Duration(c.BusyTimeout)
	opts.Config.EnableWAL = c.EnableWAL
	return opts
}
