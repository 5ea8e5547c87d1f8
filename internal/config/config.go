// Package config resolves cdbgen settings from the environment and an
// optional YAML file.
//
// Precedence, highest first: environment variables, the YAML file named by
// CDBGEN_CONFIG (or <user config dir>/cdbgen/config.yaml when present), then
// built-in defaults. Resolution runs on every compiler invocation, so it
// reads at most one small file and never searches directory trees.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cdbgen/internal/entry"
)

// Environment variables read by Load.
const (
	EnvDatabase = "CDBGEN"
	EnvHistory  = "CDBGEN_HISTORY"
	EnvLogLevel = "CDBGEN_LOG"
	EnvConfig   = "CDBGEN_CONFIG"
)

// DatabaseName is the database file name used when no path is configured.
const DatabaseName = "compile_commands.json"

// Config holds resolved settings.
type Config struct {
	// Database is the configured database path; empty means
	// <working directory>/compile_commands.json.
	Database string `yaml:"database"`
	// History is the SQLite journal path; empty disables the journal.
	History    string   `yaml:"history"`
	LogLevel   string   `yaml:"log_level"`
	Extensions []string `yaml:"extensions"`
	FoldCase   *bool    `yaml:"fold_case"`

	// Source is the YAML file the config was read from, if any.
	Source string `yaml:"-"`

	dir string
}

// Getenv looks up an environment variable.
type Getenv func(string) string

// Load resolves the configuration for an invocation running in dir.
func Load(getenv Getenv, dir string) (*Config, error) {
	cfg := &Config{dir: dir}

	path := getenv(EnvConfig)
	explicit := path != ""
	if !explicit {
		if ucd, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(ucd, "cdbgen", "config.yaml")
		}
	}
	if path != "" {
		if err := cfg.readFile(path, explicit); err != nil {
			return cfg, err
		}
	}

	if v := getenv(EnvDatabase); v != "" {
		cfg.Database = v
	}
	if v := getenv(EnvHistory); v != "" {
		cfg.History = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return cfg, err
	}
	for _, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return cfg, fmt.Errorf("config: extension %q must start with a dot", ext)
		}
	}
	return cfg, nil
}

// Fallback returns the built-in defaults for dir, honouring only the
// CDBGEN database override. Callers use it when Load fails.
func Fallback(getenv Getenv, dir string) *Config {
	return &Config{Database: getenv(EnvDatabase), LogLevel: "warn", dir: dir}
}

// FromEnv resolves the configuration using the process environment and
// working directory.
func FromEnv() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return &Config{LogLevel: "warn"}, fmt.Errorf("config: working directory: %w", err)
	}
	return Load(os.Getenv, wd)
}

func (c *Config) readFile(path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.Source = path
	return nil
}

// Dir returns the working directory the configuration was resolved for.
func (c *Config) Dir() string {
	return c.dir
}

// DatabasePath returns the absolute database path.
func (c *Config) DatabasePath() string {
	p := c.Database
	if p == "" {
		return filepath.Join(c.dir, DatabaseName)
	}
	p = expandHome(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.dir, p)
	}
	return filepath.Clean(p)
}

// HistoryPath returns the absolute journal path, or "" when disabled.
func (c *Config) HistoryPath() string {
	if c.History == "" {
		return ""
	}
	p := expandHome(c.History)
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.dir, p)
	}
	return filepath.Clean(p)
}

// EntryOptions returns source file recognition options.
func (c *Config) EntryOptions() entry.Options {
	opts := entry.DefaultOptions()
	if len(c.Extensions) > 0 {
		opts.Extensions = c.Extensions
	}
	if c.FoldCase != nil {
		opts.FoldCase = *c.FoldCase
	}
	return opts
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	lvl, _ := ParseLevel(c.LogLevel)
	return lvl
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("config: invalid log level %q (valid: debug, info, warn, error)", s)
	}
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
