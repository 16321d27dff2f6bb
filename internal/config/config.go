// Package config loads viewcheck project settings.
//
// Settings come from, in increasing precedence: built-in defaults, the
// project file (.viewcheck.yaml), a .env file, VIEWCHECK_* environment
// variables, and finally command-line flags (applied by the CLI).
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
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/viewcheck/internal/report"
)

// DefaultFile is the project file looked up in the working directory.
const DefaultFile = ".viewcheck.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VIEWCHECK_"

// Config holds the settings shared by viewcheck commands.
type Config struct {
	Snapshot string `yaml:"snapshot"`
	Suite    string `yaml:"suite"`
	Filter   string `yaml:"filter"`
	Format   string `yaml:"format"`
	History  string `yaml:"history"`
	Workers  int    `yaml:"workers"`
	NoColor  bool   `yaml:"no_color"`

	// Source is the project file the settings were read from, empty when
	// none was found.
	Source string `yaml:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Format:  report.FormatText,
		Workers: 1,
	}
}

// Load reads the project file at path, then applies .env and environment
// overrides. An empty path means DefaultFile, which may be absent; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		slog.Debug("no project file", "path", path)
	}

	LoadDotEnv(filepath.Join(filepath.Dir(path), ".env"))

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files. Variables already set
// in the environment are left alone; missing files are skipped.
func LoadDotEnv(files ...string) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			slog.Debug("failed to load .env file", "path", f, "error", err)
		}
	}
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	// Paths in the project file are relative to the file itself
	dir := filepath.Dir(path)
	c.Snapshot = resolve(dir, c.Snapshot)
	c.Suite = resolve(dir, c.Suite)
	c.History = resolve(dir, c.History)
	c.Source = path
	return nil
}

func (c *Config) applyEnv() error {
	c.Snapshot = getEnvOrDefault(EnvPrefix+"SNAPSHOT", c.Snapshot)
	c.Suite = getEnvOrDefault(EnvPrefix+"SUITE", c.Suite)
	c.Filter = getEnvOrDefault(EnvPrefix+"FILTER", c.Filter)
	c.Format = getEnvOrDefault(EnvPrefix+"FORMAT", c.Format)
	c.History = getEnvOrDefault(EnvPrefix+"HISTORY", c.History)

	workers, err := getEnvIntOrDefault(EnvPrefix+"WORKERS", c.Workers)
	if err != nil {
		return err
	}
	c.Workers = workers

	noColor, err := getEnvBoolOrDefault(EnvPrefix+"NO_COLOR", c.NoColor)
	if err != nil {
		return err
	}
	// NO_COLOR (https://no-color.org) disables color when set to anything
	if os.Getenv("NO_COLOR") != "" {
		noColor = true
	}
	c.NoColor = noColor
	return nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if !report.IsValid(c.Format) {
		return fmt.Errorf("config: invalid format %q (valid: %v)", c.Format, report.Formats)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return i, nil
}

func getEnvBoolOrDefault(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}
