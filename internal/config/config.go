// Package config loads run settings from .cchecker.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pthm/cchecker/internal/analyzer"
)

// DefaultFile is read from the working directory when no path is given
const DefaultFile = ".cchecker.yaml"

// Config holds analysis settings. CLI flags are applied on top by the caller.
type Config struct {
	Analyzers       []string                           `yaml:"analyzers"`
	Exclude         []string                           `yaml:"exclude"`
	Jobs            int                                `yaml:"jobs"`
	Timeout         time.Duration                      `yaml:"timeout"`
	Binaries        map[string]string                  `yaml:"binaries"`
	ClangTidyChecks string                             `yaml:"clang_tidy_checks"`
	Severities      map[string][]analyzer.SeverityRule `yaml:"severities"`
}

// Default returns the settings used when nothing is configured
func Default() *Config {
	names := make([]string, 0, len(analyzer.Kinds()))
	for _, k := range analyzer.Kinds() {
		names = append(names, k.String())
	}
	return &Config{
		Analyzers: names,
		Jobs:      runtime.NumCPU(),
		Timeout:   analyzer.DefaultTimeout,
		Binaries:  map[string]string{},
	}
}

// Load reads the config file at path, or DefaultFile when path is empty and the
// file exists, then applies CCHECKER_* environment variables. A .env file in the
// working directory is loaded first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("CCHECKER_ANALYZERS")); v != "" {
		c.Analyzers = splitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("CCHECKER_EXCLUDE")); v != "" {
		c.Exclude = append(c.Exclude, splitList(v)...)
	}
	if v := strings.TrimSpace(os.Getenv("CCHECKER_JOBS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CCHECKER_JOBS: %w", err)
		}
		c.Jobs = n
	}
	if v := strings.TrimSpace(os.Getenv("CCHECKER_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CCHECKER_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := strings.TrimSpace(os.Getenv("CCHECKER_CLANG_TIDY_CHECKS")); v != "" {
		c.ClangTidyChecks = v
	}
	if c.Binaries == nil {
		c.Binaries = map[string]string{}
	}
	for _, k := range analyzer.Kinds() {
		if v := strings.TrimSpace(os.Getenv(binaryEnv(k))); v != "" {
			c.Binaries[k.String()] = v
		}
	}
	return nil
}

// binaryEnv names the variable overriding an analyzer executable, e.g. CCHECKER_CLANG_TIDY
func binaryEnv(k analyzer.Kind) string {
	return "CCHECKER_" + strings.ToUpper(strings.ReplaceAll(k.String(), "-", "_"))
}

// Validate checks names and ranges
func (c *Config) Validate() error {
	if _, err := c.Kinds(); err != nil {
		return err
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	for name := range c.Binaries {
		if _, err := analyzer.ParseKind(name); err != nil {
			return fmt.Errorf("binaries: %w", err)
		}
	}
	if _, err := c.SeverityMap(); err != nil {
		return err
	}
	return nil
}

// Kinds returns the configured analyzers
func (c *Config) Kinds() ([]analyzer.Kind, error) {
	kinds, err := analyzer.ParseKinds(c.Analyzers)
	if err != nil {
		return nil, err
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("no analyzers configured")
	}
	return kinds, nil
}

// Binary returns the configured executable for an analyzer, or "" for the default
func (c *Config) Binary(k analyzer.Kind) string {
	for name, path := range c.Binaries {
		if parsed, err := analyzer.ParseKind(name); err == nil && parsed == k {
			return path
		}
	}
	return ""
}

// SeverityMap returns the builtin severity map with the configured overrides applied
func (c *Config) SeverityMap() (*analyzer.SeverityMap, error) {
	m := analyzer.DefaultSeverityMap()
	for name, rules := range c.Severities {
		k, err := analyzer.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("severities: %w", err)
		}
		if m, err = m.WithOverrides(k, rules); err != nil {
			return nil, fmt.Errorf("severities: %w", err)
		}
	}
	return m, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
