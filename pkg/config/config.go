// Package config implements LuzScript interpreter settings loading.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/thomasrohde/luzscript/pkg/diagnostics"
	"github.com/thomasrohde/luzscript/pkg/dialect"
)

// LanguageVersion is the newest language version this interpreter runs.
const LanguageVersion = "v0.2"

// File names searched by Load.
const (
	ProjectFile = ".luzrc.yaml"
	UserDir     = ".luz"
	UserFile    = "config.yaml"
)

// Config holds interpreter settings.
type Config struct {
	Language      string            `yaml:"language,omitempty"`
	Dialect       string            `yaml:"dialect,omitempty"`
	Keywords      map[string]string `yaml:"keywords,omitempty"`
	MaxIterations int64             `yaml:"max_iterations,omitempty"`
	BlockScope    bool              `yaml:"block_scope,omitempty"`
	Lenient       bool              `yaml:"lenient,omitempty"`
	LogLevel      string            `yaml:"log_level,omitempty"`

	// Path is the file the settings came from, empty for defaults.
	Path string `yaml:"-"`
}

// Default returns the settings used when no config file is found.
func Default() *Config {
	return &Config{
		Language: LanguageVersion,
		Dialect:  "spanish",
		LogLevel: "warn",
	}
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	where := e.Path
	if where == "" {
		where = "config"
	}
	if len(e.Issues) == 0 {
		return where + ": invalid configuration"
	}
	var b strings.Builder
	b.WriteString(where)
	b.WriteString(": validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Diagnostic returns the failure as an E_CONFIG diagnostic.
func (e *ValidationError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(diagnostics.EConfig, e.Error(), nil, "")
}

// Load resolves settings.
// Precedence: explicit path → project (.luzrc.yaml) → user (~/.luz/config.yaml) → defaults.
// An explicit path must exist; the other locations are skipped when missing.
func Load(explicit, projectDir string) (*Config, error) {
	if explicit != "" {
		return LoadFile(explicit)
	}

	candidates := []string{filepath.Join(projectDir, ProjectFile)}
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(homeDir, UserDir, UserFile))
	}
	for _, path := range candidates {
		cfg, err := LoadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return cfg, err
	}
	return Default(), nil
}

// LoadFile reads and validates a single config file.
func LoadFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()
	return Decode(file, path)
}

// Decode parses YAML settings from r on top of the defaults. Unknown fields
// are rejected. An empty document yields the defaults.
func Decode(r io.Reader, path string) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	errs := ValidationError{Path: c.Path}

	switch {
	case c.Language == "":
	case !semver.IsValid(c.Language):
		errs.Issues = append(errs.Issues, fmt.Sprintf("language %q is not a valid version (want vMAJOR.MINOR)", c.Language))
	case semver.Compare(c.Language, LanguageVersion) > 0:
		errs.Issues = append(errs.Issues, fmt.Sprintf("language %s is newer than this interpreter (%s)", c.Language, LanguageVersion))
	}

	if _, err := c.ResolveDialect(); err != nil {
		errs.Issues = append(errs.Issues, err.Error())
	}
	if c.MaxIterations < 0 {
		errs.Issues = append(errs.Issues, "max_iterations must not be negative")
	}
	if _, err := c.Level(); err != nil {
		errs.Issues = append(errs.Issues, err.Error())
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// ResolveDialect returns the configured dialect with keyword overrides applied.
func (c *Config) ResolveDialect() (dialect.Dialect, error) {
	d, err := dialect.Lookup(c.Dialect)
	if err != nil {
		return dialect.Dialect{}, err
	}
	if len(c.Keywords) == 0 {
		return d, nil
	}
	d, err = d.Override(c.Keywords)
	if err != nil {
		return dialect.Dialect{}, fmt.Errorf("keywords: %w", err)
	}
	return d, nil
}

// Level parses LogLevel. The empty string means warn.
func (c *Config) Level() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	return lvl, nil
}
