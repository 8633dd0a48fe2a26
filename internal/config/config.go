// Package config loads the optional loxresolve.yaml file that sets
// defaults for the loxresolve command.
//
// Example:
//
//	constructor: init
//	format: json
//	color: never
//	watch:
//	  debounce: 500ms
//
// Every key is optional. Command-line flags override the file.
package config // import "github.com/nixlox/lox/internal/config"

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nixlox/lox/internal/report"
	"github.com/nixlox/lox/internal/spell"
	"github.com/nixlox/lox/resolve"
)

// FileNames are the names Find looks for, in order.
var FileNames = []string{"loxresolve.yaml", ".loxresolve.yaml"}

// DefaultDebounce is the quiet period the watch command waits for
// after a change before resolving again.
const DefaultDebounce = 250 * time.Millisecond

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds the settings of one loxresolve.yaml file.
type Config struct {
	// Path is the file the settings came from, or empty for defaults.
	Path string `yaml:"-"`

	Constructor string `yaml:"constructor"`
	Format      string `yaml:"format"`
	Color       string `yaml:"color"`
	Watch       Watch  `yaml:"watch"`
}

// Watch holds the settings of the watch command.
type Watch struct {
	Debounce string `yaml:"debounce"`
}

// ValidationError aggregates configuration validation failures.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("config")
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if len(e.Issues) == 0 {
		b.WriteString(": invalid configuration")
		return b.String()
	}
	b.WriteString(": validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Constructor: resolve.DefaultConstructorName,
		Format:      string(report.Text),
		Color:       ColorAuto,
		Watch:       Watch{Debounce: DefaultDebounce.String()},
	}
}

// Find returns the path of the first of FileNames present in dir.
func Find(dir string) (string, bool) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Load reads and validates the named file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()
	return Parse(file, path)
}

// LoadDir loads the configuration file of dir, if there is one,
// and returns the defaults otherwise.
func LoadDir(dir string) (*Config, error) {
	path, ok := Find(dir)
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes and validates a configuration read from r.
// Keys left out keep their default values; unknown keys are errors.
// path is used only in messages.
func Parse(r io.Reader, path string) (*Config, error) {
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

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	errs := ValidationError{Path: c.Path}
	if !identRE.MatchString(c.Constructor) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("constructor %q is not an identifier", c.Constructor))
	}
	if _, err := report.ParseFormat(c.Format); err != nil {
		errs.Issues = append(errs.Issues, err.Error()+spell.Suggest(c.Format, report.Formats))
	}
	switch colors := []string{ColorAuto, ColorAlways, ColorNever}; c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs.Issues = append(errs.Issues, fmt.Sprintf("color %q must be one of auto, always, never%s", c.Color, spell.Suggest(c.Color, colors)))
	}
	if d, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		errs.Issues = append(errs.Issues, fmt.Sprintf("watch.debounce: %v", err))
	} else if d < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("watch.debounce %s must not be negative", d))
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// DebounceDuration returns the watch debounce interval.
// The configuration must be valid.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return DefaultDebounce
	}
	return d
}

// ResolveOptions returns the resolver options the configuration selects.
func (c *Config) ResolveOptions() *resolve.Options {
	return &resolve.Options{ConstructorName: c.Constructor}
}
