// Package config provides YAML and TOML configuration parsing for dashgrid.
//
// This package enables running dashgrid as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
// Files ending in .toml are read as TOML, everything else as YAML.
//
// Example configuration:
//
//	title: Operations
//	port: 8080
//	refresh_interval: 5s
//	watch: true
//
//	storage:
//	  driver: sqlite
//	  path: ${DASHGRID_HOME:-./.dashgrid}/dashgrid.db
//
//	panels:
//	  - title: Revenue
//	    kind: bar
//
//	grids:
//	  - title_template: "{{.region}} latency"
//	    kind: area
//	    dimensions:
//	      region: [eu, us]
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/dashgrid/board"
)

// minRefreshInterval is the minimum refresh interval accepted from a file.
const minRefreshInterval = 1 * time.Second

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

const (
	defaultPort      = 8080
	defaultDir       = ".dashgrid"
	defaultSQLite    = "dashgrid.db"
	defaultWriteRate = 20
)

// Config is the root configuration structure for dashgrid.
//
// Use [Load], [Parse] or [ParseTOML] to create a Config.
type Config struct {
	// Title is the dashboard title. Defaults to "Dashgrid" if not set.
	Title string `yaml:"title" toml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port" toml:"port"`

	// RefreshInterval regenerates the sample series on a timer.
	// Zero disables refreshing. Must be at least 1s when set.
	RefreshInterval Duration `yaml:"refresh_interval" toml:"refresh_interval"`

	// Watch reloads the dashboard when another process rewrites it.
	// Only the file driver supports it.
	Watch bool `yaml:"watch" toml:"watch"`

	// WriteRate is the sustained number of write requests per second the
	// server accepts. Zero means the default (20), negative disables the
	// limit.
	WriteRate float64 `yaml:"write_rate" toml:"write_rate"`

	// WriteBurst is the write burst size. Defaults to twice WriteRate.
	WriteBurst int `yaml:"write_burst" toml:"write_burst"`

	Storage StorageConfig `yaml:"storage" toml:"storage"`
	Log     LogConfig     `yaml:"log" toml:"log"`

	// Panels are created when the stored dashboard has no panels.
	Panels []PanelConfig `yaml:"panels" toml:"panels"`

	// Grids expand via cartesian product into more seed panels.
	Grids []GridConfig `yaml:"grids" toml:"grids"`
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	// Driver is memory, file or sqlite. Defaults to file.
	Driver string `yaml:"driver" toml:"driver"`

	// Path is the directory (file) or database file (sqlite).
	// Supports environment variable substitution.
	Path string `yaml:"path" toml:"path"`

	// Key is the key the dashboard document is stored under.
	Key string `yaml:"key" toml:"key"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	// Level is debug, info, warn or error. Defaults to info.
	Level string `yaml:"level" toml:"level"`

	// Format is json or text. Defaults to json.
	Format string `yaml:"format" toml:"format"`
}

// PanelConfig defines a single seed panel.
type PanelConfig struct {
	Title string `yaml:"title" toml:"title"`

	// Kind is line, pie, area or bar. Defaults to line.
	Kind string `yaml:"kind" toml:"kind"`
}

// GridConfig defines seed panels that expand via cartesian product.
//
// For example, with dimensions {env: [prod, staging], svc: [api, web]},
// the grid expands to 4 panels: prod/api, prod/web, staging/api, staging/web.
type GridConfig struct {
	// TitleTemplate is a Go template for panel titles.
	// Dimension keys are available as template variables: {{.env}}, {{.svc}}
	TitleTemplate string `yaml:"title_template" toml:"title_template"`

	// Dimensions maps dimension names to their possible values.
	Dimensions map[string][]string `yaml:"dimensions" toml:"dimensions"`

	// Kind is the chart kind of every generated panel.
	Kind string `yaml:"kind" toml:"kind"`
}

// Duration wraps time.Duration for YAML and TOML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler, which TOML decoding uses.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a configuration file.
//
// Files with a .toml extension are parsed as TOML, anything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOML(data)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the title, storage path and key.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return finish(&cfg)
}

// ParseTOML parses TOML configuration data.
func ParseTOML(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := cfg.expand(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) expand() error {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"title", &c.Title},
		{"storage.path", &c.Storage.Path},
		{"storage.key", &c.Storage.Key},
	}
	for _, f := range fields {
		expanded, err := expandEnvVars(*f.ptr)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.ptr = expanded
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverFile
	}
	if c.Storage.Path == "" {
		switch c.Storage.Driver {
		case DriverFile:
			c.Storage.Path = defaultDir
		case DriverSQLite:
			c.Storage.Path = filepath.Join(defaultDir, defaultSQLite)
		}
	}
	if c.Storage.Key == "" {
		c.Storage.Key = board.DefaultKey
	}

	if c.WriteRate == 0 {
		c.WriteRate = defaultWriteRate
	}
	if c.WriteRate > 0 && c.WriteBurst == 0 {
		c.WriteBurst = int(math.Ceil(2 * c.WriteRate))
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.RefreshInterval != 0 {
		if c.RefreshInterval.Duration() < minRefreshInterval {
			return fmt.Errorf("refresh_interval must be at least %s if specified, got %s",
				minRefreshInterval, c.RefreshInterval.Duration())
		}
	}

	switch c.Storage.Driver {
	case DriverMemory, DriverFile, DriverSQLite:
	default:
		return fmt.Errorf("storage.driver must be memory, file, or sqlite, got %q", c.Storage.Driver)
	}
	if c.Watch && c.Storage.Driver != DriverFile {
		return fmt.Errorf("watch requires the file storage driver, got %q", c.Storage.Driver)
	}
	if strings.ContainsAny(c.Storage.Key, `/\`) || strings.HasPrefix(c.Storage.Key, ".") {
		return fmt.Errorf("storage.key %q must be a plain name", c.Storage.Key)
	}

	if c.WriteRate > 0 && c.WriteBurst < 1 {
		return fmt.Errorf("write_burst must be at least 1, got %d", c.WriteBurst)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}

	for i, p := range c.Panels {
		if err := validateKind(p.Kind); err != nil {
			return fmt.Errorf("panels[%d] (%s): %w", i, p.Title, err)
		}
	}

	for i := range c.Grids {
		g := &c.Grids[i]

		if strings.TrimSpace(g.TitleTemplate) == "" {
			return fmt.Errorf("grids[%d]: title_template is required", i)
		}

		// fail fast before the SDK tries to use an invalid template
		if _, err := template.New("").Parse(g.TitleTemplate); err != nil {
			return fmt.Errorf("grids[%d]: invalid title_template: %w", i, err)
		}

		if len(g.Dimensions) == 0 {
			return fmt.Errorf("grids[%d]: at least one dimension is required", i)
		}
		for dimName, dimValues := range g.Dimensions {
			if len(dimValues) == 0 {
				return fmt.Errorf("grids[%d]: dimension %q has no values", i, dimName)
			}
			seen := make(map[string]struct{}, len(dimValues))
			for _, v := range dimValues {
				if _, exists := seen[v]; exists {
					return fmt.Errorf("grids[%d]: dimension %q has duplicate value %q", i, dimName, v)
				}
				seen[v] = struct{}{}
			}
		}

		if err := validateKind(g.Kind); err != nil {
			return fmt.Errorf("grids[%d]: %w", i, err)
		}
	}

	return nil
}

func validateKind(kind string) error {
	if kind == "" {
		return nil
	}
	if !board.ChartKind(kind).Valid() {
		return fmt.Errorf("kind %q: %w", kind, errUnknownKind)
	}
	return nil
}

var errUnknownKind = errors.New("kind must be line, pie, area, or bar")
