// Package config loads and validates strato.json project configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/strato-web/strato/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "strato.json"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"
)

// DefaultExtensions are tried, in order, when a resolved path has no
// extension and does not exist as-is.
var DefaultExtensions = []string{"html", "gohtml", "tmpl", "json"}

// Config represents the complete strato.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// SrcDir is the application source directory, relative to the project
	// root. The `~`/`@` alias resolves into it.
	SrcDir string `json:"srcDir,omitempty"`

	// Extensions are probed when resolving extensionless paths.
	Extensions []string `json:"extensions,omitempty"`

	// Modules lists built-in modules to install by name.
	Modules []string `json:"modules,omitempty"`

	// Static contains static file serving configuration.
	Static StaticConfig `json:"static,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// Telemetry toggles the metrics and tracing modules.
	Telemetry TelemetryConfig `json:"telemetry,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// StaticConfig contains static file serving configuration.
type StaticConfig struct {
	// Dir is the directory containing static files.
	Dir string `json:"dir,omitempty"`

	// Prefix is the URL prefix for static files (default: "/").
	Prefix string `json:"prefix,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Port is the port to run the server on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Watch contains paths to watch for changes.
	Watch []string `json:"watch,omitempty"`

	// Ignore contains patterns to ignore during watch.
	Ignore []string `json:"ignore,omitempty"`

	// HotReload enables hot reload in development.
	HotReload bool `json:"hotReload,omitempty"`
}

// TelemetryConfig toggles the built-in observability modules.
type TelemetryConfig struct {
	// Metrics installs the Prometheus middleware and /_strato/metrics.
	Metrics bool `json:"metrics,omitempty"`

	// Tracing installs the OpenTelemetry middleware.
	Tracing bool `json:"tracing,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		SrcDir:     ".",
		Extensions: append([]string(nil), DefaultExtensions...),
		Static: StaticConfig{
			Dir:    "public",
			Prefix: "/",
		},
		// Watch stays nil here so applyDefaults can derive it from the
		// SrcDir the file actually declares.
		Dev: DevConfig{
			Port:      DefaultPort,
			Host:      DefaultHost,
			HotReload: true,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for strato.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E010").
				WithDetail("No strato.json found in " + filepath.Dir(path)).
				WithSuggestion("Create strato.json in the project root")
		}
		return nil, errors.New("E011").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E012").
			WithDetail("Failed to parse strato.json: " + err.Error()).
			WithSuggestion("Check that strato.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E011").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E011").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.SrcDir == "" {
		c.SrcDir = "."
	}
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), DefaultExtensions...)
	}

	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.Watch == nil {
		c.Dev.Watch = []string{c.SrcDir}
	}

	if c.Static.Dir == "" {
		c.Static.Dir = "public"
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = "/"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("E012").
			WithDetail("Port must be between 0 and 65535, got " + strconv.Itoa(c.Dev.Port))
	}
	for _, ext := range c.Extensions {
		if ext == "" {
			return errors.New("E012").
				WithDetail("Extensions must not contain empty entries")
		}
	}
	return nil
}

// DevAddress returns the address string for the server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// SrcPath returns the absolute path to the source directory.
func (c *Config) SrcPath() string {
	if filepath.IsAbs(c.SrcDir) {
		return c.SrcDir
	}
	return filepath.Join(c.Dir(), c.SrcDir)
}

// StaticPath returns the absolute path to the static files directory.
func (c *Config) StaticPath() string {
	if filepath.IsAbs(c.Static.Dir) {
		return c.Static.Dir
	}
	return filepath.Join(c.Dir(), c.Static.Dir)
}

// StaticPrefix returns the URL prefix for static files.
func (c *Config) StaticPrefix() string {
	if c.Static.Prefix == "" {
		return "/"
	}
	return c.Static.Prefix
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing strato.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E010").
				WithDetail("No strato.json found in " + startDir + " or any parent directory").
				WithSuggestion("Create strato.json in the project root")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
