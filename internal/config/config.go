package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string `yaml:"-"`
	TestPath    string `yaml:"test_path"`

	// Warm environment
	Helper         string   `yaml:"helper"`
	Preload        []string `yaml:"preload"`
	Reload         []string `yaml:"reload"`
	BaseCategories []string `yaml:"base_categories"`
	EnvFiles       []string `yaml:"env_files"`
	Boot           []string `yaml:"boot"`
	Database       Database `yaml:"database"`
	Watch          bool     `yaml:"watch"`

	// Daemon settings
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`

	// Paths to ignore when scanning
	PathsToIgnore []string `yaml:"ignore"`

	// Command flags
	Flags Flags `yaml:"-"`
}

// Database configures the test database bootstrap
type Database struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
}

// Flags holds command-line flags
type Flags struct {
	Serve       bool
	Local       bool
	View        bool
	LogLevel    string
	TestPath    string
	NameFilter  string
	SuiteFilter string
	TestCases   bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath: ".",
		TestPath:    DefaultTestPath,
		Helper:      DefaultHelper,
		LogLevel:    DefaultLogLevel,
	}
	cfg.BaseCategories = append([]string(nil), DefaultBaseCategories...)
	cfg.EnvFiles = append([]string(nil), DefaultEnvFiles...)
	cfg.PathsToIgnore = append([]string(nil), DefaultPathsToIgnore...)
	return cfg
}

// Load reads the configuration file at path over the defaults. The project
// root becomes the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config %s: %w", path, err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config %s: %w", path, err)
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	cfg.ProjectPath = root

	if len(cfg.BaseCategories) == 0 {
		cfg.BaseCategories = append([]string(nil), DefaultBaseCategories...)
	}
	if _, err := cfg.ReloadPatterns(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Discover finds the project root above start and loads its configuration.
// Without a configuration file, defaults apply and start is the root.
func Discover(start string) (*Config, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, err
	}

	root, ok := FindProjectRoot(abs)
	if !ok {
		cfg := New()
		cfg.ProjectPath = abs
		return cfg, nil
	}
	return Load(filepath.Join(root, FileName))
}

// FindProjectRoot returns the nearest ancestor of start (start included)
// holding a configuration file.
func FindProjectRoot(start string) (string, bool) {
	dir := filepath.Clean(start)
	for {
		if info, err := os.Stat(filepath.Join(dir, FileName)); err == nil && !info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// GetTestPath returns the test path, using flag if provided
func (c *Config) GetTestPath() string {
	if c.Flags.TestPath != "" {
		return c.ResolvePath(c.Flags.TestPath)
	}
	return c.ResolvePath(c.TestPath)
}

// ResolvePath makes p absolute relative to the project root
func (c *Config) ResolvePath(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.ProjectPath, p)
}

// HelperPath returns the helper source file, or "" when none is configured
func (c *Config) HelperPath() string {
	if c.Helper == "" {
		return ""
	}
	if filepath.IsAbs(c.Helper) {
		return c.Helper
	}
	return filepath.Join(c.GetTestPath(), c.Helper)
}

// PreloadPaths returns the absolute preload source files
func (c *Config) PreloadPaths() []string {
	paths := make([]string, 0, len(c.Preload))
	for _, p := range c.Preload {
		paths = append(paths, c.ResolvePath(p))
	}
	return paths
}

// SocketPath returns the daemon socket path, creating its directory if absent
func (c *Config) SocketPath() (string, error) {
	if p := os.Getenv(SocketEnv); p != "" {
		return p, nil
	}

	dir := c.ResolvePath(DefaultSocketDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating socket directory %s: %w", dir, err)
	}
	return filepath.Join(dir, DefaultSocketName), nil
}

// StatePath returns the daemon state file path
func (c *Config) StatePath() (string, error) {
	sock, err := c.SocketPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(sock), DefaultStateName), nil
}

// ReloadPatterns compiles the reload set
func (c *Config) ReloadPatterns() ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(c.Reload))
	for _, expr := range c.Reload {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid reload pattern %q: %w", expr, err)
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}

// GetDatabaseName returns the test database name
func (c *Config) GetDatabaseName(lookup func(string) string) string {
	if c.Database.Name != "" {
		return c.Database.Name
	}
	if name := lookup("DB_DATABASE"); name != "" {
		return name
	}
	return DefaultDatabaseName
}

// GetLogLevel returns the log level, using flag if provided
func (c *Config) GetLogLevel() string {
	if c.Flags.LogLevel != "" {
		return c.Flags.LogLevel
	}
	return c.LogLevel
}
