// internal/config/config.go
//
// This package handles configuration and the .companions directory structure.
// A project that hosts content units gets a .companions/ folder in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// Dir is the name of the directory we create in each project
	Dir = ".companions"

	defaultTenantsDir = "tenants"
	defaultLocale     = "en"
	defaultLogLevel   = "info"
)

const defaultProjectConfigYAML = `# companions project configuration
version: 1

# Directory holding content units (*.yaml manifests or *.go units), relative to the project.
tenants_dir: .companions/tenants

# Locale used for generated tooltips.
locale: en

logging:
  level: info

# Address for the /metrics endpoint while watching. Empty disables it.
metrics:
  addr: ""
`

// LoggingConfig controls the diagnostic channel.
type LoggingConfig struct {
	Level string `yaml:"level" env:"COMPANIONS_LOG_LEVEL"`
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr" env:"COMPANIONS_METRICS_ADDR"`
}

// ProjectConfig models .companions/config.yaml. Every field can be overridden
// from the environment.
type ProjectConfig struct {
	Version    int           `yaml:"version"`
	TenantsDir string        `yaml:"tenants_dir" env:"COMPANIONS_TENANTS_DIR"`
	Locale     string        `yaml:"locale" env:"COMPANIONS_LOCALE"`
	Logging    LoggingConfig `yaml:"logging"`
	Metrics    MetricsConfig `yaml:"metrics"`
}

// Config holds the runtime configuration.
type Config struct {
	// ProjectDir is the directory the command was run from
	ProjectDir string

	// StateDir is ProjectDir/.companions
	StateDir string

	Project ProjectConfig
}

// InitDir creates the .companions directory structure in projectDir.
//
// Structure created:
// .companions/
// ├── config.yaml
// ├── tenants/   <- content units
// └── logs/      <- diagnostic log
func InitDir(projectDir string) error {
	root := filepath.Join(projectDir, Dir)
	dirs := []string{
		filepath.Join(root, defaultTenantsDir),
		filepath.Join(root, "logs"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(root, "config.yaml"))
}

// Load reads the project configuration and applies environment overrides.
// A missing config file yields defaults.
func Load(projectDir string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", projectDir, err)
	}
	cfg := &Config{
		ProjectDir: abs,
		StateDir:   filepath.Join(abs, Dir),
		Project:    defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := env.Parse(&cfg.Project); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	cfg.Project.normalize()
	if err := cfg.Project.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.StateDir, "config.yaml")
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// TenantsDir returns the absolute directory scanned for content units.
func (c *Config) TenantsDir() string {
	return resolvePath(c.ProjectDir, c.Project.TenantsDir)
}

// Locale returns the configured tooltip locale.
func (c *Config) Locale() string {
	return c.Project.Locale
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.applyDefaults()
	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version:    1,
		TenantsDir: filepath.Join(Dir, defaultTenantsDir),
		Locale:     defaultLocale,
		Logging:    LoggingConfig{Level: defaultLogLevel},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	defaults := defaultProjectConfig()
	if pc.Version == 0 {
		pc.Version = defaults.Version
	}
	if strings.TrimSpace(pc.TenantsDir) == "" {
		pc.TenantsDir = defaults.TenantsDir
	}
	if strings.TrimSpace(pc.Locale) == "" {
		pc.Locale = defaults.Locale
	}
	if strings.TrimSpace(pc.Logging.Level) == "" {
		pc.Logging.Level = defaults.Logging.Level
	}
}

func (pc *ProjectConfig) normalize() {
	pc.TenantsDir = strings.TrimSpace(pc.TenantsDir)
	pc.Locale = strings.TrimSpace(pc.Locale)
	pc.Logging.Level = strings.ToLower(strings.TrimSpace(pc.Logging.Level))
	pc.Metrics.Addr = strings.TrimSpace(pc.Metrics.Addr)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.TenantsDir == "" {
		return fmt.Errorf("tenants_dir is required")
	}
	if pc.Locale == "" {
		return fmt.Errorf("locale is required")
	}
	return nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}
