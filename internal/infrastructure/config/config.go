package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	// DriverCGO is the mattn/go-sqlite3 driver.
	DriverCGO = "sqlite3"

	// DriverPureGo is the modernc.org/sqlite driver.
	DriverPureGo = "sqlite"
)

// defaultCompanionService is the launchd label of the Logi Options+ agent.
const defaultCompanionService = "com.logi.cp-dev-mgr"

// Config is the root configuration structure for logisettings.
// All configuration is optional: defaults apply, then the YAML file, then
// environment variables.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Editor    EditorConfig    `yaml:"editor"`
	Companion CompanionConfig `yaml:"companion"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig locates the Logi Options+ settings database.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	Driver      string `yaml:"driver"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// EditorConfig contains the interactive editor command.
type EditorConfig struct {
	// Command is split on whitespace; the file to edit is appended.
	Command string `yaml:"command"`
}

// CompanionConfig controls restarting the Logi Options+ agent after a write
// so that it reloads the new settings.
type CompanionConfig struct {
	Restart bool   `yaml:"restart"`
	Service string `yaml:"service"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load builds the configuration.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values, if path is not empty
//  3. Environment variables
//
// Environment variables follow the pattern: LOGISETTINGS_SECTION_KEY
// For example: LOGISETTINGS_DATABASE_PATH, LOGISETTINGS_LOG_LEVEL
//
// Parameters:
//   - path: Path to the YAML configuration file, or "" for none
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	return LoadWithOverrides(path, Overrides{})
}

// Overrides holds values given on the command line. They take precedence
// over the environment; empty fields are ignored.
type Overrides struct {
	DatabasePath string
	LogLevel     string
}

// LoadWithOverrides is Load with command line values applied last, before
// validation.
func LoadWithOverrides(path string, overrides Overrides) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	overrides.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        DefaultDatabasePath(),
			Driver:      DriverCGO,
			BusyTimeout: 5,
		},
		Editor: EditorConfig{
			Command: defaultEditor(),
		},
		Companion: CompanionConfig{
			Restart: true,
			Service: defaultCompanionService,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
		},
	}
}

// DefaultDatabasePath returns where Logi Options+ keeps its settings
// database for the current user, or "" if it cannot be determined.
func DefaultDatabasePath() string {
	if runtime.GOOS == "windows" {
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, "LogiOptionsPlus", "settings.db")
		}
		return ""
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "LogiOptionsPlus", "settings.db")
}

func defaultEditor() string {
	for _, name := range []string{"VISUAL", "EDITOR"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	if runtime.GOOS == "windows" {
		return "notepad"
	}
	return "vi"
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOGISETTINGS_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("LOGISETTINGS_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("LOGISETTINGS_EDITOR"); v != "" {
		cfg.Editor.Command = v
	}
	if v := os.Getenv("LOGISETTINGS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func (o Overrides) apply(cfg *Config) {
	if o.DatabasePath != "" {
		cfg.Database.Path = o.DatabasePath
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	switch c.Database.Driver {
	case DriverCGO, DriverPureGo:
	default:
		errs = append(errs, fmt.Sprintf("database.driver must be %q or %q", DriverCGO, DriverPureGo))
	}
	if c.Database.BusyTimeout < 0 {
		errs = append(errs, "database.busy_timeout must not be negative")
	}

	if strings.TrimSpace(c.Editor.Command) == "" {
		errs = append(errs, "editor.command is required")
	}

	if c.Companion.Restart && c.Companion.Service == "" {
		errs = append(errs, "companion.service is required when companion.restart is enabled")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, "logging.level must be debug, info, warn, or error")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, "logging.format must be json or text")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors: " + strings.Join(errs, "; "))
	}

	return nil
}
