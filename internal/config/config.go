package config

import (
	"fmt"
	"os"
	"path/filepath"

	"fluxcut/pkg/models"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration
type Config struct {
	Project  ProjectConfig  `toml:"project"`
	Media    MediaConfig    `toml:"media"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

// ProjectConfig holds the defaults applied to new projects
type ProjectConfig struct {
	Name                  string  `toml:"name"`
	Width                 int     `toml:"width"`
	Height                int     `toml:"height"`
	AspectRatio           string  `toml:"aspect_ratio"`
	FrameRate             float64 `toml:"frame_rate"`
	Background            string  `toml:"background"`
	Seed                  string  `toml:"seed"`
	TargetDurationSeconds float64 `toml:"target_duration_seconds"`
}

// MediaConfig contains media library configuration
type MediaConfig struct {
	LibraryPath     string `toml:"library_path"`
	WatchForChanges bool   `toml:"watch_for_changes"`
	ScanOnStartup   bool   `toml:"scan_on_startup"`
}

// DatabaseConfig contains database-related configuration
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Name:        "Untitled",
			Width:       1920,
			Height:      1080,
			AspectRatio: "16:9",
			FrameRate:   30,
			Background:  "black",
			Seed:        "fluxcut",
		},
		Media: MediaConfig{
			LibraryPath:     "./media",
			WatchForChanges: true,
			ScanOnStartup:   true,
		},
		Database: DatabaseConfig{
			Path: "./fluxcut.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "",
		},
	}
}

// LoadConfig loads configuration from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Config file doesn't exist yet: create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := cfg.SaveToFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config file: %w", err)
		}
		fmt.Printf("Created default configuration file at: %s\n", configPath)
		return cfg, nil
	}

	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves the configuration to a TOML file
func (c *Config) SaveToFile(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	header := `# FluxCut Configuration
# This file contains all configuration options for the FluxCut timeline editor.
# Edit the values below to customize project defaults and library paths.

`
	if _, err := file.WriteString(header); err != nil {
		return fmt.Errorf("failed to write config header: %w", err)
	}

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config to TOML: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Project.FrameRate <= 0 {
		return fmt.Errorf("project frame rate must be positive")
	}
	if c.Project.Width < 0 || c.Project.Height < 0 {
		return fmt.Errorf("project resolution cannot be negative")
	}
	if c.Project.TargetDurationSeconds < 0 {
		return fmt.Errorf("target duration cannot be negative")
	}

	if c.Media.LibraryPath == "" {
		return fmt.Errorf("media library path cannot be empty")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}

// ProjectSettings converts the project section into the initial settings
// for a new project.
func (c *Config) ProjectSettings() models.ProjectSettings {
	p := c.Project
	return models.ProjectSettings{
		Name:                  p.Name,
		Width:                 p.Width,
		Height:                p.Height,
		AspectRatio:           p.AspectRatio,
		FrameRate:             p.FrameRate,
		Background:            p.Background,
		Seed:                  p.Seed,
		TargetDurationSeconds: p.TargetDurationSeconds,
	}
}
