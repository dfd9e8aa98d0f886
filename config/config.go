// Package config provides configuration loading and management for Signal Box.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete Signal Box configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	GitHub   GitHubConfig   `yaml:"github"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Report   ReportConfig   `yaml:"report"`
	Store    StoreConfig    `yaml:"store"`
	Watch    WatchConfig    `yaml:"watch"`
}

// ServerConfig configures the HTTP API server
type ServerConfig struct {
	// Addr is the listen address (default: :8420)
	Addr string `yaml:"addr"`
	// ShutdownTimeout is the graceful shutdown window
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// GitHubConfig configures repository fetching
type GitHubConfig struct {
	// Token is a personal access token (optional, raises rate limits)
	Token string `yaml:"token"`
	// APIBaseURL overrides the GitHub API endpoint (for testing/enterprise)
	APIBaseURL string `yaml:"api_base_url"`
}

// AnalysisConfig configures the analysis pipeline
type AnalysisConfig struct {
	// DefaultModel prices components that declare no model
	DefaultModel string `yaml:"default_model"`
}

// ReportConfig configures report generation
type ReportConfig struct {
	// OutputDir is where HTML reports are written
	OutputDir string `yaml:"output_dir"`
}

// StoreConfig configures run persistence
type StoreConfig struct {
	// Path is the SQLite database file (empty = in user config dir)
	Path string `yaml:"path"`
}

// WatchConfig configures the filesystem watcher
type WatchConfig struct {
	// Debounce is how long to wait after the last change before re-analyzing
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8420",
			ShutdownTimeout: 10 * time.Second,
		},
		GitHub: GitHubConfig{
			Token:      "",
			APIBaseURL: "",
		},
		Analysis: AnalysisConfig{
			DefaultModel: "gpt-3.5-turbo",
		},
		Report: ReportConfig{
			OutputDir: "reports",
		},
		Store: StoreConfig{
			Path: "", // resolved by the loader
		},
		Watch: WatchConfig{
			Debounce: 2 * time.Second,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Analysis.DefaultModel == "" {
		return fmt.Errorf("analysis.default_model is required")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.ShutdownTimeout != 0 {
		c.Server.ShutdownTimeout = other.Server.ShutdownTimeout
	}

	if other.GitHub.Token != "" {
		c.GitHub.Token = other.GitHub.Token
	}
	if other.GitHub.APIBaseURL != "" {
		c.GitHub.APIBaseURL = other.GitHub.APIBaseURL
	}

	if other.Analysis.DefaultModel != "" {
		c.Analysis.DefaultModel = other.Analysis.DefaultModel
	}

	if other.Report.OutputDir != "" {
		c.Report.OutputDir = other.Report.OutputDir
	}

	if other.Store.Path != "" {
		c.Store.Path = other.Store.Path
	}

	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
}
