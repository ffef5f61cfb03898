package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config contains the symbols view configuration
type Config struct {
	View    ViewConfig    `yaml:"view"`
	History HistoryConfig `yaml:"history"`
	Anchor  AnchorConfig  `yaml:"anchor"`
	Scanner ScannerConfig `yaml:"scanner"`
}

// ViewConfig controls panel presentation defaults
type ViewConfig struct {
	// DefaultTitle is the panel title shown when no search is active.
	DefaultTitle string `yaml:"default_title"`
}

// HistoryConfig controls the search history cache
type HistoryConfig struct {
	// MaxEntries bounds the history cache; the oldest entry is evicted
	// when the bound is exceeded. 0 means unbounded.
	MaxEntries int `yaml:"max_entries"`
}

// AnchorConfig controls position re-tracking after edits
type AnchorConfig struct {
	// SearchWindow is how far (in bytes, both directions) an anchor
	// searches around its original offset before giving up. 0 searches
	// the whole document.
	SearchWindow int `yaml:"search_window"`
}

// ScannerConfig controls the text reference scanner
type ScannerConfig struct {
	// Include lists file glob patterns to scan, matched against the
	// base name (e.g. "*.go").
	Include []string `yaml:"include"`

	// ExcludeDirs lists directory names skipped during the walk.
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// MaxFileSizeKB skips files larger than this. 0 means no limit.
	MaxFileSizeKB int `yaml:"max_file_size_kb"`

	// Workers is the number of files scanned concurrently.
	Workers int `yaml:"workers"`
}

// GetDefaultConfig returns the built-in default configuration
func GetDefaultConfig() *Config {
	return &Config{
		View: ViewConfig{
			DefaultTitle: "References",
		},
		History: HistoryConfig{
			MaxEntries: 50,
		},
		Anchor: AnchorConfig{
			SearchWindow: 2000,
		},
		Scanner: ScannerConfig{
			Include:       []string{"*"},
			ExcludeDirs:   []string{".git", "node_modules", "vendor"},
			MaxFileSizeKB: 1024,
			Workers:       8,
		},
	}
}

// DefaultConfigPath returns the per-user config file location
func DefaultConfigPath() (string, error) {
	path, err := xdg.ConfigFile(filepath.Join("symbols-view", "config.yaml"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	return path, nil
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// LoadConfigWithFallback loads the given path, falling back to defaults
// when the path is empty or the file does not exist
func LoadConfigWithFallback(path string) *Config {
	if path == "" {
		if p, err := DefaultConfigPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if cfg, err := LoadConfig(path); err == nil {
			return cfg
		}
	}
	return GetDefaultConfig()
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateDefaultConfig writes the default configuration to path
func GenerateDefaultConfig(path string) error {
	return SaveConfig(GetDefaultConfig(), path)
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.View.DefaultTitle == "" {
		return fmt.Errorf("view.default_title is required")
	}
	if config.History.MaxEntries < 0 {
		return fmt.Errorf("history.max_entries must not be negative")
	}
	if config.Anchor.SearchWindow < 0 {
		return fmt.Errorf("anchor.search_window must not be negative")
	}
	if config.Scanner.Workers < 1 {
		return fmt.Errorf("scanner.workers must be at least 1")
	}
	for _, pattern := range config.Scanner.Include {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return fmt.Errorf("bad scanner.include pattern %q: %w", pattern, err)
		}
	}
	return nil
}
