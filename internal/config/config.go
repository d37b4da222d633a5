package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration
type Config struct {
	LogTool LogToolConfig `yaml:"log_tool"`
	Output  OutputConfig  `yaml:"output"`
	Extract ExtractConfig `yaml:"extract"`
	History HistoryConfig `yaml:"history"`
}

// LogToolConfig holds settings for the external log-reading binary
type LogToolConfig struct {
	Binary  string `yaml:"binary"`
	Timeout string `yaml:"timeout"`
}

// OutputConfig holds report output settings
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// ExtractConfig holds sysdiagnose extraction settings
type ExtractConfig struct {
	MaxArchiveSize string `yaml:"max_archive_size"`
}

// HistoryConfig holds run-history settings
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LogTool: LogToolConfig{
			Binary:  "log",
			Timeout: "15m",
		},
		Output: OutputConfig{
			Dir: ".",
		},
		Extract: ExtractConfig{
			MaxArchiveSize: "50GB",
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  "",
		},
	}
}

// Load reads a config file from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() (string, error) {
	searchPaths := []string{
		"logcompare.yaml",
		"/etc/logcompare/logcompare.yaml",
	}

	// Add user config path
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths,
			filepath.Join(home, ".config", "logcompare", "logcompare.yaml"),
		)
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", searchPaths)
}

// LogTimeout parses the configured subprocess timeout, falling back to the
// default when the field is empty or malformed.
func (c *Config) LogTimeout() time.Duration {
	const fallback = 15 * time.Minute
	if c.LogTool.Timeout == "" {
		return fallback
	}
	d, err := time.ParseDuration(c.LogTool.Timeout)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// HistoryDBPath returns the resolved path of the run-history database.
func (c *Config) HistoryDBPath() string {
	if c.History.DBPath != "" {
		return c.History.DBPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "logcompare-history.db")
	}
	return filepath.Join(home, ".local", "share", "logcompare", "history.db")
}
