package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"bob/internal/adapter/analyzer"
)

// Config holds all configuration for bob.
type Config struct {
	Scan    ScanConfig    `yaml:"scan" toml:"scan"`
	Learn   LearnConfig   `yaml:"learn" toml:"learn"`
	Watch   WatchConfig   `yaml:"watch" toml:"watch"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// ScanConfig holds repository scanning configuration.
type ScanConfig struct {
	Includes      []string `yaml:"includes" toml:"includes"`
	Excludes      []string `yaml:"excludes" toml:"excludes"`
	ExtensionHint bool     `yaml:"extension_hint" toml:"extension_hint"` // use the file extension instead of content detection
	Workers       int      `yaml:"workers" toml:"workers"`
	MaxFileBytes  int64    `yaml:"max_file_bytes" toml:"max_file_bytes"`
	CacheSize     int      `yaml:"cache_size" toml:"cache_size"`
}

// LearnConfig holds repository cloning configuration.
type LearnConfig struct {
	ReposDir string `yaml:"repos_dir" toml:"repos_dir"`
	TokenEnv string `yaml:"token_env" toml:"token_env"` // Environment variable holding a git token
	Depth    int    `yaml:"depth" toml:"depth"`
}

type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" toml:"debounce_ms"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "console" or "json"
}

// DefaultIncludes matches every extension the analyzer knows.
var DefaultIncludes = defaultIncludes()

func defaultIncludes() []string {
	exts := analyzer.AllExtensions()
	includes := make([]string, 0, len(exts))
	for _, ext := range exts {
		includes = append(includes, "**/*"+ext)
	}
	return includes
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Includes:      append([]string(nil), DefaultIncludes...),
			Excludes:      []string{"**/node_modules/**", "**/vendor/**", "**/.git/**", "**/.bob/**", "**/dist/**", "**/build/**", "**/__pycache__/**", "**/*.min.js"},
			ExtensionHint: false,
			Workers:       4,
			MaxFileBytes:  1 << 20,
			CacheSize:     1024,
		},
		Learn: LearnConfig{
			ReposDir: "repositories",
			TokenEnv: "GITHUB_TOKEN",
			Depth:    1,
		},
		Watch: WatchConfig{
			DebounceMs: 300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML or TOML file, chosen by extension.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if filepath.Ext(path) == ".toml" {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory. It looks for bob.yaml,
// then .bob/config.yaml, then bob.toml.
func LoadFromDir(dir string) (*Config, error) {
	candidates := []string{
		filepath.Join(dir, "bob.yaml"),
		filepath.Join(dir, ".bob", "config.yaml"),
		filepath.Join(dir, "bob.toml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	// Return defaults
	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StoreDBPath returns the path to the analysis database.
func StoreDBPath(dir string) string {
	return filepath.Join(dir, ".bob", "analysis.db")
}

// EnsureBobDir ensures the .bob directory exists.
func EnsureBobDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".bob"), 0755)
}
