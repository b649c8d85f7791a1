/*
Package config manages TOML config for wordrank services.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/charmbracelet/log"
)

// AppName names the per-user config directory.
const AppName = "wordrank"

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Dict   DictConfig   `toml:"dict"`
	Cache  CacheConfig  `toml:"cache"`
	Bench  BenchConfig  `toml:"bench"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	DefaultLimit int    `toml:"default_limit"`
	MaxLimit     int    `toml:"max_limit"`
	MaxPrefix    int    `toml:"max_prefix"`
}

// DictConfig holds dictionary options.
type DictConfig struct {
	Path string `toml:"path"`
}

// CacheConfig sizes the hot result cache. Zero disables it.
type CacheConfig struct {
	MaxEntries int `toml:"max_entries"`
}

// BenchConfig holds load-test options.
type BenchConfig struct {
	Workers     int `toml:"workers"`
	Limit       int `toml:"limit"`
	ReportEvery int `toml:"report_every"`
	StaggerMS   int `toml:"stagger_ms"`
}

// Stagger returns the delay between worker starts.
func (b BenchConfig) Stagger() time.Duration {
	return time.Duration(b.StaggerMS) * time.Millisecond
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         "localhost:8888",
			DefaultLimit: 10,
			MaxLimit:     64,
			MaxPrefix:    64,
		},
		Dict: DictConfig{
			Path: "-",
		},
		Cache: CacheConfig{
			MaxEntries: 4096,
		},
		Bench: BenchConfig{
			Workers:     0,
			Limit:       10,
			ReportEvery: 1000,
			StaggerMS:   500,
		},
	}
}

// GetConfigDir returns <UserConfigDir>/wordrank, falling back to the executable dir.
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Debugf("No user config directory: %v", err)
		return utils.GetExecutableDir()
	}
	return filepath.Join(configDir, AppName), nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/wordrank/config.toml, if present
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}
	if !utils.FileExists(defaultPath) {
		log.Debugf("No config at %s, using built-in defaults", defaultPath)
		return DefaultConfig(), "", nil
	}
	config, err := LoadConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse keeps whatever sections still parse with the right types.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		if val, ok := utils.ExtractString(section, "path"); ok {
			config.Dict.Path = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "cache"); ok {
		if val, ok := utils.ExtractInt64(section, "max_entries"); ok {
			config.Cache.MaxEntries = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "bench"); ok {
		extractBenchConfig(section, &config.Bench)
	}
	return config, nil
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractString(data, "addr"); ok {
		server.Addr = val
	}
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		server.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_prefix"); ok {
		server.MaxPrefix = val
	}
}

func extractBenchConfig(data map[string]any, bench *BenchConfig) {
	if val, ok := utils.ExtractInt64(data, "workers"); ok {
		bench.Workers = val
	}
	if val, ok := utils.ExtractInt64(data, "limit"); ok {
		bench.Limit = val
	}
	if val, ok := utils.ExtractInt64(data, "report_every"); ok {
		bench.ReportEvery = val
	}
	if val, ok := utils.ExtractInt64(data, "stagger_ms"); ok {
		bench.StaggerMS = val
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
