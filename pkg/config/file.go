package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. DUPNORRIS_PERFORMANCE_MAX_WORKERS
const EnvPrefix = "DUPNORRIS"

func isINI(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".ini")
}

// LoadFromFile loads configuration from a YAML file, or an INI file when the
// extension is .ini. Keys absent from the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()

	if isINI(path) {
		file, err := ini.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		if err := file.MapTo(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration as YAML, or INI when the extension is .ini
func SaveToFile(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if isINI(path) {
		file := ini.Empty()
		if err := file.ReflectFrom(cfg); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		if err := file.SaveTo(path); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
		return nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".config", "dupnorris", "config.yaml"), nil
}

// ApplyEnv overrides cfg with DUPNORRIS_* environment variables and
// revalidates it. Unset variables leave the value untouched.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("parsing environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Load reads path, or the default location when path is empty, then applies
// environment overrides. A missing default file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg *Config

	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(defaultPath); err == nil {
			path = defaultPath
		}
	}

	if path == "" {
		cfg = Default()
	} else {
		loaded, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
