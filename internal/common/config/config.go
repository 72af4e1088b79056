package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrPipCommandNotSet = errors.New("pip command is not configured")
	ErrPythonNotSet     = errors.New("python interpreter is not configured")
)

// Default values written to a freshly created config file
const (
	DefaultPipCommand     = "pip"
	DefaultPython         = "python3"
	DefaultExceptionsName = "exceptions.txt"
)

// Config represents the application configuration
type Config struct {
	Pip        PipConfig        `yaml:"pip"`
	Exceptions ExceptionsConfig `yaml:"exceptions"`
	Log        LogConfig        `yaml:"log"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
}

// PipConfig holds package manager settings
type PipConfig struct {
	Command string `yaml:"command"` // pip executable, e.g. "pip" or "pip3"
	Python  string `yaml:"python"`  // interpreter used to upgrade pip itself
}

// ExceptionsConfig holds the exception list location
type ExceptionsConfig struct {
	Path string `yaml:"path"` // .txt (line format) or .toml
}

// LogConfig holds log file settings
type LogConfig struct {
	File string `yaml:"file"` // empty means $XDG_STATE_HOME/pip-updater/logs/pip-updater.log
}

// ScheduleConfig remembers the last registered scheduled job
type ScheduleConfig struct {
	Expression string `yaml:"expression,omitempty"`
	Exceptions bool   `yaml:"exceptions,omitempty"`
}

// ConfigDir returns the pip-updater config directory (XDG standard)
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return filepath.Join(xdgConfig, "pip-updater"), nil
}

// ConfigPaths returns all possible config file paths in priority order
// 1. ~/.config/pip-updater/config.yaml (XDG standard - priority)
// 2. ~/.pip-updater/config.yaml (legacy fallback)
func ConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}

	return []string{
		filepath.Join(dir, "config.yaml"),
		filepath.Join(home, ".pip-updater", "config.yaml"),
	}, nil
}

// DefaultConfigPath returns the default config file path (XDG standard)
func DefaultConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

// FindConfigPath returns the first existing config file path
// Returns the default path if no config file exists yet
func FindConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return DefaultConfigPath()
}

// Default returns a config populated with default values.
// The exceptions file lives next to the config file.
func Default(configPath string) *Config {
	return &Config{
		Pip: PipConfig{
			Command: DefaultPipCommand,
			Python:  DefaultPython,
		},
		Exceptions: ExceptionsConfig{
			Path: filepath.Join(filepath.Dir(configPath), DefaultExceptionsName),
		},
	}
}

// Load reads configuration from the first available config file and
// returns the path it came from.
// Priority: ~/.config/pip-updater/config.yaml > ~/.pip-updater/config.yaml
func Load() (*Config, string, error) {
	configPath, err := FindConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := LoadFrom(configPath)
	return cfg, configPath, err
}

// LoadFrom reads configuration from a specific file path.
// A missing file is created with default values.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default(path)
			if saveErr := cfg.SaveTo(path); saveErr != nil {
				return nil, saveErr
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Fill fields an older or hand-written file may leave out
	defaults := Default(path)
	if cfg.Pip.Command == "" {
		cfg.Pip.Command = defaults.Pip.Command
	}
	if cfg.Pip.Python == "" {
		cfg.Pip.Python = defaults.Pip.Python
	}
	if cfg.Exceptions.Path == "" {
		cfg.Exceptions.Path = defaults.Exceptions.Path
	}

	return &cfg, nil
}

// SaveTo writes configuration to a specific file path
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks that the package manager settings are usable
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Pip.Command) == "" {
		return ErrPipCommandNotSet
	}
	if strings.TrimSpace(c.Pip.Python) == "" {
		return ErrPythonNotSet
	}
	return nil
}

// ExceptionsPath returns the exceptions file path with ~ expanded
func (c *Config) ExceptionsPath() (string, error) {
	return ExpandHome(c.Exceptions.Path)
}

// LogPath returns the log file path with ~ expanded.
// An empty result selects the logger's default location.
func (c *Config) LogPath() (string, error) {
	return ExpandHome(c.Log.File)
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}
