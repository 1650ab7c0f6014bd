// Package config loads and saves tada's settings.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/tada/config.yaml (also holds credentials.json)
//   - State:  ~/.local/state/tada/ (default todo database)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Transport kinds.
const (
	TransportLocal = "local" // in-process backend over Database
	TransportHTTP  = "http"
	TransportWS    = "ws"
)

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn, error
	File  string `yaml:"file,omitempty"`  // empty logs to stderr
}

// ServerConfig is used by "tada serve".
type ServerConfig struct {
	Addr  string `yaml:"addr,omitempty"`
	Token string `yaml:"token,omitempty"` // required bearer token, if set
}

type Config struct {
	Transport string       `yaml:"transport,omitempty"`
	Endpoint  string       `yaml:"endpoint,omitempty"` // http(s):// or ws(s):// URL of a remote host
	Database  string       `yaml:"database,omitempty"` // memory, *.json, or a SQLite path
	PageSize  int          `yaml:"page_size,omitempty"`
	Log       LogConfig    `yaml:"log,omitempty"`
	Server    ServerConfig `yaml:"server,omitempty"`
}

func DefaultConfig() Config {
	db := "memory"
	if dir := StateDir(); dir != "" {
		db = filepath.Join(dir, "todos.db")
	}
	return Config{
		Transport: TransportLocal,
		Database:  db,
		PageSize:  999,
		Log:       LogConfig{Level: "info"},
		Server:    ServerConfig{Addr: "localhost:8080"},
	}
}

// ConfigDir returns the XDG config directory for tada.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "tada")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tada")
}

// StateDir returns the XDG state directory for tada.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "tada")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "tada")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Database = expandHome(cfg.Database)
	cfg.Log.File = expandHome(cfg.Log.File)
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from TADA_* environment variables.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("TADA_TRANSPORT")); v != "" {
		c.Transport = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("TADA_ENDPOINT")); v != "" {
		c.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("TADA_DB")); v != "" {
		c.Database = expandHome(v)
	}
	if v, _ := strconv.ParseBool(os.Getenv("TADA_DEBUG")); v {
		c.Log.Level = "debug"
	}
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	switch c.Transport {
	case "", TransportLocal:
	case TransportHTTP, TransportWS:
		if strings.TrimSpace(c.Endpoint) == "" {
			return fmt.Errorf("transport %q needs an endpoint", c.Transport)
		}
	default:
		return fmt.Errorf("unknown transport %q (want local, http or ws)", c.Transport)
	}
	if c.PageSize < 0 {
		return fmt.Errorf("page_size must not be negative")
	}
	return nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
