// Package config loads gatekeeper settings from YAML, the environment and
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/gatekeeper/internal/store"
)

// Config is the full gatekeeper configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Remote  RemoteConfig  `yaml:"remote"`
	Server  ServerConfig  `yaml:"server"`
	Learner LearnerConfig `yaml:"learner"`
	Log     LogConfig     `yaml:"log"`
}

// StoreConfig locates the Brain database and slot.
type StoreConfig struct {
	Path         string `yaml:"path"`
	Key          string `yaml:"key"`
	KeepVersions int    `yaml:"keep_versions"` // 0 keeps every version
}

// RemoteConfig configures the external model.
type RemoteConfig struct {
	Provider string        `yaml:"provider"` // openai, offline, or empty for auto
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LearnerConfig tunes learning behavior.
type LearnerConfig struct {
	// RelabelMemory overwrites a memory record's category when the same input
	// is later learned with the other category.
	RelabelMemory bool `yaml:"relabel_memory"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultDir is the per-user gatekeeper directory.
func DefaultDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".gatekeeper")
}

// DefaultPath is where Resolve looks for a config file when none is named:
// $GATEKEEPER_CONFIG, else ~/.gatekeeper/config.yaml.
func DefaultPath() string {
	if p := os.Getenv("GATEKEEPER_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(DefaultDir(), "config.yaml")
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path:         filepath.Join(DefaultDir(), "brain.db"),
			Key:          store.DefaultKey,
			KeepVersions: 20,
		},
		Remote: RemoteConfig{
			Model:   "gpt-4o-mini",
			Timeout: 30 * time.Second,
		},
		Server:  ServerConfig{Addr: ":8742"},
		Learner: LearnerConfig{RelabelMemory: true},
		Log:     LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads a YAML file over the defaults, then applies env overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// Resolve finds the config to use: path if given, else $GATEKEEPER_CONFIG,
// else ~/.gatekeeper/config.yaml when it exists, else defaults plus env.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("GATEKEEPER_CONFIG")
	}
	if path != "" {
		return Load(path)
	}

	def := DefaultPath()
	if _, err := os.Stat(def); err == nil {
		return Load(def)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	return cfg, nil
}

// Save writes cfg as YAML, creating the parent directory.
func (c *Config) Save(path string) error {
	path = ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv() {
	c.Store.Path = envStr("GATEKEEPER_DB", c.Store.Path)
	c.Store.Key = envStr("GATEKEEPER_STORAGE_KEY", c.Store.Key)
	c.Store.KeepVersions = envInt("GATEKEEPER_KEEP_VERSIONS", c.Store.KeepVersions)
	c.Server.Addr = envStr("GATEKEEPER_ADDR", c.Server.Addr)
	c.Log.Level = envStr("GATEKEEPER_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envStr("GATEKEEPER_LOG_FORMAT", c.Log.Format)
	c.Learner.RelabelMemory = envBool("GATEKEEPER_RELABEL_MEMORY", c.Learner.RelabelMemory)
	c.Remote.Provider = envStr("GATEKEEPER_REMOTE_PROVIDER", c.Remote.Provider)
	c.Remote.APIKey = envStr("OPENAI_API_KEY", c.Remote.APIKey)
	c.Remote.Model = envStr("OPENAI_MODEL", c.Remote.Model)
	c.Remote.BaseURL = envStr("OPENAI_BASE_URL", c.Remote.BaseURL)
}

var (
	validProviders = map[string]bool{"": true, "openai": true, "offline": true}
	validLevels    = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats   = map[string]bool{"json": true, "console": true}
)

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	if c.Store.Key == "" {
		return fmt.Errorf("store.key must not be empty")
	}
	if c.Store.KeepVersions < 0 {
		return fmt.Errorf("store.keep_versions must not be negative, got %d", c.Store.KeepVersions)
	}
	if !validProviders[c.Remote.Provider] {
		return fmt.Errorf("remote.provider must be openai or offline, got %q", c.Remote.Provider)
	}
	if c.Remote.Timeout < 0 {
		return fmt.Errorf("remote.timeout must not be negative, got %s", c.Remote.Timeout)
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
