package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GATEKEEPER_CONFIG", "GATEKEEPER_DB", "GATEKEEPER_STORAGE_KEY", "GATEKEEPER_KEEP_VERSIONS",
		"GATEKEEPER_ADDR", "GATEKEEPER_LOG_LEVEL", "GATEKEEPER_LOG_FORMAT", "GATEKEEPER_RELABEL_MEMORY",
		"GATEKEEPER_REMOTE_PROVIDER", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "gatekeeper_brain_v2", cfg.Store.Key)
	assert.Equal(t, 20, cfg.Store.KeepVersions)
	assert.Equal(t, 30*time.Second, cfg.Remote.Timeout)
	assert.True(t, cfg.Learner.RelabelMemory)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Remote.Provider = "openai"
	cfg.Remote.Timeout = 5 * time.Second
	cfg.Learner.RelabelMemory = false
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", loaded.Remote.Provider)
	assert.Equal(t, 5*time.Second, loaded.Remote.Timeout)
	assert.False(t, loaded.Learner.RelabelMemory)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9000\"\nremote:\n  timeout: 2m\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 2*time.Minute, cfg.Remote.Timeout)
	assert.Equal(t, "gatekeeper_brain_v2", cfg.Store.Key)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("store: [1, 2"), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GATEKEEPER_DB", "/tmp/env.db")
	t.Setenv("GATEKEEPER_KEEP_VERSIONS", "3")
	t.Setenv("GATEKEEPER_RELABEL_MEMORY", "false")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_MODEL", "gpt-test")

	cfg, err := Resolve(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err, "explicit missing path is an error")
	assert.Nil(t, cfg)

	t.Setenv("HOME", t.TempDir())
	cfg, err = Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.Store.Path)
	assert.Equal(t, 3, cfg.Store.KeepVersions)
	assert.False(t, cfg.Learner.RelabelMemory)
	assert.Equal(t, "sk-env", cfg.Remote.APIKey)
	assert.Equal(t, "gpt-test", cfg.Remote.Model)
}

func TestResolveUsesEnvPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))
	t.Setenv("GATEKEEPER_CONFIG", path)

	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty key", func(c *Config) { c.Store.Key = "" }},
		{"empty path", func(c *Config) { c.Store.Path = "" }},
		{"negative keep", func(c *Config) { c.Store.KeepVersions = -1 }},
		{"unknown provider", func(c *Config) { c.Remote.Provider = "carrier-pigeon" }},
		{"negative timeout", func(c *Config) { c.Remote.Timeout = -time.Second }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "x", "brain.db"), ExpandPath("~/x/brain.db"))
	assert.Equal(t, "/abs/brain.db", ExpandPath("/abs/brain.db"))
	assert.Equal(t, "~other/x", ExpandPath("~other/x"))
}
