package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.CountdownFrom)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.FinalizeDelay)
	assert.Equal(t, VerdictModeRandom, cfg.VerdictMode)
	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddress())
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", " 9090 ")
	t.Setenv("COUNTDOWN_FROM", "5")
	t.Setenv("TICK_INTERVAL", "250ms")
	t.Setenv("FINALIZE_DELAY", "0s")
	t.Setenv("VERDICT_MODE", "ALWAYS_TRUE")
	t.Setenv("SESSION_TTL", "not-a-duration")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5, cfg.CountdownFrom)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, time.Duration(0), cfg.FinalizeDelay)
	assert.Equal(t, VerdictModeAlwaysTrue, cfg.VerdictMode)
	// invalid values fall back to the previous layer
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "skin.yaml")
	content := []byte("port: \"7000\"\ncountdown_from: 4\ntick_interval: 2s\nsession_cookie: sid\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("PORT", "7001")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7001", cfg.Port, "environment wins over the file")
	assert.Equal(t, 4, cfg.CountdownFrom)
	assert.Equal(t, 2*time.Second, cfg.TickInterval)
	assert.Equal(t, "sid", cfg.SessionCookie)
	assert.Equal(t, 500*time.Millisecond, cfg.FinalizeDelay, "unset keys keep defaults")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SESSION_COOKIE=from_dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SESSION_COOKIE") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from_dotenv", cfg.SessionCookie)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"non numeric port", func(c *Config) { c.Port = "http" }},
		{"port out of range", func(c *Config) { c.Port = "70000" }},
		{"zero body size", func(c *Config) { c.MaxRequestBodySize = 0 }},
		{"zero countdown", func(c *Config) { c.CountdownFrom = 0 }},
		{"zero tick", func(c *Config) { c.TickInterval = 0 }},
		{"negative finalize", func(c *Config) { c.FinalizeDelay = -time.Millisecond }},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }},
		{"empty cookie", func(c *Config) { c.SessionCookie = " " }},
		{"unknown verdict mode", func(c *Config) { c.VerdictMode = "coin" }},
		{"unknown gin mode", func(c *Config) { c.GinMode = "production" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
