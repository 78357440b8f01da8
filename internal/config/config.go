package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Verdict modes accepted by VERDICT_MODE
const (
	VerdictModeRandom      = "random"
	VerdictModeAlwaysTrue  = "always_true"
	VerdictModeAlwaysFalse = "always_false"
)

type Config struct {
	Host               string        `yaml:"host"`
	Port               string        `yaml:"port"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	MaxRequestBodySize int64         `yaml:"max_request_body_size"`

	CountdownFrom int           `yaml:"countdown_from"`
	TickInterval  time.Duration `yaml:"tick_interval"`
	FinalizeDelay time.Duration `yaml:"finalize_delay"`
	VerdictMode   string        `yaml:"verdict_mode"`

	SessionTTL    time.Duration `yaml:"session_ttl"`
	SweepInterval time.Duration `yaml:"session_sweep_interval"`
	SessionCookie string        `yaml:"session_cookie"`

	LogLevel string `yaml:"log_level"`
	GinMode  string `yaml:"gin_mode"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Host:               "0.0.0.0",
		Port:               "8080",
		RequestTimeout:     30 * time.Second,
		MaxRequestBodySize: 10 * 1024 * 1024, // 10MB
		CountdownFrom:      3,
		TickInterval:       time.Second,
		FinalizeDelay:      500 * time.Millisecond,
		VerdictMode:        VerdictModeRandom,
		SessionTTL:         30 * time.Minute,
		SweepInterval:      time.Minute,
		SessionCookie:      "skin_session",
		LogLevel:           "info",
		GinMode:            "release",
	}
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// LoadFromEnv loads the configuration using CONFIG_FILE as the optional YAML file
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv("CONFIG_FILE"))
}

// Load builds the configuration from defaults, the YAML file at path (if any),
// a .env file in the working directory (if any) and the environment, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Missing .env is fine
	_ = godotenv.Load()

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can run the service
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", c.RequestTimeout)
	}
	if c.CountdownFrom < 1 {
		return fmt.Errorf("COUNTDOWN_FROM must be >= 1 (got %d)", c.CountdownFrom)
	}
	if c.TickInterval <= 0 || c.FinalizeDelay < 0 {
		return fmt.Errorf("invalid timing (got tick=%s, finalize=%s)", c.TickInterval, c.FinalizeDelay)
	}
	if c.SessionTTL <= 0 || c.SweepInterval <= 0 {
		return fmt.Errorf("session timings must be > 0 (got ttl=%s, sweep=%s)", c.SessionTTL, c.SweepInterval)
	}
	if strings.TrimSpace(c.SessionCookie) == "" {
		return fmt.Errorf("SESSION_COOKIE must not be empty")
	}
	switch c.VerdictMode {
	case VerdictModeRandom, VerdictModeAlwaysTrue, VerdictModeAlwaysFalse:
	default:
		return fmt.Errorf("invalid VERDICT_MODE: %q", c.VerdictMode)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid GIN_MODE: %q", c.GinMode)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Host = getEnvOrDefault("HOST", cfg.Host)
	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.RequestTimeout = parseDurationOrDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.MaxRequestBodySize = parseIntOrDefault("MAX_REQUEST_BODY_SIZE", cfg.MaxRequestBodySize)
	cfg.CountdownFrom = int(parseIntOrDefault("COUNTDOWN_FROM", int64(cfg.CountdownFrom)))
	cfg.TickInterval = parseDurationOrDefault("TICK_INTERVAL", cfg.TickInterval)
	cfg.FinalizeDelay = parseDurationOrDefault("FINALIZE_DELAY", cfg.FinalizeDelay)
	cfg.VerdictMode = strings.ToLower(getEnvOrDefault("VERDICT_MODE", cfg.VerdictMode))
	cfg.SessionTTL = parseDurationOrDefault("SESSION_TTL", cfg.SessionTTL)
	cfg.SweepInterval = parseDurationOrDefault("SESSION_SWEEP_INTERVAL", cfg.SweepInterval)
	cfg.SessionCookie = getEnvOrDefault("SESSION_COOKIE", cfg.SessionCookie)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.GinMode = getEnvOrDefault("GIN_MODE", cfg.GinMode)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration >= 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
