// Package config loads process settings from defaults, an optional TOML or
// YAML file, and the environment, in that order.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// PathEnv names a config file when no path is passed to Load.
const PathEnv = "TRANSITDASH_CONFIG"

type Config struct {
	LogLevel  slog.Level `yaml:"log_level" toml:"log_level"`
	LogFormat string     `yaml:"log_format" toml:"log_format" validate:"oneof=json text"`

	HTTPAddr        string        `yaml:"http_addr" toml:"http_addr" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" toml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" toml:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout" validate:"gt=0"`

	TransitAPIURL     string        `yaml:"transit_api_url" toml:"transit_api_url" validate:"required,url"`
	TransitAPITimeout time.Duration `yaml:"transit_api_timeout" toml:"transit_api_timeout" validate:"gt=0"`

	CacheEnabled         bool          `yaml:"cache_enabled" toml:"cache_enabled"`
	CacheTTL             time.Duration `yaml:"cache_ttl" toml:"cache_ttl" validate:"gt=0"`
	CacheWarmOnStart     bool          `yaml:"cache_warm_on_start" toml:"cache_warm_on_start"`
	CacheRefreshInterval time.Duration `yaml:"cache_refresh_interval" toml:"cache_refresh_interval" validate:"gte=0"`

	RedisEnabled  bool   `yaml:"redis_enabled" toml:"redis_enabled"`
	RedisAddr     string `yaml:"redis_addr" toml:"redis_addr" validate:"required_if=RedisEnabled true"`
	RedisPassword string `yaml:"redis_password" toml:"redis_password"`
	RedisDB       int    `yaml:"redis_db" toml:"redis_db" validate:"gte=0"`

	// A zero per-window count disables the limiter.
	RateLimitPerWindow      int           `yaml:"rate_limit_per_window" toml:"rate_limit_per_window" validate:"gte=0"`
	RateLimitWindow         time.Duration `yaml:"rate_limit_window" toml:"rate_limit_window" validate:"gt=0"`
	RateLimitWhitelist      []string      `yaml:"rate_limit_whitelist" toml:"rate_limit_whitelist"`
	SessionActionsPerWindow int           `yaml:"session_actions_per_window" toml:"session_actions_per_window" validate:"gte=0"`

	ClockInterval  time.Duration `yaml:"clock_interval" toml:"clock_interval" validate:"gt=0"`
	CORSOrigins    []string      `yaml:"cors_origins" toml:"cors_origins"`
	MetricsEnabled bool          `yaml:"metrics_enabled" toml:"metrics_enabled"`
}

func Default() *Config {
	return &Config{
		LogLevel:        slog.LevelInfo,
		LogFormat:       "json",
		HTTPAddr:        ":8080",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 30 * time.Second,

		TransitAPIURL:     "http://localhost:5000",
		TransitAPITimeout: 15 * time.Second,

		CacheEnabled:         true,
		CacheTTL:             time.Minute,
		CacheWarmOnStart:     true,
		CacheRefreshInterval: 0,

		RedisAddr: "localhost:6379",

		RateLimitPerWindow:      120,
		RateLimitWindow:         time.Minute,
		SessionActionsPerWindow: 600,

		ClockInterval:  time.Second,
		MetricsEnabled: true,
	}
}

// Load builds the configuration. path overrides PathEnv; both may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parsing toml config %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing yaml config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.LogLevel = getLogLevelEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", cfg.LogFormat))
	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.ReadTimeout = getDurationEnv("READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = getDurationEnv("WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.ShutdownTimeout = getDurationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	cfg.TransitAPIURL = getEnv("TRANSIT_API_URL", cfg.TransitAPIURL)
	cfg.TransitAPITimeout = getDurationEnv("TRANSIT_API_TIMEOUT", cfg.TransitAPITimeout)

	cfg.CacheEnabled = getBoolEnv("CACHE_ENABLED", cfg.CacheEnabled)
	cfg.CacheTTL = getDurationEnv("CACHE_TTL", cfg.CacheTTL)
	cfg.CacheWarmOnStart = getBoolEnv("CACHE_WARM_ON_START", cfg.CacheWarmOnStart)
	cfg.CacheRefreshInterval = getDurationEnv("CACHE_REFRESH_INTERVAL", cfg.CacheRefreshInterval)

	cfg.RedisEnabled = getBoolEnv("REDIS_ENABLED", cfg.RedisEnabled)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getIntEnv("REDIS_DB", cfg.RedisDB)

	cfg.RateLimitPerWindow = getIntEnv("RATE_LIMIT_PER_WINDOW", cfg.RateLimitPerWindow)
	cfg.RateLimitWindow = getDurationEnv("RATE_LIMIT_WINDOW", cfg.RateLimitWindow)
	cfg.RateLimitWhitelist = getCSVEnv("RATE_LIMIT_WHITELIST", cfg.RateLimitWhitelist)
	cfg.SessionActionsPerWindow = getIntEnv("SESSION_ACTIONS_PER_WINDOW", cfg.SessionActionsPerWindow)

	cfg.ClockInterval = getDurationEnv("CLOCK_INTERVAL", cfg.ClockInterval)
	cfg.CORSOrigins = getCSVEnv("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.MetricsEnabled = getBoolEnv("METRICS_ENABLED", cfg.MetricsEnabled)
}

// Logger builds the process logger for cfg.
func (c *Config) Logger() *slog.Logger {
	return c.LoggerTo(os.Stdout)
}

func (c *Config) LoggerTo(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getLogLevelEnv(key string, defaultVal slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}

	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return defaultVal
	}
}

func getCSVEnv(key string, defaultVal []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}

	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			result = append(result, t)
		}
	}
	return result
}
