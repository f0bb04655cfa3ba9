// Package config loads godswood settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/godswood/pkg/forest"
	"github.com/matzehuels/godswood/pkg/tree"
)

// Config is the top-level settings file.
type Config struct {
	Layout Layout `toml:"layout"`
	Log    Log    `toml:"log"`
	Server Server `toml:"server"`
	Cache  Cache  `toml:"cache"`
}

// Layout holds the renderer units handed to every tree.
type Layout struct {
	BaseScale float64 `toml:"base_scale"`
	BaseGap   float64 `toml:"base_gap"`
}

// Log selects the log level: debug, info, warn or error.
type Log struct {
	Level string `toml:"level"`
}

// Server configures the query API.
type Server struct {
	Addr            string        `toml:"addr"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	MaxBodyBytes    int64         `toml:"max_body_bytes"`
}

// Cache configures the layout cache. An empty RedisAddr disables caching.
type Cache struct {
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	TTL           time.Duration `toml:"ttl"`
	Prefix        string        `toml:"prefix"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// Load reads the file at path, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// Parse decodes TOML text, applies defaults and validates the result.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func Parse(data string) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	applyDefaults(&cfg)
	normalize(&cfg)

	if err := validateLayout(&cfg); err != nil {
		return nil, err
	}
	if err := validateLog(&cfg); err != nil {
		return nil, err
	}
	if err := validateServer(&cfg); err != nil {
		return nil, err
	}
	if err := validateCache(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Layout.BaseScale == 0 {
		cfg.Layout.BaseScale = tree.DefaultBaseScale
	}
	if cfg.Layout.BaseGap == 0 {
		cfg.Layout.BaseGap = tree.DefaultBaseGap
	}

	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = "info"
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 5 * time.Second
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 8 << 20
	}

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = time.Hour
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = "godswood:"
	}
}

func normalize(cfg *Config) {
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Server.Addr = strings.TrimSpace(cfg.Server.Addr)
	cfg.Cache.RedisAddr = strings.TrimSpace(cfg.Cache.RedisAddr)
}

func validateLayout(cfg *Config) error {
	if cfg.Layout.BaseScale < 0 {
		return fmt.Errorf("layout.base_scale must be positive, got %v", cfg.Layout.BaseScale)
	}
	if cfg.Layout.BaseGap < 0 {
		return fmt.Errorf("layout.base_gap must be positive, got %v", cfg.Layout.BaseGap)
	}
	return nil
}

func validateLog(cfg *Config) error {
	if _, err := log.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

func validateServer(cfg *Config) error {
	if cfg.Server.ReadTimeout < 0 || cfg.Server.WriteTimeout < 0 || cfg.Server.ShutdownTimeout < 0 {
		return errors.New("server timeouts must not be negative")
	}
	if cfg.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must be positive, got %d", cfg.Server.MaxBodyBytes)
	}
	return nil
}

func validateCache(cfg *Config) error {
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", cfg.Cache.TTL)
	}
	if cfg.Cache.RedisDB < 0 {
		return fmt.Errorf("cache.redis_db must not be negative, got %d", cfg.Cache.RedisDB)
	}
	return nil
}

// LogLevel returns the parsed log level. Load has already validated it.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// ForestOptions returns the layout settings as forest options.
func (c *Config) ForestOptions(logger *log.Logger) forest.Options {
	return forest.Options{
		BaseScale: c.Layout.BaseScale,
		BaseGap:   c.Layout.BaseGap,
		Logger:    logger,
	}
}
