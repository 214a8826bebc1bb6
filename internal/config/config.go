package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfig reports an invalid configuration value.
var ErrConfig = errors.New("invalid config")

const (
	DefaultPort           = 8080
	DefaultMaxCacheLength = 1000
	DefaultGracePeriod    = 3 * time.Second
)

type Config struct {
	Port           int
	MaxCacheLength int
	GracePeriod    time.Duration
	LogLevel       slog.Level
	MetricsAddr    string
}

type fileConfig struct {
	Port           yaml.Node `yaml:"port"`
	MaxCacheLength *int      `yaml:"maxCacheLength"`
	GracePeriod    string    `yaml:"gracePeriod"`
	LogLevel       string    `yaml:"logLevel"`
	MetricsAddr    string    `yaml:"metricsAddr"`
}

func Default() Config {
	return Config{
		Port:           DefaultPort,
		MaxCacheLength: DefaultMaxCacheLength,
		GracePeriod:    DefaultGracePeriod,
		LogLevel:       slog.LevelInfo,
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when path
// is empty) and environment overrides, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.applyFile(data); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}

	if fc.Port.Kind != 0 {
		port, err := portFromNode(&fc.Port)
		if err != nil {
			return err
		}
		c.Port = port
	}
	if fc.MaxCacheLength != nil {
		c.MaxCacheLength = *fc.MaxCacheLength
	}
	if fc.GracePeriod != "" {
		d, err := time.ParseDuration(fc.GracePeriod)
		if err != nil {
			return fmt.Errorf("%w: gracePeriod: %w", ErrConfig, err)
		}
		c.GracePeriod = d
	}
	if fc.LogLevel != "" {
		level, err := ParseLevel(fc.LogLevel)
		if err != nil {
			return err
		}
		c.LogLevel = level
	}
	if fc.MetricsAddr != "" {
		c.MetricsAddr = fc.MetricsAddr
	}
	return nil
}

// portFromNode accepts only integer ports. A string value would name a unix
// socket or windows pipe, which this server does not listen on.
func portFromNode(n *yaml.Node) (int, error) {
	if n.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("%w: port is not a number", ErrConfig)
	}
	switch n.ShortTag() {
	case "!!int":
		var port int
		if err := n.Decode(&port); err != nil {
			return 0, fmt.Errorf("%w: port: %w", ErrConfig, err)
		}
		return port, nil
	case "!!str":
		return 0, fmt.Errorf("%w: port %q: unix socket or windows pipe not supported", ErrConfig, n.Value)
	default:
		return 0, fmt.Errorf("%w: port is not a number", ErrConfig)
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PORT %q: unix socket or windows pipe not supported", ErrConfig, v)
		}
		c.Port = port
	}
	if v, ok := lookup("MAX_CACHE_LENGTH"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: MAX_CACHE_LENGTH: %w", ErrConfig, err)
		}
		c.MaxCacheLength = n
	}
	if v, ok := lookup("GRACE_PERIOD"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: GRACE_PERIOD: %w", ErrConfig, err)
		}
		c.GracePeriod = d
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		level, err := ParseLevel(v)
		if err != nil {
			return err
		}
		c.LogLevel = level
	}
	if v, ok := lookup("METRICS_ADDR"); ok && v != "" {
		c.MetricsAddr = v
	}
	return nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d is not a valid TCP port", ErrConfig, c.Port)
	}
	if c.MaxCacheLength <= 0 {
		return fmt.Errorf("%w: maxCacheLength must be positive, got %d", ErrConfig, c.MaxCacheLength)
	}
	if c.GracePeriod <= 0 {
		return fmt.Errorf("%w: gracePeriod must be positive, got %s", ErrConfig, c.GracePeriod)
	}
	return nil
}

// ParseLevel maps debug, info, warn and error to their slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrConfig, s)
	}
	return level, nil
}
