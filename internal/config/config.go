package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures everything shopdeck needs at startup.
type Config struct {
	APIURL            string        `mapstructure:"api_url"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	DashboardInterval time.Duration `mapstructure:"dashboard_interval"`
	OrdersInterval    time.Duration `mapstructure:"orders_interval"`
	MessagesInterval  time.Duration `mapstructure:"messages_interval"`
	ProductsLimit     int           `mapstructure:"products_limit"`
	LogLevel          string        `mapstructure:"log_level"`
	LogFormat         string        `mapstructure:"log_format"`
	LogFile           string        `mapstructure:"log_file"`
}

const (
	envPrefix         = "SHOPDECK"
	defaultConfigPath = "~/.config/shopdeck/config.toml"

	defaultAPIURL            = "127.0.0.1:8000"
	defaultRequestTimeout    = 10 * time.Second
	defaultDashboardInterval = 60 * time.Second
	defaultOrdersInterval    = 30 * time.Second
	defaultMessagesInterval  = 30 * time.Second
	defaultProductsLimit     = 20
	defaultLogLevel          = "info"
	defaultLogFormat         = "console"
	defaultLogFile           = "~/.local/state/shopdeck/shopdeck.log"
)

// Default returns the configuration used when no file or env overrides exist.
func Default() Config {
	return Config{
		APIURL:            defaultAPIURL,
		RequestTimeout:    defaultRequestTimeout,
		DashboardInterval: defaultDashboardInterval,
		OrdersInterval:    defaultOrdersInterval,
		MessagesInterval:  defaultMessagesInterval,
		ProductsLimit:     defaultProductsLimit,
		LogLevel:          defaultLogLevel,
		LogFormat:         defaultLogFormat,
		LogFile:           mustExpand(defaultLogFile),
	}
}

// Load reads the TOML config at path (or the default location), applies
// SHOPDECK_* environment overrides, and falls back to defaults when the
// file is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("api_url", defaultAPIURL)
	v.SetDefault("request_timeout", defaultRequestTimeout)
	v.SetDefault("dashboard_interval", defaultDashboardInterval)
	v.SetDefault("orders_interval", defaultOrdersInterval)
	v.SetDefault("messages_interval", defaultMessagesInterval)
	v.SetDefault("products_limit", defaultProductsLimit)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("log_format", defaultLogFormat)
	v.SetDefault("log_file", defaultLogFile)

	v.SetConfigFile(resolved)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// normalize trims values, restores defaults for blanks and rejects nonsense.
func (c *Config) normalize() error {
	c.APIURL = strings.TrimSpace(c.APIURL)
	if c.APIURL == "" {
		c.APIURL = defaultAPIURL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	for name, d := range map[string]time.Duration{
		"dashboard_interval": c.DashboardInterval,
		"orders_interval":    c.OrdersInterval,
		"messages_interval":  c.MessagesInterval,
	} {
		// Zero is allowed and means fetch once per visit.
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, d)
		}
	}
	if c.ProductsLimit <= 0 {
		c.ProductsLimit = defaultProductsLimit
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat == "" {
		c.LogFormat = defaultLogFormat
	}

	c.LogFile = strings.TrimSpace(c.LogFile)
	switch c.LogFile {
	case "":
		c.LogFile = mustExpand(defaultLogFile)
	case "stdout", "stderr":
	default:
		expanded, err := expandPath(c.LogFile)
		if err != nil {
			return fmt.Errorf("log_file: %w", err)
		}
		c.LogFile = expanded
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
