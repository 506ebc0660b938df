package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig
	CJ     CJConfig
	Feed   FeedConfig
	Log    LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CJConfig holds CJdropshipping API configuration
type CJConfig struct {
	AccessToken string        `mapstructure:"access_token"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	// RequestsPerSecond paces outbound calls; 0 leaves them unthrottled
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// FeedConfig holds defaults applied while building the feed
type FeedConfig struct {
	DefaultPageSize int    `mapstructure:"default_page_size"`
	MaxPageSize     int    `mapstructure:"max_page_size"`
	DefaultVendor   string `mapstructure:"default_vendor"`
	DefaultCurrency string `mapstructure:"default_currency"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/cjfeed/")

	// CJFEED_CJ_ACCESS_TOKEN -> cj.access_token
	v.SetEnvPrefix("CJFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The token also answers to the plain CJ_TOKEN variable
	if err := v.BindEnv("cj.access_token", "CJFEED_CJ_ACCESS_TOKEN", "CJ_TOKEN"); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory if one exists.
// Variables already present in the environment are never overridden.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", "10s")

	// CJ defaults
	v.SetDefault("cj.base_url", "https://developers.cjdropshipping.com/api2.0")
	v.SetDefault("cj.timeout", "30s")
	v.SetDefault("cj.requests_per_second", 0)
	v.SetDefault("cj.burst", 1)

	// Feed defaults
	v.SetDefault("feed.default_page_size", 50)
	v.SetDefault("feed.max_page_size", 200)
	v.SetDefault("feed.default_vendor", "CJdropshipping")
	v.SetDefault("feed.default_currency", "USD")

	v.SetDefault("log.level", "info")
}

// validate validates the configuration.
// A missing access token is not an error here: the service still starts and
// every feed request reports the missing credential instead.
func validate(config *Config) error {
	switch config.Server.Environment {
	case "development", "test", "production":
	default:
		return fmt.Errorf("environment must be 'development', 'test' or 'production', got: %s", config.Server.Environment)
	}

	u, err := url.Parse(config.CJ.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("CJ base URL must be an absolute URL, got: %q", config.CJ.BaseURL)
	}

	if config.CJ.Timeout <= 0 {
		return fmt.Errorf("CJ timeout must be positive, got: %s", config.CJ.Timeout)
	}

	if config.CJ.RequestsPerSecond < 0 {
		return fmt.Errorf("CJ requests per second cannot be negative, got: %v", config.CJ.RequestsPerSecond)
	}

	if config.Feed.DefaultPageSize < 1 {
		return fmt.Errorf("default page size must be at least 1, got: %d", config.Feed.DefaultPageSize)
	}

	if config.Feed.MaxPageSize < config.Feed.DefaultPageSize {
		return fmt.Errorf("max page size (%d) cannot be below default page size (%d)",
			config.Feed.MaxPageSize, config.Feed.DefaultPageSize)
	}

	return nil
}

// HasAccessToken reports whether a CJ access token was configured
func (c *Config) HasAccessToken() bool {
	return c.CJ.AccessToken != ""
}
