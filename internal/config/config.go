package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	API       APIConfig
	Retry     RetryConfig
	Cache     CacheConfig
	Redis     RedisConfig
	App       AppConfig
	RateLimit RateLimitConfig
	Logger    LoggerConfig
}

// APIConfig holds configuration for the remote user API
type APIConfig struct {
	BaseURL        string `mapstructure:"API_BASE_URL"`
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// RetryConfig holds configuration for the retry policy
type RetryConfig struct {
	MaxRetries int `mapstructure:"RETRY_MAX_RETRIES"`
	Delay      time.Duration
}

// CacheConfig holds configuration for the response cache
type CacheConfig struct {
	Enabled bool `mapstructure:"CACHE_ENABLED"`
	TTL     time.Duration
}

// RedisConfig holds configuration for Redis
type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
	PoolSize int    `mapstructure:"REDIS_POOL_SIZE"`
}

// AppConfig holds configuration for the application
type AppConfig struct {
	HTTPPort        string `mapstructure:"HTTP_PORT"`
	DemoUserID      string `mapstructure:"DEMO_USER_ID"`
	ShutdownTimeout time.Duration
}

// RateLimitConfig holds configuration for the gateway rate limiter
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `mapstructure:"RATE_LIMIT_RPS"`
	BurstCapacity     int     `mapstructure:"RATE_LIMIT_BURST"`
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level          string `mapstructure:"LOG_LEVEL"`
	Format         string `mapstructure:"LOG_FORMAT"`
	OutputPath     string `mapstructure:"LOG_OUTPUT_PATH"`
	EnableSampling bool   `mapstructure:"LOG_ENABLE_SAMPLING"`
	MaxSizeMB      int    `mapstructure:"LOG_MAX_SIZE_MB"`
	MaxBackups     int    `mapstructure:"LOG_MAX_BACKUPS"`
	MaxAgeDays     int    `mapstructure:"LOG_MAX_AGE_DAYS"`
	ServiceName    string `mapstructure:"SERVICE_NAME"`
	ServiceVersion string `mapstructure:"SERVICE_VERSION"`
	Environment    string `mapstructure:"APP_ENV"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv() // Read from environment variables
	v.AllowEmptyEnv(true)

	// Set defaults first
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("app") // Look for app.env
	v.SetConfigType("env")

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if we have env vars
	}

	var config Config

	// Manually populate config from viper
	timeout := v.GetInt64("API_TIMEOUT_MS")
	config.API.BaseURL = v.GetString("API_BASE_URL")
	config.API.ConnectTimeout = millis(v, "API_CONNECT_TIMEOUT_MS", timeout)
	config.API.ReadTimeout = millis(v, "API_READ_TIMEOUT_MS", timeout)
	config.API.WriteTimeout = millis(v, "API_WRITE_TIMEOUT_MS", timeout)

	config.Retry.MaxRetries = v.GetInt("RETRY_MAX_RETRIES")
	config.Retry.Delay = time.Duration(v.GetInt64("RETRY_DELAY_MS")) * time.Millisecond

	config.Cache.Enabled = v.GetBool("CACHE_ENABLED")
	config.Cache.TTL = time.Duration(v.GetInt64("CACHE_TTL_SECONDS")) * time.Second

	config.Redis.Host = v.GetString("REDIS_HOST")
	config.Redis.Port = v.GetString("REDIS_PORT")
	config.Redis.Password = v.GetString("REDIS_PASSWORD")
	config.Redis.DB = v.GetInt("REDIS_DB")
	config.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")

	config.App.HTTPPort = v.GetString("HTTP_PORT")
	config.App.DemoUserID = v.GetString("DEMO_USER_ID")
	config.App.ShutdownTimeout = time.Duration(v.GetInt64("SHUTDOWN_TIMEOUT_SECONDS")) * time.Second

	config.RateLimit.Enabled = v.GetBool("RATE_LIMIT_ENABLED")
	config.RateLimit.RequestsPerSecond = v.GetFloat64("RATE_LIMIT_RPS")
	config.RateLimit.BurstCapacity = v.GetInt("RATE_LIMIT_BURST")

	config.Logger.Level = v.GetString("LOG_LEVEL")
	config.Logger.Format = v.GetString("LOG_FORMAT")
	config.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	config.Logger.EnableSampling = v.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.MaxSizeMB = v.GetInt("LOG_MAX_SIZE_MB")
	config.Logger.MaxBackups = v.GetInt("LOG_MAX_BACKUPS")
	config.Logger.MaxAgeDays = v.GetInt("LOG_MAX_AGE_DAYS")
	config.Logger.ServiceName = v.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = v.GetString("SERVICE_VERSION")
	config.Logger.Environment = v.GetString("APP_ENV")

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// millis reads key as milliseconds, falling back to def when unset.
func millis(v *viper.Viper, key string, def int64) time.Duration {
	ms := def
	if v.IsSet(key) {
		ms = v.GetInt64(key)
	}
	return time.Duration(ms) * time.Millisecond
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("API_TIMEOUT_MS", 5000)

	v.SetDefault("RETRY_MAX_RETRIES", 3)
	v.SetDefault("RETRY_DELAY_MS", 100)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("CACHE_TTL_SECONDS", 60)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)

	v.SetDefault("HTTP_PORT", "8081")
	v.SetDefault("DEMO_USER_ID", "1")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)

	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)

	// Logger defaults
	v.SetDefault("APP_ENV", "development")
	env := v.GetString("APP_ENV")
	if env == "production" {
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LOG_FORMAT", "json")
		v.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		v.SetDefault("LOG_LEVEL", "debug")
		v.SetDefault("LOG_FORMAT", "console")
		v.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE_DAYS", 28)
	v.SetDefault("SERVICE_NAME", "user-webclient")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API_BASE_URL %q", c.API.BaseURL)
	}
	if c.API.ConnectTimeout <= 0 || c.API.ReadTimeout <= 0 || c.API.WriteTimeout <= 0 {
		return errors.New("API timeouts must be positive")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("RETRY_MAX_RETRIES must not be negative, got %d", c.Retry.MaxRetries)
	}
	if c.Retry.Delay < 0 {
		return fmt.Errorf("RETRY_DELAY_MS must not be negative, got %s", c.Retry.Delay)
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return errors.New("CACHE_TTL_SECONDS must be positive when the cache is enabled")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.BurstCapacity <= 0) {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}
	return nil
}
