// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Vision    VisionConfig    `mapstructure:"vision"`
	Recipes   RecipesConfig   `mapstructure:"recipes"`
	Nutrition NutritionConfig `mapstructure:"nutrition"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	EnableCORS      bool          `mapstructure:"enable_cors"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// VisionConfig contains the ingredient detection backend configuration.
// The workflow identifiers name the serverless detection workflow the
// backend runs for each image.
type VisionConfig struct {
	APIKey              string        `mapstructure:"api_key"`
	BaseURL             string        `mapstructure:"base_url"`
	Workspace           string        `mapstructure:"workspace"`
	WorkflowID          string        `mapstructure:"workflow_id"`
	ConfidenceThreshold float64       `mapstructure:"confidence_threshold"`
	MaxAttempts         int           `mapstructure:"max_attempts"`
	RetryBaseWait       time.Duration `mapstructure:"retry_base_wait"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// RecipesConfig contains the recipe search backend configuration
type RecipesConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// NutritionConfig contains the nutrient lookup backend configuration
type NutritionConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	PageSize int           `mapstructure:"page_size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// CacheConfig controls the read-through cache for nutrition lookups
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"` // memory or redis
	TTL      time.Duration `mapstructure:"ttl"`
	Redis    RedisConfig   `mapstructure:"redis"`
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enable         bool `mapstructure:"enable"`
	RequestsPerMin int  `mapstructure:"requests_per_min"`
	BurstSize      int  `mapstructure:"burst_size"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/ai-food")
	}

	// Enable environment variable override, e.g. AIFOOD_VISION_API_KEY
	v.SetEnvPrefix("AIFOOD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "ai-food")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "60s")
	// Request timeout must leave room for the worst-case cold-start
	// schedule (5s + 10s waits plus three attempts).
	v.SetDefault("server.request_timeout", "90s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.enable_cors", true)

	// Vision defaults. API keys default to empty so the AIFOOD_* env
	// override is visible to Unmarshal.
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.base_url", "https://detect.roboflow.com")
	v.SetDefault("vision.workspace", "food-69lly")
	v.SetDefault("vision.workflow_id", "detect-ingredients")
	v.SetDefault("vision.confidence_threshold", 0.5)
	v.SetDefault("vision.max_attempts", 3)
	v.SetDefault("vision.retry_base_wait", "5s")
	v.SetDefault("vision.timeout", "30s")

	// Recipe search defaults
	v.SetDefault("recipes.api_key", "")
	v.SetDefault("recipes.base_url", "https://api.spoonacular.com")
	v.SetDefault("recipes.timeout", "15s")

	// Nutrition lookup defaults
	v.SetDefault("nutrition.api_key", "")
	v.SetDefault("nutrition.base_url", "https://api.nal.usda.gov/fdc/v1")
	v.SetDefault("nutrition.page_size", 1)
	v.SetDefault("nutrition.timeout", "15s")

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.host", "localhost")
	v.SetDefault("cache.redis.port", 6379)
	v.SetDefault("cache.redis.database", 0)

	// Rate limit defaults
	v.SetDefault("rate_limit.enable", false)
	v.SetDefault("rate_limit.requests_per_min", 60)
	v.SetDefault("rate_limit.burst_size", 10)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	if c.Vision.ConfidenceThreshold < 0.0 || c.Vision.ConfidenceThreshold > 1.0 {
		return fmt.Errorf("vision.confidence_threshold must be between 0.0 and 1.0")
	}

	if c.Vision.MaxAttempts < 1 {
		return fmt.Errorf("vision.max_attempts must be at least 1")
	}

	switch c.Cache.Provider {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.provider must be memory or redis")
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// RedisAddr returns the Redis connection address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Cache.Redis.Host, c.Cache.Redis.Port)
}
