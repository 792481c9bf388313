package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Serp      SerpConfig
	ImageHost ImageHostConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Market    MarketConfig
	Reconcile ReconcileConfig
	LLM       LLMConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SerpConfig holds the search API configuration (visual identification and
// shopping search share the same upstream)
type SerpConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// ImageHostConfig holds the image-hosting collaborator configuration
type ImageHostConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
	Serp  int `mapstructure:"serp"` // upstream requests per hour
}

// MarketConfig fixes the target market: currency, region hint, and the
// seller trust tables. The tables are loaded once here and injected into the
// reconciliation engine; the engine never reads globals.
type MarketConfig struct {
	Currency         string   `mapstructure:"currency"`
	CurrencySymbol   string   `mapstructure:"currency_symbol"`
	Region           string   `mapstructure:"region"`
	TrustedDomains   []string `mapstructure:"trusted_domains"`
	BlockedDomains   []string `mapstructure:"blocked_domains"`
	RegionalSuffixes []string `mapstructure:"regional_suffixes"`
}

// ReconcileConfig holds the tunable reconciliation policy knobs
type ReconcileConfig struct {
	// OptimisticStock flips the no-signal/no-price default from
	// out-of-stock to in-stock.
	OptimisticStock bool `mapstructure:"optimistic_stock"`
	MaxAlternates   int  `mapstructure:"max_alternates"`
	ExtraAlternates int  `mapstructure:"extra_alternates"`
}

// LLMConfig holds the optional language-model name-cleanup configuration
type LLMConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricelens/")

	// Environment variable settings (PRICELENS_SERP_API_KEY -> serp.api_key)
	v.SetEnvPrefix("PRICELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Search API defaults. Secrets default to empty so the env override
	// path is registered with viper.
	v.SetDefault("serp.api_key", "")
	v.SetDefault("serp.base_url", "https://serpapi.com")

	// Image host defaults
	v.SetDefault("imagehost.api_key", "")
	v.SetDefault("imagehost.base_url", "https://api.imgbb.com")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)
	v.SetDefault("ratelimit.serp", 1000)

	// Market defaults: Indian retail market, INR
	v.SetDefault("market.currency", "INR")
	v.SetDefault("market.currency_symbol", "₹")
	v.SetDefault("market.region", "in")
	v.SetDefault("market.trusted_domains", []string{
		"amazon.in", "flipkart.com", "croma.com", "reliancedigital.in",
		"tatacliq.com", "vijaysales.com", "boat-lifestyle.com", "myntra.com",
		"snapdeal.com", "jiomart.com",
	})
	v.SetDefault("market.blocked_domains", []string{
		"aliexpress.com", "alibaba.com", "wish.com", "banggood.com",
		"temu.com", "dhgate.com", "ebay.com",
	})
	v.SetDefault("market.regional_suffixes", []string{".in", ".co.in"})

	// Reconciliation defaults
	v.SetDefault("reconcile.optimistic_stock", false)
	v.SetDefault("reconcile.max_alternates", 5)
	v.SetDefault("reconcile.extra_alternates", 3)

	// LLM name cleanup is opt-in
	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Serp.APIKey == "" {
		return fmt.Errorf("search API key is required (set PRICELENS_SERP_API_KEY)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.LLM.Enabled && config.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key is required when llm.enabled is true (set PRICELENS_LLM_API_KEY)")
	}

	return nil
}
