package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Redis
	Redis RedisConfig

	// External APIs
	Kite KiteConfig
	News NewsConfig

	// Market
	Market MarketConfig

	// Cache TTLs
	Cache CacheConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// KiteConfig holds Kite Connect (Zerodha) API configuration
type KiteConfig struct {
	APIKey              string
	APISecret           string
	AccessToken         string
	BaseURL             string
	Exchange            string // 현물 거래소 (NSE)
	DerivativesExchange string // 선물 거래소 (NFO)
	Retry               bool
}

// NewsConfig holds headline / corporate-actions feed configuration
type NewsConfig struct {
	FTAPIKey            string
	FTSearchURL         string
	CorporateActionsURL string
}

// MarketConfig holds market presentation settings
type MarketConfig struct {
	Timezone           string
	WatchlistFile      string
	DefaultSectorIndex string
	IntradayInterval   string
	RefreshInterval    time.Duration
}

// CacheConfig holds per-operation cache TTLs
type CacheConfig struct {
	Catalog  time.Duration
	Intraday time.Duration
	Daily    time.Duration
	Quote    time.Duration
	News     time.Duration
	Events   time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External APIs
		Kite: KiteConfig{
			APIKey:              getEnv("KITE_API_KEY", ""),
			APISecret:           getEnv("KITE_API_SECRET", ""),
			AccessToken:         getEnv("KITE_ACCESS_TOKEN", ""),
			BaseURL:             getEnv("KITE_BASE_URL", "https://api.kite.trade"),
			Exchange:            getEnv("KITE_EXCHANGE", "NSE"),
			DerivativesExchange: getEnv("KITE_DERIVATIVES_EXCHANGE", "NFO"),
			Retry:               getEnvAsBool("KITE_RETRY", true),
		},

		News: NewsConfig{
			FTAPIKey:            getEnv("FT_NEWS_API_KEY", ""),
			FTSearchURL:         getEnv("FT_NEWS_SEARCH_URL", "https://api.ft.com/content/search/v1"),
			CorporateActionsURL: getEnv("CORPORATE_ACTIONS_URL", ""),
		},

		Market: MarketConfig{
			Timezone:           getEnv("MARKET_TIMEZONE", "Asia/Kolkata"),
			WatchlistFile:      getEnv("WATCHLIST_FILE", "watchlist.yaml"),
			DefaultSectorIndex: getEnv("DEFAULT_SECTOR_INDEX", "NIFTY 50"),
			IntradayInterval:   getEnv("INTRADAY_INTERVAL", "5minute"),
			RefreshInterval:    getEnvAsDuration("WATCHLIST_REFRESH", "30s"),
		},

		Cache: CacheConfig{
			Catalog:  getEnvAsDuration("CACHE_TTL_CATALOG", "24h"),
			Intraday: getEnvAsDuration("CACHE_TTL_INTRADAY", "60s"),
			Daily:    getEnvAsDuration("CACHE_TTL_DAILY", "30m"),
			Quote:    getEnvAsDuration("CACHE_TTL_QUOTE", "60s"),
			News:     getEnvAsDuration("CACHE_TTL_NEWS", "5m"),
			Events:   getEnvAsDuration("CACHE_TTL_EVENTS", "1h"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Location returns the market presentation timezone.
// validate() guarantees it loads; UTC is returned for hand-built configs.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Market.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		return fmt.Errorf("MARKET_TIMEZONE %q: %w", c.Market.Timezone, err)
	}

	ttls := map[string]time.Duration{
		"CACHE_TTL_CATALOG":  c.Cache.Catalog,
		"CACHE_TTL_INTRADAY": c.Cache.Intraday,
		"CACHE_TTL_DAILY":    c.Cache.Daily,
		"CACHE_TTL_QUOTE":    c.Cache.Quote,
		"CACHE_TTL_NEWS":     c.Cache.News,
		"CACHE_TTL_EVENTS":   c.Cache.Events,
	}
	for key, ttl := range ttls {
		if ttl <= 0 {
			return fmt.Errorf("%s must be positive, got %s", key, ttl)
		}
	}

	if c.Market.RefreshInterval <= 0 {
		return fmt.Errorf("WATCHLIST_REFRESH must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
