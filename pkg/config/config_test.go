package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "8089" {
		t.Errorf("Expected Port to be 8089, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.Kite.Exchange != "NSE" {
		t.Errorf("Expected Kite exchange NSE, got %s", cfg.Kite.Exchange)
	}

	if cfg.Kite.DerivativesExchange != "NFO" {
		t.Errorf("Expected derivatives exchange NFO, got %s", cfg.Kite.DerivativesExchange)
	}

	if cfg.Cache.Catalog != 24*time.Hour {
		t.Errorf("Expected catalog TTL 24h, got %s", cfg.Cache.Catalog)
	}

	if cfg.Cache.Intraday != 60*time.Second {
		t.Errorf("Expected intraday TTL 60s, got %s", cfg.Cache.Intraday)
	}

	if cfg.Market.DefaultSectorIndex != "NIFTY 50" {
		t.Errorf("Expected default sector NIFTY 50, got %s", cfg.Market.DefaultSectorIndex)
	}

	if cfg.Redis.Enabled {
		t.Error("Expected Redis to be disabled by default")
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("KITE_API_KEY", "key")
	t.Setenv("CACHE_TTL_INTRADAY", "15s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.Kite.APIKey != "key" {
		t.Errorf("Expected Kite API key to be key, got %s", cfg.Kite.APIKey)
	}

	if cfg.Cache.Intraday != 15*time.Second {
		t.Errorf("Expected intraday TTL 15s, got %s", cfg.Cache.Intraday)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LogLevel to be debug, got %s", cfg.LogLevel)
	}
}

func TestValidateInvalidEnv(t *testing.T) {
	t.Setenv("ENV", "invalid")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when ENV is invalid, got nil")
	}
}

func TestValidateInvalidTimezone(t *testing.T) {
	t.Setenv("MARKET_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when MARKET_TIMEZONE is invalid, got nil")
	}
}

func TestValidateNonPositiveTTL(t *testing.T) {
	t.Setenv("CACHE_TTL_DAILY", "0s")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when a cache TTL is zero, got nil")
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{Market: MarketConfig{Timezone: "Asia/Kolkata"}}
	if got := cfg.Location().String(); got != "Asia/Kolkata" {
		t.Errorf("Expected Asia/Kolkata, got %s", got)
	}

	cfg.Market.Timezone = "nowhere"
	if cfg.Location() != time.UTC {
		t.Error("Expected UTC fallback for unknown zone")
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	os.Setenv("TEST_DURATION", "2h")
	defer os.Unsetenv("TEST_DURATION")

	duration := getEnvAsDuration("TEST_DURATION", "1h")
	expected := 2 * time.Hour

	if duration != expected {
		t.Errorf("Expected duration to be %v, got %v", expected, duration)
	}
}

func TestGetEnvAsDurationInvalid(t *testing.T) {
	t.Setenv("TEST_DURATION", "soon")

	if got := getEnvAsDuration("TEST_DURATION", "1m"); got != time.Minute {
		t.Errorf("Expected fallback to 1m, got %v", got)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	os.Setenv("TEST_INT", "100")
	defer os.Unsetenv("TEST_INT")

	value := getEnvAsInt("TEST_INT", 50)
	if value != 100 {
		t.Errorf("Expected value to be 100, got %d", value)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	os.Setenv("TEST_BOOL", "true")
	defer os.Unsetenv("TEST_BOOL")

	value := getEnvAsBool("TEST_BOOL", false)
	if value != true {
		t.Errorf("Expected value to be true, got %v", value)
	}
}
