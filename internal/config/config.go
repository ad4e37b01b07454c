package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "MekongPay"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultMinTopup       = 10_000
	defaultMaxTopup       = 300_000_000
	defaultCurrency       = "VND"
	defaultProviderDelay  = 15 * time.Second

	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration

	// Top-up limits, in the smallest currency unit.
	TopupMinAmount      int64
	TopupMaxAmount      int64
	DefaultCurrency     string
	SupportedCurrencies []string

	// Payment provider (QR gateway) settings.
	ProviderName        string
	ProviderBaseURL     string
	ProviderAPIKey      string
	ProviderAccountNo   string
	ProviderAccountName string
	ProviderTimeout     time.Duration

	// Audit archive settings.
	ArchiveBucket string
	AWSRegion     string
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:             getEnv("APP_NAME", defaultAppName),
		AppEnv:              getEnv("APP_ENV", defaultAppEnv),
		Port:                getEnv("PORT", defaultPort),
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisURL:            os.Getenv("REDIS_URL"),
		ShutdownPeriod:      defaultShutdownDelay,
		IdempotencyTTL:      defaultIdempotencyTTL,
		TopupMinAmount:      defaultMinTopup,
		TopupMaxAmount:      defaultMaxTopup,
		DefaultCurrency:     strings.ToUpper(getEnv("DEFAULT_CURRENCY", defaultCurrency)),
		ProviderName:        getEnv("PROVIDER_NAME", "qrpay"),
		ProviderBaseURL:     os.Getenv("PROVIDER_BASE_URL"),
		ProviderAPIKey:      os.Getenv("PROVIDER_API_KEY"),
		ProviderAccountNo:   os.Getenv("PROVIDER_ACCOUNT_NO"),
		ProviderAccountName: os.Getenv("PROVIDER_ACCOUNT_NAME"),
		ProviderTimeout:     defaultProviderDelay,
		ArchiveBucket:       os.Getenv("ARCHIVE_BUCKET"),
		AWSRegion:           getEnv("AWS_REGION", "ap-southeast-1"),
	}

	supported := getEnv("SUPPORTED_CURRENCIES", cfg.DefaultCurrency)
	for _, code := range strings.Split(supported, ",") {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			cfg.SupportedCurrencies = append(cfg.SupportedCurrencies, code)
		}
	}

	if v := os.Getenv("TOPUP_MIN_AMOUNT"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TOPUP_MIN_AMOUNT: %w", err)
		}
		cfg.TopupMinAmount = n
	}
	if v := os.Getenv("TOPUP_MAX_AMOUNT"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TOPUP_MAX_AMOUNT: %w", err)
		}
		cfg.TopupMaxAmount = n
	}
	if cfg.TopupMinAmount <= 0 || cfg.TopupMaxAmount < cfg.TopupMinAmount {
		return Config{}, fmt.Errorf("top-up limits out of order: min=%d max=%d", cfg.TopupMinAmount, cfg.TopupMaxAmount)
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv(idemTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLSecondsEnvVar, err)
		}
		cfg.IdempotencyTTL = time.Duration(seconds) * time.Second
	}

	if v := os.Getenv("PROVIDER_TIMEOUT_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PROVIDER_TIMEOUT_SECONDS: %w", err)
		}
		cfg.ProviderTimeout = time.Duration(seconds) * time.Second
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// IsDev reports whether the app runs in a development-like environment where
// external dependencies may be replaced with in-memory stand-ins.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// ProviderConfigured reports whether the payment gateway credentials are present.
func (c Config) ProviderConfigured() bool {
	return c.ProviderBaseURL != "" && c.ProviderAPIKey != ""
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
