package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weath3r-terminal/internal/chat"
	"github.com/i474232898/weath3r-terminal/internal/market"
	"github.com/i474232898/weath3r-terminal/internal/providers"
)

type AppConfig struct {
	Port           string
	LogLevel       string
	AllowedOrigins string

	// HTTPTimeout bounds every outbound upstream call.
	HTTPTimeout time.Duration
	Retry       providers.RetryConfig

	GammaBaseURL   string
	GammaUserAgent string
	EventQuery     providers.EventQuery

	// Market cache and board.
	CacheTTL          time.Duration
	CacheCoalesce     bool
	CacheWarmInterval time.Duration // 0 disables the warmer
	MaxCards          int
	Taxonomy          market.Taxonomy

	OpenMeteoGeocodingURL string
	OpenMeteoForecastURL  string
	BigDataCloudURL       string
	GeocoderAPIKey        string // Google fallback geocoder, optional

	Chat chat.Config
}

// fileConfig is the optional YAML overlay. Only keys that are present
// override the environment.
type fileConfig struct {
	Gamma struct {
		Active  *bool   `yaml:"active"`
		Closed  *bool   `yaml:"closed"`
		Limit   *int    `yaml:"limit"`
		TagSlug *string `yaml:"tag_slug"`
	} `yaml:"gamma"`
	Taxonomy market.Taxonomy `yaml:"taxonomy"`
}

// Load reads configuration from environment with sensible defaults, then
// applies CONFIG_FILE if set.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file found, using environment variables")
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.AllowedOrigins = getenvDefault("CORS_ALLOW_ORIGINS", "*")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "15s"); err != nil {
		return nil, err
	}

	cfg.Retry.MaxRetries = getenvInt("UPSTREAM_RETRIES", providers.DefaultRetry.MaxRetries)
	if cfg.Retry.Step, err = getenvDuration("UPSTREAM_RETRY_STEP", providers.DefaultRetry.Step.String()); err != nil {
		return nil, err
	}

	cfg.GammaBaseURL = getenvDefault("GAMMA_BASE_URL", providers.DefaultGammaBaseURL)
	cfg.GammaUserAgent = getenvDefault("GAMMA_USER_AGENT", providers.DefaultUserAgent)
	cfg.EventQuery = providers.DefaultEventQuery()
	cfg.EventQuery.Limit = getenvInt("GAMMA_LIMIT", cfg.EventQuery.Limit)
	cfg.EventQuery.TagSlug = getenvDefault("GAMMA_TAG_SLUG", cfg.EventQuery.TagSlug)

	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", "60s"); err != nil {
		return nil, err
	}
	cfg.CacheCoalesce = getenvBool("CACHE_COALESCE", true)
	if cfg.CacheWarmInterval, err = getenvDuration("CACHE_WARM_INTERVAL", defaultWarmInterval(cfg.CacheTTL).String()); err != nil {
		return nil, err
	}
	cfg.MaxCards = getenvInt("MAX_CARDS", market.DefaultMaxCards)
	cfg.Taxonomy = market.DefaultTaxonomy()

	cfg.OpenMeteoGeocodingURL = getenvDefault("OPENMETEO_GEOCODING_URL", providers.DefaultOpenMeteoGeocodingURL)
	cfg.OpenMeteoForecastURL = getenvDefault("OPENMETEO_FORECAST_URL", providers.DefaultOpenMeteoForecastURL)
	cfg.BigDataCloudURL = getenvDefault("BIGDATACLOUD_URL", providers.DefaultBigDataCloudURL)
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	cfg.Chat = chat.Config{
		APIKey:   os.Getenv("OPENROUTER_API_KEY"),
		BaseURL:  getenvDefault("CHAT_BASE_URL", chat.DefaultBaseURL),
		Model:    getenvDefault("CHAT_MODEL", chat.DefaultModel),
		Referer:  getenvDefault("CHAT_REFERER", "http://localhost:3000"),
		Title:    getenvDefault("CHAT_TITLE", chat.DefaultTitle),
		Language: getenvDefault("CHAT_LANGUAGE", chat.DefaultLanguage),
	}
	if cfg.Chat.Timeout, err = getenvDuration("CHAT_TIMEOUT", "60s"); err != nil {
		return nil, err
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Gamma.Active != nil {
		c.EventQuery.Active = *fc.Gamma.Active
	}
	if fc.Gamma.Closed != nil {
		c.EventQuery.Closed = *fc.Gamma.Closed
	}
	if fc.Gamma.Limit != nil {
		c.EventQuery.Limit = *fc.Gamma.Limit
	}
	if fc.Gamma.TagSlug != nil {
		c.EventQuery.TagSlug = *fc.Gamma.TagSlug
	}

	if len(fc.Taxonomy.TemperatureInclude) > 0 {
		c.Taxonomy.TemperatureInclude = fc.Taxonomy.TemperatureInclude
	}
	if len(fc.Taxonomy.TemperatureExclude) > 0 {
		c.Taxonomy.TemperatureExclude = fc.Taxonomy.TemperatureExclude
	}
	if len(fc.Taxonomy.HazardInclude) > 0 {
		c.Taxonomy.HazardInclude = fc.Taxonomy.HazardInclude
	}

	log.Info().Str("path", path).Msg("applied config file")
	return nil
}

// defaultWarmInterval refills the cache just before each entry expires.
func defaultWarmInterval(ttl time.Duration) time.Duration {
	return ttl - ttl/10
}

func (c *AppConfig) validate() error {
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("invalid UPSTREAM_RETRIES: must be >= 0")
	}
	if c.Retry.MaxRetries > 0 && c.Retry.Step <= 0 {
		return fmt.Errorf("invalid UPSTREAM_RETRY_STEP: must be > 0 when retries are enabled")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("invalid CACHE_TTL: must be > 0")
	}
	if c.CacheWarmInterval < 0 {
		return fmt.Errorf("invalid CACHE_WARM_INTERVAL: must be >= 0")
	}
	if c.MaxCards <= 0 {
		return fmt.Errorf("invalid MAX_CARDS: must be > 0")
	}
	if c.EventQuery.Limit <= 0 {
		return fmt.Errorf("invalid gamma limit: must be > 0")
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
