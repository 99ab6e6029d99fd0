package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpapi "github.com/i474232898/weath3r-terminal/internal/api/http"
	"github.com/i474232898/weath3r-terminal/internal/chat"
	"github.com/i474232898/weath3r-terminal/internal/config"
	"github.com/i474232898/weath3r-terminal/internal/market"
	"github.com/i474232898/weath3r-terminal/internal/providers"
	"github.com/i474232898/weath3r-terminal/internal/scheduler"
	"github.com/i474232898/weath3r-terminal/internal/store"
	"github.com/i474232898/weath3r-terminal/internal/weather"
)

const serviceName = "weath3r-terminal"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Market board: Gamma -> single-slot cache -> classifier.
	gamma := providers.NewGammaProvider(providers.GammaConfig{
		BaseURL:   cfg.GammaBaseURL,
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.GammaUserAgent,
		Retry:     cfg.Retry,
		Query:     cfg.EventQuery,
	})
	cache := store.NewEventCache(gamma, cfg.CacheTTL, store.WithCoalescing(cfg.CacheCoalesce))
	markets := market.NewService(cache, cfg.Taxonomy, cfg.MaxCards)

	// Weather panel. Google geocoding is only a fallback and needs a key.
	openMeteo := providers.NewOpenMeteoProvider(providers.OpenMeteoConfig{
		GeocodingURL: cfg.OpenMeteoGeocodingURL,
		ForecastURL:  cfg.OpenMeteoForecastURL,
		Timeout:      cfg.HTTPTimeout,
		Retry:        cfg.Retry,
	})
	reverse := providers.NewBigDataCloudProvider(cfg.BigDataCloudURL, cfg.HTTPTimeout, cfg.Retry)

	var fallback weather.Geocoder
	if cfg.GeocoderAPIKey != "" {
		fallback = providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	}
	forecasts := weather.NewService(openMeteo, openMeteo, reverse, fallback)

	log.Info().
		Str("markets", gamma.Name()).
		Str("forecast", openMeteo.Name()).
		Str("reverse", reverse.Name()).
		Bool("geocoder_fallback", fallback != nil).
		Msg("providers ready")

	var completer chat.Completer
	if cfg.Chat.APIKey != "" {
		completer = chat.NewClient(cfg.Chat)
	} else {
		log.Warn().Msg("OPENROUTER_API_KEY not set, chat is disabled")
	}
	assistant := chat.NewService(completer, cfg.Chat)

	// Scheduler that keeps the market cache warm.
	sched := scheduler.New(markets, cfg.CacheWarmInterval)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	app := httpapi.NewApp(serviceName, cfg.AllowedOrigins)

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
			"cache":   cache.Stats(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Services{
		Market:  markets,
		Weather: forecasts,
		Chat:    assistant,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
