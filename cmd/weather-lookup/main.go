package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jonboulle/clockwork"

	httpapi "github.com/i474232898/weather-lookup/internal/api/http"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/logging"
	"github.com/i474232898/weather-lookup/internal/observability"
	"github.com/i474232898/weather-lookup/internal/present"
	"github.com/i474232898/weather-lookup/internal/scheduler"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

const serviceName = "weather-lookup"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdownTracer, err := observability.InitTracer(ctx, serviceName, cfg.TracingEndpoint)
		if err != nil {
			logger.Warn("tracing init failed", "error", err)
		} else {
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTracer(flushCtx); err != nil {
					logger.Warn("tracer shutdown failed", "error", err)
				}
			}()
		}
	}

	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Shared HTTP client for outbound provider calls.
	httpCfg := providers.NewHTTPClientConfig(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.UserAgent, metrics)

	nominatim := providers.NewNominatim(httpCfg, cfg.NominatimURL)
	var reverse weather.ReverseGeocoder = nominatim
	if cfg.GoogleGeocoderAPIKey != "" {
		reverse = providers.NewGoogleReverseGeocoder(cfg.GoogleGeocoderAPIKey, metrics)
		logger.Info("using google reverse geocoder for postal code backfill")
	}

	resolver := weather.NewResolver(weather.Geocoders{
		Primary:  providers.NewOpenMeteoGeocoder(httpCfg, cfg.GeocodingURL),
		Fallback: nominatim,
		Postal:   nominatim,
		Reverse:  reverse,
	}, logger, metrics)

	service := weather.NewService(
		resolver,
		providers.NewOpenMeteoProvider(httpCfg, cfg.ForecastURL),
		providers.NewOpenMeteoAirQuality(httpCfg, cfg.AirQualityURL),
		cfg.SearchTimeout,
		logger,
		metrics,
	)

	// In-memory session store with idle expiry.
	sessions := store.NewMemoryStore(cfg.MaxSessions, cfg.SessionTTL, clock)

	sched := scheduler.New(sessions, cfg.SweepInterval, metrics, logger)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.SearchTimeout + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New())
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})
	app.Get("/metrics", observability.Handler())

	httpapi.RegisterRoutes(app, httpapi.Dependencies{
		Searcher: service,
		Sessions: sessions,
		Views:    present.NewBuilder(clock),
		Logger:   logger,
	})

	go func() {
		logger.Info("http server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
}
