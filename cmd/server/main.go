package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"weather-dashboard/internal/api"
	"weather-dashboard/internal/config"
	"weather-dashboard/internal/pipeline"
	"weather-dashboard/internal/render"
	"weather-dashboard/internal/scheduler"
	"weather-dashboard/internal/services"
	"weather-dashboard/internal/store"
	"weather-dashboard/pkg/client"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting Weather Station Dashboard")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("Failed to resolve station timezone",
			zap.String("timezone", cfg.Station.Timezone),
			zap.Error(err))
	}

	// Storage layer
	observationLog := store.NewObservationLog(cfg.Paths.ObservationsCSV, logger)
	forecastLog := store.NewForecastLog(cfg.Paths.ForecastCSV, logger)
	descriptionLog := store.NewLookupLog(cfg.Paths.DescriptionsCSV, "forecast", logger)
	iconLog := store.NewLookupLog(cfg.Paths.IconsCSV, "icon_url", logger)

	// Pipeline and rendering
	observationReader := pipeline.NewObservationReader(observationLog, loc, cfg.Retention.CursorWindow, cfg.Retention.MaxAge, logger)
	forecastReader := pipeline.NewForecastReader(forecastLog, loc, logger)
	windowFilter := pipeline.NewWindowFilter(loc)
	renderer := render.NewRenderer(loc, cfg.Station.Latitude, cfg.Station.Longitude, windowFilter, logger)

	dashboard := services.NewDashboard(observationReader, forecastReader, renderer, loc, logger)
	ingest := services.NewIngest(observationLog, logger)

	// Upstream clients
	clientConfig := client.ClientConfig{
		Timeout:        10 * time.Second,
		MaxRetries:     cfg.Retry.MaxRetries,
		RetryDelay:     cfg.Retry.Delay,
		Multiplier:     cfg.Retry.Multiplier,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}
	nwsClient := client.NewNWSClient(cfg.NWS.Office, cfg.NWS.Grid, cfg.NWS.UserAgent, clientConfig, logger)
	radarClient := client.NewRadarClient(cfg.NWS.RadarURL, clientConfig, logger)
	fetcher := services.NewFetcher(nwsClient, radarClient, forecastLog, descriptionLog, iconLog, cfg.Paths.RadarGIF, logger)

	// Polling cadences
	tasks := scheduler.NewGroup(
		scheduler.NewTask("pipeline", cfg.Poll.PipelineInterval, time.Minute, dashboard.RefreshPipeline, logger),
		scheduler.NewTask("current", cfg.Poll.CurrentInterval, 10*time.Second, dashboard.RefreshCurrent, logger),
		scheduler.NewTask("radar", cfg.Poll.RadarInterval, time.Minute, fetcher.FetchRadar, logger),
	)

	// Forecast fetch runs on a cron schedule
	forecastCron := cron.New()
	if _, err := forecastCron.AddFunc(cfg.Poll.ForecastCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := fetcher.FetchForecast(ctx); err != nil {
			logger.Error("Forecast fetch failed", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("Invalid forecast cron expression",
			zap.String("cron", cfg.Poll.ForecastCron),
			zap.Error(err))
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: errorHandler,
	})

	// Setup handlers and routes
	handler := api.NewHandler(dashboard, ingest, windowFilter, cfg.Paths.RadarGIF, logger)
	api.SetupRoutes(app, handler, logger)

	// Start background work
	tasks.Start()
	forecastCron.Start()

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tasks.Stop()
	forecastCron.Stop()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func errorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   err.Error(),
		"success": false,
	})
}
