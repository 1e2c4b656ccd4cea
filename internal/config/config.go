package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		LogLevel     string
	}

	Station struct {
		Name      string
		Latitude  float64
		Longitude float64
		Timezone  string
	}

	Paths struct {
		ObservationsCSV string
		ForecastCSV     string
		DescriptionsCSV string
		IconsCSV        string
		RadarGIF        string
	}

	NWS struct {
		Office    string
		Grid      string
		UserAgent string
		RadarURL  string
	}

	Poll struct {
		PipelineInterval time.Duration
		CurrentInterval  time.Duration
		RadarInterval    time.Duration
		ForecastCron     string
	}

	Retention struct {
		CursorWindow int64
		MaxAge       time.Duration
	}

	Retry struct {
		MaxRetries int
		Delay      time.Duration
		Multiplier float64
	}

	CircuitBreaker struct {
		Timeout time.Duration
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("FIBER_PORT", "8080")
	cfg.Server.ReadTimeout = parseDuration(getEnv("FIBER_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("FIBER_WRITE_TIMEOUT", "10s"))
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	// Station configuration
	cfg.Station.Name = getEnv("STATION_NAME", "Edwardsville")
	cfg.Station.Latitude = parseFloat(getEnv("STATION_LATITUDE", "38.78296"))
	cfg.Station.Longitude = parseFloat(getEnv("STATION_LONGITUDE", "-89.93201"))
	cfg.Station.Timezone = getEnv("STATION_TIMEZONE", "US/Central")

	// Log file paths
	cfg.Paths.ObservationsCSV = getEnv("OBSERVATIONS_CSV", "data/observations/WEATHER_OBSERVATION_dp.csv")
	cfg.Paths.ForecastCSV = getEnv("FORECAST_CSV", "data/forecast/FORECAST_PREDICTIONS.csv")
	cfg.Paths.DescriptionsCSV = getEnv("DESCRIPTIONS_CSV", "data/forecast/FORECAST_DESCRIPTIONS.csv")
	cfg.Paths.IconsCSV = getEnv("ICONS_CSV", "data/forecast/FORECAST_ICONS.csv")
	cfg.Paths.RadarGIF = getEnv("RADAR_GIF", "data/assets/radar.gif")

	// NWS upstream configuration
	cfg.NWS.Office = getEnv("NWS_OFFICE", "LSX")
	cfg.NWS.Grid = getEnv("NWS_GRID", "103,81")
	cfg.NWS.UserAgent = getEnv("NWS_USER_AGENT", "i_like_forecasts!")
	cfg.NWS.RadarURL = getEnv("NWS_RADAR_URL", "https://radar.weather.gov/ridge/standard/KLSX_loop.gif")

	// Polling cadences
	cfg.Poll.PipelineInterval = parseDuration(getEnv("PIPELINE_INTERVAL", "5m"))
	cfg.Poll.CurrentInterval = parseDuration(getEnv("CURRENT_INTERVAL", "15s"))
	cfg.Poll.RadarInterval = parseDuration(getEnv("RADAR_INTERVAL", "5m"))
	cfg.Poll.ForecastCron = getEnv("FORECAST_CRON", "@every 1h")

	// Observation retention window
	cfg.Retention.CursorWindow = int64(parseInt(getEnv("CURSOR_WINDOW", "4000")))
	cfg.Retention.MaxAge = parseDuration(getEnv("OBSERVATION_MAX_AGE", "72h"))

	// Retry configuration
	cfg.Retry.MaxRetries = parseInt(getEnv("MAX_RETRIES", "3"))
	cfg.Retry.Delay = parseDuration(getEnv("RETRY_DELAY", "1s"))
	cfg.Retry.Multiplier = parseFloat(getEnv("RETRY_MULTIPLIER", "2"))

	// Circuit breaker configuration
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	return cfg, nil
}

// Location resolves the configured station timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Station.Timezone)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}

func parseFloat(value string) float64 {
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		zap.L().Warn("Failed to parse float", zap.String("value", value), zap.Error(err))
		return 0
	}
	return floatValue
}
