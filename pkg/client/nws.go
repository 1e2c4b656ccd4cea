package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"weather-dashboard/internal/models"
)

type NWSClient struct {
	*BaseClient
	baseURL string
	office  string
	grid    string
}

type NWSHourlyResponse struct {
	Properties struct {
		UpdateTime string `json:"updateTime"`
		Periods    []struct {
			Number                     int     `json:"number"`
			StartTime                  string  `json:"startTime"`
			EndTime                    string  `json:"endTime"`
			IsDaytime                  bool    `json:"isDaytime"`
			Temperature                float64 `json:"temperature"`
			TemperatureUnit            string  `json:"temperatureUnit"`
			ProbabilityOfPrecipitation struct {
				UnitCode string   `json:"unitCode"`
				Value    *float64 `json:"value"`
			} `json:"probabilityOfPrecipitation"`
			Dewpoint struct {
				UnitCode string   `json:"unitCode"`
				Value    *float64 `json:"value"`
			} `json:"dewpoint"`
			WindSpeed     string `json:"windSpeed"`
			WindDirection string `json:"windDirection"`
			ShortForecast string `json:"shortForecast"`
			Icon          string `json:"icon"`
		} `json:"periods"`
	} `json:"properties"`
}

// compassDegrees maps the eight compass points the hourly forecast uses to
// arrow angles.
var compassDegrees = map[string]float64{
	"N":  0,
	"NE": 45,
	"E":  90,
	"SE": 135,
	"S":  180,
	"SW": 225,
	"W":  270,
	"NW": 315,
}

func NewNWSClient(office, grid, userAgent string, config ClientConfig, logger *zap.Logger) *NWSClient {
	if config.Headers == nil {
		config.Headers = map[string]string{}
	}
	// api.weather.gov rejects requests without a User-Agent.
	config.Headers["User-Agent"] = userAgent
	baseClient := NewBaseClient("nws", config, logger)
	return &NWSClient{
		BaseClient: baseClient,
		baseURL:    "https://api.weather.gov",
		office:     office,
		grid:       grid,
	}
}

// GetHourlyForecast fetches the gridpoint hourly forecast and normalizes it
// into a batch: temperatures in Fahrenheit, wind speed as a bare MPH
// number, wind direction as degrees.
func (c *NWSClient) GetHourlyForecast(ctx context.Context) (models.ForecastBatch, error) {
	url := fmt.Sprintf("%s/gridpoints/%s/%s/forecast/hourly", c.baseURL, c.office, c.grid)

	data, err := c.GetWithRetry(ctx, url)
	if err != nil {
		return models.ForecastBatch{}, fmt.Errorf("failed to fetch hourly forecast: %w", err)
	}

	var response NWSHourlyResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return models.ForecastBatch{}, fmt.Errorf("failed to parse response: %w", err)
	}

	updated, err := time.Parse(time.RFC3339, response.Properties.UpdateTime)
	if err != nil {
		return models.ForecastBatch{}, fmt.Errorf("failed to parse update time %q: %w", response.Properties.UpdateTime, err)
	}

	batch := models.ForecastBatch{Updated: updated.UTC()}
	for _, p := range response.Properties.Periods {
		start, err := time.Parse(time.RFC3339, p.StartTime)
		if err != nil {
			return models.ForecastBatch{}, fmt.Errorf("failed to parse period %d start time: %w", p.Number, err)
		}
		end, err := time.Parse(time.RFC3339, p.EndTime)
		if err != nil {
			return models.ForecastBatch{}, fmt.Errorf("failed to parse period %d end time: %w", p.Number, err)
		}

		precipProb := 0
		if p.ProbabilityOfPrecipitation.Value != nil {
			precipProb = int(*p.ProbabilityOfPrecipitation.Value)
		}
		dewpointF := 0.0
		if p.Dewpoint.Value != nil {
			// Gridpoint dewpoints come back in Celsius.
			dewpointF = *p.Dewpoint.Value*9/5 + 32
		}

		batch.Periods = append(batch.Periods, models.ForecastUpdate{
			Number:        p.Number,
			StartTime:     start.UTC(),
			EndTime:       end.UTC(),
			IsDaytime:     p.IsDaytime,
			Temperature:   p.Temperature,
			PrecipProb:    precipProb,
			Dewpoint:      dewpointF,
			WindSpeed:     parseWindSpeed(p.WindSpeed),
			WindDirection: compassDegrees[p.WindDirection],
			Description:   p.ShortForecast,
			Icon:          p.Icon,
		})
	}

	c.logger.Debug("Hourly forecast fetched",
		zap.Time("updated", batch.Updated),
		zap.Int("periods", len(batch.Periods)))
	return batch, nil
}

// parseWindSpeed extracts the number from strings like "12 mph" or
// "10 to 15 mph", keeping the first value.
func parseWindSpeed(s string) float64 {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	return v
}
