package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/pipeline"
	"weather-dashboard/internal/render"
	"weather-dashboard/internal/services"
	"weather-dashboard/internal/store"
)

func newTestApp(t *testing.T) (*fiber.App, *services.Dashboard) {
	t.Helper()

	dir := t.TempDir()
	logger := zap.NewNop()
	loc := time.UTC

	observationLog := store.NewObservationLog(filepath.Join(dir, "observations.csv"), logger)
	forecastLog := store.NewForecastLog(filepath.Join(dir, "forecast.csv"), logger)

	for i := 0; i < 3; i++ {
		ts := time.Now().UTC().Add(time.Duration(i-3) * time.Hour)
		_, err := observationLog.Append(models.Observation{
			DateUTC:      ts.Format(models.ObservationTimeLayout),
			TempF:        70 + float64(i),
			DewPointF:    55,
			Humidity:     50,
			WindSpeedMPH: 5,
			WindDir:      270,
		})
		require.NoError(t, err)
	}

	observationReader := pipeline.NewObservationReader(observationLog, loc, 4000, 72*time.Hour, logger)
	forecastReader := pipeline.NewForecastReader(forecastLog, loc, logger)
	windowFilter := pipeline.NewWindowFilter(loc)
	renderer := render.NewRenderer(loc, 38.78296, -89.93201, windowFilter, logger)

	dashboard := services.NewDashboard(observationReader, forecastReader, renderer, loc, logger)
	ingest := services.NewIngest(observationLog, logger)

	app := fiber.New()
	handler := NewHandler(dashboard, ingest, windowFilter, filepath.Join(dir, "radar.gif"), logger)
	SetupRoutes(app, handler, logger)
	return app, dashboard
}

func TestGetFigures(t *testing.T) {
	app, dashboard := newTestApp(t)
	require.NoError(t, dashboard.RefreshPipeline(context.Background()))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/figures", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var figures models.FigureSet
	require.NoError(t, json.Unmarshal(body, &figures))
	require.NotNil(t, figures.Temperature)
	assert.Equal(t, "temperature", figures.Temperature.Name)
}

func TestGetFiguresBeforeFirstPass(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/figures", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestGetFiguresMalformedWindow(t *testing.T) {
	app, dashboard := newTestApp(t)
	require.NoError(t, dashboard.RefreshPipeline(context.Background()))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/figures?start=tomorrowish", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetFiguresExplicitWindow(t *testing.T) {
	app, dashboard := newTestApp(t)
	require.NoError(t, dashboard.RefreshPipeline(context.Background()))

	now := time.Now().UTC()
	start := now.Add(-6 * time.Hour).Format(models.SeriesTimeLayout)
	end := now.Format(models.SeriesTimeLayout)

	url := fmt.Sprintf("/api/v1/figures?start=%s&end=%s", start, end)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, url, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAddObservation(t *testing.T) {
	app, _ := newTestApp(t)

	dateutc := time.Now().UTC().Format(models.ObservationTimeLayout)
	url := "/addWeatherObservation?dateutc=" + dateutc[:10] + "+" + dateutc[11:] +
		"&tempf=71.2&humidity=48&windspeedmph=6&winddir=270"

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, url, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out struct {
		ID      int64  `json:"id"`
		DateUTC string `json:"dateutc"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, int64(4), out.ID)
	assert.NotEmpty(t, out.DateUTC)
}

func TestAddObservationRejectsBadHumidity(t *testing.T) {
	app, _ := newTestApp(t)

	dateutc := time.Now().UTC().Format(models.ObservationTimeLayout)
	url := "/addWeatherObservation?dateutc=" + dateutc[:10] + "+" + dateutc[11:] + "&humidity=150"

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, url, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetCurrent(t *testing.T) {
	app, dashboard := newTestApp(t)
	require.NoError(t, dashboard.RefreshCurrent(context.Background()))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/current", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var current models.CurrentConditions
	require.NoError(t, json.Unmarshal(body, &current))
	assert.Equal(t, 72.0, current.Temp)
}

func TestGetHealth(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
