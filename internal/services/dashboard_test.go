package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/pipeline"
	"weather-dashboard/internal/render"
	"weather-dashboard/internal/store"
)

// TestRefreshPipelineEndToEnd drives the full read-merge-render pass from
// CSV files on disk: five observed rows plus a three-period forecast batch
// come out as an eight-row series with provenance intact, and the
// temperature y-range spans the whole unfiltered set.
func TestRefreshPipelineEndToEnd(t *testing.T) {
	loc := time.UTC
	dir := t.TempDir()
	obsLog := store.NewObservationLog(filepath.Join(dir, "observations.csv"), zap.NewNop())
	fcLog := store.NewForecastLog(filepath.Join(dir, "forecast.csv"), zap.NewNop())

	now := time.Now().UTC()
	temps := []float64{60, 62, 64, 66, 72}
	dews := []float64{50, 50, 48, 50, 50}
	for i := range temps {
		_, err := obsLog.Append(models.Observation{
			DateUTC:      now.Add(-time.Duration(len(temps)-i) * time.Hour).Format(models.ObservationTimeLayout),
			TempF:        temps[i],
			DewPointF:    dews[i],
			WindSpeedMPH: 5,
			WindDir:      270,
		})
		require.NoError(t, err)
	}

	hourTop := now.Truncate(time.Hour)
	batch := models.ForecastBatch{Updated: now}
	for i := 0; i < 3; i++ {
		batch.Periods = append(batch.Periods, models.ForecastUpdate{
			Number:        i + 1,
			StartTime:     hourTop.Add(time.Duration(i+1) * time.Hour),
			EndTime:       hourTop.Add(time.Duration(i+2) * time.Hour),
			Temperature:   80 + float64(i),
			PrecipProb:    10,
			Dewpoint:      50,
			WindSpeed:     8,
			WindDirection: 180,
			Description:   "Sunny",
			Icon:          "icon",
		})
	}
	_, err := fcLog.AppendBatch(batch, map[string]int64{"Sunny": 0}, map[string]int64{"icon": 0})
	require.NoError(t, err)

	observationReader := pipeline.NewObservationReader(obsLog, loc, 4000, 72*time.Hour, zap.NewNop())
	forecastReader := pipeline.NewForecastReader(fcLog, loc, zap.NewNop())
	renderer := render.NewRenderer(loc, 38.78296, -89.93201, pipeline.NewWindowFilter(loc), zap.NewNop())
	dashboard := NewDashboard(observationReader, forecastReader, renderer, loc, zap.NewNop())

	require.NoError(t, dashboard.RefreshPipeline(context.Background()))

	require.Len(t, dashboard.series, 8)
	var observed, predicted int
	for _, row := range dashboard.series {
		switch {
		case row.Prediction == nil:
			observed++
		case *row.Prediction:
			predicted++
		}
	}
	assert.Equal(t, 5, observed)
	assert.Equal(t, 3, predicted)

	figures, err := dashboard.Figures(nil, nil)
	require.NoError(t, err)
	require.NotNil(t, figures.Temperature)
	require.NotNil(t, figures.Wind)
	require.NotNil(t, figures.Rain)
	assert.Equal(t, 43.0, figures.Temperature.YMin) // min dewpoint 48 less padding
	assert.Equal(t, 87.0, figures.Temperature.YMax) // max forecast temperature 82 plus padding

	stats := dashboard.GetStats()
	assert.Equal(t, 1, stats["success_count"])
	assert.Equal(t, 0, stats["failure_count"])
	assert.Equal(t, 8, stats["series_rows"])
}

func TestFiguresBeforeFirstPass(t *testing.T) {
	dir := t.TempDir()
	obsLog := store.NewObservationLog(filepath.Join(dir, "observations.csv"), zap.NewNop())
	fcLog := store.NewForecastLog(filepath.Join(dir, "forecast.csv"), zap.NewNop())

	loc := time.UTC
	observationReader := pipeline.NewObservationReader(obsLog, loc, 4000, 72*time.Hour, zap.NewNop())
	forecastReader := pipeline.NewForecastReader(fcLog, loc, zap.NewNop())
	renderer := render.NewRenderer(loc, 38.78296, -89.93201, pipeline.NewWindowFilter(loc), zap.NewNop())
	dashboard := NewDashboard(observationReader, forecastReader, renderer, loc, zap.NewNop())

	_, err := dashboard.Figures(nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeline.ErrDataUnavailable))
}
