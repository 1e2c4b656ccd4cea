package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/pipeline"
	"weather-dashboard/internal/render"
)

// Dashboard runs the read-merge-render pipeline and caches its outputs for
// the HTTP layer. The pipeline pass and the fast current-conditions poll
// run on separate cadences; both refresh methods are safe to call
// concurrently with the getters.
type Dashboard struct {
	observations *pipeline.ObservationReader
	forecast     *pipeline.ForecastReader
	renderer     *render.Renderer
	logger       *zap.Logger

	mu           sync.RWMutex
	series       []models.SeriesRow
	figures      *models.FigureSet
	current      *models.CurrentConditions
	today        models.TodaySummary
	loc          *time.Location
	lastPipeline time.Time
	successCount int
	failureCount int
}

func NewDashboard(observations *pipeline.ObservationReader, forecast *pipeline.ForecastReader, renderer *render.Renderer, loc *time.Location, logger *zap.Logger) *Dashboard {
	return &Dashboard{
		observations: observations,
		forecast:     forecast,
		renderer:     renderer,
		loc:          loc,
		logger:       logger,
	}
}

// RefreshPipeline runs one full pass: read both logs, merge, render the
// default window. On failure the previously cached figures stay live so a
// bad poll never blanks the dashboard.
func (d *Dashboard) RefreshPipeline(ctx context.Context) error {
	startTime := time.Now()

	observed, err := d.observations.Read()
	if err != nil {
		d.recordFailure()
		return fmt.Errorf("reading observations: %w", err)
	}

	forecast, err := d.forecast.Read()
	if err != nil {
		d.recordFailure()
		return fmt.Errorf("reading forecast: %w", err)
	}

	series := pipeline.Merge(observed, forecast)
	figures, err := d.renderer.Render(series, nil, nil)
	if err != nil {
		d.recordFailure()
		return fmt.Errorf("rendering figures: %w", err)
	}

	d.mu.Lock()
	d.series = series
	d.figures = figures
	d.lastPipeline = time.Now()
	d.successCount++
	d.mu.Unlock()

	d.logger.Info("Pipeline pass completed",
		zap.Int("observed_rows", len(observed)),
		zap.Int("forecast_rows", len(forecast)),
		zap.Duration("duration", time.Since(startTime)))
	return nil
}

// RefreshCurrent updates the fast-poll summary from the newest observation
// row. It never touches the merge pipeline.
func (d *Dashboard) RefreshCurrent(ctx context.Context) error {
	current, err := d.observations.CurrentConditions()
	if err != nil {
		return fmt.Errorf("reading current conditions: %w", err)
	}

	d.mu.Lock()
	d.current = &current
	d.today = pipeline.TodaySummary(d.series, d.loc, time.Now().In(d.loc))
	d.mu.Unlock()
	return nil
}

// Figures returns the dashboard figures. With no window it serves the
// cached default-window render; an explicit window re-renders from the
// cached series.
func (d *Dashboard) Figures(start, end *time.Time) (*models.FigureSet, error) {
	d.mu.RLock()
	series := d.series
	figures := d.figures
	d.mu.RUnlock()

	if start == nil && end == nil {
		if figures == nil {
			return nil, fmt.Errorf("figures not rendered yet: %w", pipeline.ErrDataUnavailable)
		}
		return figures, nil
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("series not loaded yet: %w", pipeline.ErrDataUnavailable)
	}
	return d.renderer.Render(series, start, end)
}

func (d *Dashboard) Current() (*models.CurrentConditions, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.current == nil {
		return nil, fmt.Errorf("current conditions not loaded yet: %w", pipeline.ErrDataUnavailable)
	}
	return d.current, nil
}

func (d *Dashboard) Today() models.TodaySummary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.today
}

func (d *Dashboard) recordFailure() {
	d.mu.Lock()
	d.failureCount++
	d.mu.Unlock()
}

func (d *Dashboard) GetStats() map[string]interface{} {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return map[string]interface{}{
		"last_pipeline_run": d.lastPipeline,
		"success_count":     d.successCount,
		"failure_count":     d.failureCount,
		"series_rows":       len(d.series),
		"figures_cached":    d.figures != nil,
	}
}
