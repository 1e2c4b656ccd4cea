package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/pipeline"
	"weather-dashboard/internal/store"
)

// ForecastSource supplies hourly forecast batches. client.NWSClient
// satisfies it.
type ForecastSource interface {
	GetHourlyForecast(ctx context.Context) (models.ForecastBatch, error)
}

// RadarSource supplies radar loop imagery. client.RadarClient satisfies it.
type RadarSource interface {
	GetLoop(ctx context.Context) ([]byte, error)
}

// Fetcher pulls forecast batches and radar imagery from the NWS and lands
// them in local storage for the pipeline to pick up.
type Fetcher struct {
	nws          ForecastSource
	radar        RadarSource
	forecasts    *store.ForecastLog
	descriptions *store.LookupLog
	icons        *store.LookupLog
	radarPath    string
	logger       *zap.Logger
}

func NewFetcher(nws ForecastSource, radar RadarSource, forecasts *store.ForecastLog, descriptions, icons *store.LookupLog, radarPath string, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		nws:          nws,
		radar:        radar,
		forecasts:    forecasts,
		descriptions: descriptions,
		icons:        icons,
		radarPath:    radarPath,
		logger:       logger,
	}
}

// FetchForecast pulls the hourly forecast and appends it as a new batch.
// A batch whose update time is not newer than the stored maximum is
// dropped without writing.
func (f *Fetcher) FetchForecast(ctx context.Context) error {
	batch, err := f.nws.GetHourlyForecast(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", pipeline.ErrUpstreamUnavailable, err)
	}

	// Check staleness before touching the lookup files so a repeated batch
	// causes no writes at all.
	maxUpdated, ok, err := f.forecasts.MaxUpdated()
	if err != nil {
		return fmt.Errorf("reading stored forecast: %w", err)
	}
	if ok && !batch.Updated.After(maxUpdated) {
		f.logger.Debug("Forecast already up to date", zap.Time("updated", batch.Updated))
		return nil
	}

	descriptions := make([]string, 0, len(batch.Periods))
	icons := make([]string, 0, len(batch.Periods))
	for _, p := range batch.Periods {
		descriptions = append(descriptions, p.Description)
		icons = append(icons, p.Icon)
	}

	descIDs, err := f.descriptions.Resolve(descriptions)
	if err != nil {
		return fmt.Errorf("resolving forecast descriptions: %w", err)
	}
	iconIDs, err := f.icons.Resolve(icons)
	if err != nil {
		return fmt.Errorf("resolving forecast icons: %w", err)
	}

	appended, err := f.forecasts.AppendBatch(batch, descIDs, iconIDs)
	if err != nil {
		return fmt.Errorf("storing forecast batch: %w", err)
	}
	if !appended {
		f.logger.Debug("Forecast already up to date", zap.Time("updated", batch.Updated))
		return nil
	}

	f.logger.Info("Forecast batch stored",
		zap.Time("updated", batch.Updated),
		zap.Int("periods", len(batch.Periods)))
	return nil
}

// FetchRadar downloads the radar loop and swaps it into place. The write
// goes through a temp file so a reader never sees a half-written GIF.
func (f *Fetcher) FetchRadar(ctx context.Context) error {
	data, err := f.radar.GetLoop(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", pipeline.ErrUpstreamUnavailable, err)
	}

	if err := os.MkdirAll(filepath.Dir(f.radarPath), 0o755); err != nil {
		return fmt.Errorf("creating radar directory: %w", err)
	}
	tmp := f.radarPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing radar loop: %w", err)
	}
	if err := os.Rename(tmp, f.radarPath); err != nil {
		return fmt.Errorf("replacing radar loop: %w", err)
	}

	f.logger.Debug("Radar loop updated", zap.Int("bytes", len(data)))
	return nil
}
