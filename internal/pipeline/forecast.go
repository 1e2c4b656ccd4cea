package pipeline

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/store"
)

// ForecastReader loads only the most recent forecast batch: the rows whose
// forecast_updated_time equals the stored maximum. Periods that have already
// elapsed (start before the top of the current local hour) are dropped.
type ForecastReader struct {
	log    *store.ForecastLog
	loc    *time.Location
	logger *zap.Logger

	now func() time.Time
}

func NewForecastReader(log *store.ForecastLog, loc *time.Location, logger *zap.Logger) *ForecastReader {
	return &ForecastReader{log: log, loc: loc, logger: logger, now: time.Now}
}

// Read returns the active batch as series rows with the provenance flag set,
// sorted ascending by time. An empty or missing log yields an empty result:
// forecasts are optional for rendering. A corrupt log is ErrDataUnavailable.
func (r *ForecastReader) Read() ([]models.SeriesRow, error) {
	periods, err := r.log.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	if len(periods) == 0 {
		return nil, nil
	}

	var maxUpdated time.Time
	for _, p := range periods {
		if p.UpdatedTime.After(maxUpdated) {
			maxUpdated = p.UpdatedTime
		}
	}

	now := r.now().In(r.loc)
	hourTop := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, r.loc)

	rows := make([]models.SeriesRow, 0, len(periods))
	for _, p := range periods {
		if !p.UpdatedTime.Equal(maxUpdated) {
			continue
		}
		if p.StartTime.Before(hourTop) {
			continue
		}
		prob := p.PrecipProb
		rows = append(rows, models.SeriesRow{
			Time:          p.StartTime.In(r.loc),
			Temp:          ptr(p.Temperature),
			Dewpoint:      ptr(p.Dewpoint),
			WindSpeed:     ptr(p.WindSpeed),
			WindDirection: ptr(p.WindDirection),
			PrecipProb:    &prob,
			Prediction:    boolPtr(true),
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Time.Before(rows[j].Time) })

	r.logger.Debug("Forecast batch read",
		zap.Time("batch_updated", maxUpdated),
		zap.Int("rows", len(rows)))
	return rows, nil
}

func boolPtr(v bool) *bool { return &v }
