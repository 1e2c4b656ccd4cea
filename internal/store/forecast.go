package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"weather-dashboard/internal/models"
)

var forecastHeader = []string{
	"id", "number", "startTime", "endTime", "isDaytime", "temperature",
	"probabilityOfPrecipitation", "dewpoint", "windSpeed", "windDirection",
	"forecast_updated_time", "forecast_descriptions_id", "icon_id",
}

// ForecastLog reads and appends the forecast predictions CSV. Batches are
// only ever appended; an old batch is superseded when a newer
// forecast_updated_time lands, never deleted.
type ForecastLog struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

func NewForecastLog(path string, logger *zap.Logger) *ForecastLog {
	return &ForecastLog{path: path, logger: logger}
}

// ReadAll parses every stored period. A missing file yields an empty
// result, not an error: forecasts are optional.
func (l *ForecastLog) ReadAll() ([]models.ForecastPeriod, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening forecast log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading forecast log: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]models.ForecastPeriod, 0, len(records)-1)
	for i, rec := range records[1:] {
		p, err := parseForecastPeriod(rec)
		if err != nil {
			return nil, fmt.Errorf("forecast row %d: %w", i+2, err)
		}
		rows = append(rows, p)
	}
	return rows, nil
}

// MaxUpdated returns the newest batch timestamp on record; ok is false when
// the log holds no batches.
func (l *ForecastLog) MaxUpdated() (time.Time, bool, error) {
	rows, err := l.ReadAll()
	if err != nil {
		return time.Time{}, false, err
	}
	var max time.Time
	for _, r := range rows {
		if r.UpdatedTime.After(max) {
			max = r.UpdatedTime
		}
	}
	return max, !max.IsZero(), nil
}

// AppendBatch writes a fetched batch. A batch whose updated timestamp is not
// strictly newer than the stored max is a no-op, not an error. Lookup ids
// for the free-text description and icon come from the resolved maps.
func (l *ForecastLog) AppendBatch(batch models.ForecastBatch, descIDs, iconIDs map[string]int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.ReadAll()
	if err != nil {
		return false, err
	}
	var maxUpdated time.Time
	var maxID float64
	for _, r := range rows {
		if r.UpdatedTime.After(maxUpdated) {
			maxUpdated = r.UpdatedTime
		}
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	if !maxUpdated.IsZero() && !batch.Updated.After(maxUpdated) {
		l.logger.Info("Forecast log already up to date",
			zap.Time("batch_updated", batch.Updated),
			zap.Time("stored_max", maxUpdated))
		return false, nil
	}

	writeHeader := true
	if info, statErr := os.Stat(l.path); statErr == nil && info.Size() > 0 {
		writeHeader = false
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fmt.Errorf("opening forecast log for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(forecastHeader); err != nil {
			return false, fmt.Errorf("writing forecast header: %w", err)
		}
	}
	for _, p := range batch.Periods {
		row := models.ForecastPeriod{
			ID:            maxID + float64(p.Number),
			Number:        p.Number,
			StartTime:     p.StartTime,
			EndTime:       p.EndTime,
			IsDaytime:     p.IsDaytime,
			Temperature:   p.Temperature,
			PrecipProb:    p.PrecipProb,
			Dewpoint:      p.Dewpoint,
			WindSpeed:     p.WindSpeed,
			WindDirection: p.WindDirection,
			UpdatedTime:   batch.Updated,
			DescriptionID: descIDs[p.Description],
			IconID:        iconIDs[p.Icon],
		}
		if err := w.Write(formatForecastPeriod(row)); err != nil {
			return false, fmt.Errorf("appending forecast period %d: %w", p.Number, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return false, fmt.Errorf("flushing forecast log: %w", err)
	}

	l.logger.Info("Forecast batch appended",
		zap.Time("updated", batch.Updated),
		zap.Int("periods", len(batch.Periods)))
	return true, nil
}

func parseForecastPeriod(rec []string) (models.ForecastPeriod, error) {
	if len(rec) != len(forecastHeader) {
		return models.ForecastPeriod{}, fmt.Errorf("expected %d columns, got %d", len(forecastHeader), len(rec))
	}
	id, err := strconv.ParseFloat(rec[0], 64)
	if err != nil {
		return models.ForecastPeriod{}, fmt.Errorf("parsing id %q: %w", rec[0], err)
	}
	number, err := strconv.Atoi(rec[1])
	if err != nil {
		return models.ForecastPeriod{}, fmt.Errorf("parsing number %q: %w", rec[1], err)
	}
	start, err := parseUTCTime(rec[2])
	if err != nil {
		return models.ForecastPeriod{}, fmt.Errorf("parsing startTime: %w", err)
	}
	end, err := parseUTCTime(rec[3])
	if err != nil {
		return models.ForecastPeriod{}, fmt.Errorf("parsing endTime: %w", err)
	}
	isDay, err := strconv.ParseBool(rec[4])
	if err != nil {
		return models.ForecastPeriod{}, fmt.Errorf("parsing isDaytime %q: %w", rec[4], err)
	}
	temp, err := strconv.ParseFloat(rec[5], 64)
	if err != nil {
		return models.ForecastPeriod{}, fmt.Errorf("parsing temperature %q: %w", rec[5], err)
	}
	prob, err := strconv.Atoi(rec[6])
	if err != nil {
		return models.ForecastPeriod{}, fmt.Errorf("parsing probabilityOfPrecipitation %q: %w", rec[6], err)
	}
	dew, err := strconv.ParseFloat(rec[7], 64)
	if err != nil {
		return models.ForecastPeriod{}, fmt.Errorf("parsing dewpoint %q: %w", rec[7], err)
	}
	speed, err := strconv.ParseFloat(rec[8], 64)
	if err != nil {
		return models.ForecastPeriod{}, fmt.Errorf("parsing windSpeed %q: %w", rec[8], err)
	}
	dir, err := strconv.ParseFloat(rec[9], 64)
	if err != nil {
		return models.ForecastPeriod{}, fmt.Errorf("parsing windDirection %q: %w", rec[9], err)
	}
	updated, err := parseUTCTime(rec[10])
	if err != nil {
		return models.ForecastPeriod{}, fmt.Errorf("parsing forecast_updated_time: %w", err)
	}
	descID, err := strconv.ParseInt(rec[11], 10, 64)
	if err != nil {
		return models.ForecastPeriod{}, fmt.Errorf("parsing forecast_descriptions_id %q: %w", rec[11], err)
	}
	iconID, err := strconv.ParseInt(rec[12], 10, 64)
	if err != nil {
		return models.ForecastPeriod{}, fmt.Errorf("parsing icon_id %q: %w", rec[12], err)
	}
	return models.ForecastPeriod{
		ID:            id,
		Number:        number,
		StartTime:     start,
		EndTime:       end,
		IsDaytime:     isDay,
		Temperature:   temp,
		PrecipProb:    prob,
		Dewpoint:      dew,
		WindSpeed:     speed,
		WindDirection: dir,
		UpdatedTime:   updated,
		DescriptionID: descID,
		IconID:        iconID,
	}, nil
}

func formatForecastPeriod(p models.ForecastPeriod) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		f(p.ID),
		strconv.Itoa(p.Number),
		p.StartTime.UTC().Format(time.RFC3339),
		p.EndTime.UTC().Format(time.RFC3339),
		strconv.FormatBool(p.IsDaytime),
		f(p.Temperature),
		strconv.Itoa(p.PrecipProb),
		f(p.Dewpoint),
		f(p.WindSpeed),
		f(p.WindDirection),
		p.UpdatedTime.UTC().Format(time.RFC3339),
		strconv.FormatInt(p.DescriptionID, 10),
		strconv.FormatInt(p.IconID, 10),
	}
}

// parseUTCTime accepts the ISO-8601 variants the log has historically held,
// with or without fractional seconds.
func parseUTCTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t.UTC(), nil
	}
	t, err2 := time.Parse("2006-01-02T15:04:05.999999", s)
	if err2 == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
}
