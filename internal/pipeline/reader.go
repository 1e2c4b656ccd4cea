package pipeline

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/store"
)

// ObservationReader loads the tail of the observation log and normalizes it
// into series rows: instrument columns dropped, timestamps parsed as UTC and
// converted to naive local time, rows older than the retention age removed,
// newest first.
type ObservationReader struct {
	log    *store.ObservationLog
	loc    *time.Location
	window int64
	maxAge time.Duration
	logger *zap.Logger

	now func() time.Time
}

func NewObservationReader(log *store.ObservationLog, loc *time.Location, window int64, maxAge time.Duration, logger *zap.Logger) *ObservationReader {
	return &ObservationReader{
		log:    log,
		loc:    loc,
		window: window,
		maxAge: maxAge,
		logger: logger,
		now:    time.Now,
	}
}

// Read returns the trailing observation window as series rows. Any failure,
// including a single unparseable row, fails the whole read with
// ErrDataUnavailable; there is no partial-row recovery.
func (r *ObservationReader) Read() ([]models.SeriesRow, error) {
	raw, err := r.log.Tail(r.window)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}

	cutoff := r.now().In(r.loc).Add(-r.maxAge)
	rows := make([]models.SeriesRow, 0, len(raw))
	for _, obs := range raw {
		ts, err := time.ParseInLocation(models.ObservationTimeLayout, obs.DateUTC, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: observation id %d: bad timestamp %q", ErrDataUnavailable, obs.ID, obs.DateUTC)
		}
		local := ts.In(r.loc)
		if !local.After(cutoff) {
			continue
		}
		rows = append(rows, models.SeriesRow{
			Time:          local,
			Temp:          ptr(obs.TempF),
			Dewpoint:      ptr(roundTo(obs.DewPointF, 1)),
			WindSpeed:     ptr(obs.WindSpeedMPH),
			WindDirection: ptr(obs.WindDir),
			GustSpeed:     ptr(obs.WindGustMPH),
			RainHourly:    ptr(obs.HourlyRainIn),
			RainDaily:     ptr(obs.DailyRainIn),
			RainEvent:     ptr(obs.EventRainIn),
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Time.After(rows[j].Time) })

	r.logger.Debug("Observations read",
		zap.Int("rows", len(rows)),
		zap.Int("raw", len(raw)))
	return rows, nil
}

// CurrentConditions flattens the single most recent observation row by
// cursor. It skips the merge pipeline entirely and runs on its own faster
// poll cadence.
func (r *ObservationReader) CurrentConditions() (models.CurrentConditions, error) {
	obs, err := r.log.Latest()
	if err != nil {
		return models.CurrentConditions{}, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	return models.CurrentConditions{
		Temp:           obs.TempF,
		WindSpeed:      obs.WindSpeedMPH,
		WindDir:        obs.WindDir,
		Humidity:       obs.Humidity,
		Gust:           obs.WindGustMPH,
		Pressure:       obs.BaromRelIn,
		DailyRain:      obs.DailyRainIn,
		UV:             obs.UV,
		SolarRadiation: obs.SolarRadiation,
	}, nil
}

func ptr(v float64) *float64 { return &v }

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
