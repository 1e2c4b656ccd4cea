package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"weather-dashboard/internal/models"
)

var observationHeader = []string{
	"id", "dateutc", "tempinf", "humidityin", "baromrelin", "baromabsin",
	"tempf", "humidity", "dewpointf", "winddir", "windspeedmph", "windgustmph",
	"maxdailygust", "hourlyrainin", "eventrainin", "dailyrainin",
	"weeklyrainin", "monthlyrainin", "totalrainin", "solarradiation", "uv",
}

// ObservationLog reads and appends the observation CSV. The file is
// append-only: rows are never rewritten or deleted. Appends are serialized
// by a mutex; an external reader racing an in-progress append may still see
// a truncated last line, which readers surface as a failed read.
type ObservationLog struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

func NewObservationLog(path string, logger *zap.Logger) *ObservationLog {
	return &ObservationLog{path: path, logger: logger}
}

// ReadAll parses every row. Any malformed row fails the whole read; partial
// recovery would hide a concurrent half-written append.
func (l *ObservationLog) ReadAll() ([]models.Observation, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("opening observation log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading observation log: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]models.Observation, 0, len(records)-1)
	for i, rec := range records[1:] {
		obs, err := parseObservation(rec)
		if err != nil {
			return nil, fmt.Errorf("observation row %d: %w", i+2, err)
		}
		rows = append(rows, obs)
	}
	return rows, nil
}

// Tail returns rows with id >= max(id) - window, preserving file order.
func (l *ObservationLog) Tail(window int64) ([]models.Observation, error) {
	rows, err := l.ReadAll()
	if err != nil {
		return nil, err
	}
	var maxID int64
	for _, r := range rows {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	out := rows[:0]
	for _, r := range rows {
		if r.ID >= maxID-window {
			out = append(out, r)
		}
	}
	return out, nil
}

// Latest returns the row with the largest cursor id.
func (l *ObservationLog) Latest() (models.Observation, error) {
	rows, err := l.ReadAll()
	if err != nil {
		return models.Observation{}, err
	}
	if len(rows) == 0 {
		return models.Observation{}, fmt.Errorf("observation log is empty")
	}
	latest := rows[0]
	for _, r := range rows[1:] {
		if r.ID > latest.ID {
			latest = r
		}
	}
	return latest, nil
}

// Append assigns obs the next cursor id and writes one row. The increment is
// not atomic across processes; concurrent producers must serialize upstream.
func (l *ObservationLog) Append(obs models.Observation) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var maxID int64
	rows, err := l.ReadAll()
	if err == nil {
		for _, r := range rows {
			if r.ID > maxID {
				maxID = r.ID
			}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return 0, err
	}

	writeHeader := true
	if info, statErr := os.Stat(l.path); statErr == nil && info.Size() > 0 {
		writeHeader = false
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("opening observation log for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(observationHeader); err != nil {
			return 0, fmt.Errorf("writing observation header: %w", err)
		}
	}
	obs.ID = maxID + 1
	if err := w.Write(formatObservation(obs)); err != nil {
		return 0, fmt.Errorf("appending observation: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flushing observation log: %w", err)
	}

	l.logger.Debug("Observation appended",
		zap.Int64("id", obs.ID),
		zap.String("dateutc", obs.DateUTC))
	return obs.ID, nil
}

func parseObservation(rec []string) (models.Observation, error) {
	if len(rec) != len(observationHeader) {
		return models.Observation{}, fmt.Errorf("expected %d columns, got %d", len(observationHeader), len(rec))
	}
	id, err := strconv.ParseFloat(rec[0], 64)
	if err != nil {
		return models.Observation{}, fmt.Errorf("parsing id %q: %w", rec[0], err)
	}
	vals := make([]float64, len(rec))
	for i := 2; i < len(rec); i++ {
		v, err := strconv.ParseFloat(rec[i], 64)
		if err != nil {
			return models.Observation{}, fmt.Errorf("parsing %s %q: %w", observationHeader[i], rec[i], err)
		}
		vals[i] = v
	}
	return models.Observation{
		ID:             int64(id),
		DateUTC:        rec[1],
		TempInF:        vals[2],
		HumidityIn:     vals[3],
		BaromRelIn:     vals[4],
		BaromAbsIn:     vals[5],
		TempF:          vals[6],
		Humidity:       vals[7],
		DewPointF:      vals[8],
		WindDir:        vals[9],
		WindSpeedMPH:   vals[10],
		WindGustMPH:    vals[11],
		MaxDailyGust:   vals[12],
		HourlyRainIn:   vals[13],
		EventRainIn:    vals[14],
		DailyRainIn:    vals[15],
		WeeklyRainIn:   vals[16],
		MonthlyRainIn:  vals[17],
		TotalRainIn:    vals[18],
		SolarRadiation: vals[19],
		UV:             vals[20],
	}, nil
}

func formatObservation(o models.Observation) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		strconv.FormatInt(o.ID, 10), o.DateUTC,
		f(o.TempInF), f(o.HumidityIn), f(o.BaromRelIn), f(o.BaromAbsIn),
		f(o.TempF), f(o.Humidity), f(o.DewPointF), f(o.WindDir),
		f(o.WindSpeedMPH), f(o.WindGustMPH), f(o.MaxDailyGust),
		f(o.HourlyRainIn), f(o.EventRainIn), f(o.DailyRainIn),
		f(o.WeeklyRainIn), f(o.MonthlyRainIn), f(o.TotalRainIn),
		f(o.SolarRadiation), f(o.UV),
	}
}
