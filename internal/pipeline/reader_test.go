package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/store"
)

func newObservationLog(t *testing.T) (*store.ObservationLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "observations.csv")
	return store.NewObservationLog(path, zap.NewNop()), path
}

func appendObservation(t *testing.T, log *store.ObservationLog, dateutc string, tempF, dewF float64) {
	t.Helper()
	_, err := log.Append(models.Observation{
		DateUTC:      dateutc,
		TempF:        tempF,
		DewPointF:    dewF,
		WindSpeedMPH: 5,
		WindDir:      270,
	})
	require.NoError(t, err)
}

func TestObservationReaderRead(t *testing.T) {
	loc, err := time.LoadLocation("US/Central")
	require.NoError(t, err)

	log, _ := newObservationLog(t)
	appendObservation(t, log, "2026-06-15 12:00:00", 70, 55.5551)
	appendObservation(t, log, "2026-06-15 12:05:00", 71, 55)

	r := NewObservationReader(log, loc, 4000, 72*time.Hour, zap.NewNop())
	r.now = fixedClock(time.Date(2026, 6, 15, 8, 0, 0, 0, loc))

	rows, err := r.Read()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest first, UTC converted to local wall-clock.
	assert.Equal(t, time.Date(2026, 6, 15, 7, 5, 0, 0, loc), rows[0].Time)
	assert.Equal(t, 71.0, *rows[0].Temp)

	// Dewpoint rounded to one decimal place.
	assert.Equal(t, 55.6, *rows[1].Dewpoint)
	assert.Nil(t, rows[0].Prediction)
}

func TestObservationReaderDropsOldRows(t *testing.T) {
	loc := time.UTC
	log, _ := newObservationLog(t)
	appendObservation(t, log, "2026-06-10 12:00:00", 60, 50)
	appendObservation(t, log, "2026-06-15 12:00:00", 70, 55)

	r := NewObservationReader(log, loc, 4000, 72*time.Hour, zap.NewNop())
	r.now = fixedClock(time.Date(2026, 6, 15, 13, 0, 0, 0, loc))

	rows, err := r.Read()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 70.0, *rows[0].Temp)
}

func TestObservationReaderMalformedRow(t *testing.T) {
	log, path := newObservationLog(t)
	appendObservation(t, log, "2026-06-15 12:00:00", 70, 55)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("2,not-a-ti")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r := NewObservationReader(log, time.UTC, 4000, 72*time.Hour, zap.NewNop())
	_, err = r.Read()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataUnavailable))
}

func TestObservationReaderMissingFile(t *testing.T) {
	log := store.NewObservationLog(filepath.Join(t.TempDir(), "missing.csv"), zap.NewNop())
	r := NewObservationReader(log, time.UTC, 4000, 72*time.Hour, zap.NewNop())

	_, err := r.Read()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataUnavailable))
}

func TestObservationReaderCurrentConditions(t *testing.T) {
	log, _ := newObservationLog(t)
	appendObservation(t, log, "2026-06-15 12:00:00", 70, 55)
	appendObservation(t, log, "2026-06-15 12:05:00", 72, 56)

	r := NewObservationReader(log, time.UTC, 4000, 72*time.Hour, zap.NewNop())
	current, err := r.CurrentConditions()
	require.NoError(t, err)
	assert.Equal(t, 72.0, current.Temp)
	assert.Equal(t, 5.0, current.WindSpeed)
}
