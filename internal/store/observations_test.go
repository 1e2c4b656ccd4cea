package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"weather-dashboard/internal/models"
)

func testObservation(dateutc string, tempF float64) models.Observation {
	return models.Observation{
		DateUTC:  dateutc,
		TempF:    tempF,
		Humidity: 50,
	}
}

func TestObservationAppendAssignsCursor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "observations.csv")
	log := NewObservationLog(path, zap.NewNop())

	id, err := log.Append(testObservation("2026-06-15 12:00:00", 70))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	id, err = log.Append(testObservation("2026-06-15 12:05:00", 71))
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	rows, err := log.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].ID)
	assert.Equal(t, 70.0, rows[0].TempF)
	assert.Equal(t, "2026-06-15 12:00:00", rows[0].DateUTC)
}

func TestObservationTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "observations.csv")
	log := NewObservationLog(path, zap.NewNop())

	for i := 0; i < 10; i++ {
		_, err := log.Append(testObservation("2026-06-15 12:00:00", float64(i)))
		require.NoError(t, err)
	}

	rows, err := log.Tail(3)
	require.NoError(t, err)
	require.Len(t, rows, 4) // ids 7..10
	assert.Equal(t, int64(7), rows[0].ID)
	assert.Equal(t, int64(10), rows[3].ID)
}

func TestObservationLatest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "observations.csv")
	log := NewObservationLog(path, zap.NewNop())

	_, err := log.Append(testObservation("2026-06-15 12:00:00", 70))
	require.NoError(t, err)
	_, err = log.Append(testObservation("2026-06-15 12:05:00", 72))
	require.NoError(t, err)

	latest, err := log.Latest()
	require.NoError(t, err)
	assert.Equal(t, int64(2), latest.ID)
	assert.Equal(t, 72.0, latest.TempF)
}

func TestObservationReadAllMalformedRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "observations.csv")
	log := NewObservationLog(path, zap.NewNop())

	_, err := log.Append(testObservation("2026-06-15 12:00:00", 70))
	require.NoError(t, err)

	// Simulate a half-written trailing line.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("2,2026-06-15 12:05:00,garbage\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = log.ReadAll()
	assert.Error(t, err)
}
