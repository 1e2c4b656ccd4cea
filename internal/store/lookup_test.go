package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLookupResolveMintsFromZero(t *testing.T) {
	log := NewLookupLog(filepath.Join(t.TempDir(), "descriptions.csv"), "forecast", zap.NewNop())

	ids, err := log.Resolve([]string{"Sunny", "Cloudy", "Sunny"})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	// New values enter in sorted order starting at 0.
	assert.Equal(t, int64(0), ids["Cloudy"])
	assert.Equal(t, int64(1), ids["Sunny"])
}

func TestLookupResolveKeepsExistingIDs(t *testing.T) {
	log := NewLookupLog(filepath.Join(t.TempDir(), "descriptions.csv"), "forecast", zap.NewNop())

	first, err := log.Resolve([]string{"Sunny"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), first["Sunny"])

	second, err := log.Resolve([]string{"Sunny", "Rain"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), second["Sunny"])
	assert.Equal(t, int64(1), second["Rain"])

	// Round-trip through the file.
	stored, err := log.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, second, stored)
}

func TestLookupResolveNoRewriteWhenKnown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icons.csv")
	log := NewLookupLog(path, "icon_url", zap.NewNop())

	_, err := log.Resolve([]string{"a", "b"})
	require.NoError(t, err)

	ids, err := log.Resolve([]string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), ids["a"])
	assert.Equal(t, int64(1), ids["b"])
}

func TestLookupReadAllMissingFile(t *testing.T) {
	log := NewLookupLog(filepath.Join(t.TempDir(), "missing.csv"), "forecast", zap.NewNop())

	ids, err := log.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, ids)
}
