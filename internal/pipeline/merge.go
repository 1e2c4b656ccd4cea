package pipeline

import "weather-dashboard/internal/models"

// Merge concatenates observed and forecast rows into one series. No
// deduplication: overlapping time ranges are expected and both sides are
// kept, distinguished by the provenance flag. Fields one source lacks are
// already nil on its rows, so this is a plain column-superset union.
func Merge(observed, forecast []models.SeriesRow) []models.SeriesRow {
	out := make([]models.SeriesRow, 0, len(observed)+len(forecast))
	out = append(out, observed...)
	out = append(out, forecast...)
	return out
}
