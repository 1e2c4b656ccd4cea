package pipeline

import (
	"fmt"
	"time"

	"weather-dashboard/internal/models"
)

// WindowFilter clips a series to a requested local-time range. With no
// explicit range it defaults to yesterday just after midnight through the
// end of tomorrow, the span the dashboard shows at rest.
type WindowFilter struct {
	loc *time.Location

	now func() time.Time
}

func NewWindowFilter(loc *time.Location) *WindowFilter {
	return &WindowFilter{loc: loc, now: time.Now}
}

// Default returns the implicit window: [yesterday 00:00:01, tomorrow
// 23:59:59] local.
func (w *WindowFilter) Default() (time.Time, time.Time) {
	now := w.now().In(w.loc)
	y, m, d := now.AddDate(0, 0, -1).Date()
	start := time.Date(y, m, d, 0, 0, 1, 0, w.loc)
	y, m, d = now.AddDate(0, 0, 1).Date()
	end := time.Date(y, m, d, 23, 59, 59, 0, w.loc)
	return start, end
}

// Apply returns rows with start <= t <= end. Nil bounds take the defaults.
// Applying the same explicit range twice is a no-op the second time.
func (w *WindowFilter) Apply(series []models.SeriesRow, start, end *time.Time) []models.SeriesRow {
	defStart, defEnd := w.Default()
	s, e := defStart, defEnd
	if start != nil {
		s = *start
	}
	if end != nil {
		e = *end
	}

	out := make([]models.SeriesRow, 0, len(series))
	for _, row := range series {
		if row.Time.Before(s) || row.Time.After(e) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// ParseWindow parses caller-provided range strings against the accepted
// format list. Empty strings leave the corresponding bound nil so the
// default applies. Failure is ErrMalformedWindow for this request only.
func (w *WindowFilter) ParseWindow(startStr, endStr string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if startStr != "" {
		t, err := models.ParseTimestamp(startStr, w.loc)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: start: %v", ErrMalformedWindow, err)
		}
		start = &t
	}
	if endStr != "" {
		t, err := models.ParseTimestamp(endStr, w.loc)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: end: %v", ErrMalformedWindow, err)
		}
		end = &t
	}
	return start, end, nil
}
