package models

import (
	"fmt"
	"time"
)

// SeriesTimeLayout is the single format this system emits when a series
// timestamp is serialized.
const SeriesTimeLayout = "2006-01-02T15:04:05"

// ObservationTimeLayout is the format the station reports dateutc in.
const ObservationTimeLayout = "2006-01-02 15:04:05"

// AcceptedTimeLayouts are the formats a caller-provided timestamp may take,
// tried in order; the first successful parse wins.
var AcceptedTimeLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses s as naive local time in loc against
// AcceptedTimeLayouts.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range AcceptedTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp %q matches no accepted format", s)
}

// LocalTime wraps time.Time so figure JSON carries naive local timestamps
// in SeriesTimeLayout instead of RFC 3339 with a zone offset.
type LocalTime struct {
	time.Time
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(SeriesTimeLayout) + `"`), nil
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("local time must be a JSON string, got %s", s)
	}
	parsed, err := ParseTimestamp(s[1:len(s)-1], time.Local)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
