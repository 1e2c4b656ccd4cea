package pipeline

import (
	"math"
	"sort"
	"time"

	"weather-dashboard/internal/models"
)

// Wind bucketing targets roughly this many markers across the visible
// window.
const windBucketTarget = 180

// minWindBucket is the narrowest bucket; anything finer is noise at the
// station's report rate.
const minWindBucket = 2 * time.Minute

// DailyAnnotations computes per-day extremes over the merged series: max
// temperature, min temperature, and max wind speed per local calendar day.
// Each extremum resolves back to the first timestamp that value occurred on
// that day, so ties go to the earliest occurrence.
func DailyAnnotations(series []models.SeriesRow) []models.Annotation {
	type dayKey struct {
		y int
		m time.Month
		d int
	}
	type dayAgg struct {
		high, low, wind extremum
	}

	days := make(map[dayKey]*dayAgg)
	keys := make([]dayKey, 0)
	for _, row := range series {
		y, m, d := row.Time.Date()
		k := dayKey{y, m, d}
		agg, ok := days[k]
		if !ok {
			agg = &dayAgg{}
			days[k] = agg
			keys = append(keys, k)
		}
		if row.Temp != nil {
			updateMax(&agg.high, *row.Temp, row.Time)
			updateMin(&agg.low, *row.Temp, row.Time)
		}
		if row.WindSpeed != nil {
			updateMax(&agg.wind, *row.WindSpeed, row.Time)
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.y != b.y {
			return a.y < b.y
		}
		if a.m != b.m {
			return a.m < b.m
		}
		return a.d < b.d
	})

	out := make([]models.Annotation, 0, len(keys)*3)
	for _, k := range keys {
		agg := days[k]
		if agg.high.set {
			out = append(out, models.Annotation{Time: agg.high.at, Value: agg.high.value, Category: models.DailyHighTemp})
		}
		if agg.low.set {
			out = append(out, models.Annotation{Time: agg.low.at, Value: agg.low.value, Category: models.DailyLowTemp})
		}
		if agg.wind.set {
			out = append(out, models.Annotation{Time: agg.wind.at, Value: agg.wind.value, Category: models.DailyHighWind})
		}
	}
	return out
}

type extremum struct {
	value float64
	at    time.Time
	set   bool
}

func updateMax(e *extremum, v float64, at time.Time) {
	switch {
	case !e.set || v > e.value:
		e.value, e.at, e.set = v, at, true
	case v == e.value && at.Before(e.at):
		e.at = at
	}
}

func updateMin(e *extremum, v float64, at time.Time) {
	switch {
	case !e.set || v < e.value:
		e.value, e.at, e.set = v, at, true
	case v == e.value && at.Before(e.at):
		e.at = at
	}
}

// TodaySummary returns the extremes among rows at or after today's local
// midnight. The day boundary is wall-clock local time on purpose: it is the
// day the user is living through, not a UTC bucket.
func TodaySummary(series []models.SeriesRow, loc *time.Location, now time.Time) models.TodaySummary {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	var s models.TodaySummary
	for _, row := range series {
		if row.Time.Before(midnight) {
			continue
		}
		if row.Temp != nil {
			if s.HighTemp == nil || *row.Temp > *s.HighTemp {
				s.HighTemp = ptr(*row.Temp)
			}
			if s.LowTemp == nil || *row.Temp < *s.LowTemp {
				s.LowTemp = ptr(*row.Temp)
			}
		}
		if row.WindSpeed != nil {
			if s.HighWind == nil || *row.WindSpeed > *s.HighWind {
				s.HighWind = ptr(*row.WindSpeed)
			}
		}
	}
	return s
}

// BucketWidth picks the wind-chart bucket width for a window: about
// windBucketTarget buckets across it, never finer than minWindBucket, and a
// fixed 15 minutes for windows too short to split meaningfully.
func BucketWidth(start, end time.Time) time.Duration {
	delta := end.Sub(start)
	var width time.Duration
	if delta > 15*time.Minute {
		width = time.Duration(int(delta.Seconds())/60/windBucketTarget) * time.Minute
	} else {
		width = 15 * time.Minute
	}
	if width < minWindBucket {
		width = minWindBucket
	}
	return width
}

// WindBuckets groups the windowed series into adaptive time buckets and
// reduces each to the circular mean of wind direction, the peak wind speed,
// and the peak temperature. A bucket containing any forecast row is marked
// predicted.
func WindBuckets(series []models.SeriesRow, start, end time.Time) []models.WindBucket {
	width := BucketWidth(start, end)

	type bucketAgg struct {
		sinSum, cosSum float64
		dirCount       int
		maxSpeed       float64
		speedSet       bool
		maxTemp        *float64
		predicted      bool
	}

	buckets := make(map[time.Time]*bucketAgg)
	for _, row := range series {
		key := row.Time.Truncate(width)
		agg, ok := buckets[key]
		if !ok {
			agg = &bucketAgg{}
			buckets[key] = agg
		}
		if row.WindDirection != nil {
			rad := *row.WindDirection * math.Pi / 180
			agg.sinSum += math.Sin(rad)
			agg.cosSum += math.Cos(rad)
			agg.dirCount++
		}
		if row.WindSpeed != nil && (!agg.speedSet || *row.WindSpeed > agg.maxSpeed) {
			agg.maxSpeed = *row.WindSpeed
			agg.speedSet = true
		}
		if row.Temp != nil && (agg.maxTemp == nil || *row.Temp > *agg.maxTemp) {
			agg.maxTemp = ptr(*row.Temp)
		}
		if row.Prediction != nil && *row.Prediction {
			agg.predicted = true
		}
	}

	out := make([]models.WindBucket, 0, len(buckets))
	for key, agg := range buckets {
		if agg.dirCount == 0 && !agg.speedSet {
			continue
		}
		b := models.WindBucket{
			Start:     key,
			MaxSpeed:  agg.maxSpeed,
			MaxTemp:   agg.maxTemp,
			Predicted: agg.predicted,
		}
		if agg.dirCount > 0 {
			b.MeanDirection = circularMeanFromSums(agg.sinSum, agg.cosSum)
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// CircularMean averages compass directions as angles, so 350 and 10
// average to 0, not 180.
func CircularMean(degrees []float64) float64 {
	var sinSum, cosSum float64
	for _, d := range degrees {
		rad := d * math.Pi / 180
		sinSum += math.Sin(rad)
		cosSum += math.Cos(rad)
	}
	return circularMeanFromSums(sinSum, cosSum)
}

func circularMeanFromSums(sinSum, cosSum float64) float64 {
	mean := math.Atan2(sinSum, cosSum) * 180 / math.Pi
	if mean < 0 {
		mean += 360
	}
	return mean
}
