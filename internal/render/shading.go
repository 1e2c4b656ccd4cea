package render

import (
	"time"

	"github.com/nathan-osman/go-sunrise"

	"weather-dashboard/internal/models"
)

const nightOpacity = 0.3

// solarDay holds one day's boundaries in naive local time.
type solarDay struct {
	amMidnight time.Time
	pmMidnight time.Time
	sunrise    time.Time
	sunset     time.Time
}

// dayNightShading shades the night portion of the visible window: for each
// calendar day the window touches, [midnight, sunrise] and [sunset, next
// midnight], clipped to the window's actual bounds on the first and last
// day. Midnight and sunrise/sunset also get a labeled reference line so all
// three charts carry the same time cues.
func (r *Renderer) dayNightShading(start, end time.Time) ([]models.Shape, []models.VLine) {
	start = start.Truncate(time.Minute)

	var shapes []models.Shape
	var vlines []models.VLine

	days := int(end.Sub(start).Hours()/24) + 2
	for dayNum := 0; dayNum < days; dayNum++ {
		day := start.AddDate(0, 0, dayNum)
		sd := r.solarDay(day)

		if !start.After(sd.amMidnight) {
			vlines = append(vlines, models.VLine{
				Time:    models.LocalTime{Time: sd.amMidnight},
				Color:   "gray",
				Opacity: 1,
				Width:   1,
				Label:   sd.amMidnight.Format("Jan 02"),
			})
			if !end.Before(sd.sunrise) {
				vlines = append(vlines, sunVLine(sd.sunrise))
				shapes = append(shapes, nightShape(sd.amMidnight, sd.sunrise))
			} else {
				shapes = append(shapes, nightShape(sd.amMidnight, end))
			}
		} else {
			if !end.Before(sd.sunrise) {
				vlines = append(vlines, sunVLine(sd.sunrise))
				shapes = append(shapes, nightShape(start, sd.sunrise))
			} else {
				shapes = append(shapes, nightShape(start, end))
			}
		}

		if !start.After(sd.sunset) {
			vlines = append(vlines, sunVLine(sd.sunset))
			if !end.Before(sd.pmMidnight) {
				shapes = append(shapes, nightShape(sd.sunset, sd.pmMidnight))
			} else {
				shapes = append(shapes, nightShape(sd.sunset, end))
			}
		} else {
			if end.After(sd.pmMidnight) {
				shapes = append(shapes, nightShape(start, sd.pmMidnight))
			} else {
				shapes = append(shapes, nightShape(start, end))
			}
		}
	}
	return shapes, vlines
}

func (r *Renderer) solarDay(day time.Time) solarDay {
	y, m, d := day.Date()
	rise, set := sunrise.SunriseSunset(r.lat, r.lon, y, m, d)
	return solarDay{
		amMidnight: time.Date(y, m, d, 0, 0, 0, 0, r.loc),
		pmMidnight: time.Date(y, m, d, 23, 59, 59, 0, r.loc),
		sunrise:    rise.In(r.loc),
		sunset:     set.In(r.loc),
	}
}

func nightShape(x0, x1 time.Time) models.Shape {
	return models.Shape{
		X0:      models.LocalTime{Time: x0},
		X1:      models.LocalTime{Time: x1},
		Color:   "black",
		Opacity: nightOpacity,
	}
}

func sunVLine(t time.Time) models.VLine {
	return models.VLine{
		Time:    models.LocalTime{Time: t},
		Color:   "orange",
		Opacity: 0.3,
		Width:   2,
		Label:   t.Format("3:04 PM"),
	}
}
