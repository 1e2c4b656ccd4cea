package render

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/pipeline"
)

// Axis padding in the unit of each chart.
const (
	tempPadding = 5 // degrees beyond min dewpoint / max temperature
	windPadding = 2 // MPH above the peak windspeed
	rainPadding = 1 // inches above the daily rain peak
)

const freezingF = 32

// Renderer turns a merged series into the three dashboard figures. Each
// render is a pure function of (series, window); nothing is kept between
// passes.
type Renderer struct {
	loc    *time.Location
	lat    float64
	lon    float64
	window *pipeline.WindowFilter
	logger *zap.Logger
}

func NewRenderer(loc *time.Location, lat, lon float64, window *pipeline.WindowFilter, logger *zap.Logger) *Renderer {
	return &Renderer{loc: loc, lat: lat, lon: lon, window: window, logger: logger}
}

// Render builds all three figures over one shared x-domain. The y-ranges
// come from the full unfiltered series so the axes hold still while the
// visible window pans.
func (r *Renderer) Render(series []models.SeriesRow, start, end *time.Time) (*models.FigureSet, error) {
	windowed := r.window.Apply(series, start, end)
	if len(windowed) == 0 {
		return nil, fmt.Errorf("no rows in requested window")
	}
	wStart, wEnd := r.window.Default()
	if start != nil {
		wStart = *start
	}
	if end != nil {
		wEnd = *end
	}
	plotStart, plotEnd := timeExtent(windowed)
	shapes, vlines := r.dayNightShading(plotStart, plotEnd)

	return &models.FigureSet{
		Temperature: r.temperatureFigure(series, windowed, wStart, wEnd, plotStart, plotEnd, shapes, vlines),
		Wind:        r.windFigure(series, windowed, plotStart, plotEnd, shapes, vlines),
		Rain:        r.rainFigure(series, windowed, plotStart, plotEnd, shapes, vlines),
	}, nil
}

func (r *Renderer) temperatureFigure(full, windowed []models.SeriesRow, wStart, wEnd, plotStart, plotEnd time.Time, shapes []models.Shape, vlines []models.VLine) *models.Figure {
	yMin, yMax := tempRange(full)

	fig := &models.Figure{
		Name:   "temperature",
		YTitle: "°F",
		YMin:   yMin,
		YMax:   yMax,
		XStart: models.LocalTime{Time: plotStart},
		XEnd:   models.LocalTime{Time: plotEnd},
		Shapes: shapes,
		VLines: vlines,
	}

	observed := func(row models.SeriesRow) bool { return row.Prediction == nil }
	predicted := func(row models.SeriesRow) bool { return row.Prediction != nil && *row.Prediction }

	fig.Traces = []models.Trace{
		tracePoints("Temp (°F)", "red", false, false, windowed, observed, func(r models.SeriesRow) *float64 { return r.Temp }),
		tracePoints("Dew (°F)", "blue", false, false, windowed, observed, func(r models.SeriesRow) *float64 { return r.Dewpoint }),
		tracePoints("Predicted Temp (°F)", "red", true, false, windowed, predicted, func(r models.SeriesRow) *float64 { return r.Temp }),
		tracePoints("Predicted Dew (°F)", "blue", true, false, windowed, predicted, func(r models.SeriesRow) *float64 { return r.Dewpoint }),
	}

	// High/low markers, only when the extremum falls strictly inside the
	// requested window.
	for _, anno := range pipeline.DailyAnnotations(full) {
		if anno.Category == models.DailyHighWind {
			continue
		}
		if !anno.Time.After(wStart) || anno.Time.After(wEnd) {
			continue
		}
		position := "top center"
		if anno.Category == models.DailyHighTemp {
			position = "bottom center"
		}
		fig.Labels = append(fig.Labels, models.Label{
			Time:     models.LocalTime{Time: anno.Time},
			Value:    anno.Value,
			Text:     fmt.Sprintf("%g", anno.Value),
			Position: position,
		})
	}

	if yMax > freezingF && yMin < freezingF {
		fig.HLines = append(fig.HLines, models.HLine{
			Value:   freezingF,
			Color:   "dodgerblue",
			Opacity: 0.95,
			Width:   1,
			Label:   "32",
		})
	}
	return fig
}

func (r *Renderer) windFigure(full, windowed []models.SeriesRow, plotStart, plotEnd time.Time, shapes []models.Shape, vlines []models.VLine) *models.Figure {
	yMax := float64(windPadding)
	if max, ok := maxField(full, func(r models.SeriesRow) *float64 { return r.WindSpeed }); ok {
		yMax = max + windPadding
	}

	fig := &models.Figure{
		Name:   "wind",
		YTitle: "MPH",
		YMin:   0,
		YMax:   yMax,
		XStart: models.LocalTime{Time: plotStart},
		XEnd:   models.LocalTime{Time: plotEnd},
		Shapes: shapes,
		VLines: vlines,
	}

	for _, b := range pipeline.WindBuckets(windowed, plotStart, plotEnd) {
		color := "dodgerblue"
		hover := fmt.Sprintf("Wind speed: %gMPH, direction: %.0f°", b.MaxSpeed, b.MeanDirection)
		if b.Predicted {
			color = "chartreuse"
			hover = "Predicted " + hover
		}
		fig.Markers = append(fig.Markers, models.Marker{
			Time:   models.LocalTime{Time: b.Start},
			Value:  b.MaxSpeed,
			Symbol: "arrow",
			Angle:  b.MeanDirection,
			Color:  color,
			Hover:  hover,
		})
	}
	return fig
}

func (r *Renderer) rainFigure(full, windowed []models.SeriesRow, plotStart, plotEnd time.Time, shapes []models.Shape, vlines []models.VLine) *models.Figure {
	yMax := float64(rainPadding)
	if max, ok := maxField(full, func(r models.SeriesRow) *float64 { return r.RainDaily }); ok {
		yMax = max + rainPadding
	}

	fig := &models.Figure{
		Name:   "rain",
		YTitle: "Inches/Probability of Rain",
		YMin:   0,
		YMax:   yMax,
		XStart: models.LocalTime{Time: plotStart},
		XEnd:   models.LocalTime{Time: plotEnd},
		Shapes: shapes,
		VLines: vlines,
	}

	observed := func(row models.SeriesRow) bool { return row.Prediction == nil }
	rainTrace := tracePoints("Daily Rain", "blue", false, false, windowed, observed, func(r models.SeriesRow) *float64 { return r.RainDaily })

	// The precipitation probability shares the rain axis: the plotted value
	// is rescaled into [0, yMax], the raw percentage rides along as hover
	// metadata.
	probTrace := models.Trace{
		Name:       "Probability of Rain",
		Color:      "blue",
		FillToZero: true,
	}
	for _, row := range windowed {
		if row.Prediction == nil || !*row.Prediction || row.PrecipProb == nil {
			continue
		}
		raw := float64(*row.PrecipProb)
		probTrace.Points = append(probTrace.Points, models.Point{
			Time:  models.LocalTime{Time: row.Time},
			Value: raw / 100 * yMax,
		})
		probTrace.Meta = append(probTrace.Meta, raw)
	}

	fig.Traces = []models.Trace{rainTrace, probTrace}
	return fig
}

func tracePoints(name, color string, dashed, fill bool, rows []models.SeriesRow, keep func(models.SeriesRow) bool, field func(models.SeriesRow) *float64) models.Trace {
	t := models.Trace{Name: name, Color: color, Dashed: dashed, FillToZero: fill}
	for _, row := range rows {
		if !keep(row) {
			continue
		}
		v := field(row)
		if v == nil {
			continue
		}
		t.Points = append(t.Points, models.Point{Time: models.LocalTime{Time: row.Time}, Value: *v})
	}
	return t
}

func tempRange(series []models.SeriesRow) (float64, float64) {
	yMin, yMax := 0.0, 0.0
	if min, ok := minField(series, func(r models.SeriesRow) *float64 { return r.Dewpoint }); ok {
		yMin = min - tempPadding
	}
	if max, ok := maxField(series, func(r models.SeriesRow) *float64 { return r.Temp }); ok {
		yMax = max + tempPadding
	}
	return yMin, yMax
}

func timeExtent(rows []models.SeriesRow) (time.Time, time.Time) {
	start, end := rows[0].Time, rows[0].Time
	for _, r := range rows[1:] {
		if r.Time.Before(start) {
			start = r.Time
		}
		if r.Time.After(end) {
			end = r.Time
		}
	}
	return start, end
}

func maxField(rows []models.SeriesRow, field func(models.SeriesRow) *float64) (float64, bool) {
	var max float64
	found := false
	for _, r := range rows {
		v := field(r)
		if v == nil {
			continue
		}
		if !found || *v > max {
			max = *v
			found = true
		}
	}
	return max, found
}

func minField(rows []models.SeriesRow, field func(models.SeriesRow) *float64) (float64, bool) {
	var min float64
	found := false
	for _, r := range rows {
		v := field(r)
		if v == nil {
			continue
		}
		if !found || *v < min {
			min = *v
			found = true
		}
	}
	return min, found
}
