package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"weather-dashboard/internal/models"
)

var traceColors = map[string]drawing.Color{
	"red":        {R: 255, A: 255},
	"blue":       {B: 255, A: 255},
	"dodgerblue": {R: 30, G: 144, B: 255, A: 255},
	"chartreuse": {R: 127, G: 255, A: 255},
}

// RenderPNG rasterizes a figure for clients that cannot draw the JSON view
// model. Markers, labels, and shading do not survive the export; only the
// line traces and reference lines do.
func RenderPNG(fig *models.Figure) ([]byte, error) {
	var series []chart.Series
	for _, tr := range fig.Traces {
		if len(tr.Points) < 2 {
			continue
		}
		ts := chart.TimeSeries{
			Name: tr.Name,
			Style: chart.Style{
				StrokeColor: traceColor(tr.Color),
			},
		}
		if tr.Dashed {
			ts.Style.StrokeDashArray = []float64{5.0, 5.0}
		}
		for _, p := range tr.Points {
			ts.XValues = append(ts.XValues, p.Time.Time)
			ts.YValues = append(ts.YValues, p.Value)
		}
		series = append(series, ts)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("figure %s has no drawable traces", fig.Name)
	}

	for _, hl := range fig.HLines {
		series = append(series, chart.TimeSeries{
			Name: hl.Label,
			Style: chart.Style{
				StrokeColor:     traceColor(hl.Color),
				StrokeDashArray: []float64{2.0, 2.0},
			},
			XValues: []time.Time{fig.XStart.Time, fig.XEnd.Time},
			YValues: []float64{hl.Value, hl.Value},
		})
	}

	ch := chart.Chart{
		Title: fig.Name,
		YAxis: chart.YAxis{
			Name:  fig.YTitle,
			Range: &chart.ContinuousRange{Min: fig.YMin, Max: fig.YMax},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", fig.Name, err)
	}
	return buf.Bytes(), nil
}

func traceColor(name string) drawing.Color {
	if c, ok := traceColors[name]; ok {
		return c
	}
	return drawing.ColorBlack
}
