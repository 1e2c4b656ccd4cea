package models

// Figure is a renderer-agnostic chart description: the dashboard frontend
// draws it, and the PNG exporter rasterizes a subset of it. Keeping figures
// as data (instead of rendering server side) preserves hover metadata and
// the observed/predicted trace split.
type Figure struct {
	Name    string    `json:"name"`
	YTitle  string    `json:"y_title"`
	YMin    float64   `json:"y_min"`
	YMax    float64   `json:"y_max"`
	XStart  LocalTime `json:"x_start"`
	XEnd    LocalTime `json:"x_end"`
	Traces  []Trace   `json:"traces"`
	Markers []Marker  `json:"markers,omitempty"`
	Labels  []Label   `json:"labels,omitempty"`
	Shapes  []Shape   `json:"shapes,omitempty"`
	VLines  []VLine   `json:"vlines,omitempty"`
	HLines  []HLine   `json:"hlines,omitempty"`
}

// Point is one vertex of a trace.
type Point struct {
	Time  LocalTime `json:"t"`
	Value float64   `json:"v"`
}

// Trace is a line. Meta carries per-point hover values that are not the
// plotted y value (the rain figure plots rescaled precipitation probability
// but hovers the raw percentage).
type Trace struct {
	Name       string    `json:"name"`
	Color      string    `json:"color"`
	Dashed     bool      `json:"dashed,omitempty"`
	FillToZero bool      `json:"fill_to_zero,omitempty"`
	Points     []Point   `json:"points"`
	Meta       []float64 `json:"meta,omitempty"`
}

// Marker is a single oriented symbol, used for wind direction arrows.
type Marker struct {
	Time   LocalTime `json:"t"`
	Value  float64   `json:"v"`
	Symbol string    `json:"symbol"`
	Angle  float64   `json:"angle"`
	Color  string    `json:"color"`
	Hover  string    `json:"hover,omitempty"`
}

// Label is a marker with attached text, used for high/low annotations.
type Label struct {
	Time     LocalTime `json:"t"`
	Value    float64   `json:"v"`
	Text     string    `json:"text"`
	Position string    `json:"position"`
}

// Shape is a shaded vertical band drawn below the traces.
type Shape struct {
	X0      LocalTime `json:"x0"`
	X1      LocalTime `json:"x1"`
	Color   string    `json:"color"`
	Opacity float64   `json:"opacity"`
}

// VLine is a vertical reference line with an optional top label.
type VLine struct {
	Time    LocalTime `json:"t"`
	Color   string    `json:"color"`
	Opacity float64   `json:"opacity"`
	Width   int       `json:"width"`
	Label   string    `json:"label,omitempty"`
}

// HLine is a horizontal reference line, e.g. the freezing point.
type HLine struct {
	Value   float64 `json:"v"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
	Width   int     `json:"width"`
	Label   string  `json:"label,omitempty"`
}

// FigureSet is one render pass's output.
type FigureSet struct {
	Temperature *Figure `json:"temperature"`
	Wind        *Figure `json:"wind"`
	Rain        *Figure `json:"rain"`
}
