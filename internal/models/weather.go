package models

import (
	"time"
)

// Observation is one row of the observation log, in the order the ingest
// endpoint writes columns. The id is an append cursor: each new row gets
// 1 + the current max.
type Observation struct {
	ID             int64   `json:"id"`
	DateUTC        string  `json:"dateutc"`
	TempInF        float64 `json:"tempinf"`
	HumidityIn     float64 `json:"humidityin"`
	BaromRelIn     float64 `json:"baromrelin"`
	BaromAbsIn     float64 `json:"baromabsin"`
	TempF          float64 `json:"tempf"`
	Humidity       float64 `json:"humidity"`
	DewPointF      float64 `json:"dewpointf"`
	WindDir        float64 `json:"winddir"`
	WindSpeedMPH   float64 `json:"windspeedmph"`
	WindGustMPH    float64 `json:"windgustmph"`
	MaxDailyGust   float64 `json:"maxdailygust"`
	HourlyRainIn   float64 `json:"hourlyrainin"`
	EventRainIn    float64 `json:"eventrainin"`
	DailyRainIn    float64 `json:"dailyrainin"`
	WeeklyRainIn   float64 `json:"weeklyrainin"`
	MonthlyRainIn  float64 `json:"monthlyrainin"`
	TotalRainIn    float64 `json:"totalrainin"`
	SolarRadiation float64 `json:"solarradiation"`
	UV             float64 `json:"uv"`
}

// ForecastPeriod is one row of the forecast predictions log. All rows
// fetched together share one UpdatedTime; the newest UpdatedTime is the
// active batch, older batches are superseded but never deleted.
type ForecastPeriod struct {
	ID            float64   `json:"id"`
	Number        int       `json:"number"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	IsDaytime     bool      `json:"isDaytime"`
	Temperature   float64   `json:"temperature"`
	PrecipProb    int       `json:"probabilityOfPrecipitation"`
	Dewpoint      float64   `json:"dewpoint"`
	WindSpeed     float64   `json:"windSpeed"`
	WindDirection float64   `json:"windDirection"`
	UpdatedTime   time.Time `json:"forecast_updated_time"`
	DescriptionID int64     `json:"forecast_descriptions_id"`
	IconID        int64     `json:"icon_id"`
}

// ForecastBatch is a freshly fetched forecast before it is written to the
// log: description and icon are still free text, not lookup ids.
type ForecastBatch struct {
	Updated time.Time
	Periods []ForecastUpdate
}

type ForecastUpdate struct {
	Number        int
	StartTime     time.Time
	EndTime       time.Time
	IsDaytime     bool
	Temperature   float64
	PrecipProb    int
	Dewpoint      float64
	WindSpeed     float64
	WindDirection float64
	Description   string
	Icon          string
}

// SeriesRow is one point of the merged observation/forecast timeline.
// Timestamps are naive local time. Prediction is nil for observed rows and
// true for forecast rows; fields the source does not carry stay nil.
type SeriesRow struct {
	Time          time.Time `json:"date"`
	Temp          *float64  `json:"temp"`
	Dewpoint      *float64  `json:"dewpoint"`
	WindSpeed     *float64  `json:"wind_speed"`
	WindDirection *float64  `json:"wind_direction"`
	GustSpeed     *float64  `json:"gust_speed"`
	RainHourly    *float64  `json:"rain_hourly"`
	RainDaily     *float64  `json:"rain_daily"`
	RainEvent     *float64  `json:"rain_event"`
	PrecipProb    *int      `json:"precip_prob"`
	Prediction    *bool     `json:"prediction"`
}

type AnnotationCategory string

const (
	DailyHighTemp AnnotationCategory = "daily-high-temp"
	DailyLowTemp  AnnotationCategory = "daily-low-temp"
	DailyHighWind AnnotationCategory = "daily-high-wind"
)

// Annotation marks the first occurrence of a daily extremum. Recomputed on
// every pipeline pass, never persisted.
type Annotation struct {
	Time     time.Time          `json:"time"`
	Value    float64            `json:"value"`
	Category AnnotationCategory `json:"category"`
}

// CurrentConditions is the most recent observation row flattened for the
// fast-poll summary. It bypasses the merge pipeline entirely.
type CurrentConditions struct {
	Temp           float64 `json:"temp"`
	WindSpeed      float64 `json:"wind_speed"`
	WindDir        float64 `json:"wind_dir"`
	Humidity       float64 `json:"humidity"`
	Gust           float64 `json:"gust"`
	Pressure       float64 `json:"pressure"`
	DailyRain      float64 `json:"daily_rain"`
	UV             float64 `json:"uv"`
	SolarRadiation float64 `json:"solar_radiation"`
}

// TodaySummary holds today's extremes since local midnight. Fields are nil
// when no observation has landed yet today.
type TodaySummary struct {
	HighTemp *float64 `json:"high_temp"`
	LowTemp  *float64 `json:"low_temp"`
	HighWind *float64 `json:"high_wind"`
}

// WindBucket is one adaptive time bucket of the wind chart: the circular
// mean of direction with the bucket's peak speed and temperature.
type WindBucket struct {
	Start         time.Time `json:"start"`
	MeanDirection float64   `json:"mean_direction"`
	MaxSpeed      float64   `json:"max_speed"`
	MaxTemp       *float64  `json:"max_temp"`
	Predicted     bool      `json:"predicted"`
}
