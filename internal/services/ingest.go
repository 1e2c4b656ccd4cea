package services

import (
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/store"
)

// Magnus approximation constants, tuned for degrees Celsius.
const (
	magnusA = 17.27
	magnusB = 237.7
)

// ObservationInput is the query payload an Ambient-style station pushes.
// Timestamps arrive as naive UTC; the dewpoint is not sent and gets
// derived before the row is stored.
type ObservationInput struct {
	DateUTC        string  `query:"dateutc" validate:"required"`
	TempInF        float64 `query:"tempinf"`
	HumidityIn     float64 `query:"humidityin" validate:"gte=0,lte=100"`
	BaromRelIn     float64 `query:"baromrelin"`
	BaromAbsIn     float64 `query:"baromabsin"`
	TempF          float64 `query:"tempf"`
	Humidity       float64 `query:"humidity" validate:"gte=0,lte=100"`
	WindDir        float64 `query:"winddir" validate:"gte=0,lte=360"`
	WindSpeedMPH   float64 `query:"windspeedmph" validate:"gte=0"`
	WindGustMPH    float64 `query:"windgustmph" validate:"gte=0"`
	MaxDailyGust   float64 `query:"maxdailygust" validate:"gte=0"`
	HourlyRainIn   float64 `query:"hourlyrainin" validate:"gte=0"`
	EventRainIn    float64 `query:"eventrainin" validate:"gte=0"`
	DailyRainIn    float64 `query:"dailyrainin" validate:"gte=0"`
	WeeklyRainIn   float64 `query:"weeklyrainin" validate:"gte=0"`
	MonthlyRainIn  float64 `query:"monthlyrainin" validate:"gte=0"`
	TotalRainIn    float64 `query:"totalrainin" validate:"gte=0"`
	SolarRadiation float64 `query:"solarradiation" validate:"gte=0"`
	UV             float64 `query:"uv" validate:"gte=0"`
}

// Ingest validates incoming station pushes and appends them to the
// observation log.
type Ingest struct {
	log      *store.ObservationLog
	validate *validator.Validate
	logger   *zap.Logger
}

func NewIngest(log *store.ObservationLog, logger *zap.Logger) *Ingest {
	return &Ingest{
		log:      log,
		validate: validator.New(),
		logger:   logger,
	}
}

// Add stores one observation and returns its assigned row id.
func (i *Ingest) Add(input ObservationInput) (int64, error) {
	if err := i.validate.Struct(input); err != nil {
		return 0, fmt.Errorf("invalid observation: %w", err)
	}
	if _, err := time.Parse(models.ObservationTimeLayout, input.DateUTC); err != nil {
		return 0, fmt.Errorf("invalid observation timestamp %q: %w", input.DateUTC, err)
	}

	obs := models.Observation{
		DateUTC:        input.DateUTC,
		TempInF:        input.TempInF,
		HumidityIn:     input.HumidityIn,
		BaromRelIn:     input.BaromRelIn,
		BaromAbsIn:     input.BaromAbsIn,
		TempF:          input.TempF,
		Humidity:       input.Humidity,
		DewPointF:      DewPointF(input.TempF, input.Humidity),
		WindDir:        input.WindDir,
		WindSpeedMPH:   input.WindSpeedMPH,
		WindGustMPH:    input.WindGustMPH,
		MaxDailyGust:   input.MaxDailyGust,
		HourlyRainIn:   input.HourlyRainIn,
		EventRainIn:    input.EventRainIn,
		DailyRainIn:    input.DailyRainIn,
		WeeklyRainIn:   input.WeeklyRainIn,
		MonthlyRainIn:  input.MonthlyRainIn,
		TotalRainIn:    input.TotalRainIn,
		SolarRadiation: input.SolarRadiation,
		UV:             input.UV,
	}

	id, err := i.log.Append(obs)
	if err != nil {
		return 0, fmt.Errorf("appending observation: %w", err)
	}

	i.logger.Debug("Observation stored",
		zap.Int64("id", id),
		zap.String("dateutc", obs.DateUTC),
		zap.Float64("tempf", obs.TempF))
	return id, nil
}

// DewPointF derives the dew point in Fahrenheit from air temperature in
// Fahrenheit and relative humidity in percent, via the Magnus formula. At
// 100% humidity the dew point equals the air temperature.
func DewPointF(tempF, humidity float64) float64 {
	tempC := (tempF - 32) * 5 / 9
	alpha := magnusA*tempC/(magnusB+tempC) + math.Log(humidity/100)
	dewC := magnusB * alpha / (magnusA - alpha)
	return dewC*9/5 + 32
}
