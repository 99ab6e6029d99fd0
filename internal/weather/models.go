package weather

import (
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionFog     Condition = "fog"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
)

// StormRisk buckets the day's maximum precipitation probability.
type StormRisk string

const (
	StormRiskLow      StormRisk = "low"
	StormRiskModerate StormRisk = "moderate"
	StormRiskHigh     StormRisk = "high"
)

// Place is a geocoded location.
type Place struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CurrentConditions is the provider's "now" block in metric units.
type CurrentConditions struct {
	TemperatureC     float64
	FeelsLikeC       float64
	HumidityPct      float64
	PrecipProbPct    float64
	WeatherCode      int
	WindSpeedKmh     float64
	WindDirectionDeg float64
	VisibilityM      float64 // 0 when the provider did not report it
	UVIndex          float64
}

// HourlySample is one hourly forecast step.
type HourlySample struct {
	Time          time.Time
	TemperatureC  float64
	PrecipProbPct float64
	WeatherCode   int
}

// DailySample is one daily forecast step.
type DailySample struct {
	Date             time.Time
	MaxC             float64
	MinC             float64
	PrecipSumMm      float64
	PrecipProbMaxPct float64
	UVIndexMax       float64
	WeatherCode      int
}

// ForecastData is what a Forecaster returns, before shaping for the UI.
type ForecastData struct {
	Current CurrentConditions
	Hourly  []HourlySample
	Daily   []DailySample
}

// HourlyPoint is a UI-ready hourly forecast entry.
type HourlyPoint struct {
	Time        string `json:"time"` // "14:00"
	Temp        int    `json:"temp"`
	PrecipProb  int    `json:"precipProb"`
	WeatherCode int    `json:"weatherCode"`
}

// DailyForecast is a UI-ready daily forecast entry.
type DailyForecast struct {
	Date        string  `json:"date"` // "Mon 24 Jun"
	MaxTemp     int     `json:"maxTemp"`
	MinTemp     int     `json:"minTemp"`
	PrecipProb  int     `json:"precipProb"`
	PrecipSum   float64 `json:"precipSum"`
	WeatherCode int     `json:"weatherCode"`
	Description string  `json:"description"`
}

// Signals are betting hints derived from the forecast.
type Signals struct {
	TempAnomaly     float64   `json:"tempAnomaly"` // today's max minus the week's average max
	StormRisk       StormRisk `json:"stormRisk"`
	ExtremeHeatRisk bool      `json:"extremeHeatRisk"`
	ExtremeColdRisk bool      `json:"extremeColdRisk"`
	TodayMaxTemp    int       `json:"todayMaxTemp"`
	TodayMinTemp    int       `json:"todayMinTemp"`
}

// Report is the full weather panel for one city.
type Report struct {
	City              string          `json:"city"`
	Country           string          `json:"country"`
	Temp              int             `json:"temp"`
	FeelsLike         int             `json:"feelsLike"`
	Description       string          `json:"description"`
	Condition         Condition       `json:"condition"`
	WeatherCode       int             `json:"weatherCode"`
	PrecipitationProb int             `json:"precipitationProb"`
	WindSpeed         int             `json:"windSpeed"`
	WindDirection     float64         `json:"windDirection"`
	Humidity          float64         `json:"humidity"`
	Visibility        int             `json:"visibility"` // km
	UVIndex           float64         `json:"uvIndex"`
	Hourly            []HourlyPoint   `json:"hourly"`
	Daily             []DailyForecast `json:"daily"`
	Signals           Signals         `json:"signals"`
}
