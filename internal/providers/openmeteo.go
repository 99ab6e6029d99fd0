package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weath3r-terminal/internal/weather"
)

const (
	DefaultOpenMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultOpenMeteoForecastURL  = "https://api.open-meteo.com/v1/forecast"

	openMeteoCurrent = "temperature_2m,apparent_temperature,relative_humidity_2m,precipitation_probability," +
		"weather_code,wind_speed_10m,wind_direction_10m,visibility,uv_index"
	openMeteoHourly = "temperature_2m,precipitation_probability,weather_code"
	openMeteoDaily  = "weather_code,temperature_2m_max,temperature_2m_min,precipitation_sum," +
		"precipitation_probability_max,uv_index_max"

	// With timezone=auto Open-Meteo returns local times without an offset.
	openMeteoHourLayout = "2006-01-02T15:04"
	openMeteoDayLayout  = "2006-01-02"
)

// OpenMeteoConfig configures an OpenMeteoProvider.
type OpenMeteoConfig struct {
	GeocodingURL string
	ForecastURL  string
	Timeout      time.Duration
	UserAgent    string
	Retry        RetryConfig
}

// OpenMeteoProvider implements weather.Geocoder and weather.Forecaster for
// Open-Meteo. It needs no API key.
type OpenMeteoProvider struct {
	name         string
	geocodingURL string
	forecastURL  string
	httpCfg      HTTPClientConfig
	circuit      *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(cfg OpenMeteoConfig) *OpenMeteoProvider {
	if cfg.GeocodingURL == "" {
		cfg.GeocodingURL = DefaultOpenMeteoGeocodingURL
	}
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = DefaultOpenMeteoForecastURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &OpenMeteoProvider{
		name:         "openmeteo",
		geocodingURL: cfg.GeocodingURL,
		forecastURL:  cfg.ForecastURL,
		httpCfg: HTTPClientConfig{
			Client: newRestyClient("", cfg.Timeout, cfg.UserAgent),
			Retry:  cfg.Retry,
		},
		circuit: newCircuitBreaker("openmeteo", 2*time.Minute),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Geocode searches Open-Meteo's place index. No match is an empty list, not
// an error.
func (p *OpenMeteoProvider) Geocode(ctx context.Context, name string, count int) ([]weather.Place, error) {
	if count <= 0 {
		count = 1
	}

	body, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParams(map[string]string{
			"name":     name,
			"count":    strconv.Itoa(count),
			"language": "en",
			"format":   "json",
		}).Get(p.geocodingURL)
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Results []struct {
			Name        string  `json:"name"`
			Latitude    float64 `json:"latitude"`
			Longitude   float64 `json:"longitude"`
			CountryCode string  `json:"country_code"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode openmeteo geocoding: %w", err)
	}

	places := make([]weather.Place, 0, len(payload.Results))
	for _, r := range payload.Results {
		places = append(places, weather.Place{
			Name:      r.Name,
			Country:   r.CountryCode,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		})
	}
	return places, nil
}

// Forecast fetches current conditions, hourly steps and seven daily steps.
func (p *OpenMeteoProvider) Forecast(ctx context.Context, place weather.Place) (weather.ForecastData, error) {
	body, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParams(map[string]string{
			"latitude":      strconv.FormatFloat(place.Latitude, 'f', -1, 64),
			"longitude":     strconv.FormatFloat(place.Longitude, 'f', -1, 64),
			"current":       openMeteoCurrent,
			"hourly":        openMeteoHourly,
			"daily":         openMeteoDaily,
			"forecast_days": "7",
			"timezone":      "auto",
		}).Get(p.forecastURL)
	})
	if err != nil {
		return weather.ForecastData{}, err
	}

	var payload struct {
		Current struct {
			Temperature         float64 `json:"temperature_2m"`
			ApparentTemperature float64 `json:"apparent_temperature"`
			Humidity            float64 `json:"relative_humidity_2m"`
			PrecipProb          float64 `json:"precipitation_probability"`
			WeatherCode         int     `json:"weather_code"`
			WindSpeed           float64 `json:"wind_speed_10m"`
			WindDirection       float64 `json:"wind_direction_10m"`
			Visibility          float64 `json:"visibility"`
			UVIndex             float64 `json:"uv_index"`
		} `json:"current"`
		Hourly struct {
			Time        []string  `json:"time"`
			Temperature []float64 `json:"temperature_2m"`
			PrecipProb  []float64 `json:"precipitation_probability"`
			WeatherCode []int     `json:"weather_code"`
		} `json:"hourly"`
		Daily struct {
			Time          []string  `json:"time"`
			WeatherCode   []int     `json:"weather_code"`
			MaxTemp       []float64 `json:"temperature_2m_max"`
			MinTemp       []float64 `json:"temperature_2m_min"`
			PrecipSum     []float64 `json:"precipitation_sum"`
			PrecipProbMax []float64 `json:"precipitation_probability_max"`
			UVIndexMax    []float64 `json:"uv_index_max"`
		} `json:"daily"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.ForecastData{}, fmt.Errorf("decode openmeteo forecast: %w", err)
	}

	cur := payload.Current
	data := weather.ForecastData{
		Current: weather.CurrentConditions{
			TemperatureC:     cur.Temperature,
			FeelsLikeC:       cur.ApparentTemperature,
			HumidityPct:      cur.Humidity,
			PrecipProbPct:    cur.PrecipProb,
			WeatherCode:      cur.WeatherCode,
			WindSpeedKmh:     cur.WindSpeed,
			WindDirectionDeg: cur.WindDirection,
			VisibilityM:      cur.Visibility,
			UVIndex:          cur.UVIndex,
		},
	}

	h := payload.Hourly
	for i, ts := range h.Time {
		t, err := time.Parse(openMeteoHourLayout, ts)
		if err != nil {
			continue
		}
		data.Hourly = append(data.Hourly, weather.HourlySample{
			Time:          t,
			TemperatureC:  floatAt(h.Temperature, i),
			PrecipProbPct: floatAt(h.PrecipProb, i),
			WeatherCode:   intAt(h.WeatherCode, i),
		})
	}

	d := payload.Daily
	for i, ds := range d.Time {
		t, err := time.Parse(openMeteoDayLayout, ds)
		if err != nil {
			continue
		}
		data.Daily = append(data.Daily, weather.DailySample{
			Date:             t,
			MaxC:             floatAt(d.MaxTemp, i),
			MinC:             floatAt(d.MinTemp, i),
			PrecipSumMm:      floatAt(d.PrecipSum, i),
			PrecipProbMaxPct: floatAt(d.PrecipProbMax, i),
			UVIndexMax:       floatAt(d.UVIndexMax, i),
			WeatherCode:      intAt(d.WeatherCode, i),
		})
	}

	return data, nil
}

// Open-Meteo arrays are parallel but may be short or carry nulls.
func floatAt(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func intAt(values []int, i int) int {
	if i < len(values) {
		return values[i]
	}
	return 0
}
