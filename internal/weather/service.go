package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

// ErrCityNotFound is returned when no geocoder knows the requested city.
var ErrCityNotFound = errors.New("city not found")

const (
	hourlyPoints       = 24
	suggestionCount    = 10
	minSuggestQueryLen = 2
	defaultVisibilityM = 10000

	hourLayout = "15:04"
	dayLayout  = "Mon 2 Jan"
)

// Service orchestrates geocoding and forecast providers.
type Service struct {
	geocoder   Geocoder
	fallback   Geocoder
	forecaster Forecaster
	reverse    ReverseGeocoder
}

// NewService creates a new Service. fallback and reverse may be nil.
func NewService(geocoder Geocoder, forecaster Forecaster, reverse ReverseGeocoder, fallback Geocoder) *Service {
	return &Service{
		geocoder:   geocoder,
		fallback:   fallback,
		forecaster: forecaster,
		reverse:    reverse,
	}
}

// Report geocodes city and builds its weather panel.
func (s *Service) Report(ctx context.Context, city string) (Report, error) {
	place, err := s.locate(ctx, city)
	if err != nil {
		return Report{}, err
	}

	data, err := s.forecaster.Forecast(ctx, place)
	if err != nil {
		return Report{}, fmt.Errorf("forecast for %s: %w", place.Name, err)
	}

	return BuildReport(place, data), nil
}

func (s *Service) locate(ctx context.Context, city string) (Place, error) {
	places, err := s.geocoder.Geocode(ctx, city, 1)
	if err != nil {
		return Place{}, fmt.Errorf("geocode %q: %w", city, err)
	}
	if len(places) > 0 {
		return places[0], nil
	}

	if s.fallback != nil {
		places, err := s.fallback.Geocode(ctx, city, 1)
		if err != nil {
			log.Warn().Err(err).Str("city", city).Msg("fallback geocoder failed")
		} else if len(places) > 0 {
			return places[0], nil
		}
	}

	return Place{}, ErrCityNotFound
}

// Suggest returns up to ten distinct city names matching q, most prominent
// first. Short queries and provider errors yield an empty list.
func (s *Service) Suggest(ctx context.Context, q string) []string {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < minSuggestQueryLen {
		return []string{}
	}

	places, err := s.geocoder.Geocode(ctx, q, suggestionCount)
	if err != nil {
		log.Warn().Err(err).Str("query", q).Msg("city suggestions failed")
		return []string{}
	}

	seen := make(map[string]struct{}, len(places))
	names := make([]string, 0, len(places))
	for _, p := range places {
		key := strings.ToLower(p.Name)
		if _, dup := seen[key]; dup || p.Name == "" {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, p.Name)
	}
	return names
}

// CityAt names the city at a coordinate, or "" when unknown.
func (s *Service) CityAt(ctx context.Context, lat, lon float64) (string, error) {
	if s.reverse == nil {
		return "", nil
	}
	city, err := s.reverse.CityAt(ctx, lat, lon)
	if err != nil {
		return "", fmt.Errorf("reverse geocode %.4f,%.4f: %w", lat, lon, err)
	}
	return city, nil
}

// BuildReport shapes provider data for the UI.
func BuildReport(place Place, data ForecastData) Report {
	cur := data.Current

	visibility := cur.VisibilityM
	if visibility == 0 {
		visibility = defaultVisibilityM
	}

	hourly := make([]HourlyPoint, 0, hourlyPoints)
	for i, h := range data.Hourly {
		if i >= hourlyPoints {
			break
		}
		hourly = append(hourly, HourlyPoint{
			Time:        h.Time.Format(hourLayout),
			Temp:        roundInt(h.TemperatureC),
			PrecipProb:  roundInt(h.PrecipProbPct),
			WeatherCode: h.WeatherCode,
		})
	}

	daily := make([]DailyForecast, 0, len(data.Daily))
	for _, d := range data.Daily {
		daily = append(daily, DailyForecast{
			Date:        d.Date.Format(dayLayout),
			MaxTemp:     roundInt(d.MaxC),
			MinTemp:     roundInt(d.MinC),
			PrecipProb:  roundInt(d.PrecipProbMaxPct),
			PrecipSum:   round1(d.PrecipSumMm),
			WeatherCode: d.WeatherCode,
			Description: Describe(d.WeatherCode),
		})
	}

	return Report{
		City:              place.Name,
		Country:           place.Country,
		Temp:              roundInt(cur.TemperatureC),
		FeelsLike:         roundInt(cur.FeelsLikeC),
		Description:       Describe(cur.WeatherCode),
		Condition:         ConditionFor(cur.WeatherCode),
		WeatherCode:       cur.WeatherCode,
		PrecipitationProb: roundInt(cur.PrecipProbPct),
		WindSpeed:         roundInt(cur.WindSpeedKmh),
		WindDirection:     cur.WindDirectionDeg,
		Humidity:          cur.HumidityPct,
		Visibility:        roundInt(visibility / 1000),
		UVIndex:           cur.UVIndex,
		Hourly:            hourly,
		Daily:             daily,
		Signals:           DeriveSignals(data.Daily),
	}
}
