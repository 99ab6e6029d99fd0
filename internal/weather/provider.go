package weather

import (
	"context"
)

// Geocoder resolves a free-text place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, name string, count int) ([]Place, error)
}

// Forecaster fetches current conditions and a multi-day forecast.
type Forecaster interface {
	Forecast(ctx context.Context, place Place) (ForecastData, error)
}

// ReverseGeocoder names the city at a coordinate. It returns "" when there is
// none.
type ReverseGeocoder interface {
	CityAt(ctx context.Context, lat, lon float64) (string, error)
}
