package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weath3r-terminal/internal/weather"
)

var errNoAPIKey = errors.New("geocoder api key is not configured")

// geocoder keeps its key in a package variable, so calls are serialized.
var googleMu sync.Mutex

// GoogleGeocoder implements weather.Geocoder with the Google Geocoding API.
// It is only used as a fallback when Open-Meteo has no match.
type GoogleGeocoder struct {
	name   string
	apiKey string
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		name:   "google",
		apiKey: apiKey,
	}
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

// Geocode returns at most one place; count is ignored.
func (g *GoogleGeocoder) Geocode(ctx context.Context, name string, _ int) ([]weather.Place, error) {
	if g.apiKey == "" {
		return nil, errNoAPIKey
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	googleMu.Lock()
	defer googleMu.Unlock()

	geocoder.ApiKey = g.apiKey
	loc, err := geocoder.Geocoding(geocoder.Address{City: name})
	if err != nil {
		return nil, fmt.Errorf("google geocoding %q: %w", name, err)
	}

	return []weather.Place{{
		Name:      name,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}}, nil
}
