package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/i474232898/weath3r-terminal/internal/weather"
)

const forecastFixture = `{
	"current": {
		"temperature_2m": 31.6, "apparent_temperature": 35.2, "relative_humidity_2m": 70,
		"precipitation_probability": 20, "weather_code": 2, "wind_speed_10m": 12.4,
		"wind_direction_10m": 180, "visibility": 24140, "uv_index": 7.5
	},
	"hourly": {
		"time": ["2025-06-24T00:00", "2025-06-24T01:00", "bad"],
		"temperature_2m": [28.1, 27.9, 1],
		"precipitation_probability": [10, null, 0],
		"weather_code": [1, 3]
	},
	"daily": {
		"time": ["2025-06-24", "2025-06-25"],
		"weather_code": [95, 61],
		"temperature_2m_max": [36.0, 30.0],
		"temperature_2m_min": [26.0, 24.0],
		"precipitation_sum": [12.5, 3.0],
		"precipitation_probability_max": [80, 40],
		"uv_index_max": [8.0, 6.0]
	}
}`

func newTestOpenMeteo(url string) *OpenMeteoProvider {
	return NewOpenMeteoProvider(OpenMeteoConfig{
		GeocodingURL: url + "/v1/search",
		ForecastURL:  url + "/v1/forecast",
		Timeout:      2 * time.Second,
		Retry:        RetryConfig{MaxRetries: 0},
	})
}

func TestOpenMeteoGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("name") != "Jakarta" || q.Get("count") != "10" || q.Get("language") != "en" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"results":[{"name":"Jakarta","latitude":-6.2,"longitude":106.8,"country_code":"ID"}]}`))
	}))
	defer srv.Close()

	places, err := newTestOpenMeteo(srv.URL).Geocode(context.Background(), "Jakarta", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 1 {
		t.Fatalf("expected 1 place, got %d", len(places))
	}
	p := places[0]
	if p.Name != "Jakarta" || p.Country != "ID" || p.Latitude != -6.2 || p.Longitude != 106.8 {
		t.Fatalf("unexpected place: %+v", p)
	}
}

func TestOpenMeteoGeocodeNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"generationtime_ms":0.5}`))
	}))
	defer srv.Close()

	places, err := newTestOpenMeteo(srv.URL).Geocode(context.Background(), "Atlantis", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 0 {
		t.Fatalf("expected no places, got %+v", places)
	}
}

func TestOpenMeteoForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("latitude") != "-6.2" || q.Get("longitude") != "106.8" {
			t.Errorf("unexpected coordinates %s", r.URL.RawQuery)
		}
		if q.Get("forecast_days") != "7" || q.Get("timezone") != "auto" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(forecastFixture))
	}))
	defer srv.Close()

	place := weather.Place{Name: "Jakarta", Latitude: -6.2, Longitude: 106.8}
	data, err := newTestOpenMeteo(srv.URL).Forecast(context.Background(), place)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if data.Current.TemperatureC != 31.6 || data.Current.WeatherCode != 2 || data.Current.VisibilityM != 24140 {
		t.Fatalf("unexpected current conditions: %+v", data.Current)
	}

	// The unparseable timestamp is dropped; missing and null values are zero.
	if len(data.Hourly) != 2 {
		t.Fatalf("expected 2 hourly samples, got %d", len(data.Hourly))
	}
	if data.Hourly[1].PrecipProbPct != 0 || data.Hourly[1].WeatherCode != 3 {
		t.Fatalf("unexpected hourly sample: %+v", data.Hourly[1])
	}
	if data.Hourly[1].Time.Hour() != 1 {
		t.Fatalf("expected 01:00, got %v", data.Hourly[1].Time)
	}

	if len(data.Daily) != 2 {
		t.Fatalf("expected 2 daily samples, got %d", len(data.Daily))
	}
	d := data.Daily[0]
	if d.MaxC != 36 || d.MinC != 26 || d.PrecipProbMaxPct != 80 || d.WeatherCode != 95 {
		t.Fatalf("unexpected daily sample: %+v", d)
	}
}

func TestOpenMeteoForecastUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestOpenMeteo(srv.URL).Forecast(context.Background(), weather.Place{})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
