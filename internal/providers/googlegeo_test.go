package providers

import (
	"context"
	"errors"
	"testing"
)

func TestGoogleGeocoderRequiresKey(t *testing.T) {
	g := NewGoogleGeocoder("")
	if g.Name() != "google" {
		t.Errorf("unexpected name %q", g.Name())
	}
	_, err := g.Geocode(context.Background(), "Paris", 1)
	if !errors.Is(err, errNoAPIKey) {
		t.Fatalf("expected errNoAPIKey, got %v", err)
	}
}

func TestGoogleGeocoderHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	places, err := NewGoogleGeocoder("test-key").Geocode(ctx, "Paris", 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if places != nil {
		t.Fatalf("expected no places, got %v", places)
	}
}

func TestGoogleGeocoderMissingKeyWinsOverCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewGoogleGeocoder("").Geocode(ctx, "Paris", 1); !errors.Is(err, errNoAPIKey) {
		t.Fatalf("expected errNoAPIKey, got %v", err)
	}
}
