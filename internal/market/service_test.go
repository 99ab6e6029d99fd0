package market

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type stubSource struct {
	events []Event
	err    error
	calls  int
}

func (s *stubSource) Events(context.Context) ([]Event, error) {
	s.calls++
	return s.events, s.err
}

func TestCardsEndToEnd(t *testing.T) {
	body := `[
		{"id":"A","title":"NYC hottest day this week","volume":"150000",
		 "markets":[{"outcomePrices":"[0.7,0.3]"}]},
		{"id":"B","title":"Hottest year on record debate","volume":"900000",
		 "markets":[{"outcomePrices":"[0.4,0.6]"}]}
	]`
	svc := NewService(&stubSource{events: DecodeEvents([]byte(body))}, DefaultTaxonomy(), 0)

	cards, err := svc.Cards(context.Background(), Query{Tab: TabTemperature})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected only event A, got %d cards", len(cards))
	}
	if cards[0].ID != "A" {
		t.Fatalf("expected event A, got %q", cards[0].ID)
	}
	if cards[0].OutcomePrices != [2]int{70, 30} {
		t.Fatalf("expected prices [70 30], got %v", cards[0].OutcomePrices)
	}
}

func TestCardsOutputBound(t *testing.T) {
	events := make([]Event, 0, 500)
	for i := 0; i < 500; i++ {
		events = append(events, Event{
			ID:     fmt.Sprintf("e%d", i),
			Title:  "Storm watch",
			Volume: Volume{Value: float64((i * 7919) % 500)},
		})
	}
	svc := NewService(&stubSource{events: events}, DefaultTaxonomy(), DefaultMaxCards)

	cards, err := svc.Cards(context.Background(), Query{Tab: TabEvents})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != DefaultMaxCards {
		t.Fatalf("expected %d cards, got %d", DefaultMaxCards, len(cards))
	}

	volumes := make(map[string]float64, len(events))
	for _, ev := range events {
		volumes[ev.ID] = ev.Volume.Value
	}

	// Parsed volumes are 0..499 exactly once each, so the top 20 are 499..480.
	for i, c := range cards {
		if got := volumes[c.ID]; got != float64(499-i) {
			t.Fatalf("position %d: expected volume %d, got %v", i, 499-i, got)
		}
	}
}

func TestCardsPropagatesFetchError(t *testing.T) {
	src := &stubSource{err: fmt.Errorf("%w: boom", ErrFetchFailed)}
	svc := NewService(src, DefaultTaxonomy(), 0)

	_, err := svc.Cards(context.Background(), Query{Tab: TabTemperature})
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}

func TestCardsNoMatchesIsEmpty(t *testing.T) {
	svc := NewService(&stubSource{events: []Event{{Title: "Election odds"}}}, DefaultTaxonomy(), 0)

	cards, err := svc.Cards(context.Background(), Query{Tab: TabEvents, City: "Paris"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cards == nil || len(cards) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", cards)
	}
}

func TestWarm(t *testing.T) {
	src := &stubSource{}
	svc := NewService(src, DefaultTaxonomy(), 0)
	if err := svc.Warm(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("expected 1 source call, got %d", src.calls)
	}

	src.err = ErrFetchFailed
	if err := svc.Warm(context.Background()); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected wrapped ErrFetchFailed, got %v", err)
	}
}

func TestParseTab(t *testing.T) {
	if got := ParseTab(""); got != TabTemperature {
		t.Errorf("expected default tab %q, got %q", TabTemperature, got)
	}
	if got := ParseTab("events"); got != TabEvents {
		t.Errorf("expected %q, got %q", TabEvents, got)
	}
}
