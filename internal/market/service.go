package market

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// DefaultMaxCards bounds the board size returned to the UI.
const DefaultMaxCards = 20

// Service builds the market board from an EventSource.
type Service struct {
	source   EventSource
	taxonomy Taxonomy
	maxCards int
}

// NewService creates a new Service. maxCards <= 0 uses DefaultMaxCards.
func NewService(source EventSource, taxonomy Taxonomy, maxCards int) *Service {
	if maxCards <= 0 {
		maxCards = DefaultMaxCards
	}
	return &Service{
		source:   source,
		taxonomy: taxonomy.Normalized(),
		maxCards: maxCards,
	}
}

// Cards returns the board for q: classified, ranked by volume, normalized and
// truncated. The only error is a failed upstream fetch.
func (s *Service) Cards(ctx context.Context, q Query) ([]Card, error) {
	events, err := s.source.Events(ctx)
	if err != nil {
		return nil, err
	}

	matched := Classify(events, q.Tab, q.City, s.taxonomy)
	SortByVolume(matched)
	if len(matched) > s.maxCards {
		matched = matched[:s.maxCards]
	}

	cards := make([]Card, 0, len(matched))
	for _, ev := range matched {
		cards = append(cards, NormalizeEvent(ev))
	}

	log.Debug().
		Str("tab", string(q.Tab)).
		Str("city", q.City).
		Int("upstream", len(events)).
		Int("cards", len(cards)).
		Msg("market board built")

	return cards, nil
}

// Warm pulls events through the source so a cold cache is refilled.
func (s *Service) Warm(ctx context.Context) error {
	events, err := s.source.Events(ctx)
	if err != nil {
		return fmt.Errorf("warm market cache: %w", err)
	}
	log.Debug().Int("events", len(events)).Msg("market cache warm")
	return nil
}
