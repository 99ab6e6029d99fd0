package market

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// ErrFetchFailed is returned when the upstream market API could not be
// reached after all retries.
var ErrFetchFailed = errors.New("market events fetch failed")

// Tab selects which keyword taxonomy the classifier applies.
type Tab string

const (
	TabTemperature Tab = "temperature"
	TabEvents      Tab = "events"
)

// ParseTab maps a query value onto a Tab. Empty means temperature; any other
// value is kept as-is and classified as general weather events.
func ParseTab(s string) Tab {
	s = strings.TrimSpace(s)
	if s == "" {
		return TabTemperature
	}
	return Tab(s)
}

// GlobalCity is the explicit "no city filter" sentinel.
const GlobalCity = "global"

// Query is the input of a market board request.
type Query struct {
	Tab  Tab
	City string
}

// Event is an upstream prediction-market event after decoding. Every field
// has already been defaulted, so business logic never sees a missing value.
type Event struct {
	ID          string
	Title       string
	Description string
	Volume      Volume
	EndDate     string
	Image       string
	Icon        string
	Markets     []Market
}

// Market is a sub-market of an Event.
type Market struct {
	// OutcomePrices are probabilities in 0..1. Nil when the upstream field was
	// absent or could not be parsed.
	OutcomePrices []float64
	Icon          string
}

// Primary returns the first sub-market, if any.
func (e Event) Primary() (Market, bool) {
	if len(e.Markets) == 0 {
		return Market{}, false
	}
	return e.Markets[0], true
}

// Volume keeps the upstream value verbatim for display and a parsed number
// for ranking.
type Volume struct {
	Raw   json.RawMessage // nil when missing or empty upstream
	Value float64
}

// MarshalJSON writes the upstream value back unchanged, or 0 when there was
// none.
func (v Volume) MarshalJSON() ([]byte, error) {
	if len(v.Raw) == 0 {
		return []byte("0"), nil
	}
	return v.Raw, nil
}

// Card is the UI-ready market record.
type Card struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Volume        Volume  `json:"volume"`
	EndDate       string  `json:"endDate"`
	OutcomePrices [2]int  `json:"outcomePrices"`
	Image         *string `json:"image"`
}

// EventSource yields the current upstream event list.
type EventSource interface {
	Events(ctx context.Context) ([]Event, error)
}
