package market

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DecodeEvents maps a Gamma /events body onto Events. It never fails: a body
// that is not a JSON array yields an empty list and array elements that are
// not objects are skipped.
func DecodeEvents(body []byte) []Event {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return []Event{}
	}

	events := make([]Event, 0, len(items))
	for _, item := range items {
		fields, ok := asObject(item)
		if !ok {
			continue
		}
		events = append(events, Event{
			ID:          asID(fields["id"]),
			Title:       asString(fields["title"]),
			Description: asString(fields["description"]),
			Volume:      asVolume(fields["volume"]),
			EndDate:     asString(fields["endDate"]),
			Image:       asString(fields["image"]),
			Icon:        asString(fields["icon"]),
			Markets:     asMarkets(fields["markets"]),
		})
	}
	return events
}

func asObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

func asString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// asID accepts both string and numeric identifiers.
func asID(raw json.RawMessage) string {
	if s := asString(raw); s != "" {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}
	return n.String()
}

func asVolume(raw json.RawMessage) Volume {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Volume{}
	}

	switch raw[0] {
	case '"':
		s := asString(raw)
		if s == "" {
			return Volume{}
		}
		return Volume{Raw: raw, Value: parseLeadingFloat(s)}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil || !finite(f) {
			return Volume{}
		}
		return Volume{Raw: raw, Value: f}
	default:
		return Volume{}
	}
}

var leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseLeadingFloat reads the longest numeric prefix of s, so "1500.5 USD"
// ranks as 1500.5. Anything unparseable ranks as 0.
func parseLeadingFloat(s string) float64 {
	m := leadingFloat.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || !finite(f) {
		return 0
	}
	return f
}

func asMarkets(raw json.RawMessage) []Market {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	markets := make([]Market, 0, len(items))
	for _, item := range items {
		fields, ok := asObject(item)
		if !ok {
			continue
		}
		markets = append(markets, Market{
			OutcomePrices: asPrices(fields["outcomePrices"]),
			Icon:          asString(fields["icon"]),
		})
	}
	return markets
}

// asPrices handles the three encodings Gamma uses: a numeric array, an array
// of numeric strings, and either of those stringified as JSON. Entries that
// are not numbers become 0.
func asPrices(raw json.RawMessage) []float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		raw = json.RawMessage(asString(raw))
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	prices := make([]float64, 0, len(items))
	for _, item := range items {
		prices = append(prices, asPrice(item))
	}
	return prices
}

func asPrice(raw json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !finite(f) {
		return 0
	}
	return f
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
