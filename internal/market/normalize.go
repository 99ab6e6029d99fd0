package market

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/i474232898/weath3r-terminal/internal/common"
)

// EndDateLayout is the display format of Card.EndDate, e.g. "24 Jun".
const EndDateLayout = "2 Jan"

// SortByVolume orders events by parsed volume, highest first. Ties keep their
// upstream order.
func SortByVolume(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Volume.Value > events[j].Volume.Value
	})
}

// NormalizeEvent flattens an event into a Card using its first sub-market.
func NormalizeEvent(ev Event) Card {
	var prices []float64
	if primary, ok := ev.Primary(); ok {
		prices = primary.OutcomePrices
	}

	return Card{
		ID:            ev.ID,
		Title:         ev.Title,
		Volume:        ev.Volume,
		EndDate:       FormatEndDate(ev.EndDate),
		OutcomePrices: Cents(prices),
		Image:         ResolveImage(ev),
	}
}

var hundred = decimal.NewFromInt(100)

// Cents converts YES/NO probabilities to whole cents. Missing entries are 0
// and anything beyond the first two is ignored.
func Cents(prices []float64) [2]int {
	var out [2]int
	for i := 0; i < len(out) && i < len(prices); i++ {
		if !finite(prices[i]) {
			continue
		}
		// Rounds the shortest decimal form of the price, so 0.285 is 29 where
		// float math.Round(p*100) would give 28. This is intentional.
		c := decimal.NewFromFloat(prices[i]).Shift(2).Round(0)
		switch {
		case c.LessThan(decimal.Zero):
			c = decimal.Zero
		case c.GreaterThan(hundred):
			c = hundred
		}
		out[i] = int(c.IntPart())
	}
	return out
}

// ResolveImage picks the event image, then the event icon, then the primary
// market icon.
func ResolveImage(ev Event) *string {
	var marketIcon string
	if primary, ok := ev.Primary(); ok {
		marketIcon = primary.Icon
	}
	img := common.FirstNonEmpty(ev.Image, ev.Icon, marketIcon)
	if img == "" {
		return nil
	}
	return &img
}

var endDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatEndDate renders an upstream timestamp as a short UTC day and month.
// Unparseable input yields "".
func FormatEndDate(s string) string {
	for _, layout := range endDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(EndDateLayout)
		}
	}
	return ""
}
