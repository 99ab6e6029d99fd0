package market

import (
	"strings"

	"github.com/i474232898/weath3r-terminal/internal/common"
)

// Taxonomy holds the keyword sets used to decide which events belong on a
// tab. Keywords are matched as lowercase substrings.
type Taxonomy struct {
	TemperatureInclude []string `yaml:"temperature_include"`
	TemperatureExclude []string `yaml:"temperature_exclude"`
	HazardInclude      []string `yaml:"hazard_include"`
}

// DefaultTaxonomy targets short-horizon forecast questions on the
// temperature tab. The exclusions keep annual and record-style climate
// questions off it.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		TemperatureInclude: []string{
			"temperature", "temp ", "degrees", "celsius", "fahrenheit",
			"coldest day", "hottest day", "high temp", "low temp",
			"heat index", "below zero", "above average",
		},
		TemperatureExclude: []string{
			"on record", "rank", "all-time", "hottest year", "warmest year",
			"coldest year", "annual", "decade", "century", "millenium",
			"climate change", "global warm",
		},
		HazardInclude: []string{
			"hurricane", "storm", "rainfall", "snowfall", "flood", "typhoon",
			"tornado", "cyclone", "drought", "blizzard", "heatwave",
			"heat wave", "wildfire", "lightning",
		},
	}
}

// Normalized returns a copy with every keyword lowercased and empty keywords
// dropped. An empty keyword would match everything.
func (t Taxonomy) Normalized() Taxonomy {
	return Taxonomy{
		TemperatureInclude: lowerAll(t.TemperatureInclude),
		TemperatureExclude: lowerAll(t.TemperatureExclude),
		HazardInclude:      lowerAll(t.HazardInclude),
	}
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, kw := range in {
		if kw == "" {
			continue
		}
		out = append(out, strings.ToLower(kw))
	}
	return out
}

// Matches reports whether the event belongs on tab. t must be normalized.
func (t Taxonomy) Matches(ev Event, tab Tab) bool {
	text := searchText(ev)
	if tab == TabTemperature {
		return common.HasAny(text, t.TemperatureInclude...) &&
			!common.HasAny(text, t.TemperatureExclude...)
	}
	return common.HasAny(text, t.HazardInclude...)
}

// IsGlobalCity reports whether city means "no city filter".
func IsGlobalCity(city string) bool {
	city = strings.TrimSpace(city)
	return city == "" || strings.EqualFold(city, GlobalCity)
}

// Classify returns the events relevant to tab, further restricted to those
// mentioning city unless city is empty or global. The result is a new slice;
// events is never reordered. Output order is not guaranteed.
func Classify(events []Event, tab Tab, city string, taxonomy Taxonomy) []Event {
	tax := taxonomy.Normalized()

	needle := ""
	if !IsGlobalCity(city) {
		needle = strings.ToLower(strings.TrimSpace(city))
	}

	out := make([]Event, 0, len(events))
	for _, ev := range events {
		if !tax.Matches(ev, tab) {
			continue
		}
		if needle != "" && !strings.Contains(searchText(ev), needle) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func searchText(ev Event) string {
	return strings.ToLower(ev.Title + " " + ev.Description)
}
