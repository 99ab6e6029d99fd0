package market

import (
	"testing"
)

func TestDecodeEventsNonArrayBody(t *testing.T) {
	cases := []string{
		`{"error":"rate limited"}`,
		`"oops"`,
		`null`,
		``,
		`<html>blocked</html>`,
	}
	for _, body := range cases {
		events := DecodeEvents([]byte(body))
		if events == nil || len(events) != 0 {
			t.Fatalf("body %q: expected empty non-nil list, got %#v", body, events)
		}
	}
}

func TestDecodeEventsSkipsNonObjects(t *testing.T) {
	body := `[1, "x", null, {"id": "a", "title": "A"}, []]`
	events := DecodeEvents([]byte(body))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID != "a" || events[0].Title != "A" {
		t.Fatalf("unexpected event: %#v", events[0])
	}
}

func TestDecodeEventsToleratesWrongTypes(t *testing.T) {
	body := `[{"id": 42, "title": 7, "description": null, "volume": true, "markets": "nope"}]`
	events := DecodeEvents([]byte(body))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.ID != "42" {
		t.Errorf("expected numeric id to be kept as string, got %q", ev.ID)
	}
	if ev.Title != "" || ev.Description != "" {
		t.Errorf("expected empty title/description, got %q/%q", ev.Title, ev.Description)
	}
	if ev.Volume.Raw != nil || ev.Volume.Value != 0 {
		t.Errorf("expected empty volume, got %#v", ev.Volume)
	}
	if len(ev.Markets) != 0 {
		t.Errorf("expected no markets, got %d", len(ev.Markets))
	}
}

func TestDecodeVolume(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  float64
		isRaw bool
	}{
		{name: "number", raw: `150000`, want: 150000, isRaw: true},
		{name: "numeric string", raw: `"900000.5"`, want: 900000.5, isRaw: true},
		{name: "string with suffix", raw: `"1500 USD"`, want: 1500, isRaw: true},
		{name: "garbage string", raw: `"n/a"`, want: 0, isRaw: true},
		{name: "empty string", raw: `""`, want: 0, isRaw: false},
		{name: "null", raw: `null`, want: 0, isRaw: false},
		{name: "object", raw: `{"v":1}`, want: 0, isRaw: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := asVolume([]byte(tt.raw))
			if v.Value != tt.want {
				t.Fatalf("expected value %v, got %v", tt.want, v.Value)
			}
			if (v.Raw != nil) != tt.isRaw {
				t.Fatalf("expected raw kept=%v, got %q", tt.isRaw, v.Raw)
			}
		})
	}
}

func TestDecodeOutcomePrices(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []float64
	}{
		{name: "stringified array", raw: `"[0.62, 0.38]"`, want: []float64{0.62, 0.38}},
		{name: "stringified string array", raw: `"[\"0.7\", \"0.3\"]"`, want: []float64{0.7, 0.3}},
		{name: "numeric array", raw: `[0.5, 0.5]`, want: []float64{0.5, 0.5}},
		{name: "string elements", raw: `["0.25", "0.75"]`, want: []float64{0.25, 0.75}},
		{name: "bad element", raw: `[0.4, "x"]`, want: []float64{0.4, 0}},
		{name: "malformed string", raw: `"[0.4,"`, want: nil},
		{name: "missing", raw: ``, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := asPrices([]byte(tt.raw))
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestDecodeMarkets(t *testing.T) {
	body := `[{"id":"1","markets":[{"outcomePrices":"[0.7,0.3]","icon":"m.png"}, 5]}]`
	events := DecodeEvents([]byte(body))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	primary, ok := events[0].Primary()
	if !ok {
		t.Fatal("expected a primary market")
	}
	if primary.Icon != "m.png" {
		t.Errorf("expected market icon, got %q", primary.Icon)
	}
	if len(events[0].Markets) != 1 {
		t.Errorf("expected non-object market to be skipped, got %d markets", len(events[0].Markets))
	}
}
