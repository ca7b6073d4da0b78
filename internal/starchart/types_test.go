package starchart

import (
	"encoding/json"
	"testing"
)

func TestCacheKey(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		loc   Location
		style Style
		want  string
	}{
		{"default style", "1990-04-20", DefaultLocation, StyleDefault, "starchart:v1:1990-04-20:36.6002:-121.8947:default"},
		{"no labels", "1990-04-20", DefaultLocation, StyleNoLabels, "starchart:v1:1990-04-20:36.6002:-121.8947:no_labels"},
		{"integer coords", "2000-12-31", Location{Latitude: 10, Longitude: -5}, StyleDefault, "starchart:v1:2000-12-31:10:-5:default"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CacheKey(tt.date, tt.loc, tt.style); got != tt.want {
				t.Fatalf("CacheKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStyleFor(t *testing.T) {
	if got := StyleFor(true); got != StyleDefault {
		t.Fatalf("StyleFor(true) = %q, want %q", got, StyleDefault)
	}
	if got := StyleFor(false); got != StyleNoLabels {
		t.Fatalf("StyleFor(false) = %q, want %q", got, StyleNoLabels)
	}
}

func TestNewChartRequest_WireShape(t *testing.T) {
	req := NewChartRequest(DefaultLocation, DefaultView, "1990-04-20", StyleDefault)
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}
	want := `{"style":"default","observer":{"latitude":36.6002,"longitude":-121.8947,"date":"1990-04-20"},` +
		`"view":{"type":"area","parameters":{"position":{"equatorial":{"rightAscension":10,"declination":20}},"zoom":3}}}`
	if string(data) != want {
		t.Fatalf("payload =\n%s\nwant\n%s", data, want)
	}
}

func TestDefaultFallbacks(t *testing.T) {
	fb := DefaultFallbacks()
	if len(fb) != 4 {
		t.Fatalf("len(DefaultFallbacks()) = %d, want 4", len(fb))
	}
	for _, c := range fb {
		if _, err := ParseDate(c.Date); err != nil {
			t.Fatalf("fallback %q has invalid date: %v", c.Label, err)
		}
	}
	fb[0].Label = "mutated"
	if DefaultFallbacks()[0].Label == "mutated" {
		t.Fatalf("DefaultFallbacks() should return a fresh slice")
	}
}

func TestLocationCoordinates(t *testing.T) {
	if got, want := DefaultLocation.Coordinates(), "36.6002° N, 121.8947° W"; got != want {
		t.Fatalf("Coordinates() = %q, want %q", got, want)
	}
	if got, want := (Location{Latitude: -33.8688, Longitude: 151.2093}).Coordinates(), "33.8688° S, 151.2093° E"; got != want {
		t.Fatalf("Coordinates() = %q, want %q", got, want)
	}
}
