package starchart

import (
	"fmt"
	"strconv"
	"strings"
)

// Style selects the visual variant of a rendered chart.
type Style string

const (
	StyleDefault  Style = "default"
	StyleNoLabels Style = "no_labels"
)

// StyleFor maps the labels toggle to a chart style.
func StyleFor(labelsOn bool) Style {
	if labelsOn {
		return StyleDefault
	}
	return StyleNoLabels
}

// Location is a fixed observer position in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude" toml:"latitude"`
	Longitude float64 `json:"longitude" toml:"longitude"`
}

// DefaultLocation is Monterey, CA.
var DefaultLocation = Location{Latitude: 36.6002, Longitude: -121.8947}

// Coordinates renders the location as "36.6002° N, 121.8947° W".
func (l Location) Coordinates() string {
	ns, ew := "N", "E"
	lat, lon := l.Latitude, l.Longitude
	if lat < 0 {
		ns, lat = "S", -lat
	}
	if lon < 0 {
		ew, lon = "W", -lon
	}
	return fmt.Sprintf("%.4f° %s, %.4f° %s", lat, ns, lon, ew)
}

// ViewParams holds the fixed view direction for chart requests.
type ViewParams struct {
	RightAscension float64 `toml:"right_ascension"`
	Declination    float64 `toml:"declination"`
	Zoom           float64 `toml:"zoom"`
}

// DefaultView points at RA 10h, Dec 20° with zoom 3.
var DefaultView = ViewParams{RightAscension: 10, Declination: 20, Zoom: 3}

// ChartRequest is the payload sent to /api/star-chart and forwarded upstream.
type ChartRequest struct {
	Style    Style    `json:"style"`
	Observer Observer `json:"observer"`
	View     View     `json:"view"`
}

// Observer pins the chart to a place and a day.
type Observer struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Date      string  `json:"date"`
}

// View describes the sky area to render.
type View struct {
	Type       string         `json:"type"`
	Parameters ViewParameters `json:"parameters"`
}

// ViewParameters holds the area view position and zoom.
type ViewParameters struct {
	Position Position `json:"position"`
	Zoom     float64  `json:"zoom"`
}

// Position wraps equatorial coordinates.
type Position struct {
	Equatorial Equatorial `json:"equatorial"`
}

// Equatorial coordinates of the view centre.
type Equatorial struct {
	RightAscension float64 `json:"rightAscension"`
	Declination    float64 `json:"declination"`
}

// NewChartRequest builds a fresh area-view request for one day.
func NewChartRequest(loc Location, view ViewParams, date string, style Style) ChartRequest {
	return ChartRequest{
		Style: style,
		Observer: Observer{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Date:      date,
		},
		View: View{
			Type: "area",
			Parameters: ViewParameters{
				Position: Position{Equatorial: Equatorial{
					RightAscension: view.RightAscension,
					Declination:    view.Declination,
				}},
				Zoom: view.Zoom,
			},
		},
	}
}

const cacheKeyVersion = "v1"

// CacheKey derives the persistent cache key for a chart.
// Format: starchart:v1:<date>:<lat>:<lon>:<style>.
func CacheKey(date string, loc Location, style Style) string {
	return strings.Join([]string{
		"starchart",
		cacheKeyVersion,
		date,
		formatCoord(loc.Latitude),
		formatCoord(loc.Longitude),
		string(style),
	}, ":")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FallbackCandidate is a fixed date shown when the live request path fails.
type FallbackCandidate struct {
	Label string `yaml:"label" toml:"label"`
	Date  string `yaml:"date" toml:"date"`
}

// DefaultFallbacks returns the built-in celebrity skies.
func DefaultFallbacks() []FallbackCandidate {
	return []FallbackCandidate{
		{Label: "Prince Sky (1984-06-07)", Date: "1984-06-07"},
		{Label: "Madonna Sky (1985-09-14)", Date: "1985-09-14"},
		{Label: "Whitney Sky (1991-02-10)", Date: "1991-02-10"},
		{Label: "MJ Sky (1993-08-10)", Date: "1993-08-10"},
	}
}
