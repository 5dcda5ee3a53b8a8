package geo

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// DefaultPoint is the fallback center used before the user picks a point.
var DefaultPoint = Point{Lat: 51.505, Lng: -0.09}

// Point is a WGS 84 latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// NewPoint validates coordinates and returns a Point.
func NewPoint(lat, lng float64) (Point, error) {
	if !ValidateCoordinates(lat, lng) {
		return Point{}, fmt.Errorf("coordinates (%v, %v) out of range", lat, lng)
	}
	return Point{Lat: lat, Lng: lng}, nil
}

// Valid reports whether the point lies within lat/lng bounds.
func (p Point) Valid() bool { return ValidateCoordinates(p.Lat, p.Lng) }

// String renders the point the way the map popup shows it.
func (p Point) String() string {
	return formatCoord(p.Lat) + ", " + formatCoord(p.Lng)
}

// Location encodes the point as "<lat>,<lng>" with the shortest exact
// float representation. Query encoding turns the comma into %2C.
func (p Point) Location() string {
	return formatCoord(p.Lat) + "," + formatCoord(p.Lng)
}

// DecodeLocation parses a location string produced by Location. Both the raw
// and the percent-encoded ("%2C") forms are accepted.
func DecodeLocation(s string) (Point, error) {
	unescaped, err := url.QueryUnescape(s)
	if err != nil {
		return Point{}, fmt.Errorf("unescape location %q: %w", s, err)
	}
	latStr, lngStr, ok := strings.Cut(unescaped, ",")
	if !ok {
		return Point{}, fmt.Errorf("location %q: missing separator", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return Point{}, fmt.Errorf("location %q: lat: %w", s, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return Point{}, fmt.Errorf("location %q: lng: %w", s, err)
	}
	return NewPoint(lat, lng)
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
