package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/geolocator/internal/domain"
	"github.com/kailas-cloud/geolocator/internal/domain/geo"
	"github.com/kailas-cloud/geolocator/internal/domain/search/kind"
)

// Search parameter limits.
const (
	// MaxKeywordsLength is the maximum joined keyword length.
	MaxKeywordsLength = 500
	DefaultMaxResults = 5
	MaxMaxResults     = 50
)

// Request is a validated, immutable geo-bounded search query.
type Request struct {
	point      geo.Point
	radius     int
	unit       geo.Unit
	keywords   string
	kind       kind.Kind
	maxResults int
}

// New validates the interaction state and builds a Request.
// Defaults: unit=mi, kind=video, maxResults=5. Every failure wraps
// domain.ErrInvalidRequest.
func New(
	point geo.Point,
	radius int,
	unit geo.Unit,
	keywordFields []string,
	k kind.Kind,
	maxResults int,
) (Request, error) {
	if !point.Valid() {
		return Request{}, fmt.Errorf("%w: point (%v, %v) out of range", domain.ErrInvalidRequest, point.Lat, point.Lng)
	}
	if !geo.RadiusInBounds(radius) {
		return Request{}, fmt.Errorf("%w: radius %d outside [%d,%d]",
			domain.ErrInvalidRequest, radius, geo.MinRadius, geo.MaxRadius)
	}
	if unit == "" {
		unit = geo.Miles
	}
	if !unit.IsValid() {
		return Request{}, fmt.Errorf("%w: unknown radius unit %q", domain.ErrInvalidRequest, unit)
	}
	if k == "" {
		k = kind.Video
	}
	if !k.IsValid() {
		return Request{}, fmt.Errorf("%w: invalid result type %q", domain.ErrInvalidRequest, k)
	}
	if !k.SupportsLocation() {
		return Request{}, fmt.Errorf("%w: result type %q cannot be location bounded", domain.ErrInvalidRequest, k)
	}
	keywords := JoinKeywords(keywordFields)
	if len(keywords) > MaxKeywordsLength {
		return Request{}, fmt.Errorf("%w: keywords too long (max %d chars)", domain.ErrInvalidRequest, MaxKeywordsLength)
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults > MaxMaxResults {
		maxResults = MaxMaxResults
	}

	return Request{
		point:      point,
		radius:     radius,
		unit:       unit,
		keywords:   keywords,
		kind:       k,
		maxResults: maxResults,
	}, nil
}

// JoinKeywords trims every field, drops empty ones and joins the rest with a
// single space, preserving field order.
func JoinKeywords(fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

// Point returns the search center.
func (r *Request) Point() geo.Point { return r.point }

// Radius returns the clamped radius.
func (r *Request) Radius() int { return r.radius }

// Unit returns the radius unit.
func (r *Request) Unit() geo.Unit { return r.unit }

// Keywords returns the joined keyword string.
func (r *Request) Keywords() string { return r.keywords }

// Kind returns the result type filter.
func (r *Request) Kind() kind.Kind { return r.kind }

// MaxResults returns the number of items requested from the provider.
func (r *Request) MaxResults() int { return r.maxResults }

// Location returns the encoded center, "<lat>,<lng>".
func (r *Request) Location() string { return r.point.Location() }

// LocationRadius returns the radius annotated with its unit, e.g. "10mi".
func (r *Request) LocationRadius() string { return geo.FormatRadius(r.radius, r.unit) }
