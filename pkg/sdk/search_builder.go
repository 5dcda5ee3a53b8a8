package geolocator

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/geolocator/internal/domain/geo"
	"github.com/kailas-cloud/geolocator/internal/domain/search/request"
)

// SearchBuilder is a fluent builder for one-shot searches.
type SearchBuilder struct {
	client *Client

	point    geo.Point
	radius   int
	unit     geo.Unit
	keywords []string
	limit    int
}

// Near sets the search center.
func (b *SearchBuilder) Near(lat, lng float64) *SearchBuilder {
	b.point = geo.Point{Lat: lat, Lng: lng}
	return b
}

// Radius sets the radius. Values outside [0,100] fail the search.
func (b *SearchBuilder) Radius(r int) *SearchBuilder {
	b.radius = r
	return b
}

// Unit sets the radius unit (m, km, ft, mi).
func (b *SearchBuilder) Unit(u string) *SearchBuilder {
	b.unit = geo.Unit(u)
	return b
}

// Keywords sets the keyword fields. Empty fields are dropped.
func (b *SearchBuilder) Keywords(fields ...string) *SearchBuilder {
	b.keywords = fields
	return b
}

// Limit sets the number of results, capped at the client capacity.
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.limit = n
	return b
}

// Do runs the search and returns the filled results.
func (b *SearchBuilder) Do(ctx context.Context) (videos []Video, err error) {
	start := time.Now()
	defer func() { b.client.obs.observe("search_once", start, err) }()

	cfg := b.client.searchCfg
	limit := b.limit
	if limit <= 0 || limit > cfg.Capacity {
		limit = cfg.Capacity
	}
	req, err := request.New(b.point, b.radius, b.unit, b.keywords, cfg.Kind, limit)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	raw, err := b.client.exec.Execute(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	list, err := b.client.proj.Project(raw)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	all := videosFromList(list)
	return all[:list.Filled()], nil
}
