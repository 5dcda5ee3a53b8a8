package projector

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/geolocator/internal/domain"
	"github.com/kailas-cloud/geolocator/internal/domain/search/result"
)

// DefaultResolution is the thumbnail size used when none is configured.
const DefaultResolution = "high"

// Projector maps provider payloads onto fixed-capacity result lists.
type Projector struct {
	capacity   int
	resolution string
}

// New creates a projector. Zero values fall back to defaults.
func New(capacity int, resolution string) *Projector {
	if capacity <= 0 {
		capacity = result.DefaultCapacity
	}
	if resolution == "" {
		resolution = DefaultResolution
	}
	return &Projector{capacity: capacity, resolution: resolution}
}

// Capacity returns the number of slots in projected lists.
func (p *Projector) Capacity() int { return p.capacity }

// Project reads the top-level items array. Only a body that is not a JSON
// object, or that has no items array, is an error; everything below the
// array degrades to empty strings.
func (p *Projector) Project(raw result.Raw) (result.List, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return result.List{}, fmt.Errorf("%w: %w", domain.ErrProjection, err)
	}
	if envelope == nil {
		return result.List{}, fmt.Errorf("%w: body is null", domain.ErrProjection)
	}
	itemsRaw, ok := envelope["items"]
	if !ok {
		return result.List{}, fmt.Errorf("%w: missing items", domain.ErrProjection)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(itemsRaw, &items); err != nil || items == nil {
		return result.List{}, fmt.Errorf("%w: items is not an array", domain.ErrProjection)
	}

	n := min(len(items), p.capacity)
	records := make([]result.Record, n)
	for i := range n {
		records[i] = p.record(items[i])
	}
	return result.NewList(p.capacity, records), nil
}

func (p *Projector) record(item json.RawMessage) result.Record {
	var v any
	if err := json.Unmarshal(item, &v); err != nil {
		return result.Placeholder
	}
	return result.Record{
		Title:        lookup(v, "snippet", "title"),
		PublishDate:  lookup(v, "snippet", "publishedAt"),
		ThumbnailURL: lookup(v, "snippet", "thumbnails", p.resolution, "url"),
		Description:  lookup(v, "snippet", "description"),
		VideoID:      lookup(v, "id", "videoId"),
		ChannelTitle: lookup(v, "snippet", "channelTitle"),
	}
}

// lookup walks nested objects and returns the string at path, or "".
func lookup(v any, path ...string) string {
	for _, key := range path {
		obj, ok := v.(map[string]any)
		if !ok {
			return ""
		}
		v = obj[key]
	}
	s, _ := v.(string)
	return s
}
