package domain

import (
	"time"

	"github.com/kailas-cloud/geolocator/internal/domain/geo"
	"github.com/kailas-cloud/geolocator/internal/domain/search/kind"
)

// KeyPrefix namespaces every key this service writes to the store.
const KeyPrefix = "geolocator:"

// SearchConfig holds the interaction defaults shared by every session.
type SearchConfig struct {
	Capacity      int
	KeywordSlots  int
	DefaultPoint  geo.Point
	DefaultRadius int
	Unit          geo.Unit
	Kind          kind.Kind
	// Timeout bounds one provider round trip; zero means no deadline.
	Timeout time.Duration
}

// DefaultSearchConfig returns five result slots, two keyword fields and a
// 10 mile radius around central London.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Capacity:      5,
		KeywordSlots:  2,
		DefaultPoint:  geo.DefaultPoint,
		DefaultRadius: 10,
		Unit:          geo.Miles,
		Kind:          kind.Video,
		Timeout:       10 * time.Second,
	}
}
