package search

import (
	"context"

	"github.com/kailas-cloud/geolocator/internal/domain/search/request"
	"github.com/kailas-cloud/geolocator/internal/domain/search/result"
)

// Executor performs one provider round trip.
type Executor interface {
	Execute(ctx context.Context, req *request.Request) (result.Raw, error)
}

// QuotaChecker is the local interface for quota enforcement.
type QuotaChecker interface {
	Check(ctx context.Context) error
	Record(units int64)
	RemainingDaily() int64
}
