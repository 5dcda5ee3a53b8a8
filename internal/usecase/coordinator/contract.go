package coordinator

import (
	"context"

	"github.com/kailas-cloud/geolocator/internal/domain/search/request"
	"github.com/kailas-cloud/geolocator/internal/domain/search/result"
)

// Executor performs one provider round trip.
type Executor interface {
	Execute(ctx context.Context, req *request.Request) (result.Raw, error)
}

// Projector maps a raw response onto a result list.
type Projector interface {
	Project(raw result.Raw) (result.List, error)
}
