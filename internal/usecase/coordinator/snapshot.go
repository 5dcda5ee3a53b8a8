package coordinator

import (
	"errors"
	"time"

	"github.com/kailas-cloud/geolocator/internal/domain"
	"github.com/kailas-cloud/geolocator/internal/domain/geo"
	"github.com/kailas-cloud/geolocator/internal/domain/search/result"
)

// Indicator describes the last failed search.
type Indicator struct {
	Kind    domain.ErrorKind
	Status  int
	Reason  string
	Message string
}

// Snapshot is the published state read by presentation.
type Snapshot struct {
	Point     geo.Point
	Radius    geo.RadiusInput
	Keywords  []string
	Results   result.List
	Error     *Indicator
	Pending   bool
	Seq       uint64
	UpdatedAt time.Time
}

func indicatorFor(err error) *Indicator {
	ind := &Indicator{Kind: domain.KindOf(err)}

	var rej *domain.SearchRejectedError
	switch {
	case errors.As(err, &rej):
		ind.Status = rej.Status
		ind.Reason = rej.Reason
		ind.Message = rej.Message
	case ind.Kind == domain.KindSearchUnavailable:
		ind.Message = domain.ErrSearchUnavailable.Error()
	case ind.Kind == domain.KindProjectionFailed:
		ind.Message = domain.ErrProjection.Error()
	default:
		ind.Message = err.Error()
	}
	return ind
}
