package geolocator

import "github.com/kailas-cloud/geolocator/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest    = domain.ErrInvalidRequest
	ErrSearchUnavailable = domain.ErrSearchUnavailable
	ErrSearchRejected    = domain.ErrSearchRejected
	ErrProjection        = domain.ErrProjection
	ErrSearchSuperseded  = domain.ErrSearchSuperseded
	ErrInvalidPoint      = domain.ErrInvalidPoint
	ErrInvalidSlot       = domain.ErrInvalidSlot
)

// RejectedError carries the status and reason of a refused search.
// Use errors.As() to inspect.
type RejectedError = domain.SearchRejectedError
