package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest signals a search request that must not be sent.
	ErrInvalidRequest = errors.New("invalid search request")
	// ErrSearchUnavailable signals a transport-level failure reaching the provider.
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrSearchRejected signals that the provider declined the request.
	ErrSearchRejected = errors.New("search rejected")
	// ErrProjection signals a structurally unusable provider response.
	ErrProjection = errors.New("could not parse results")
	// ErrSearchSuperseded signals a response dropped because a newer search started.
	ErrSearchSuperseded = errors.New("search superseded")

	// ErrInvalidPoint signals coordinates outside the valid lat/lng range.
	ErrInvalidPoint = errors.New("invalid point")
	// ErrInvalidSlot signals a keyword slot index outside the configured range.
	ErrInvalidSlot = errors.New("invalid keyword slot")
	// ErrSessionNotFound signals a missing session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTooManySessions signals that the session registry is full.
	ErrTooManySessions = errors.New("too many sessions")
)

// SearchRejectedError wraps ErrSearchRejected with the provider's status.
type SearchRejectedError struct {
	Status  int
	Reason  string
	Message string
}

func (e *SearchRejectedError) Error() string {
	msg := fmt.Sprintf("%s: status %d", ErrSearchRejected.Error(), e.Status)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *SearchRejectedError) Unwrap() error { return ErrSearchRejected }

// NewSearchRejected creates a provider rejection error.
func NewSearchRejected(status int, reason, message string) error {
	return &SearchRejectedError{Status: status, Reason: reason, Message: message}
}

// ErrorKind is the user-facing classification of a failed search.
type ErrorKind string

const (
	// KindNone means the error is not a search failure.
	KindNone ErrorKind = ""
	// KindInvalidRequest is a local invariant violation.
	KindInvalidRequest ErrorKind = "invalid_request"
	// KindSearchUnavailable is a transport failure.
	KindSearchUnavailable ErrorKind = "search_unavailable"
	// KindSearchRejected is a provider rejection.
	KindSearchRejected ErrorKind = "search_rejected"
	// KindProjectionFailed is an unusable response.
	KindProjectionFailed ErrorKind = "projection_failed"
)

// KindOf classifies err into one of the search failure kinds.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, ErrSearchRejected):
		return KindSearchRejected
	case errors.Is(err, ErrSearchUnavailable):
		return KindSearchUnavailable
	case errors.Is(err, ErrProjection):
		return KindProjectionFailed
	default:
		return KindNone
	}
}
