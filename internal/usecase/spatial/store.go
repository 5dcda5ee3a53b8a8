package spatial

import (
	"fmt"
	"sync"

	"github.com/kailas-cloud/geolocator/internal/domain"
	"github.com/kailas-cloud/geolocator/internal/domain/geo"
)

// State is a copy of the store contents.
type State struct {
	Point  geo.Point
	Radius geo.RadiusInput
}

// Store holds the selected point and the radius input. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	point  geo.Point
	radius geo.RadiusInput
}

// New creates a store seeded with the given point and radius.
func New(point geo.Point, radius int) *Store {
	if !point.Valid() {
		point = geo.DefaultPoint
	}
	return &Store{point: point, radius: geo.RadiusValue(radius)}
}

// SetPoint replaces the selected point.
func (s *Store) SetPoint(p geo.Point) error {
	if !p.Valid() {
		return fmt.Errorf("%w: (%v, %v)", domain.ErrInvalidPoint, p.Lat, p.Lng)
	}
	s.mu.Lock()
	s.point = p
	s.mu.Unlock()
	return nil
}

// SetRadius stores r as typed, without clamping.
func (s *Store) SetRadius(r int) {
	s.mu.Lock()
	s.radius = geo.RadiusValue(r)
	s.mu.Unlock()
}

// ClearRadius marks the radius field as empty.
func (s *Store) ClearRadius() {
	s.mu.Lock()
	s.radius = geo.EmptyRadius()
	s.mu.Unlock()
}

// Clamp forces the radius into [0,100] and returns the settled value.
func (s *Store) Clamp() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.radius = s.radius.Clamp()
	return s.radius.Value()
}

// State returns the current point and radius input.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{Point: s.point, Radius: s.radius}
}
