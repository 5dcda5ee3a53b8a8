package geolocator

import (
	"context"
	"time"

	"github.com/kailas-cloud/geolocator/internal/domain/geo"
	"github.com/kailas-cloud/geolocator/internal/usecase/coordinator"
)

// Session is one map page. Safe for concurrent use; a newer Go supersedes
// any search still in flight.
type Session struct {
	coord *coordinator.Coordinator
	obs   *observer
}

// ClickMap moves the center to a clicked point.
func (s *Session) ClickMap(lat, lng float64) error {
	return s.coord.ClickMap(geo.Point{Lat: lat, Lng: lng})
}

// DragMarker moves the center to where the marker was dropped.
func (s *Session) DragMarker(lat, lng float64) error {
	return s.coord.DragMarkerEnd(geo.Point{Lat: lat, Lng: lng})
}

// SlideRadius sets the radius from the slider.
func (s *Session) SlideRadius(r int) {
	s.coord.SlideRadius(r)
}

// InputRadius sets the radius from the number field. nil clears the field.
func (s *Session) InputRadius(r *int) {
	s.coord.InputRadius(r)
}

// BlurRadius clamps the number field into range and returns the result.
func (s *Session) BlurRadius() int {
	return s.coord.BlurRadius()
}

// SetKeyword replaces keyword field slot.
func (s *Session) SetKeyword(slot int, text string) error {
	return s.coord.SetKeyword(slot, text)
}

// Go searches the current state. Provider failures leave previous results
// in place and are reported both as the error and as Snapshot.Failure.
func (s *Session) Go(ctx context.Context) (snap Snapshot, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search", start, err) }()

	ds, err := s.coord.Go(ctx)
	return snapshotFromDomain(&ds), err
}

// Cancel drops any search in flight without publishing.
func (s *Session) Cancel() {
	s.coord.Cancel()
}

// Snapshot returns the published state.
func (s *Session) Snapshot() Snapshot {
	ds := s.coord.Snapshot()
	return snapshotFromDomain(&ds)
}
