package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/geolocator/internal/domain"
	"github.com/kailas-cloud/geolocator/internal/domain/geo"
	"github.com/kailas-cloud/geolocator/internal/logger"
	"github.com/kailas-cloud/geolocator/internal/usecase/coordinator"
	healthuc "github.com/kailas-cloud/geolocator/internal/usecase/health"
	"github.com/kailas-cloud/geolocator/internal/usecase/session"
	usageuc "github.com/kailas-cloud/geolocator/internal/usecase/usage"
)

const maxBodyBytes = 1 << 16

// Server exposes session coordinators over HTTP.
type Server struct {
	sessions      *session.Registry
	health        *healthuc.Service
	usage         *usageuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP server.
func NewServer(
	sessions *session.Registry, health *healthuc.Service, usage *usageuc.Service, logger *zap.Logger,
) *Server {
	return &Server{
		sessions:      sessions,
		health:        health,
		usage:         usage,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Routes mounts all endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/usage", s.GetUsage)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/map/click", s.ClickMap)
			r.Post("/marker/dragend", s.DragMarkerEnd)
			r.Post("/radius/slide", s.SlideRadius)
			r.Post("/radius/input", s.InputRadius)
			r.Post("/radius/blur", s.BlurRadius)
			r.Put("/keywords/{slot}", s.SetKeyword)
			r.Post("/search", s.Search)
			r.Post("/search/cancel", s.CancelSearch)
		})
	})
}

// --- Sessions ---

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		s.handleDomainError(w, r, err, nil)
		return
	}
	logger.FromContextOr(r.Context(), s.logger).Info("Session created", zap.String("session_id", sess.ID))
	writeSnapshot(w, http.StatusCreated, sess)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeSnapshot(w, http.StatusOK, sess)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Interaction events ---

// ClickMap handles POST /sessions/{id}/map/click.
func (s *Server) ClickMap(w http.ResponseWriter, r *http.Request) {
	s.pointEvent(w, r, (*coordinator.Coordinator).ClickMap)
}

// DragMarkerEnd handles POST /sessions/{id}/marker/dragend.
func (s *Server) DragMarkerEnd(w http.ResponseWriter, r *http.Request) {
	s.pointEvent(w, r, (*coordinator.Coordinator).DragMarkerEnd)
}

func (s *Server) pointEvent(w http.ResponseWriter, r *http.Request, apply func(*coordinator.Coordinator, geo.Point) error) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body PointBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Lat == nil || body.Lng == nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "lat and lng are required")
		return
	}
	if err := apply(sess.Coordinator, geo.Point{Lat: *body.Lat, Lng: *body.Lng}); err != nil {
		s.handleDomainError(w, r, err, nil)
		return
	}
	writeSnapshot(w, http.StatusOK, sess)
}

// SlideRadius handles POST /sessions/{id}/radius/slide.
func (s *Server) SlideRadius(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body RadiusBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Value == nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "value is required")
		return
	}
	sess.Coordinator.SlideRadius(*body.Value)
	writeSnapshot(w, http.StatusOK, sess)
}

// InputRadius handles POST /sessions/{id}/radius/input. A null value empties the field.
func (s *Server) InputRadius(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body RadiusBody
	if !decodeBody(w, r, &body) {
		return
	}
	sess.Coordinator.InputRadius(body.Value)
	writeSnapshot(w, http.StatusOK, sess)
}

// BlurRadius handles POST /sessions/{id}/radius/blur.
func (s *Server) BlurRadius(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Coordinator.BlurRadius()
	writeSnapshot(w, http.StatusOK, sess)
}

// SetKeyword handles PUT /sessions/{id}/keywords/{slot}.
func (s *Server) SetKeyword(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidSlot, "slot must be an integer")
		return
	}
	var body KeywordBody
	if !decodeBody(w, r, &body) {
		return
	}
	if err := sess.Coordinator.SetKeyword(slot, body.Text); err != nil {
		s.handleDomainError(w, r, err, nil)
		return
	}
	writeSnapshot(w, http.StatusOK, sess)
}

// --- Search ---

// Search handles POST /sessions/{id}/search. Provider failures are reported
// through the snapshot error indicator with status 200; refused searches get
// an error body carrying the unchanged snapshot.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	log := logger.FromContextOr(r.Context(), s.logger).With(zap.String("session_id", sess.ID))
	ctx := logger.ContextWithLogger(r.Context(), log)
	snap, err := sess.Coordinator.Go(ctx)
	resp := snapshotToResponse(sess.ID, &snap)
	if err != nil && !isProviderFailure(err) {
		s.handleDomainError(w, r, err, &resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// CancelSearch handles POST /sessions/{id}/search/cancel.
func (s *Server) CancelSearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Coordinator.Cancel()
	writeSnapshot(w, http.StatusOK, sess)
}

func isProviderFailure(err error) bool {
	switch domain.KindOf(err) {
	case domain.KindSearchUnavailable, domain.KindSearchRejected, domain.KindProjectionFailed:
		return true
	default:
		return false
	}
}

// --- Health & Metrics ---

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthToResponse(report))
}

// --- Usage ---

// GetUsage handles GET /usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	report := s.usage.GetReport(r.Context())
	writeJSON(w, http.StatusOK, usageToResponse(&report))
}

// --- helpers ---

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err, nil)
		return nil, false
	}
	return sess, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodeBadRequest, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeSnapshot(w http.ResponseWriter, status int, sess *session.Session) {
	snap := sess.Coordinator.Snapshot()
	writeJSON(w, status, snapshotToResponse(sess.ID, &snap))
}
