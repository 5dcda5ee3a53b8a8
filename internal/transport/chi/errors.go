package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geolocator/internal/domain"
	"github.com/kailas-cloud/geolocator/internal/logger"
)

// errorHandler maps a domain error to a status and code. Returns false if
// the error is not its concern.
type errorHandler func(err error) (int, ErrorCode, bool)

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, ErrorCodeSessionNotFound),
		sentinelHandler(domain.ErrTooManySessions, http.StatusServiceUnavailable, ErrorCodeTooManySessions),
		sentinelHandler(domain.ErrInvalidPoint, http.StatusBadRequest, ErrorCodeInvalidPoint),
		sentinelHandler(domain.ErrInvalidSlot, http.StatusBadRequest, ErrorCodeInvalidSlot),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusUnprocessableEntity, ErrorCodeInvalidRequest),
		sentinelHandler(domain.ErrSearchSuperseded, http.StatusConflict, ErrorCodeSearchSuperseded),
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(err error) (int, ErrorCode, bool) {
		if !errors.Is(err, sentinel) {
			return 0, "", false
		}
		return status, code, true
	}
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrSessionNotFound,
		domain.ErrTooManySessions,
		domain.ErrInvalidPoint,
		domain.ErrInvalidSlot,
		domain.ErrInvalidRequest,
		domain.ErrSearchSuperseded,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error, snap *SnapshotResponse) {
	log := logger.FromContextOr(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if status, code, ok := h(err); ok {
			log.Warn("domain error", zap.Error(err))
			writeJSON(w, status, ErrorResponse{Code: code, Message: safeDomainMessage(err), Snapshot: snap})
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
