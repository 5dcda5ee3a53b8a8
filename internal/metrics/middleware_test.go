package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/sessions/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})

	for _, id := range []string{"a1", "b2", "c3"} {
		req := httptest.NewRequest(http.MethodGet, "/sessions/"+id, http.NoBody)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
	}

	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/sessions/{id}", "200"))
	if got < 3 {
		t.Errorf("http_requests_total{path=/sessions/{id}} = %f, want >= 3", got)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds observations")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/sessions/{id}/search", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})
	r.Delete("/sessions/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		method, target, pattern, status string
	}{
		{http.MethodPost, "/sessions/x/search", "/sessions/{id}/search", "422"},
		{http.MethodDelete, "/sessions/x", "/sessions/{id}", "204"},
	}
	for _, tc := range tests {
		t.Run(tc.pattern, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, http.NoBody)
			r.ServeHTTP(httptest.NewRecorder(), req)

			val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.pattern, tc.status))
			if val < 1 {
				t.Errorf("requests_total{%s %s %s} = %f", tc.method, tc.pattern, tc.status, val)
			}
		})
	}
}

func TestMiddleware_WithoutRouter(t *testing.T) {
	h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/raw", http.NoBody))

	if testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "418")) < 1 {
		t.Error("expected request without chi context to be labelled unknown")
	}
}

func TestRegisterSearchMetrics_Idempotent(t *testing.T) {
	RegisterSearchMetrics()
	RegisterSearchMetrics()

	SearchRequestsTotal.WithLabelValues("youtube", "ok").Inc()
	if testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("youtube", "ok")) < 1 {
		t.Error("search counter not incremented")
	}
}
