package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/geolocator/internal/domain"
	"github.com/kailas-cloud/geolocator/internal/domain/geo"
	"github.com/kailas-cloud/geolocator/internal/domain/search/kind"
	"github.com/kailas-cloud/geolocator/internal/domain/search/request"
	"github.com/kailas-cloud/geolocator/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterSearchMetrics()
	os.Exit(m.Run())
}

func newRequest(t *testing.T, p geo.Point, radius int, keywords ...string) *request.Request {
	t.Helper()
	req, err := request.New(p, radius, geo.Miles, keywords, kind.Video, 5)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}

func TestClient_Execute_QueryParameters(t *testing.T) {
	var gotRaw string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "geolocator/") {
			t.Errorf("User-Agent = %q", ua)
		}
		gotRaw = r.URL.RawQuery
		q := r.URL.Query()
		checks := map[string]string{
			"part":           "snippet",
			"location":       "51.505,-0.09",
			"locationRadius": "10mi",
			"q":              "cats",
			"type":           "video",
			"maxResults":     "5",
			"key":            "test-key",
		}
		for k, want := range checks {
			if got := q.Get(k); got != want {
				t.Errorf("%s = %q, want %q", k, got, want)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	c := NewClient("test-key", WithBaseURL(server.URL+"/"))
	raw, err := c.Execute(context.Background(), newRequest(t, geo.DefaultPoint, 10, "cats", ""))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if string(raw) != `{"items":[]}` {
		t.Errorf("raw = %s", raw)
	}

	decoded, err := geo.DecodeLocation(extractParam(t, gotRaw, "location"))
	if err != nil {
		t.Fatalf("DecodeLocation: %v", err)
	}
	if decoded != geo.DefaultPoint {
		t.Errorf("decoded location = %+v", decoded)
	}
}

func extractParam(t *testing.T, rawQuery, name string) string {
	t.Helper()
	for _, kv := range strings.Split(rawQuery, "&") {
		if v, ok := strings.CutPrefix(kv, name+"="); ok {
			return v
		}
	}
	t.Fatalf("param %s not in %s", name, rawQuery)
	return ""
}

func TestClient_Execute_EncodesComma(t *testing.T) {
	var rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	c := NewClient("k", WithBaseURL(server.URL))
	if _, err := c.Execute(context.Background(), newRequest(t, geo.DefaultPoint, 10)); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := extractParam(t, rawQuery, "location"); got != "51.505%2C-0.09" {
		t.Errorf("location = %q, want 51.505%%2C-0.09", got)
	}
}

func TestClient_Execute_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The request cannot be completed because you have exceeded your quota.","errors":[{"message":"quota","domain":"youtube.quota","reason":"quotaExceeded"}]}}`))
	}))
	defer server.Close()

	c := NewClient("k", WithBaseURL(server.URL))
	_, err := c.Execute(context.Background(), newRequest(t, geo.DefaultPoint, 10))
	if !errors.Is(err, domain.ErrSearchRejected) {
		t.Fatalf("err = %v, want ErrSearchRejected", err)
	}
	var rej *domain.SearchRejectedError
	if !errors.As(err, &rej) {
		t.Fatalf("err is not SearchRejectedError: %T", err)
	}
	if rej.Status != http.StatusForbidden || rej.Reason != "quotaExceeded" {
		t.Errorf("rejection = %+v", rej)
	}
}

func TestClient_Execute_RejectedNonJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	_, err := NewClient("k", WithBaseURL(server.URL)).Execute(context.Background(), newRequest(t, geo.DefaultPoint, 10))
	var rej *domain.SearchRejectedError
	if !errors.As(err, &rej) {
		t.Fatalf("err = %v, want SearchRejectedError", err)
	}
	if rej.Status != http.StatusBadGateway || rej.Message != "upstream down" {
		t.Errorf("rejection = %+v", rej)
	}
}

func TestClient_Execute_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient("k", WithBaseURL(url)).Execute(context.Background(), newRequest(t, geo.DefaultPoint, 10))
	if !errors.Is(err, domain.ErrSearchUnavailable) {
		t.Fatalf("err = %v, want ErrSearchUnavailable", err)
	}
}

func TestClient_Execute_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewClient("k", WithBaseURL(server.URL)).Execute(ctx, newRequest(t, geo.DefaultPoint, 10))
	if !errors.Is(err, domain.ErrSearchUnavailable) {
		t.Fatalf("err = %v, want ErrSearchUnavailable", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want wrapped DeadlineExceeded", err)
	}
}

func TestClient_RateLimitWaitHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	c := NewClient("k", WithBaseURL(server.URL), WithRateLimit(0.001, 1))
	req := newRequest(t, geo.DefaultPoint, 10)
	if _, err := c.Execute(context.Background(), req); err != nil {
		t.Fatalf("first Execute: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.Execute(ctx, req)
	if !errors.Is(err, domain.ErrSearchUnavailable) {
		t.Fatalf("err = %v, want ErrSearchUnavailable from limiter", err)
	}
}

func TestWithRateLimit_Disabled(t *testing.T) {
	c := NewClient("k", WithRateLimit(0, 0))
	if c.limiter != nil {
		t.Error("rps 0 must disable the limiter")
	}
}

func TestClient_Execute_ErrorHidesAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient("secret-key", WithBaseURL(url)).Execute(context.Background(), newRequest(t, geo.DefaultPoint, 10))
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "secret-key") {
		t.Errorf("error leaks api key: %v", err)
	}
}
