package geolocator

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const twoVideos = `{"items":[
	{"id":{"videoId":"a1"},"snippet":{"title":"First","publishedAt":"2024-01-02T00:00:00Z","channelTitle":"c1","thumbnails":{"high":{"url":"http://img/1"},"default":{"url":"http://img/1s"}}}},
	{"id":{"videoId":"b2"},"snippet":{"title":"Second","description":"two"}}
]}`

func fakeYouTube(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithBaseURL(baseURL)}, opts...)
	c, err := New(context.Background(), "test-key", opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestNew_NoAPIKey(t *testing.T) {
	if _, err := New(context.Background(), ""); err == nil {
		t.Fatal("expected error when api key is empty")
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"unit", WithUnit("yd")},
		{"point", WithDefaultPoint(100, 0)},
		{"radius", WithDefaultRadius(500)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(context.Background(), "k", tt.opt); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNew_DefaultRadiusZero(t *testing.T) {
	yt, _ := fakeYouTube(t, http.StatusOK, twoVideos)
	c := newTestClient(t, yt.URL, WithDefaultRadius(0))

	snap := c.NewSession().Snapshot()
	if snap.Radius.Value != 0 || snap.Radius.Empty {
		t.Errorf("radius = %+v, want 0", snap.Radius)
	}
	if got := c.Search().radius; got != 0 {
		t.Errorf("builder radius = %d, want 0", got)
	}
}

func TestSession_SearchFlow(t *testing.T) {
	yt, _ := fakeYouTube(t, http.StatusOK, twoVideos)
	c := newTestClient(t, yt.URL)

	s := c.NewSession()
	if err := s.ClickMap(40, -75); err != nil {
		t.Fatalf("ClickMap: %v", err)
	}
	s.SlideRadius(25)
	if err := s.SetKeyword(0, "music"); err != nil {
		t.Fatalf("SetKeyword: %v", err)
	}

	snap, err := s.Go(context.Background())
	if err != nil {
		t.Fatalf("Go: %v", err)
	}
	if snap.Filled != 2 || len(snap.Results) != 5 {
		t.Fatalf("filled = %d, slots = %d", snap.Filled, len(snap.Results))
	}
	if snap.Results[0].ID != "a1" || snap.Results[0].ThumbnailURL != "http://img/1" {
		t.Errorf("first = %+v", snap.Results[0])
	}
	if snap.Results[1].Description != "two" || snap.Results[1].ThumbnailURL != "" {
		t.Errorf("second = %+v", snap.Results[1])
	}
	if snap.Point != (Point{Lat: 40, Lng: -75}) || snap.Radius.Value != 25 {
		t.Errorf("state = %+v %+v", snap.Point, snap.Radius)
	}
	if snap.Failure != nil {
		t.Errorf("unexpected failure %+v", snap.Failure)
	}
}

func TestSession_ProviderRejected(t *testing.T) {
	yt, _ := fakeYouTube(t, http.StatusForbidden,
		`{"error":{"message":"quota","errors":[{"reason":"quotaExceeded"}]}}`)
	c := newTestClient(t, yt.URL)

	snap, err := c.NewSession().Go(context.Background())
	if !errors.Is(err, ErrSearchRejected) {
		t.Fatalf("err = %v, want ErrSearchRejected", err)
	}
	var rej *RejectedError
	if !errors.As(err, &rej) || rej.Reason != "quotaExceeded" {
		t.Errorf("rejected = %+v", rej)
	}
	if snap.Failure == nil || snap.Failure.Status != http.StatusForbidden {
		t.Errorf("failure = %+v", snap.Failure)
	}
}

func TestSession_EmptyRadius(t *testing.T) {
	yt, calls := fakeYouTube(t, http.StatusOK, twoVideos)
	c := newTestClient(t, yt.URL)

	s := c.NewSession()
	s.InputRadius(nil)
	snap, err := s.Go(context.Background())
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
	if !snap.Radius.Empty || snap.Failure != nil {
		t.Errorf("snapshot = %+v", snap)
	}
	if calls.Load() != 0 {
		t.Error("provider must not be called")
	}
	if got := s.BlurRadius(); got != 0 {
		t.Errorf("BlurRadius() = %d, want 0", got)
	}
}

func TestSession_LogsToCallerLogger(t *testing.T) {
	yt, _ := fakeYouTube(t, http.StatusOK, twoVideos)
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := newTestClient(t, yt.URL, WithLogger(l))

	s := c.NewSession()
	s.InputRadius(nil)
	if _, err := s.Go(context.Background()); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"msg":"Search aborted"`) || !strings.Contains(out, `"level":"ERROR"`) {
		t.Errorf("aborted search not logged: %s", out)
	}
	if !strings.Contains(out, "radius is empty") {
		t.Errorf("error detail missing: %s", out)
	}

	buf.Reset()
	s.BlurRadius()
	if _, err := s.Go(context.Background()); err != nil {
		t.Fatalf("Go: %v", err)
	}
	if !strings.Contains(buf.String(), `"msg":"Search published"`) {
		t.Errorf("published search not logged: %s", buf.String())
	}
}

func TestSearchBuilder_Do(t *testing.T) {
	yt, _ := fakeYouTube(t, http.StatusOK, twoVideos)
	c := newTestClient(t, yt.URL, WithThumbnail("default"))

	videos, err := c.Search().Near(40, -75).Radius(25).Keywords("live", "", "music").Do(context.Background())
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("len = %d, want 2", len(videos))
	}
	if videos[0].ThumbnailURL != "http://img/1s" {
		t.Errorf("thumbnail = %q", videos[0].ThumbnailURL)
	}
}

func TestSearchBuilder_InvalidRadius(t *testing.T) {
	yt, calls := fakeYouTube(t, http.StatusOK, twoVideos)
	c := newTestClient(t, yt.URL)

	_, err := c.Search().Radius(150).Do(context.Background())
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
	if calls.Load() != 0 {
		t.Error("provider must not be called")
	}
}

func TestQuota_LocalReject(t *testing.T) {
	yt, calls := fakeYouTube(t, http.StatusOK, twoVideos)
	c := newTestClient(t, yt.URL, WithDailyQuota(100, true))

	if _, err := c.Search().Do(context.Background()); err != nil {
		t.Fatalf("first search: %v", err)
	}
	q := c.Quota()
	if q.DailyUsed != 100 || q.Remaining != 0 || !q.Exhausted {
		t.Errorf("quota = %+v", q)
	}

	_, err := c.Search().Do(context.Background())
	var rej *RejectedError
	if !errors.As(err, &rej) || rej.Status != http.StatusTooManyRequests {
		t.Fatalf("err = %v, want local 429 rejection", err)
	}
	if calls.Load() != 1 {
		t.Errorf("provider calls = %d, want 1", calls.Load())
	}

	h := c.Health(context.Background())
	if h.Status != "degraded" || h.Checks["quota"] != "exhausted" {
		t.Errorf("health = %+v", h)
	}
}

func TestQuota_Unlimited(t *testing.T) {
	yt, _ := fakeYouTube(t, http.StatusOK, twoVideos)
	c := newTestClient(t, yt.URL)

	q := c.Quota()
	if q.Remaining != -1 || q.Exhausted {
		t.Errorf("quota = %+v", q)
	}
	if h := c.Health(context.Background()); h.Status != "ok" || len(h.Checks) != 0 {
		t.Errorf("health = %+v", h)
	}
}

func TestPrometheus_Observe(t *testing.T) {
	yt, _ := fakeYouTube(t, http.StatusOK, twoVideos)
	reg := prometheus.NewRegistry()
	c := newTestClient(t, yt.URL, WithPrometheus(reg))

	if _, err := c.NewSession().Go(context.Background()); err != nil {
		t.Fatalf("Go: %v", err)
	}
	if _, err := c.Search().Radius(-1).Do(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("search", "ok")); got != 1 {
		t.Errorf("search ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("search_once", "error")); got != 1 {
		t.Errorf("search_once error = %v, want 1", got)
	}

	// A second client on the same registry reuses the collectors.
	if _, err := New(context.Background(), "k", WithPrometheus(reg)); err != nil {
		t.Fatalf("second client: %v", err)
	}
}
