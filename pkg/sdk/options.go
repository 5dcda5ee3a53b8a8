package geolocator

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	baseURL    string
	httpClient *http.Client
	rps        float64
	burst      int

	addrs    []string
	password string
	cacheTTL time.Duration

	dailyLimit  int64
	rejectQuota bool

	capacity      int
	keywordSlots  int
	unit          string
	lat, lng      float64
	pointSet      bool
	defaultRadius int
	radiusSet     bool
	timeout       time.Duration
	thumbnail     string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithBaseURL overrides the search endpoint, e.g. for a proxy or a test server.
func WithBaseURL(u string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = u
	})
}

// WithHTTPClient sets the HTTP client used for provider calls.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithRateLimit caps outgoing provider calls. rps <= 0 disables the limiter.
func WithRateLimit(rps float64, burst int) Option {
	return optionFunc(func(c *clientConfig) {
		c.rps = rps
		c.burst = burst
	})
}

// WithRedis persists quota counters in a Redis or Valkey instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithSearchCache caches provider responses for ttl. Requires WithRedis.
func WithSearchCache(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithDailyQuota caps quota units per UTC day. With reject set, searches
// past the cap fail locally; otherwise they only log a warning.
func WithDailyQuota(units int64, reject bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.dailyLimit = units
		c.rejectQuota = reject
	})
}

// WithCapacity sets the number of result slots. Default: 5.
func WithCapacity(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.capacity = n
	})
}

// WithKeywordSlots sets the number of keyword fields per session. Default: 2.
func WithKeywordSlots(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.keywordSlots = n
	})
}

// WithUnit sets the radius unit: m, km, ft or mi (default).
func WithUnit(unit string) Option {
	return optionFunc(func(c *clientConfig) {
		c.unit = unit
	})
}

// WithDefaultPoint sets where new sessions start.
func WithDefaultPoint(lat, lng float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.lat, c.lng = lat, lng
		c.pointSet = true
	})
}

// WithDefaultRadius sets the starting radius of new sessions. Default: 10.
func WithDefaultRadius(r int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultRadius = r
		c.radiusSet = true
	})
}

// WithTimeout bounds each search round trip. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithThumbnail selects the thumbnail resolution: default, medium or high (default).
func WithThumbnail(resolution string) Option {
	return optionFunc(func(c *clientConfig) {
		c.thumbnail = resolution
	})
}

// WithLogger enables structured logging for SDK operations and for the
// search pipeline underneath them. Pass nil to disable (default).
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
