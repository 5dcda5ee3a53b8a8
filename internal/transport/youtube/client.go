package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kailas-cloud/geolocator/internal/domain"
	"github.com/kailas-cloud/geolocator/internal/domain/search/request"
	"github.com/kailas-cloud/geolocator/internal/domain/search/result"
	"github.com/kailas-cloud/geolocator/internal/metrics"
	"github.com/kailas-cloud/geolocator/internal/version"
)

const (
	// DefaultBaseURL is the YouTube Data API v3 root.
	DefaultBaseURL = "https://youtube.googleapis.com/youtube/v3"
	// Provider labels metrics and quota keys.
	Provider = "youtube"

	maxBodySize = 4 << 20
)

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRateLimit paces outbound requests. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// Client executes search.list requests.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a YouTube search client. The client sets no timeout of
// its own; deadlines come from the caller's context.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Execute issues one search request and returns the raw body of a 2xx response.
func (c *Client) Execute(ctx context.Context, req *request.Request) (result.Raw, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.countError("rate_limit_wait")
			return nil, fmt.Errorf("%w: wait for rate limiter: %w", domain.ErrSearchUnavailable, err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(req), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", domain.ErrSearchUnavailable, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", version.UserAgent())

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.countError("transport")
		// url.Error carries the full URL, api key included.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	metrics.SearchRequestDuration.WithLabelValues(Provider).Observe(time.Since(start).Seconds())
	if err != nil {
		c.countError("read_body")
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrSearchUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.countError("rejected")
		metrics.SearchRequestsTotal.WithLabelValues(Provider, strconv.Itoa(resp.StatusCode)).Inc()
		return nil, parseAPIError(resp.StatusCode, body)
	}

	metrics.SearchRequestsTotal.WithLabelValues(Provider, "success").Inc()
	return result.Raw(body), nil
}

func (c *Client) searchURL(req *request.Request) string {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("location", req.Location())
	params.Set("locationRadius", req.LocationRadius())
	params.Set("q", req.Keywords())
	params.Set("type", string(req.Kind()))
	params.Set("maxResults", strconv.Itoa(req.MaxResults()))
	params.Set("key", c.apiKey)
	return c.baseURL + "/search?" + params.Encode()
}

func (c *Client) countError(kind string) {
	metrics.SearchErrorsTotal.WithLabelValues(Provider, kind).Inc()
	if kind != "rejected" {
		metrics.SearchRequestsTotal.WithLabelValues(Provider, "error").Inc()
	}
}

// parseAPIError turns a non-2xx response into a SearchRejectedError.
func parseAPIError(status int, body []byte) error {
	reason, message := extractDetail(body)
	if message == "" && reason == "" {
		message = strings.TrimSpace(string(body))
		if len(message) > 200 {
			message = message[:200]
		}
	}
	return domain.NewSearchRejected(status, reason, message)
}

// extractDetail reads the Google API error envelope:
// {"error":{"code":403,"message":"...","errors":[{"reason":"quotaExceeded"}]}}.
func extractDetail(body []byte) (reason, message string) {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
			Errors  []struct {
				Reason string `json:"reason"`
			} `json:"errors"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return "", ""
	}
	if len(parsed.Error.Errors) > 0 {
		reason = parsed.Error.Errors[0].Reason
	}
	return reason, parsed.Error.Message
}
