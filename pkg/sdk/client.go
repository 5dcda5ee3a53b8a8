package geolocator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geolocator/internal/db"
	dbRedis "github.com/kailas-cloud/geolocator/internal/db/redis"
	"github.com/kailas-cloud/geolocator/internal/domain"
	"github.com/kailas-cloud/geolocator/internal/domain/geo"
	"github.com/kailas-cloud/geolocator/internal/domain/search/request"
	"github.com/kailas-cloud/geolocator/internal/domain/search/result"
	quotarepo "github.com/kailas-cloud/geolocator/internal/repository/quota"
	"github.com/kailas-cloud/geolocator/internal/repository/searchcache"
	"github.com/kailas-cloud/geolocator/internal/transport/youtube"
	"github.com/kailas-cloud/geolocator/internal/usecase/coordinator"
	healthuc "github.com/kailas-cloud/geolocator/internal/usecase/health"
	"github.com/kailas-cloud/geolocator/internal/usecase/projector"
	quotauc "github.com/kailas-cloud/geolocator/internal/usecase/quota"
	searchuc "github.com/kailas-cloud/geolocator/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped in tests.
type executor interface {
	Execute(ctx context.Context, req *request.Request) (result.Raw, error)
}

type projectorUseCase interface {
	Project(raw result.Raw) (result.List, error)
}

type quotaUseCase interface {
	RemainingDaily() int64
	DailyUsed() int64
	DailyLimit() int64
}

// Client is the geolocator SDK entry point.
type Client struct {
	store     db.Store
	exec      executor
	proj      projectorUseCase
	tracker   quotaUseCase
	healthSvc healthUseCase
	searchCfg domain.SearchConfig
	obs       *observer
	logger    *zap.Logger
}

// New creates a Client. The provided context is used for the readiness
// check of the quota store when WithRedis is set.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("geolocator: api key required")
	}

	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	searchCfg, err := cfg.searchConfig()
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	logger := newInternalLogger(cfg.logger)

	action := quotauc.ActionWarn
	if cfg.rejectQuota {
		action = quotauc.ActionReject
	}
	tracker := quotauc.NewTracker(youtube.Provider, cfg.dailyLimit, action, logger)

	var store db.Store
	if len(cfg.addrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("geolocator: create redis store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("geolocator: quota store not ready: %w", err)
		}
		tracker.WithStore(ctx, quotarepo.New(s, quotarepo.DefaultTTL))
		store = s
	}

	ytOpts := []youtube.Option{youtube.WithRateLimit(cfg.rps, cfg.burst)}
	if cfg.baseURL != "" {
		ytOpts = append(ytOpts, youtube.WithBaseURL(cfg.baseURL))
	}
	if cfg.httpClient != nil {
		ytOpts = append(ytOpts, youtube.WithHTTPClient(cfg.httpClient))
	}
	var exec executor = searchuc.NewInstrumentedExecutor(
		youtube.NewClient(apiKey, ytOpts...), youtube.Provider, quotauc.SearchCost, tracker, logger,
	)
	if store != nil && cfg.cacheTTL > 0 {
		exec = searchcache.New(exec, store, cfg.cacheTTL, nil, logger)
	}

	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	var reporter healthuc.QuotaReporter
	if cfg.dailyLimit > 0 {
		reporter = tracker
	}

	return &Client{
		store:     store,
		exec:      exec,
		proj:      projector.New(searchCfg.Capacity, cfg.thumbnail),
		tracker:   tracker,
		healthSvc: healthuc.New(pinger, reporter),
		searchCfg: searchCfg,
		obs:       obs,
		logger:    logger,
	}, nil
}

func (c *clientConfig) searchConfig() (domain.SearchConfig, error) {
	sc := domain.DefaultSearchConfig()
	if c.capacity > 0 {
		sc.Capacity = c.capacity
	}
	if c.keywordSlots > 0 {
		sc.KeywordSlots = c.keywordSlots
	}
	if c.unit != "" {
		sc.Unit = geo.Unit(c.unit)
		if !sc.Unit.IsValid() {
			return domain.SearchConfig{}, fmt.Errorf("geolocator: unknown unit %q", c.unit)
		}
	}
	if c.pointSet {
		p, err := geo.NewPoint(c.lat, c.lng)
		if err != nil {
			return domain.SearchConfig{}, fmt.Errorf("geolocator: default point: %w", err)
		}
		sc.DefaultPoint = p
	}
	if c.radiusSet {
		if !geo.RadiusInBounds(c.defaultRadius) {
			return domain.SearchConfig{}, fmt.Errorf("geolocator: default radius %d out of range", c.defaultRadius)
		}
		sc.DefaultRadius = c.defaultRadius
	}
	if c.timeout > 0 {
		sc.Timeout = c.timeout
	}
	return sc, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// NewSession starts an interaction session at the default point and radius.
func (c *Client) NewSession() *Session {
	return &Session{
		coord: coordinator.New(c.searchCfg, c.exec, c.proj, youtube.Provider, c.logger),
		obs:   c.obs,
	}
}

// Search starts a one-shot query builder.
func (c *Client) Search() *SearchBuilder {
	return &SearchBuilder{
		client: c,
		point:  c.searchCfg.DefaultPoint,
		radius: c.searchCfg.DefaultRadius,
		unit:   c.searchCfg.Unit,
	}
}
