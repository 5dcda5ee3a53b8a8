package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geolocator/internal/domain"
	"github.com/kailas-cloud/geolocator/internal/domain/search/request"
	"github.com/kailas-cloud/geolocator/internal/domain/search/result"
	"github.com/kailas-cloud/geolocator/internal/metrics"
)

// InstrumentedExecutor wraps an Executor with quota enforcement and logging.
// Transport metrics live in the provider client; this layer owns quota.
type InstrumentedExecutor struct {
	inner    Executor
	provider string
	cost     int64
	quota    QuotaChecker
	logger   *zap.Logger
}

// NewInstrumentedExecutor wraps inner. quota may be nil.
func NewInstrumentedExecutor(
	inner Executor, provider string, cost int64,
	quota QuotaChecker, logger *zap.Logger,
) *InstrumentedExecutor {
	return &InstrumentedExecutor{
		inner:    inner,
		provider: provider,
		cost:     cost,
		quota:    quota,
		logger:   logger,
	}
}

// Execute checks quota, delegates and records the units the provider charged.
func (e *InstrumentedExecutor) Execute(ctx context.Context, req *request.Request) (result.Raw, error) {
	if e.quota != nil {
		if err := e.quota.Check(ctx); err != nil {
			metrics.SearchErrorsTotal.WithLabelValues(e.provider, "quota").Inc()
			e.logger.Error("Search quota exceeded",
				zap.String("provider", e.provider),
				zap.Error(err),
			)
			return nil, fmt.Errorf("quota check: %w", err)
		}
	}

	start := time.Now()
	raw, err := e.inner.Execute(ctx, req)
	duration := time.Since(start)

	// The provider bills rejected calls too; only transport failures are free.
	if err == nil || errors.Is(err, domain.ErrSearchRejected) {
		e.recordQuota()
	}

	if err != nil {
		e.logger.Error("Search request failed",
			zap.String("provider", e.provider),
			zap.String("location", req.Location()),
			zap.String("radius", req.LocationRadius()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("execute search: %w", err)
	}

	e.logger.Debug("Search request completed",
		zap.String("provider", e.provider),
		zap.String("location", req.Location()),
		zap.String("radius", req.LocationRadius()),
		zap.String("q", req.Keywords()),
		zap.Duration("duration", duration),
		zap.Int("bytes", len(raw)),
	)
	return raw, nil
}

func (e *InstrumentedExecutor) recordQuota() {
	if e.quota == nil || e.cost <= 0 {
		return
	}
	e.quota.Record(e.cost)
	metrics.QuotaUnitsRemaining.WithLabelValues(e.provider, "daily").Set(float64(e.quota.RemainingDaily()))
}
