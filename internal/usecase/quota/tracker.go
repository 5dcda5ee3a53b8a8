package quota

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geolocator/internal/domain"
)

// Action defines behavior when the daily quota is spent.
type Action string

const (
	// ActionWarn logs a warning but allows the search.
	ActionWarn Action = "warn"
	// ActionReject blocks the search locally.
	ActionReject Action = "reject"
)

// IsValid reports whether a is a known action.
func (a Action) IsValid() bool { return a == ActionWarn || a == ActionReject }

// SearchCost is the provider unit cost of one search.list call.
const SearchCost = 100

// ReasonLocalQuota is the rejection reason reported for local refusals.
const ReasonLocalQuota = "localQuotaExceeded"

// Store is the persistence interface for quota counters.
type Store interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// Tracker counts provider quota units per UTC day.
// Check is in-memory only; Record updates memory then writes behind to the store.
type Tracker struct {
	mu           sync.Mutex
	dailyUsed    int64
	dailyLimit   int64
	action       Action
	provider     string
	lastDayReset time.Time
	store        Store
	logger       *zap.Logger
	now          func() time.Time
}

// NewTracker creates a tracker. dailyLimit 0 means unlimited.
func NewTracker(provider string, dailyLimit int64, action Action, logger *zap.Logger) *Tracker {
	t := &Tracker{
		dailyLimit: dailyLimit,
		action:     action,
		provider:   provider,
		logger:     logger,
		now:        time.Now,
	}
	t.lastDayReset = truncateToDay(t.now().UTC())
	return t
}

// WithStore attaches a persistence store and loads today's counter.
func (t *Tracker) WithStore(ctx context.Context, store Store) *Tracker {
	t.store = store

	t.mu.Lock()
	defer t.mu.Unlock()

	key := t.dailyKey(t.now().UTC())
	val, err := store.Get(ctx, key)
	if err != nil {
		t.logger.Warn("Failed to load daily quota from store", zap.String("key", key), zap.Error(err))
		return t
	}
	t.dailyUsed = val
	t.logger.Info("Quota loaded from store",
		zap.String("provider", t.provider),
		zap.Int64("daily_used", t.dailyUsed),
	)
	return t
}

func (t *Tracker) dailyKey(now time.Time) string {
	return fmt.Sprintf("%squota:%s:daily:%s", domain.KeyPrefix, t.provider, now.Format("2006-01-02"))
}

// Check verifies the quota allows another search.
func (t *Tracker) Check(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded()
	if t.dailyLimit <= 0 || t.dailyUsed < t.dailyLimit {
		return nil
	}

	if t.action == ActionReject {
		return domain.NewSearchRejected(http.StatusTooManyRequests, ReasonLocalQuota,
			fmt.Sprintf("daily quota of %d units spent", t.dailyLimit))
	}

	t.logger.Warn("Daily quota exceeded",
		zap.String("provider", t.provider),
		zap.Int64("daily_used", t.dailyUsed),
		zap.Int64("daily_limit", t.dailyLimit),
	)
	return nil
}

// Record registers units spent by a provider call.
func (t *Tracker) Record(units int64) {
	t.mu.Lock()
	t.resetIfNeeded()
	t.dailyUsed += units
	store := t.store
	key := t.dailyKey(t.now().UTC())
	t.mu.Unlock()

	if store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := store.IncrBy(ctx, key, units); err != nil {
		t.logger.Warn("Failed to persist daily quota", zap.String("key", key), zap.Error(err))
	}
}

// RemainingDaily returns units left today (-1 if unlimited).
func (t *Tracker) RemainingDaily() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded()
	if t.dailyLimit <= 0 {
		return -1
	}
	return max(t.dailyLimit-t.dailyUsed, 0)
}

// DailyUsed returns units spent today.
func (t *Tracker) DailyUsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return t.dailyUsed
}

// DailyLimit returns the configured cap.
func (t *Tracker) DailyLimit() int64 { return t.dailyLimit }

func (t *Tracker) resetIfNeeded() {
	today := truncateToDay(t.now().UTC())
	if today.After(t.lastDayReset) {
		t.dailyUsed = 0
		t.lastDayReset = today
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
