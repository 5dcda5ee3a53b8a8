package coordinator

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geolocator/internal/domain"
	"github.com/kailas-cloud/geolocator/internal/domain/geo"
	"github.com/kailas-cloud/geolocator/internal/domain/search/request"
	"github.com/kailas-cloud/geolocator/internal/domain/search/result"
	"github.com/kailas-cloud/geolocator/internal/logger"
	"github.com/kailas-cloud/geolocator/internal/metrics"
	"github.com/kailas-cloud/geolocator/internal/usecase/spatial"
)

// Coordinator owns the interaction state of one session and runs searches
// against it. State mutation is serialized; the provider round trip runs
// without holding the lock.
type Coordinator struct {
	mu        sync.Mutex
	cfg       domain.SearchConfig
	store     *spatial.Store
	keywords  []string
	results   result.List
	indicator *Indicator
	seq       uint64
	cancel    context.CancelFunc
	pending   bool
	updatedAt time.Time

	exec     Executor
	proj     Projector
	provider string
	logger   *zap.Logger
}

// New creates a coordinator seeded from cfg.
func New(cfg domain.SearchConfig, exec Executor, proj Projector, provider string, l *zap.Logger) *Coordinator {
	if cfg.KeywordSlots <= 0 {
		cfg.KeywordSlots = domain.DefaultSearchConfig().KeywordSlots
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = result.DefaultCapacity
	}
	return &Coordinator{
		cfg:       cfg,
		store:     spatial.New(cfg.DefaultPoint, cfg.DefaultRadius),
		keywords:  make([]string, cfg.KeywordSlots),
		results:   result.Empty(cfg.Capacity),
		updatedAt: time.Now().UTC(),
		exec:      exec,
		proj:      proj,
		provider:  provider,
		logger:    l,
	}
}

// ClickMap selects p as the search center.
func (c *Coordinator) ClickMap(p geo.Point) error {
	return c.setPoint(p)
}

// DragMarkerEnd moves the search center to where the marker was dropped.
func (c *Coordinator) DragMarkerEnd(p geo.Point) error {
	return c.setPoint(p)
}

func (c *Coordinator) setPoint(p geo.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.SetPoint(p); err != nil {
		return fmt.Errorf("set point: %w", err)
	}
	c.touch()
	return nil
}

// SlideRadius applies a slider change.
func (c *Coordinator) SlideRadius(r int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.SetRadius(r)
	c.touch()
}

// InputRadius applies a number-field change; nil means the field was cleared.
// The value is kept as typed until BlurRadius.
func (c *Coordinator) InputRadius(r *int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r == nil {
		c.store.ClearRadius()
	} else {
		c.store.SetRadius(*r)
	}
	c.touch()
}

// BlurRadius settles the number field and returns the clamped radius.
func (c *Coordinator) BlurRadius() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.store.Clamp()
	c.touch()
	return r
}

// SetKeyword replaces the text of one keyword field.
func (c *Coordinator) SetKeyword(slot int, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slot < 0 || slot >= len(c.keywords) {
		return fmt.Errorf("%w: %d not in [0,%d)", domain.ErrInvalidSlot, slot, len(c.keywords))
	}
	c.keywords[slot] = text
	c.touch()
	return nil
}

// Go runs a search for the current state. A newer Go cancels this one; a
// superseded search never publishes and returns domain.ErrSearchSuperseded.
// On failure the previous results stay in place.
func (c *Coordinator) Go(ctx context.Context) (Snapshot, error) {
	log := c.log(ctx)

	c.mu.Lock()
	c.seq++
	seq := c.seq
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.pending = false

	req, err := c.build()
	if err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		log.Error("Search aborted", zap.Uint64("seq", seq), zap.Error(err))
		return snap, err
	}

	var sctx context.Context
	var cancel context.CancelFunc
	if c.cfg.Timeout > 0 {
		sctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
	} else {
		sctx, cancel = context.WithCancel(ctx)
	}
	c.cancel = cancel
	c.pending = true
	c.touch()
	c.mu.Unlock()
	defer cancel()

	raw, err := c.exec.Execute(sctx, &req)
	var list result.List
	if err == nil {
		list, err = c.proj.Project(raw)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		metrics.SearchStaleDiscardedTotal.Inc()
		log.Debug("Discarding superseded search", zap.Uint64("seq", seq), zap.Uint64("current", c.seq))
		return c.snapshotLocked(), fmt.Errorf("seq %d: %w", seq, domain.ErrSearchSuperseded)
	}

	c.cancel = nil
	c.pending = false
	c.touch()

	if err != nil {
		c.indicator = indicatorFor(err)
		log.Warn("Search failed",
			zap.Uint64("seq", seq),
			zap.String("kind", string(c.indicator.Kind)),
			zap.Error(err),
		)
		return c.snapshotLocked(), err
	}

	c.results = list
	c.indicator = nil
	metrics.SearchResultsReturned.WithLabelValues(c.provider).Observe(float64(list.Filled()))
	log.Info("Search published",
		zap.Uint64("seq", seq),
		zap.String("location", req.Location()),
		zap.String("radius", req.LocationRadius()),
		zap.Int("results", list.Filled()),
	)
	return c.snapshotLocked(), nil
}

// build reads the state and keyword fields into a request. Must hold mu.
func (c *Coordinator) build() (request.Request, error) {
	st := c.store.State()
	if st.Radius.Empty() {
		return request.Request{}, fmt.Errorf("%w: radius is empty", domain.ErrInvalidRequest)
	}
	req, err := request.New(
		st.Point, st.Radius.Value(), c.cfg.Unit,
		c.keywords, c.cfg.Kind, c.cfg.Capacity,
	)
	if err != nil {
		return request.Request{}, fmt.Errorf("build request: %w", err)
	}
	return req, nil
}

// Cancel aborts any in-flight search without publishing.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.pending = false
}

// Snapshot returns a copy of the published state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() Snapshot {
	st := c.store.State()
	snap := Snapshot{
		Point:     st.Point,
		Radius:    st.Radius,
		Keywords:  slices.Clone(c.keywords),
		Results:   c.results,
		Pending:   c.pending,
		Seq:       c.seq,
		UpdatedAt: c.updatedAt,
	}
	if c.indicator != nil {
		ind := *c.indicator
		snap.Error = &ind
	}
	return snap
}

func (c *Coordinator) touch() {
	c.updatedAt = time.Now().UTC()
}

func (c *Coordinator) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, c.logger)
}
