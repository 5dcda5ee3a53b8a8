package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/geolocator/internal/domain/usage"
	"github.com/kailas-cloud/geolocator/internal/domain/usage/budget"
)

// Service handles usage reporting.
type Service struct {
	qr       QuotaReader
	provider string
	cost     int64
	now      func() time.Time
}

// New creates a Service. qr can be nil (unlimited mode, nothing counted).
// cost is the quota price of one search.
func New(qr QuotaReader, provider string, cost int64) *Service {
	return &Service{qr: qr, provider: provider, cost: cost, now: time.Now}
}

// GetReport builds the usage report for the current UTC day.
func (s *Service) GetReport(_ context.Context) domusage.Report {
	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	var limit, used int64
	remaining := int64(-1)
	if s.qr != nil {
		limit = s.qr.DailyLimit()
		used = s.qr.DailyUsed()
		remaining = s.qr.RemainingDaily()
	}

	var searches int64
	if s.cost > 0 {
		searches = used / s.cost
	}

	exhausted := limit > 0 && remaining <= 0
	b := budget.New(limit, remaining, exhausted, dayEnd.UnixMilli())

	return domusage.NewReport(domusage.PeriodDay, dayStart.UnixMilli(), dayEnd.UnixMilli(), s.provider, used, searches, b)
}
