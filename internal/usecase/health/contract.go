package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// QuotaReporter exposes the remaining provider quota.
type QuotaReporter interface {
	RemainingDaily() int64
}
