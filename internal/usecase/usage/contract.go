package usage

// QuotaReader provides read-only access to daily quota state.
type QuotaReader interface {
	DailyLimit() int64
	DailyUsed() int64
	RemainingDaily() int64
}
