package geolocator

// QuotaStatus reports provider quota spent today.
type QuotaStatus struct {
	DailyLimit int64 // 0 = unlimited
	DailyUsed  int64
	Remaining  int64 // -1 = unlimited
	Exhausted  bool
}

// Quota returns the current daily quota state.
func (c *Client) Quota() QuotaStatus {
	remaining := c.tracker.RemainingDaily()
	return QuotaStatus{
		DailyLimit: c.tracker.DailyLimit(),
		DailyUsed:  c.tracker.DailyUsed(),
		Remaining:  remaining,
		Exhausted:  remaining == 0,
	}
}
