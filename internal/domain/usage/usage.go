package usage

import "github.com/kailas-cloud/geolocator/internal/domain/usage/budget"

// Period is the aggregation granularity. Quota resets daily, so only
// PeriodDay is tracked.
type Period string

// PeriodDay is one UTC day.
const PeriodDay Period = "day"

// Report is a provider quota usage report for a time period.
type Report struct {
	period      Period
	periodStart int64
	periodEnd   int64
	provider    string
	unitsUsed   int64
	searches    int64
	budget      budget.Budget
}

// NewReport creates a usage report.
func NewReport(period Period, start, end int64, provider string, used, searches int64, b budget.Budget) Report {
	return Report{
		period:      period,
		periodStart: start,
		periodEnd:   end,
		provider:    provider,
		unitsUsed:   used,
		searches:    searches,
		budget:      b,
	}
}

// Period returns the aggregation granularity.
func (r *Report) Period() Period { return r.period }

// PeriodStart returns the period start timestamp (unix millis).
func (r *Report) PeriodStart() int64 { return r.periodStart }

// PeriodEnd returns the period end timestamp (unix millis).
func (r *Report) PeriodEnd() int64 { return r.periodEnd }

// Provider returns the search provider name.
func (r *Report) Provider() string { return r.provider }

// UnitsUsed returns quota units spent in the period.
func (r *Report) UnitsUsed() int64 { return r.unitsUsed }

// Searches returns the number of billed searches in the period.
func (r *Report) Searches() int64 { return r.searches }

// Budget returns the budget status.
func (r *Report) Budget() budget.Budget { return r.budget }
