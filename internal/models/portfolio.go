package models

import "time"

// Allocation is one slice of a grouped breakdown.
// Percentage is a ratio (0.25 = 25%) of the breakdown's own total.
type Allocation struct {
	Label      string  `json:"label"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// AggregatedPortfolio holds the derived metrics for one date.
// It is rebuilt on every request and never persisted.
//
// When Empty is true every derived field is nil/empty: callers must render a
// "no data" state instead of zeros.
type AggregatedPortfolio struct {
	Date              time.Time    `json:"date"`
	Empty             bool         `json:"empty"`
	TotalValue        *float64     `json:"total_value"`
	WeightedBeta      *float64     `json:"weighted_beta"`
	CashPercentage    *float64     `json:"cash_percentage"`
	AllocationByClass []Allocation `json:"allocation_by_class"`
	EquityBreakdown   []Allocation `json:"equity_breakdown"`
	AccountCount      int          `json:"account_count"`
	Excluded          []RowIssue   `json:"excluded,omitempty"`
}

// HistoryPoint is the per-group split of the portfolio on one date.
type HistoryPoint struct {
	Date   time.Time    `json:"date"`
	Total  float64      `json:"total"`
	Groups []Allocation `json:"groups"`
}

// Dashboard is everything shown for one selected date.
type Dashboard struct {
	Date            time.Time
	AvailableDates  []time.Time // newest first
	Portfolio       *AggregatedPortfolio
	Accounts        []AccountSnapshot
	Benchmark       string
	BenchmarkReturn *float64 // YTD return of the benchmark index, as a ratio
}

// NoData reports whether the selected date had no usable account rows.
func (d *Dashboard) NoData() bool {
	return d.Portfolio == nil || d.Portfolio.Empty
}
