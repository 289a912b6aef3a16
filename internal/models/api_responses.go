package models

// Dashboard status values.
const (
	StatusOK     = "ok"
	StatusNoData = "no_data"
)

// DatesResponse lists the snapshot dates available for selection, newest first.
type DatesResponse struct {
	Table string         `json:"table"`
	Dates []FlexibleDate `json:"dates"`
}

// MetricView pairs a raw metric with its display string.
// Value is null when the metric is undefined for the date.
type MetricView struct {
	Value   *float64 `json:"value"`
	Display string   `json:"display"`
}

// AllocationView is an Allocation with display strings attached.
type AllocationView struct {
	Label             string  `json:"label"`
	Value             float64 `json:"value"`
	Percentage        float64 `json:"percentage"`
	ValueDisplay      string  `json:"value_display"`
	PercentageDisplay string  `json:"percentage_display"`
}

// AccountView is one row of the accounts table.
type AccountView struct {
	AccountName   string   `json:"account_name"`
	AssetClass    string   `json:"asset_class"`
	Group         string   `json:"group,omitempty"`
	Balance       float64  `json:"balance"`
	BalanceText   string   `json:"balance_display"`
	Beta          *float64 `json:"beta"`
	BetaText      string   `json:"beta_display"`
	ReturnPctYTD  *float64 `json:"return_pct_ytd"`
	ReturnPctText string   `json:"return_pct_ytd_display"`
}

// DashboardResponse is the payload of GET /api/dashboard.
type DashboardResponse struct {
	Status            string           `json:"status"`
	Message           string           `json:"message,omitempty"`
	Date              FlexibleDate     `json:"date"`
	AvailableDates    []FlexibleDate   `json:"available_dates"`
	TotalValue        MetricView       `json:"total_value"`
	WeightedBeta      MetricView       `json:"weighted_beta"`
	CashPercentage    MetricView       `json:"cash_percentage"`
	Benchmark         string           `json:"benchmark"`
	BenchmarkReturn   MetricView       `json:"benchmark_return_ytd"`
	AllocationByClass []AllocationView `json:"allocation_by_class"`
	EquityBreakdown   []AllocationView `json:"equity_breakdown"`
	Accounts          []AccountView    `json:"accounts"`
	Excluded          []RowIssue       `json:"excluded,omitempty"`
	Warnings          []Warning        `json:"warnings,omitempty"`
}

// HistoryResponse is the payload of GET /api/history.
type HistoryResponse struct {
	Points   []HistoryPoint `json:"points"`
	Warnings []Warning      `json:"warnings,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
