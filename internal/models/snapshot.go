package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is one worksheet row keyed by lower-cased, trimmed column name.
// Values are kept as the raw cell text; coercion happens in the repository.
type Record map[string]string

// AccountSnapshot is one account's balance on a given date.
type AccountSnapshot struct {
	Date         time.Time       `json:"date"`
	AccountName  string          `json:"account_name"`
	Balance      decimal.Decimal `json:"balance"`
	AssetClass   string          `json:"asset_class"`
	Group        string          `json:"group,omitempty"`
	Beta         *float64        `json:"beta"`           // nil for accounts that don't track the market (plain cash)
	ReturnPctYTD *float64        `json:"return_pct_ytd"` // nil when the sheet leaves it blank
}

// EquityBreakdownRow is a sub-allocation within equities for a date (sector, fund, ...).
type EquityBreakdownRow struct {
	Date     time.Time       `json:"date"`
	Category string          `json:"category"`
	Value    decimal.Decimal `json:"value"`
}

// AssetHolding is one asset held by an account on a date, carrying the asset's
// own beta. Accounts without a beta of their own take the balance-weighted
// mean of their holdings' betas.
type AssetHolding struct {
	Date    time.Time       `json:"date"`
	Account string          `json:"account"`
	Balance decimal.Decimal `json:"balance"`
	Beta    *float64        `json:"beta"`
}

// IndexRow is a benchmark index observation.
type IndexRow struct {
	Date         time.Time `json:"date"`
	Index        string    `json:"index"`
	ReturnPctYTD *float64  `json:"return_pct_ytd"` // decimal form (0.12 = 12%)
}

// RowIssue describes a cell that could not be coerced to the expected type.
// Row is the 1-based data row within the table (header excluded).
type RowIssue struct {
	Table    string `json:"table"`
	Row      int    `json:"row"`
	Column   string `json:"column"`
	Value    string `json:"value"`
	Excluded bool   `json:"excluded"` // true when the whole row was dropped from the totals
}

// SnapshotSet is everything the engine needs for one logical date.
// Rejected holds the issues found while decoding that date's rows.
type SnapshotSet struct {
	Date     time.Time
	Accounts []AccountSnapshot
	Rejected []RowIssue
}
