// Package engine turns decoded snapshot rows into the metrics shown on the
// dashboard. Everything here is a pure function of its input: no I/O, no
// shared state, and the same input always yields the same output.
package engine

import (
	"math"
	"sort"
	"strings"

	"github.com/epeers/holdings-dashboard/internal/models"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// Options carries the configuration the engine needs. Labels are matched exactly.
type Options struct {
	CashClasses []string
}

// DefaultOptions treats only the "cash" asset class as cash.
func DefaultOptions() Options {
	return Options{CashClasses: []string{"cash"}}
}

// Aggregate computes the portfolio metrics for one date.
//
// Balances are summed exactly in decimal and converted to float64 only at the
// end. A set with no usable accounts yields the Empty variant with every
// derived field nil.
func Aggregate(set models.SnapshotSet, opts Options) *models.AggregatedPortfolio {
	result := &models.AggregatedPortfolio{
		Date:         set.Date,
		AccountCount: len(set.Accounts),
		Excluded:     set.Rejected,
	}
	if len(set.Accounts) == 0 {
		result.Empty = true
		return result
	}

	cashClasses := make(map[string]struct{}, len(opts.CashClasses))
	for _, c := range opts.CashClasses {
		cashClasses[c] = struct{}{}
	}

	total := decimal.Zero
	cash := decimal.Zero
	byClass := make(map[string]decimal.Decimal)

	betaWeight := decimal.Zero
	var betas, weights []float64

	for _, a := range set.Accounts {
		total = total.Add(a.Balance)
		byClass[a.AssetClass] = byClass[a.AssetClass].Add(a.Balance)
		if _, ok := cashClasses[a.AssetClass]; ok {
			cash = cash.Add(a.Balance)
		}
		if a.Beta != nil && !math.IsNaN(*a.Beta) && !math.IsInf(*a.Beta, 0) {
			betas = append(betas, *a.Beta)
			weights = append(weights, a.Balance.InexactFloat64())
			betaWeight = betaWeight.Add(a.Balance)
		}
	}

	totalValue := total.InexactFloat64()
	result.TotalValue = &totalValue

	if !total.IsZero() && !betaWeight.IsZero() {
		beta := stat.Mean(betas, weights)
		result.WeightedBeta = &beta
	}

	if total.IsPositive() {
		cashPct := cash.Div(total).InexactFloat64()
		result.CashPercentage = &cashPct
	}

	result.AllocationByClass = allocate(byClass, total)
	return result
}

// BreakdownEquity groups equity detail rows by category. Percentages are
// relative to the sum of the rows given, not to the whole portfolio.
func BreakdownEquity(rows []models.EquityBreakdownRow) []models.Allocation {
	if len(rows) == 0 {
		return nil
	}
	subtotal := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)
	for _, r := range rows {
		subtotal = subtotal.Add(r.Value)
		byCategory[r.Category] = byCategory[r.Category].Add(r.Value)
	}
	return allocate(byCategory, subtotal)
}

// AccountBetas derives each account's beta from its holdings as the
// balance-weighted mean of the holdings' betas. Only holdings with a positive
// balance and a finite beta count. Accounts are keyed by lower-cased, trimmed
// name; an account with no qualifying holding is absent from the result.
func AccountBetas(holdings []models.AssetHolding) map[string]float64 {
	type series struct {
		betas, weights []float64
	}
	byAccount := make(map[string]*series)
	for _, h := range holdings {
		if h.Beta == nil || math.IsNaN(*h.Beta) || math.IsInf(*h.Beta, 0) || !h.Balance.IsPositive() {
			continue
		}
		key := AccountKey(h.Account)
		s, ok := byAccount[key]
		if !ok {
			s = &series{}
			byAccount[key] = s
		}
		s.betas = append(s.betas, *h.Beta)
		s.weights = append(s.weights, h.Balance.InexactFloat64())
	}

	out := make(map[string]float64, len(byAccount))
	for key, s := range byAccount {
		out[key] = stat.Mean(s.betas, s.weights)
	}
	return out
}

// AccountKey normalises an account name for matching across tables.
func AccountKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// allocate converts grouped sums into allocations ordered by value descending,
// ties broken by label ascending. Percentages are zero when total is not positive.
func allocate(groups map[string]decimal.Decimal, total decimal.Decimal) []models.Allocation {
	type group struct {
		label string
		value decimal.Decimal
	}
	ordered := make([]group, 0, len(groups))
	for label, value := range groups {
		ordered = append(ordered, group{label: label, value: value})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if c := ordered[i].value.Cmp(ordered[j].value); c != 0 {
			return c > 0
		}
		return ordered[i].label < ordered[j].label
	})

	out := make([]models.Allocation, len(ordered))
	for i, g := range ordered {
		out[i] = models.Allocation{
			Label: g.label,
			Value: g.value.InexactFloat64(),
		}
		if total.IsPositive() {
			out[i].Percentage = g.value.Div(total).InexactFloat64()
		}
	}
	return out
}
