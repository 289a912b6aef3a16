package engine

import (
	"sort"

	"github.com/epeers/holdings-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

// GroupKey picks the label an account is grouped under in the history view.
type GroupKey func(models.AccountSnapshot) string

// ByGroupOrClass groups by the account's group column, falling back to its asset class.
func ByGroupOrClass(a models.AccountSnapshot) string {
	if a.Group != "" {
		return a.Group
	}
	return a.AssetClass
}

// GroupHistory returns one point per snapshot date, oldest first, with the
// balances of each date split by key. Dates without accounts are skipped.
func GroupHistory(sets []models.SnapshotSet, key GroupKey) []models.HistoryPoint {
	points := make([]models.HistoryPoint, 0, len(sets))
	for _, set := range sets {
		if len(set.Accounts) == 0 {
			continue
		}
		total := decimal.Zero
		groups := make(map[string]decimal.Decimal)
		for _, a := range set.Accounts {
			total = total.Add(a.Balance)
			k := key(a)
			groups[k] = groups[k].Add(a.Balance)
		}
		points = append(points, models.HistoryPoint{
			Date:   set.Date,
			Total:  total.InexactFloat64(),
			Groups: allocate(groups, total),
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}
