package handlers

import (
	"fmt"
	"time"

	"github.com/epeers/holdings-dashboard/internal/engine"
	"github.com/epeers/holdings-dashboard/internal/models"
)

func flexibleDates(dates []time.Time) []models.FlexibleDate {
	out := make([]models.FlexibleDate, len(dates))
	for i, d := range dates {
		out[i] = models.FlexibleDate{Time: d}
	}
	return out
}

func allocationViews(f engine.Formatter, allocs []models.Allocation) []models.AllocationView {
	out := make([]models.AllocationView, len(allocs))
	for i, a := range allocs {
		out[i] = models.AllocationView{
			Label:             a.Label,
			Value:             a.Value,
			Percentage:        a.Percentage,
			ValueDisplay:      f.FormatCurrency(a.Value),
			PercentageDisplay: f.FormatPercentage(a.Percentage),
		}
	}
	return out
}

func accountViews(f engine.Formatter, accounts []models.AccountSnapshot) []models.AccountView {
	out := make([]models.AccountView, len(accounts))
	for i, a := range accounts {
		balance := a.Balance.InexactFloat64()
		out[i] = models.AccountView{
			AccountName:   a.AccountName,
			AssetClass:    a.AssetClass,
			Group:         a.Group,
			Balance:       balance,
			BalanceText:   f.FormatCurrency(balance),
			Beta:          a.Beta,
			BetaText:      f.BetaOrPlaceholder(a.Beta),
			ReturnPctYTD:  a.ReturnPctYTD,
			ReturnPctText: f.PercentageOrPlaceholder(a.ReturnPctYTD),
		}
	}
	return out
}

// buildDashboardResponse turns a service result into the API payload.
// Every metric carries both the raw value (null when undefined) and its display string.
func buildDashboardResponse(f engine.Formatter, dash *models.Dashboard, warnings []models.Warning) models.DashboardResponse {
	resp := models.DashboardResponse{
		Status:          models.StatusOK,
		Date:            models.FlexibleDate{Time: dash.Date},
		AvailableDates:  flexibleDates(dash.AvailableDates),
		TotalValue:      models.MetricView{Display: engine.Placeholder},
		WeightedBeta:    models.MetricView{Display: engine.Placeholder},
		CashPercentage:  models.MetricView{Display: engine.Placeholder},
		Benchmark:       dash.Benchmark,
		BenchmarkReturn: models.MetricView{Value: dash.BenchmarkReturn, Display: f.PercentageOrPlaceholder(dash.BenchmarkReturn)},
		Warnings:        warnings,
	}

	p := dash.Portfolio
	if p != nil {
		resp.Excluded = p.Excluded
	}
	if dash.NoData() {
		resp.Status = models.StatusNoData
		if len(dash.AvailableDates) == 0 {
			resp.Message = "No snapshots are available yet"
		} else {
			resp.Message = fmt.Sprintf("No data for %s", dash.Date.Format(models.DateLayout))
		}
		resp.AllocationByClass = []models.AllocationView{}
		resp.EquityBreakdown = []models.AllocationView{}
		resp.Accounts = []models.AccountView{}
		return resp
	}

	resp.TotalValue = models.MetricView{Value: p.TotalValue, Display: f.CurrencyOrPlaceholder(p.TotalValue)}
	resp.WeightedBeta = models.MetricView{Value: p.WeightedBeta, Display: f.BetaOrPlaceholder(p.WeightedBeta)}
	resp.CashPercentage = models.MetricView{Value: p.CashPercentage, Display: f.PercentageOrPlaceholder(p.CashPercentage)}
	resp.AllocationByClass = allocationViews(f, p.AllocationByClass)
	resp.EquityBreakdown = allocationViews(f, p.EquityBreakdown)
	resp.Accounts = accountViews(f, dash.Accounts)
	return resp
}
