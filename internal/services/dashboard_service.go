package services

import (
	"context"
	"fmt"
	"time"

	"github.com/epeers/holdings-dashboard/internal/engine"
	"github.com/epeers/holdings-dashboard/internal/models"
	"github.com/epeers/holdings-dashboard/internal/repository"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Tables names the three logical tables in the data source.
type Tables struct {
	Accounts string
	Equity   string
	Indexes  string
}

// All returns every table name.
func (t Tables) All() []string {
	return []string{t.Accounts, t.Equity, t.Indexes}
}

// DashboardConfig holds the values the dashboard service is parameterised by.
type DashboardConfig struct {
	Tables      Tables
	Freshness   time.Duration
	EquityClass string
	Benchmark   string
	Engine      engine.Options
}

// DashboardService assembles the dashboard for a selected date.
type DashboardService struct {
	repo *repository.SnapshotRepository
	cfg  DashboardConfig
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(repo *repository.SnapshotRepository, cfg DashboardConfig) *DashboardService {
	return &DashboardService{repo: repo, cfg: cfg}
}

// AvailableDates lists the account snapshot dates, newest first.
func (s *DashboardService) AvailableDates(ctx context.Context) ([]time.Time, error) {
	return s.repo.ListAvailableDates(ctx, s.cfg.Tables.Accounts, s.cfg.Freshness)
}

// Refresh drops cached tables so the next request reads the source again.
func (s *DashboardService) Refresh(ctx context.Context) error {
	return s.repo.Invalidate(ctx, s.cfg.Tables.All()...)
}

// tableRecords holds the raw records of the three tables read together.
type tableRecords struct {
	accounts, equity, indexes []models.Record
}

// readAll fetches the three tables in parallel. Any failure is fatal.
func (s *DashboardService) readAll(ctx context.Context) (*tableRecords, error) {
	defer TrackTime("DashboardService.readAll", time.Now())

	var out tableRecords
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.accounts, err = s.repo.ReadRows(gctx, s.cfg.Tables.Accounts, s.cfg.Freshness)
		return err
	})
	g.Go(func() error {
		var err error
		out.equity, err = s.repo.ReadRows(gctx, s.cfg.Tables.Equity, s.cfg.Freshness)
		return err
	})
	g.Go(func() error {
		var err error
		out.indexes, err = s.repo.ReadRows(gctx, s.cfg.Tables.Indexes, s.cfg.Freshness)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDashboard computes the dashboard for date. A zero date selects the newest
// available snapshot. A date with no usable account rows yields a Dashboard
// whose NoData() is true, not an error.
//
// Errors are *repository.UnavailableError when a table cannot be read and
// *repository.MissingColumnError when the account table lacks a required column.
// Problems with the equity and index tables only produce warnings.
func (s *DashboardService) GetDashboard(ctx context.Context, date time.Time) (*models.Dashboard, error) {
	defer TrackTime("DashboardService.GetDashboard", time.Now())

	raw, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}

	accounts, err := repository.DecodeAccounts(s.cfg.Tables.Accounts, raw.accounts)
	if err != nil {
		return nil, err
	}
	warnUndated(ctx, s.cfg.Tables.Accounts, accounts.Undated)

	dates := accounts.Dates()
	if date.IsZero() && len(dates) > 0 {
		date = dates[0]
	}

	set := accounts.Snapshot(date)
	s.fillAccountBetas(set.Accounts, raw.equity, date)
	portfolio := engine.Aggregate(set, s.cfg.Engine)
	if len(portfolio.Excluded) > 0 {
		AddWarning(ctx, models.Warning{
			Code:    models.WarnRowExcluded,
			Message: fmt.Sprintf("%d row issue(s) in %s on %s", len(portfolio.Excluded), s.cfg.Tables.Accounts, date.Format(models.DateLayout)),
		})
	}

	dash := &models.Dashboard{
		Date:           set.Date,
		AvailableDates: dates,
		Portfolio:      portfolio,
		Accounts:       set.Accounts,
		Benchmark:      s.cfg.Benchmark,
	}
	if portfolio.Empty {
		log.Debugf("No account rows for %s", date.Format(models.DateLayout))
		return dash, nil
	}

	portfolio.EquityBreakdown = s.equityBreakdown(ctx, raw.equity, date)
	dash.BenchmarkReturn = s.benchmarkReturn(ctx, raw.indexes, date)
	return dash, nil
}

// fillAccountBetas sets the beta of accounts that have none from the betas of
// the assets they hold on date. Accounts are updated in place.
func (s *DashboardService) fillAccountBetas(accounts []models.AccountSnapshot, records []models.Record, date time.Time) {
	betas := engine.AccountBetas(repository.DecodeHoldings(s.cfg.Tables.Equity, records).ForDate(date))
	if len(betas) == 0 {
		return
	}
	for i := range accounts {
		if accounts[i].Beta != nil {
			continue
		}
		if beta, ok := betas[engine.AccountKey(accounts[i].AccountName)]; ok {
			accounts[i].Beta = &beta
		}
	}
}

func (s *DashboardService) equityBreakdown(ctx context.Context, records []models.Record, date time.Time) []models.Allocation {
	table := s.cfg.Tables.Equity
	equity, err := repository.DecodeEquity(table, records, s.cfg.EquityClass)
	if err != nil {
		warnTableSkipped(ctx, table, err)
		return nil
	}
	warnUndated(ctx, table, equity.Undated)

	rows, issues := equity.ForDate(date)
	if len(issues) > 0 {
		AddWarning(ctx, models.Warning{
			Code:    models.WarnRowExcluded,
			Message: fmt.Sprintf("%d row issue(s) in %s on %s", len(issues), table, date.Format(models.DateLayout)),
		})
	}
	return engine.BreakdownEquity(rows)
}

func (s *DashboardService) benchmarkReturn(ctx context.Context, records []models.Record, date time.Time) *float64 {
	table := s.cfg.Tables.Indexes
	indexes, err := repository.DecodeIndexes(table, records)
	if err != nil {
		warnTableSkipped(ctx, table, err)
		return nil
	}
	warnUndated(ctx, table, indexes.Undated)

	row := indexes.Lookup(date, s.cfg.Benchmark)
	if row == nil || row.ReturnPctYTD == nil {
		AddWarning(ctx, models.Warning{
			Code:    models.WarnBenchmarkMissing,
			Message: fmt.Sprintf("no %s return in %s on %s", s.cfg.Benchmark, table, date.Format(models.DateLayout)),
		})
		return nil
	}
	return row.ReturnPctYTD
}

// GetHistory returns the grouped balances for every snapshot date, oldest first.
func (s *DashboardService) GetHistory(ctx context.Context) ([]models.HistoryPoint, error) {
	defer TrackTime("DashboardService.GetHistory", time.Now())

	records, err := s.repo.ReadRows(ctx, s.cfg.Tables.Accounts, s.cfg.Freshness)
	if err != nil {
		return nil, err
	}
	accounts, err := repository.DecodeAccounts(s.cfg.Tables.Accounts, records)
	if err != nil {
		return nil, err
	}
	warnUndated(ctx, s.cfg.Tables.Accounts, accounts.Undated)
	if n := countExcluded(accounts.Issues); n > 0 {
		AddWarning(ctx, models.Warning{
			Code:    models.WarnRowExcluded,
			Message: fmt.Sprintf("%d row(s) in %s excluded from history", n, s.cfg.Tables.Accounts),
		})
	}

	return engine.GroupHistory(accounts.Snapshots(), engine.ByGroupOrClass), nil
}

func countExcluded(issues []repository.DatedIssue) int {
	n := 0
	for _, is := range issues {
		if is.Issue.Excluded {
			n++
		}
	}
	return n
}

func warnUndated(ctx context.Context, table string, undated []models.RowIssue) {
	if len(undated) == 0 {
		return
	}
	AddWarning(ctx, models.Warning{
		Code:    models.WarnUndatedRows,
		Message: fmt.Sprintf("%d row(s) in %s have no readable date and were ignored", len(undated), table),
	})
}

func warnTableSkipped(ctx context.Context, table string, err error) {
	log.Warnf("Skipping table %s: %v", table, err)
	AddWarning(ctx, models.Warning{
		Code:    models.WarnTableSkipped,
		Message: err.Error(),
	})
}

// Tables returns the configured table names.
func (s *DashboardService) Tables() Tables {
	return s.cfg.Tables
}
