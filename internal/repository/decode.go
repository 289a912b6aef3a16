package repository

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/epeers/holdings-dashboard/internal/models"
	"github.com/epeers/holdings-dashboard/internal/util"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// UnclassifiedAssetClass labels accounts whose asset_class cell is blank.
const UnclassifiedAssetClass = "unclassified"

// Candidate column names, first match wins.
var (
	accountNameColumns  = []string{"account_name", "account", "portfolio", "portfolio_name", "name"}
	equityValueColumns  = []string{"value", "balance", "percentage", "value_or_percentage"}
	equityClassColumns  = []string{"category", "equity_class", "sector"}
	holdingOwnerColumns = []string{"portfolio", "account", "portfolio_name", "account_name"}
	holdingValueColumns = []string{"balance", "value"}
)

// DatedIssue is a row issue whose row still had a readable date.
type DatedIssue struct {
	Date  time.Time
	Issue models.RowIssue
}

// AccountTable is the decoded account snapshot table across all dates.
type AccountTable struct {
	Rows    []models.AccountSnapshot
	Issues  []DatedIssue
	Undated []models.RowIssue // rows dropped because their date could not be read
}

// EquityTable is the decoded equity detail table across all dates.
type EquityTable struct {
	Rows    []models.EquityBreakdownRow
	Issues  []DatedIssue
	Undated []models.RowIssue
}

// HoldingTable is the per-account view of the equity detail table used to
// derive account betas. It is empty when the table has no account or beta column.
type HoldingTable struct {
	Rows []models.AssetHolding
}

// IndexTable is the decoded benchmark index table across all dates.
type IndexTable struct {
	Rows    []models.IndexRow
	Issues  []DatedIssue
	Undated []models.RowIssue
}

// columnSet records which columns appear anywhere in a table.
type columnSet map[string]struct{}

func columnsOf(records []models.Record) columnSet {
	cols := make(columnSet)
	for _, r := range records {
		for k := range r {
			cols[k] = struct{}{}
		}
	}
	return cols
}

func (c columnSet) has(name string) bool {
	_, ok := c[name]
	return ok
}

func (c columnSet) first(candidates []string) (string, bool) {
	for _, name := range candidates {
		if c.has(name) {
			return name, true
		}
	}
	return "", false
}

// require fails with a MissingColumnError for the first absent column.
// An empty table has no header to check and passes.
func (c columnSet) require(table string, names ...string) error {
	if len(c) == 0 {
		return nil
	}
	for _, name := range names {
		if !c.has(name) {
			return &MissingColumnError{Table: table, Column: name}
		}
	}
	return nil
}

// requireOneOf fails when none of the candidates is present, naming them all.
func (c columnSet) requireOneOf(table string, candidates []string) (string, error) {
	if len(c) == 0 {
		return "", nil
	}
	name, ok := c.first(candidates)
	if !ok {
		return "", &MissingColumnError{Table: table, Column: strings.Join(candidates, "|")}
	}
	return name, nil
}

func cell(r models.Record, col string) string {
	if col == "" {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// DecodeAccounts validates and coerces account snapshot records.
//
// Required columns: date, balance. A row whose balance cannot be read is
// excluded and reported; an unreadable beta or return only drops that field.
func DecodeAccounts(table string, records []models.Record) (*AccountTable, error) {
	cols := columnsOf(records)
	if err := cols.require(table, "date", "balance"); err != nil {
		return nil, err
	}
	nameCol, _ := cols.first(accountNameColumns)

	out := &AccountTable{}
	for i, r := range records {
		row := i + 1

		date, err := models.ParseDate(r["date"])
		if err != nil {
			out.Undated = append(out.Undated, issue(table, row, "date", r["date"], "not a date", true))
			continue
		}

		balance, err := parseAmount(r["balance"])
		if err != nil {
			out.Issues = append(out.Issues, DatedIssue{Date: date, Issue: issue(table, row, "balance", r["balance"], "not an amount", true)})
			continue
		}

		assetClass := cell(r, "asset_class")
		if assetClass == "" {
			assetClass = UnclassifiedAssetClass
		}

		snap := models.AccountSnapshot{
			Date:        date,
			AccountName: cell(r, nameCol),
			Balance:     balance,
			AssetClass:  assetClass,
			Group:       cell(r, "group"),
		}

		beta, ok := parseOptionalFloat(r["beta"])
		if !ok {
			out.Issues = append(out.Issues, DatedIssue{Date: date, Issue: issue(table, row, "beta", r["beta"], "not a number", false)})
		}
		snap.Beta = beta

		ret, ok := parseOptionalRatio(r["return_pct_ytd"])
		if !ok {
			out.Issues = append(out.Issues, DatedIssue{Date: date, Issue: issue(table, row, "return_pct_ytd", r["return_pct_ytd"], "not a number", false)})
		}
		snap.ReturnPctYTD = ret

		out.Rows = append(out.Rows, snap)
	}
	return out, nil
}

// DecodeEquity validates and coerces equity detail records. When the table
// carries an asset_class column only rows labelled equityClass are kept.
func DecodeEquity(table string, records []models.Record, equityClass string) (*EquityTable, error) {
	cols := columnsOf(records)
	if err := cols.require(table, "date"); err != nil {
		return nil, err
	}
	valueCol, err := cols.requireOneOf(table, equityValueColumns)
	if err != nil {
		return nil, err
	}
	categoryCol, err := cols.requireOneOf(table, equityClassColumns)
	if err != nil {
		return nil, err
	}
	filterClass := cols.has("asset_class") && equityClass != ""

	out := &EquityTable{}
	for i, r := range records {
		row := i + 1
		if filterClass && !strings.EqualFold(cell(r, "asset_class"), equityClass) {
			continue
		}

		date, err := models.ParseDate(r["date"])
		if err != nil {
			out.Undated = append(out.Undated, issue(table, row, "date", r["date"], "not a date", true))
			continue
		}

		value, err := parseAmount(r[valueCol])
		if err != nil {
			out.Issues = append(out.Issues, DatedIssue{Date: date, Issue: issue(table, row, valueCol, r[valueCol], "not an amount", true)})
			continue
		}

		category := cell(r, categoryCol)
		if category == "" {
			category = UnclassifiedAssetClass
		}

		out.Rows = append(out.Rows, models.EquityBreakdownRow{
			Date:     date,
			Category: category,
			Value:    value,
		})
	}
	return out, nil
}

// DecodeHoldings reads the asset rows that name their owning account and carry
// a beta. Every asset class is kept. Rows without a readable date, owner or
// balance are skipped.
func DecodeHoldings(table string, records []models.Record) *HoldingTable {
	cols := columnsOf(records)
	out := &HoldingTable{}
	ownerCol, ok := cols.first(holdingOwnerColumns)
	if !ok || !cols.has("date") || !cols.has("beta") {
		return out
	}
	valueCol, ok := cols.first(holdingValueColumns)
	if !ok {
		return out
	}

	for i, r := range records {
		row := i + 1
		owner := cell(r, ownerCol)
		if owner == "" {
			continue
		}
		date, err := models.ParseDate(r["date"])
		if err != nil {
			continue
		}
		balance, err := parseAmount(r[valueCol])
		if err != nil {
			continue
		}
		beta, ok := parseOptionalFloat(r["beta"])
		if !ok {
			issue(table, row, "beta", r["beta"], "not a number", false)
		}
		out.Rows = append(out.Rows, models.AssetHolding{
			Date:    date,
			Account: owner,
			Balance: balance,
			Beta:    beta,
		})
	}
	return out
}

// ForDate returns the holdings recorded on date, in table order.
func (t *HoldingTable) ForDate(date time.Time) []models.AssetHolding {
	var out []models.AssetHolding
	for _, r := range t.Rows {
		if util.SameDay(r.Date, date) {
			out = append(out, r)
		}
	}
	return out
}

// DecodeIndexes validates and coerces benchmark index records.
// Required columns: date, index.
func DecodeIndexes(table string, records []models.Record) (*IndexTable, error) {
	cols := columnsOf(records)
	if err := cols.require(table, "date", "index"); err != nil {
		return nil, err
	}

	out := &IndexTable{}
	for i, r := range records {
		row := i + 1

		date, err := models.ParseDate(r["date"])
		if err != nil {
			out.Undated = append(out.Undated, issue(table, row, "date", r["date"], "not a date", true))
			continue
		}

		ret, ok := parseOptionalRatio(r["return_pct_ytd"])
		if !ok {
			out.Issues = append(out.Issues, DatedIssue{Date: date, Issue: issue(table, row, "return_pct_ytd", r["return_pct_ytd"], "not a number", false)})
		}

		out.Rows = append(out.Rows, models.IndexRow{
			Date:         date,
			Index:        cell(r, "index"),
			ReturnPctYTD: ret,
		})
	}
	return out, nil
}

// Dates returns the distinct snapshot dates in the table, newest first.
func (t *AccountTable) Dates() []time.Time {
	dates := make([]time.Time, len(t.Rows))
	for i, r := range t.Rows {
		dates[i] = r.Date
	}
	for _, is := range t.Issues {
		dates = append(dates, is.Date)
	}
	return util.DistinctDatesDesc(dates)
}

// Snapshot selects one date's accounts and the issues raised on that date.
func (t *AccountTable) Snapshot(date time.Time) models.SnapshotSet {
	return models.SnapshotSet{
		Date:     util.CalendarDay(date),
		Accounts: FilterAccounts(t.Rows, date),
		Rejected: issuesOn(t.Issues, date),
	}
}

// Snapshots returns one set per date, newest first.
func (t *AccountTable) Snapshots() []models.SnapshotSet {
	dates := t.Dates()
	sets := make([]models.SnapshotSet, len(dates))
	for i, d := range dates {
		sets[i] = t.Snapshot(d)
	}
	return sets
}

// ForDate returns the equity rows and issues for one date.
func (t *EquityTable) ForDate(date time.Time) ([]models.EquityBreakdownRow, []models.RowIssue) {
	return FilterEquity(t.Rows, date), issuesOn(t.Issues, date)
}

// Lookup finds the named index on a date, matching the name case-insensitively.
// It returns nil when no row matches.
func (t *IndexTable) Lookup(date time.Time, name string) *models.IndexRow {
	for _, r := range FilterIndexes(t.Rows, date) {
		if strings.EqualFold(r.Index, name) {
			found := r
			return &found
		}
	}
	return nil
}

// FilterAccounts returns the accounts recorded on date, in table order.
func FilterAccounts(rows []models.AccountSnapshot, date time.Time) []models.AccountSnapshot {
	var out []models.AccountSnapshot
	for _, r := range rows {
		if util.SameDay(r.Date, date) {
			out = append(out, r)
		}
	}
	return out
}

// FilterEquity returns the equity rows recorded on date, in table order.
func FilterEquity(rows []models.EquityBreakdownRow, date time.Time) []models.EquityBreakdownRow {
	var out []models.EquityBreakdownRow
	for _, r := range rows {
		if util.SameDay(r.Date, date) {
			out = append(out, r)
		}
	}
	return out
}

// FilterIndexes returns the index rows recorded on date, in table order.
func FilterIndexes(rows []models.IndexRow, date time.Time) []models.IndexRow {
	var out []models.IndexRow
	for _, r := range rows {
		if util.SameDay(r.Date, date) {
			out = append(out, r)
		}
	}
	return out
}

func issuesOn(issues []DatedIssue, date time.Time) []models.RowIssue {
	var out []models.RowIssue
	for _, is := range issues {
		if util.SameDay(is.Date, date) {
			out = append(out, is.Issue)
		}
	}
	return out
}

func issue(table string, row int, column, value, reason string, excluded bool) models.RowIssue {
	e := &RowError{Table: table, Row: row, Column: column, Value: value, Reason: reason}
	log.Debugf("Row issue: %v", e)
	return e.Issue(excluded)
}

// parseAmount reads a currency cell such as "1234.5", "$1,234.50" or "(250.00)".
// A trailing percent sign is stripped and the number kept as written. Amounts
// too large for a float64 are rejected.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.TrimSuffix(s, "%")
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if f := d.InexactFloat64(); math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero, fmt.Errorf("amount %q out of range", s)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// parseOptionalFloat reads an optional numeric cell. A blank cell is absent and
// valid; anything else that is not a finite number is absent and invalid.
func parseOptionalFloat(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return &v, true
}

// parseOptionalRatio reads a return cell. "12%" is 0.12; a bare number is
// already a ratio.
func parseOptionalRatio(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "%") {
		return parseOptionalFloat(s)
	}
	v, ok := parseOptionalFloat(strings.TrimSuffix(s, "%"))
	if v == nil {
		return nil, false
	}
	ratio := *v / 100
	return &ratio, ok
}
