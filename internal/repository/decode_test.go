package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/epeers/holdings-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	march31 = time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	april30 = time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
)

func TestDecodeAccounts(t *testing.T) {
	records := []models.Record{
		{"date": "2025-03-31", "account": "401k", "balance": "50,000.00", "asset_class": "equity", "beta": "1.1", "return_pct_ytd": "0.05"},
		{"date": "3/31/2025", "account": "Savings", "balance": "$10000", "asset_class": "cash", "beta": ""},
		{"date": "2025-04-30", "account": "401k", "balance": "51000", "asset_class": "equity", "beta": "1.1", "return_pct_ytd": "6.5%"},
	}

	got, err := DecodeAccounts("portfolios", records)
	require.NoError(t, err)
	require.Len(t, got.Rows, 3)
	assert.Empty(t, got.Issues)
	assert.Empty(t, got.Undated)

	first := got.Rows[0]
	assert.Equal(t, march31, first.Date)
	assert.Equal(t, "401k", first.AccountName)
	assert.Equal(t, "50000", first.Balance.String())
	assert.Equal(t, "equity", first.AssetClass)
	require.NotNil(t, first.Beta)
	assert.Equal(t, 1.1, *first.Beta)
	require.NotNil(t, first.ReturnPctYTD)
	assert.Equal(t, 0.05, *first.ReturnPctYTD)

	savings := got.Rows[1]
	assert.Equal(t, march31, savings.Date)
	assert.Equal(t, "10000", savings.Balance.String())
	assert.Nil(t, savings.Beta, "blank beta is absent, not zero")
	assert.Nil(t, savings.ReturnPctYTD)

	require.NotNil(t, got.Rows[2].ReturnPctYTD)
	assert.InDelta(t, 0.065, *got.Rows[2].ReturnPctYTD, 1e-12)

	assert.Equal(t, []time.Time{april30, march31}, got.Dates())
}

func TestDecodeAccounts_BadCells(t *testing.T) {
	records := []models.Record{
		{"date": "2025-03-31", "account": "A", "balance": "100", "asset_class": "equity", "beta": "high"},
		{"date": "2025-03-31", "account": "B", "balance": "n/a", "asset_class": "equity", "beta": "1.0"},
		{"date": "someday", "account": "C", "balance": "300", "asset_class": "cash"},
		{"date": "2025-03-31", "account": "D", "balance": "400", "asset_class": ""},
	}

	got, err := DecodeAccounts("portfolios", records)
	require.NoError(t, err)

	require.Len(t, got.Rows, 2)
	assert.Equal(t, "A", got.Rows[0].AccountName)
	assert.Nil(t, got.Rows[0].Beta)
	assert.Equal(t, "D", got.Rows[1].AccountName)
	assert.Equal(t, UnclassifiedAssetClass, got.Rows[1].AssetClass)

	require.Len(t, got.Issues, 2)
	assert.Equal(t, models.RowIssue{Table: "portfolios", Row: 1, Column: "beta", Value: "high", Excluded: false}, got.Issues[0].Issue)
	assert.Equal(t, models.RowIssue{Table: "portfolios", Row: 2, Column: "balance", Value: "n/a", Excluded: true}, got.Issues[1].Issue)

	require.Len(t, got.Undated, 1)
	assert.Equal(t, 3, got.Undated[0].Row)

	set := got.Snapshot(march31)
	assert.Len(t, set.Accounts, 2)
	assert.Len(t, set.Rejected, 2)
}

func TestDecodeAccounts_AccountNameCandidates(t *testing.T) {
	tests := []struct {
		column string
	}{
		{"account_name"},
		{"account"},
		{"portfolio"},
		{"portfolio_name"},
		{"name"},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			got, err := DecodeAccounts("portfolios", []models.Record{
				{"date": "2025-03-31", "balance": "1", tt.column: "Brokerage"},
			})
			require.NoError(t, err)
			require.Len(t, got.Rows, 1)
			assert.Equal(t, "Brokerage", got.Rows[0].AccountName)
		})
	}
}

func TestDecodeAccounts_MissingColumn(t *testing.T) {
	_, err := DecodeAccounts("portfolios", []models.Record{
		{"date": "2025-03-31", "account": "401k"},
	})
	var mce *MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, "portfolios", mce.Table)
	assert.Equal(t, "balance", mce.Column)

	_, err = DecodeAccounts("portfolios", []models.Record{
		{"balance": "1"},
	})
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, "date", mce.Column)
}

func TestDecodeAccounts_EmptyTable(t *testing.T) {
	got, err := DecodeAccounts("portfolios", nil)
	require.NoError(t, err)
	assert.Empty(t, got.Rows)
	assert.Empty(t, got.Dates())

	set := got.Snapshot(march31)
	assert.Empty(t, set.Accounts)
	assert.Equal(t, march31, set.Date)
}

func TestDecodeAccounts_OnlyBadBalancesStillListsDate(t *testing.T) {
	got, err := DecodeAccounts("portfolios", []models.Record{
		{"date": "2025-03-31", "balance": "oops"},
	})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{march31}, got.Dates())

	set := got.Snapshot(march31)
	assert.Empty(t, set.Accounts)
	assert.Len(t, set.Rejected, 1)
}

func TestDecodeEquity(t *testing.T) {
	records := []models.Record{
		{"date": "2025-03-31", "asset_class": "equity", "equity_class": "US Large Cap", "balance": "30000"},
		{"date": "2025-03-31", "asset_class": "equity", "equity_class": "International", "balance": "20000"},
		{"date": "2025-03-31", "asset_class": "cash", "equity_class": "", "balance": "10000"},
		{"date": "2025-03-31", "asset_class": "equity", "equity_class": "Small Cap", "balance": "lots"},
	}

	got, err := DecodeEquity("assets", records, "equity")
	require.NoError(t, err)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "US Large Cap", got.Rows[0].Category)
	assert.Equal(t, "20000", got.Rows[1].Value.String())

	rows, issues := got.ForDate(march31)
	assert.Len(t, rows, 2)
	require.Len(t, issues, 1)
	assert.Equal(t, "balance", issues[0].Column)
	assert.Equal(t, 4, issues[0].Row)
	assert.True(t, issues[0].Excluded)
}

func TestDecodeEquity_NoAssetClassKeepsAll(t *testing.T) {
	got, err := DecodeEquity("assets", []models.Record{
		{"date": "2025-03-31", "sector": "Tech", "value_or_percentage": "60%"},
		{"date": "2025-03-31", "sector": "Health", "value_or_percentage": "40%"},
	}, "equity")
	require.NoError(t, err)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "60", got.Rows[0].Value.String())
}

func TestDecodeEquity_AssetClassIgnoresCase(t *testing.T) {
	got, err := DecodeEquity("assets", []models.Record{
		{"date": "2025-03-31", "asset_class": "Equity", "equity_class": "US", "balance": "30000"},
		{"date": "2025-03-31", "asset_class": " EQUITY ", "equity_class": "International", "balance": "20000"},
		{"date": "2025-03-31", "asset_class": "Cash", "equity_class": "", "balance": "10000"},
	}, "equity")
	require.NoError(t, err)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "US", got.Rows[0].Category)
	assert.Equal(t, "International", got.Rows[1].Category)
}

func TestDecodeAccounts_OutOfRangeBalanceExcluded(t *testing.T) {
	got, err := DecodeAccounts("portfolios", []models.Record{
		{"date": "2025-03-31", "account": "401k", "balance": "50000"},
		{"date": "2025-03-31", "account": "Typo", "balance": "1e400"},
	})
	require.NoError(t, err)

	set := got.Snapshot(march31)
	require.Len(t, set.Accounts, 1)
	assert.Equal(t, "401k", set.Accounts[0].AccountName)
	require.Len(t, set.Rejected, 1)
	assert.Equal(t, models.RowIssue{Table: "portfolios", Row: 2, Column: "balance", Value: "1e400", Excluded: true}, set.Rejected[0])
}

func TestDecodeHoldings(t *testing.T) {
	records := []models.Record{
		{"date": "2025-03-31", "portfolio": "401k", "asset_class": "equity", "balance": "30000", "beta": "1.2"},
		{"date": "2025-03-31", "portfolio": "401k", "asset_class": "bond", "balance": "10000", "beta": "0.2"},
		{"date": "2025-03-31", "portfolio": "Brokerage", "asset_class": "equity", "balance": "5000", "beta": "high"},
		{"date": "2025-03-31", "portfolio": "", "asset_class": "equity", "balance": "1", "beta": "1"},
		{"date": "2025-03-31", "portfolio": "401k", "asset_class": "equity", "balance": "n/a", "beta": "1"},
		{"date": "2025-04-30", "portfolio": "401k", "asset_class": "equity", "balance": "31000", "beta": "1.3"},
		{"date": "someday", "portfolio": "401k", "asset_class": "equity", "balance": "1", "beta": "1"},
	}

	got := DecodeHoldings("assets", records)
	require.Len(t, got.Rows, 4)

	rows := got.ForDate(march31)
	require.Len(t, rows, 3)
	assert.Equal(t, "401k", rows[0].Account)
	assert.Equal(t, "30000", rows[0].Balance.String())
	require.NotNil(t, rows[1].Beta)
	assert.Equal(t, 0.2, *rows[1].Beta)
	assert.Equal(t, "Brokerage", rows[2].Account)
	assert.Nil(t, rows[2].Beta, "unreadable beta is absent")

	assert.Len(t, got.ForDate(april30), 1)
}

func TestDecodeHoldings_NeedsOwnerAndBeta(t *testing.T) {
	noOwner := []models.Record{{"date": "2025-03-31", "equity_class": "US", "balance": "1", "beta": "1"}}
	assert.Empty(t, DecodeHoldings("assets", noOwner).Rows)

	noBeta := []models.Record{{"date": "2025-03-31", "account": "401k", "balance": "1"}}
	assert.Empty(t, DecodeHoldings("assets", noBeta).Rows)

	assert.Empty(t, DecodeHoldings("assets", nil).Rows)
}

func TestDecodeEquity_MissingColumns(t *testing.T) {
	var mce *MissingColumnError

	_, err := DecodeEquity("assets", []models.Record{{"date": "2025-03-31", "category": "Tech"}}, "equity")
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, "value|balance|percentage|value_or_percentage", mce.Column)

	_, err = DecodeEquity("assets", []models.Record{{"date": "2025-03-31", "value": "1"}}, "equity")
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, "category|equity_class|sector", mce.Column)
}

func TestDecodeIndexes(t *testing.T) {
	records := []models.Record{
		{"date": "2025-03-31", "index": "SP500", "return_pct_ytd": "0.12"},
		{"date": "2025-03-31", "index": "nasdaq", "return_pct_ytd": ""},
		{"date": "2025-04-30", "index": "sp500", "return_pct_ytd": "bad"},
	}

	got, err := DecodeIndexes("indexes", records)
	require.NoError(t, err)
	require.Len(t, got.Rows, 3)
	require.Len(t, got.Issues, 1)

	sp := got.Lookup(march31, "sp500")
	require.NotNil(t, sp)
	require.NotNil(t, sp.ReturnPctYTD)
	assert.Equal(t, 0.12, *sp.ReturnPctYTD)

	apr := got.Lookup(april30, "sp500")
	require.NotNil(t, apr)
	assert.Nil(t, apr.ReturnPctYTD)

	assert.Nil(t, got.Lookup(march31, "dow"))
}

func TestDecodeIndexes_MissingColumn(t *testing.T) {
	_, err := DecodeIndexes("indexes", []models.Record{{"date": "2025-03-31", "return_pct_ytd": "0.1"}})
	var mce *MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, "index", mce.Column)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1234.5", "1234.5", false},
		{" $1,234.50 ", "1234.5", false},
		{"-$2,500", "-2500", false},
		{"(250.00)", "-250", false},
		{"0", "0", false},
		{"", "", true},
		{"abc", "", true},
		{"1.2.3", "", true},
		{"1e400", "", true},
		{"-1e400", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseOptionalFloat(t *testing.T) {
	v, ok := parseOptionalFloat("")
	assert.Nil(t, v)
	assert.True(t, ok)

	v, ok = parseOptionalFloat("NaN")
	assert.Nil(t, v)
	assert.False(t, ok)

	v, ok = parseOptionalFloat("0.85")
	require.NotNil(t, v)
	assert.True(t, ok)
	assert.Equal(t, 0.85, *v)
}

func TestRowErrorMessage(t *testing.T) {
	err := &RowError{Table: "portfolios", Row: 2, Column: "balance", Value: "n/a", Reason: "not a number"}
	assert.Equal(t, `table "portfolios" row 2: column "balance" value "n/a": not a number`, err.Error())
}
