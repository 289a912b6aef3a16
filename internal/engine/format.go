package engine

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Placeholder rendered for metrics that are undefined for the selected date.
const Placeholder = "--"

// Formatter renders amounts and ratios for display.
// Rounding is applied per value; rounded percentages are not adjusted to sum to 100.
type Formatter struct {
	Currency         string
	CurrencyDecimals int
	PercentDecimals  int
}

// DefaultFormatter formats US dollars with cents and percentages with one decimal.
func DefaultFormatter() Formatter {
	return Formatter{Currency: money.USD, CurrencyDecimals: 2, PercentDecimals: 1}
}

// currency resolves the configured ISO code, falling back to USD for codes
// go-money doesn't know how to display.
func (f Formatter) currency() *money.Currency {
	cur := money.New(0, strings.ToUpper(f.Currency)).Currency()
	if cur == nil || cur.Template == "" {
		cur = money.New(0, money.USD).Currency()
	}
	return cur
}

// FormatCurrency rounds amount to CurrencyDecimals (half away from zero) and
// renders it with the currency symbol and thousands separators, e.g. "$1,234.56".
func (f Formatter) FormatCurrency(amount float64) string {
	cur := f.currency()
	places := f.CurrencyDecimals
	if places < 0 {
		places = 0
	}
	minor := decimal.NewFromFloat(amount).Round(int32(places)).Shift(int32(places)).IntPart()
	return money.NewFormatter(places, cur.Decimal, cur.Thousand, cur.Grapheme, cur.Template).Format(minor)
}

// FormatPercentage renders a ratio as a percentage: 0.1667 -> "16.7%".
func (f Formatter) FormatPercentage(ratio float64) string {
	places := f.PercentDecimals
	if places < 0 {
		places = 0
	}
	return decimal.NewFromFloat(ratio).Shift(2).StringFixed(int32(places)) + "%"
}

// FormatBeta renders a beta with two decimals.
func (f Formatter) FormatBeta(beta float64) string {
	return fmt.Sprintf("%.2f", beta)
}

// Optional variants render Placeholder for absent values.

func (f Formatter) CurrencyOrPlaceholder(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return f.FormatCurrency(*v)
}

func (f Formatter) PercentageOrPlaceholder(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return f.FormatPercentage(*v)
}

func (f Formatter) BetaOrPlaceholder(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return f.FormatBeta(*v)
}
