package report

import (
	"strings"

	"arsat/finanzas/internal/currencyutils"
	"arsat/finanzas/internal/dateutils"
	"arsat/finanzas/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Display prefixes per currency.
const (
	SymbolPesos   = "ARS$ "
	SymbolDollars = "U$D "
	SymbolEuro    = "€ "
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
)

// HeaderTitle turns a canonical column name into a display header:
// "descripcion_producto" becomes "Descripcion Producto".
func HeaderTitle(column string) string {
	// Casers keep state; one per call.
	return cases.Title(language.Spanish).String(strings.ReplaceAll(column, "_", " "))
}

// FormatDate renders a date as DD/MM/YYYY, or "" when missing.
func FormatDate(d models.NullDate) string {
	if !d.Valid {
		return ""
	}
	return dateutils.FormatDayFirst(d.Time)
}

// FormatCurrency renders an amount with two decimals: "ARS$ 1.234.567,89".
func FormatCurrency(amount decimal.Decimal, prefix string) string {
	return prefix + currencyutils.FormatGrouped(amount, 2)
}

// FormatNullCurrency is FormatCurrency with "" for a missing amount.
func FormatNullCurrency(amount decimal.NullDecimal, prefix string) string {
	if !amount.Valid {
		return ""
	}
	return FormatCurrency(amount.Decimal, prefix)
}

// FormatCompact renders an amount scaled to G, M or K with one decimal;
// smaller amounts are rounded to units.
func FormatCompact(amount decimal.Decimal, prefix string) string {
	abs := amount.Abs()
	var s string
	switch {
	case abs.GreaterThanOrEqual(billion):
		s = currencyutils.FormatGrouped(amount.Div(billion), 1) + "G"
	case abs.GreaterThanOrEqual(million):
		s = currencyutils.FormatGrouped(amount.Div(million), 1) + "M"
	case abs.GreaterThanOrEqual(thousand):
		s = currencyutils.FormatGrouped(amount.Div(thousand), 1) + "K"
	default:
		s = currencyutils.FormatGrouped(amount, 0)
	}
	return prefix + s
}

// FormatTick renders an axis tick rounded to units: "ARS$ 1.234.567".
func FormatTick(value decimal.Decimal, prefix string) string {
	return prefix + currencyutils.FormatGrouped(value, 0)
}

// TickValues returns n evenly spaced values from zero to max inclusive.
// A non-positive max yields a single zero tick.
func TickValues(max decimal.Decimal, n int) []decimal.Decimal {
	if !max.IsPositive() || n < 2 {
		return []decimal.Decimal{decimal.Zero}
	}
	step := max.Div(decimal.NewFromInt(int64(n - 1)))
	ticks := make([]decimal.Decimal, n)
	for i := range ticks {
		ticks[i] = step.Mul(decimal.NewFromInt(int64(i)))
	}
	ticks[n-1] = max
	return ticks
}

// CurrencySymbol returns the display prefix for a currency, or "" if unknown.
func CurrencySymbol(currency string) string {
	switch currency {
	case models.CurrencyPesos:
		return SymbolPesos
	case models.CurrencyDollars:
		return SymbolDollars
	case models.CurrencyEuro:
		return SymbolEuro
	default:
		return ""
	}
}
