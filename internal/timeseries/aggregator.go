// Package timeseries buckets normalized tables into calendar-month totals and
// correlates month-aligned series.
package timeseries

import (
	"fmt"
	"sort"
	"time"

	"arsat/finanzas/internal/dateutils"
	"arsat/finanzas/internal/models"
	"arsat/finanzas/internal/parsererror"

	"github.com/shopspring/decimal"
)

// RowFilter selects the rows of a table that contribute to a series.
type RowFilter func(t *models.Table, row int) bool

// ColumnEquals keeps rows whose text column equals value.
func ColumnEquals(column, value string) RowFilter {
	return func(t *models.Table, row int) bool {
		return t.StringAt(row, column) == value
	}
}

// CurrencyFilter keeps purchase orders in one currency.
func CurrencyFilter(currency string) RowFilter {
	return ColumnEquals(models.ColumnCurrency, currency)
}

// DateRangeFilter keeps rows whose date falls within dr.
func DateRangeFilter(dateCol string, dr DateRange) RowFilter {
	return func(t *models.Table, row int) bool {
		d := t.DateAt(row, dateCol)
		return d.Valid && dr.Contains(d.Time)
	}
}

// Aggregate sums amountCol per calendar month of dateCol over the rows selected
// by filters. Missing amounts count as zero. The series is unavailable when
// any row of the whole table lacks a date, before filters are applied.
func Aggregate(name string, t *models.Table, dateCol, amountCol string, filters ...RowFilter) (models.MonthlySeries, error) {
	unavailable := func(format string, args ...interface{}) (models.MonthlySeries, error) {
		return models.MonthlySeries{}, &parsererror.AggregationUnavailableError{
			Series: name,
			Reason: fmt.Sprintf(format, args...),
		}
	}

	if t == nil {
		return unavailable("no table")
	}
	dateIdx := t.ColumnIndex(dateCol)
	if dateIdx < 0 || t.Columns[dateIdx].Type != models.ColumnTypeDate {
		return unavailable("no date column %q", dateCol)
	}
	amountIdx := t.ColumnIndex(amountCol)
	if amountIdx < 0 || t.Columns[amountIdx].Type != models.ColumnTypeNumber {
		return unavailable("no numeric column %q", amountCol)
	}

	missing := 0
	for _, row := range t.Rows {
		if !row[dateIdx].Date.Valid {
			missing++
		}
	}
	if missing > 0 {
		return unavailable("%d of %d rows have no valid %s", missing, len(t.Rows), dateCol)
	}

	totals := make(map[time.Time]decimal.Decimal)
	selected := 0
rows:
	for i, row := range t.Rows {
		for _, keep := range filters {
			if !keep(t, i) {
				continue rows
			}
		}
		selected++
		key := dateutils.MonthKey(row[dateIdx].Date.Time)
		amount := decimal.Zero
		if row[amountIdx].Num.Valid {
			amount = row[amountIdx].Num.Decimal
		}
		totals[key] = totals[key].Add(amount)
	}
	if selected == 0 {
		return unavailable("no rows")
	}

	series := models.MonthlySeries{Name: name, Points: make([]models.MonthlyPoint, 0, len(totals))}
	for month, total := range totals {
		series.Points = append(series.Points, models.MonthlyPoint{MonthEnd: month, Total: total})
	}
	sort.Slice(series.Points, func(i, j int) bool {
		return series.Points[i].MonthEnd.Before(series.Points[j].MonthEnd)
	})
	return series, nil
}
