package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyPoint is the total of one calendar month, keyed by the month's last day.
type MonthlyPoint struct {
	MonthEnd time.Time       `json:"month_end" yaml:"month_end"`
	Total    decimal.Decimal `json:"total" yaml:"total"`
}

// MonthlySeries holds points in strictly increasing month order.
type MonthlySeries struct {
	Name   string         `json:"name" yaml:"name"`
	Points []MonthlyPoint `json:"points" yaml:"points"`
}

// Len returns the number of months.
func (s MonthlySeries) Len() int { return len(s.Points) }

// Lookup returns the total for a month key.
func (s MonthlySeries) Lookup(monthEnd time.Time) (decimal.Decimal, bool) {
	for _, p := range s.Points {
		if p.MonthEnd.Equal(monthEnd) {
			return p.Total, true
		}
	}
	return decimal.Zero, false
}

// JoinedPoint is a month present in both correlated series.
type JoinedPoint struct {
	MonthEnd time.Time       `json:"month_end" yaml:"month_end"`
	A        decimal.Decimal `json:"a" yaml:"a"`
	B        decimal.Decimal `json:"b" yaml:"b"`
}

// CorrelationResult is the month-aligned join of two series and their Pearson coefficient.
type CorrelationResult struct {
	SeriesA     string        `json:"series_a" yaml:"series_a"`
	SeriesB     string        `json:"series_b" yaml:"series_b"`
	Points      []JoinedPoint `json:"points" yaml:"points"`
	Coefficient float64       `json:"coefficient" yaml:"coefficient"`
}
