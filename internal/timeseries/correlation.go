package timeseries

import (
	"math"
	"sort"

	"arsat/finanzas/internal/models"
	"arsat/finanzas/internal/parsererror"
)

// MinOverlap is the smallest number of shared months a correlation needs.
const MinOverlap = 2

// JoinAndCorrelate inner-joins two series on their month keys and computes
// the Pearson coefficient of the joined totals.
func JoinAndCorrelate(a, b models.MonthlySeries) (models.CorrelationResult, error) {
	result := models.CorrelationResult{SeriesA: a.Name, SeriesB: b.Name}

	byMonth := make(map[int64]models.MonthlyPoint, len(b.Points))
	for _, p := range b.Points {
		byMonth[p.MonthEnd.Unix()] = p
	}
	for _, p := range a.Points {
		if other, ok := byMonth[p.MonthEnd.Unix()]; ok {
			result.Points = append(result.Points, models.JoinedPoint{MonthEnd: p.MonthEnd, A: p.Total, B: other.Total})
		}
	}
	sort.Slice(result.Points, func(i, j int) bool {
		return result.Points[i].MonthEnd.Before(result.Points[j].MonthEnd)
	})

	n := len(result.Points)
	if n < MinOverlap {
		return result, &parsererror.CorrelationUndefinedError{Overlap: n, Reason: "fewer than 2 overlapping months"}
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range result.Points {
		xs[i] = p.A.InexactFloat64()
		ys[i] = p.B.InexactFloat64()
	}

	r, ok := pearson(xs, ys)
	if !ok {
		return result, &parsererror.CorrelationUndefinedError{Overlap: n, Reason: "a series has zero variance"}
	}
	result.Coefficient = r
	return result, nil
}

// pearson returns false when either side has zero variance.
func pearson(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))
	var meanX, meanY float64
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= n
	meanY /= n

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}

	r := cov / math.Sqrt(varX*varY)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return math.Max(-1, math.Min(1, r)), true
}
