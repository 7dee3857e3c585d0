package pipeline

import (
	"errors"

	"arsat/finanzas/internal/dateutils"
	"arsat/finanzas/internal/models"
	"arsat/finanzas/internal/parsererror"
	"arsat/finanzas/internal/report"
	"arsat/finanzas/internal/timeseries"

	"github.com/shopspring/decimal"
)

// BuildSummary describes a Result for the summary report.
func BuildSummary(res *Result) *report.Summary {
	s := &report.Summary{
		RunID:       res.RunID,
		GeneratedAt: res.GeneratedAt,
		Datasets: []report.DatasetSummary{
			datasetSummary(models.DatasetPurchaseOrders, tableOf(res.PurchaseOrders), res.PurchaseOrdersErr),
			datasetSummary(models.DatasetTransfers, transferTableOf(res.Transfers), res.TransfersErr),
		},
		Outputs: res.Outputs,
	}

	for _, o := range res.Series {
		ss := report.SeriesSummary{Name: o.Name, Available: o.Available()}
		if o.Available() {
			ss.Months = o.Series.Len()
			ss.Total = report.FormatCurrency(seriesTotal(o.Series), "")
		} else {
			ss.Reason = o.Err.Error()
		}
		s.Series = append(s.Series, ss)
	}

	s.Correlation = report.CorrelationSummary{
		SeriesA: models.SeriesTransfers,
		SeriesB: models.SeriesPurchaseOrdersARS,
	}
	if res.Correlation != nil {
		r := res.Correlation.Coefficient
		s.Correlation.Defined = true
		s.Correlation.Overlap = len(res.Correlation.Points)
		s.Correlation.Coefficient = &r
	} else if res.CorrelationErr != nil {
		s.Correlation.Reason = res.CorrelationErr.Error()
		var undefined *parsererror.CorrelationUndefinedError
		if errors.As(res.CorrelationErr, &undefined) {
			s.Correlation.Overlap = undefined.Overlap
		}
	}
	return s
}

func datasetSummary(name string, t *models.Table, err error) report.DatasetSummary {
	ds := report.DatasetSummary{Name: name}
	if err != nil {
		ds.Error = err.Error()
		var unreadable *parsererror.FileUnreadableError
		var mismatch *parsererror.SchemaMismatchError
		switch {
		case errors.As(err, &unreadable):
			ds.Source = unreadable.FilePath
		case errors.As(err, &mismatch):
			ds.Source = mismatch.FilePath
		}
		return ds
	}
	ds.Source = t.Source
	ds.Loaded = true
	ds.Rows = t.Len()
	ds.Columns = t.ColumnNames()
	ds.Diagnostics = t.Diagnostics
	if dr := timeseries.TableDateRange(t, models.ColumnDate); !dr.IsZero() {
		ds.FirstDate = dateutils.FormatDayFirst(dr.Start)
		ds.LastDate = dateutils.FormatDayFirst(dr.End)
	}
	return ds
}

func seriesTotal(s models.MonthlySeries) (total decimal.Decimal) {
	for _, p := range s.Points {
		total = total.Add(p.Total)
	}
	return total
}
