// Package pipeline runs load, normalize, aggregate and correlate over both
// datasets and writes the batch outputs.
//
// Each dataset is loaded independently: a dataset-fatal error leaves that
// dataset absent from the Result and skips only the outputs that depend on
// it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"arsat/finanzas/internal/common"
	"arsat/finanzas/internal/exporter"
	"arsat/finanzas/internal/fileutils"
	"arsat/finanzas/internal/logging"
	"arsat/finanzas/internal/metrics"
	"arsat/finanzas/internal/models"
	"arsat/finanzas/internal/parser"
	"arsat/finanzas/internal/parsererror"
	"arsat/finanzas/internal/report"
	"arsat/finanzas/internal/timeseries"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Options locates inputs and outputs.
type Options struct {
	PurchaseOrdersPath string
	TransfersPath      string

	OutputDir          string
	PurchaseOrdersFile string
	TransfersFile      string
	SeriesFile         string
	SeriesDelimiter    rune
	SummaryFormat      string
}

// DefaultSeriesFile is the monthly series CSV name.
const DefaultSeriesFile = "monthly_series.csv"

func (o Options) withDefaults() Options {
	if o.OutputDir == "" {
		o.OutputDir = "."
	}
	if o.PurchaseOrdersFile == "" {
		o.PurchaseOrdersFile = exporter.PurchaseOrdersFile
	}
	if o.TransfersFile == "" {
		o.TransfersFile = exporter.TransfersFile
	}
	if o.SeriesFile == "" {
		o.SeriesFile = DefaultSeriesFile
	}
	if o.SeriesDelimiter == 0 {
		o.SeriesDelimiter = ','
	}
	if o.SummaryFormat == "" {
		o.SummaryFormat = report.FormatJSON
	}
	return o
}

// SeriesOutcome is a monthly series or the reason it could not be built.
type SeriesOutcome struct {
	Name   string
	Series models.MonthlySeries
	Err    error
}

// Available reports whether the series was built.
func (s SeriesOutcome) Available() bool { return s.Err == nil }

// Result holds everything one analysis produced. A nil dataset always comes
// with a non-nil error for it.
type Result struct {
	RunID       string
	GeneratedAt time.Time

	PurchaseOrders    *models.PurchaseOrderDataset
	PurchaseOrdersErr error
	Transfers         *models.TransferDataset
	TransfersErr      error

	Series []SeriesOutcome

	Correlation    *models.CorrelationResult
	CorrelationErr error

	Outputs []string
}

// SeriesByName returns the outcome of a named series.
func (r *Result) SeriesByName(name string) (SeriesOutcome, bool) {
	for _, s := range r.Series {
		if s.Name == name {
			return s, true
		}
	}
	return SeriesOutcome{}, false
}

// Pipeline wires parsers, exporter and summary generator.
type Pipeline struct {
	purchaseOrders parser.PurchaseOrderParser
	transfers      parser.TransferParser
	exporter       *exporter.Exporter
	generator      *report.Generator
	metrics        *metrics.Metrics
	logger         logging.Logger
	options        Options
}

// New creates a Pipeline. Nil metrics get a private registry.
func New(
	po parser.PurchaseOrderParser,
	tr parser.TransferParser,
	exp *exporter.Exporter,
	gen *report.Generator,
	m *metrics.Metrics,
	logger logging.Logger,
	options Options,
) *Pipeline {
	if logger == nil {
		logger = logging.Nop()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	return &Pipeline{
		purchaseOrders: po,
		transfers:      tr,
		exporter:       exp,
		generator:      gen,
		metrics:        m,
		logger:         logger,
		options:        options.withDefaults(),
	}
}

// Options returns the effective options.
func (p *Pipeline) Options() Options { return p.options }

// Analyze loads both datasets concurrently and derives series and
// correlation. Dataset failures are recorded on the Result, never returned;
// the error is non-nil only when ctx is done.
func (p *Pipeline) Analyze(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), GeneratedAt: time.Now().UTC()}
	logger := p.logger.WithField(logging.FieldRunID, res.RunID)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		res.PurchaseOrders, res.PurchaseOrdersErr = p.purchaseOrders.ParseFile(p.options.PurchaseOrdersPath)
		p.recordLoad(logger, models.DatasetPurchaseOrders, tableOf(res.PurchaseOrders), res.PurchaseOrdersErr)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		res.Transfers, res.TransfersErr = p.transfers.ParseFile(p.options.TransfersPath)
		p.recordLoad(logger, models.DatasetTransfers, transferTableOf(res.Transfers), res.TransfersErr)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	poTable := tableOf(res.PurchaseOrders)
	trTable := transferTableOf(res.Transfers)
	res.Series = []SeriesOutcome{
		p.aggregate(logger, models.SeriesPurchaseOrdersARS, poTable, timeseries.CurrencyFilter(models.CurrencyPesos)),
		p.aggregate(logger, models.SeriesPurchaseOrdersUSD, poTable, timeseries.CurrencyFilter(models.CurrencyDollars)),
		p.aggregate(logger, models.SeriesTransfers, trTable),
	}

	transfers, _ := res.SeriesByName(models.SeriesTransfers)
	spend, _ := res.SeriesByName(models.SeriesPurchaseOrdersARS)
	res.Correlation, res.CorrelationErr = correlate(transfers, spend)
	if res.CorrelationErr != nil {
		logger.WithError(res.CorrelationErr).Warn("Correlation unavailable")
	} else {
		p.metrics.Correlation.Set(res.Correlation.Coefficient)
		logger.Info("Computed correlation",
			logging.F("coefficient", res.Correlation.Coefficient),
			logging.F(logging.FieldCount, len(res.Correlation.Points)))
	}
	return res, nil
}

// Run analyzes and writes every output whose inputs are available. A
// returned error means an output could not be written.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res, err := p.Analyze(ctx)
	if err != nil {
		p.metrics.PipelineRuns.WithLabelValues("canceled").Inc()
		return nil, err
	}
	logger := p.logger.WithField(logging.FieldRunID, res.RunID)

	if err := p.export(logger, res); err != nil {
		p.metrics.PipelineRuns.WithLabelValues("failed").Inc()
		return res, err
	}

	elapsed := time.Since(start)
	p.metrics.PipelineDuration.Observe(elapsed.Seconds())
	p.metrics.PipelineRuns.WithLabelValues(runStatus(res)).Inc()
	logger.Info("Pipeline finished",
		logging.F(logging.FieldDuration, elapsed.Milliseconds()),
		logging.F(logging.FieldCount, len(res.Outputs)))
	return res, nil
}

func (p *Pipeline) export(logger logging.Logger, res *Result) error {
	opts := p.options
	if err := fileutils.EnsureDirectoryExists(opts.OutputDir); err != nil {
		return err
	}

	if t := tableOf(res.PurchaseOrders); t != nil {
		path := filepath.Join(opts.OutputDir, opts.PurchaseOrdersFile)
		if err := p.exporter.ExportFile(t, exporter.PurchaseOrderSheet, path); err != nil {
			return fmt.Errorf("export purchase orders: %w", err)
		}
		res.Outputs = append(res.Outputs, path)
	} else {
		logger.Warn("Skipping purchase order workbook",
			logging.F(logging.FieldReason, errString(res.PurchaseOrdersErr)))
	}

	if t := transferTableOf(res.Transfers); t != nil {
		path := filepath.Join(opts.OutputDir, opts.TransfersFile)
		if err := p.exporter.ExportFile(t, exporter.TransferSheet, path); err != nil {
			return fmt.Errorf("export transfers: %w", err)
		}
		res.Outputs = append(res.Outputs, path)
	} else {
		logger.Warn("Skipping transfer workbook",
			logging.F(logging.FieldReason, errString(res.TransfersErr)))
	}

	var available []models.MonthlySeries
	for _, s := range res.Series {
		if s.Available() {
			available = append(available, s.Series)
		}
	}
	if len(available) > 0 {
		path := filepath.Join(opts.OutputDir, opts.SeriesFile)
		if err := common.WriteSeriesCSV(available, path, opts.SeriesDelimiter, logger); err != nil {
			return fmt.Errorf("export series: %w", err)
		}
		res.Outputs = append(res.Outputs, path)
	} else {
		logger.Warn("No monthly series available, skipping series file")
	}

	summaryPath := filepath.Join(opts.OutputDir, report.FileName(opts.SummaryFormat))
	res.Outputs = append(res.Outputs, summaryPath)
	out, err := p.generator.Generate(BuildSummary(res), opts.SummaryFormat)
	if err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	if err := fileutils.WriteFile(summaryPath, out); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	logger.Info("Wrote summary", logging.F(logging.FieldOutputFile, summaryPath))
	return nil
}

func (p *Pipeline) recordLoad(logger logging.Logger, dataset string, t *models.Table, err error) {
	logger = logger.WithField(logging.FieldDataset, dataset)
	if err != nil {
		p.metrics.DatasetFailures.WithLabelValues(dataset, failureCause(err)).Inc()
		logger.WithError(err).Error("Dataset unavailable")
		return
	}
	p.metrics.RowsLoaded.WithLabelValues(dataset).Add(float64(t.Len()))
	for column, n := range t.Diagnostics.Unparsable {
		p.metrics.CellsUnparsable.WithLabelValues(dataset, column).Add(float64(n))
	}
	logger.Info("Dataset loaded",
		logging.F(logging.FieldCount, t.Len()),
		logging.F("unparsable_cells", t.Diagnostics.TotalUnparsable()))
}

func (p *Pipeline) aggregate(logger logging.Logger, name string, t *models.Table, filters ...timeseries.RowFilter) SeriesOutcome {
	s, err := timeseries.Aggregate(name, t, models.ColumnDate, models.ColumnAmount, filters...)
	if err != nil {
		p.metrics.SeriesUnavailable.WithLabelValues(name).Inc()
		logger.WithError(err).Warn("Monthly series unavailable", logging.F(logging.FieldSeries, name))
		return SeriesOutcome{Name: name, Err: err}
	}
	logger.Debug("Monthly series built",
		logging.F(logging.FieldSeries, name),
		logging.F(logging.FieldCount, s.Len()))
	return SeriesOutcome{Name: name, Series: s}
}

func correlate(a, b SeriesOutcome) (*models.CorrelationResult, error) {
	for _, s := range []SeriesOutcome{a, b} {
		if !s.Available() {
			return nil, fmt.Errorf("series %s: %w", s.Name, s.Err)
		}
	}
	res, err := timeseries.JoinAndCorrelate(a.Series, b.Series)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func failureCause(err error) string {
	var mismatch *parsererror.SchemaMismatchError
	var unreadable *parsererror.FileUnreadableError
	switch {
	case errors.As(err, &mismatch):
		return "schema_mismatch"
	case errors.As(err, &unreadable):
		return "unreadable"
	default:
		return "other"
	}
}

func runStatus(res *Result) string {
	if res.PurchaseOrdersErr != nil || res.TransfersErr != nil {
		return "partial"
	}
	return "ok"
}

func tableOf(d *models.PurchaseOrderDataset) *models.Table {
	if d == nil {
		return nil
	}
	return d.Table
}

func transferTableOf(d *models.TransferDataset) *models.Table {
	if d == nil {
		return nil
	}
	return d.Table
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
