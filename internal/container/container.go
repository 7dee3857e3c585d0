// Package container provides dependency injection for the finanzas application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"
	"os"
	"path/filepath"

	"arsat/finanzas/internal/config"
	"arsat/finanzas/internal/dashboard"
	"arsat/finanzas/internal/exporter"
	"arsat/finanzas/internal/launcher"
	"arsat/finanzas/internal/logging"
	"arsat/finanzas/internal/metrics"
	"arsat/finanzas/internal/parser"
	"arsat/finanzas/internal/pipeline"
	"arsat/finanzas/internal/purchaseorderparser"
	"arsat/finanzas/internal/report"
	"arsat/finanzas/internal/transferparser"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	purchaseOrders parser.PurchaseOrderParser
	transfers      parser.TransferParser
	exporter       *exporter.Exporter
	generator      *report.Generator
	pipeline       *pipeline.Pipeline
	loader         *dashboard.Loader
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, config.NewLogger(cfg))
}

// NewContainerWithLogger wires the dependencies around an existing logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	poParser := purchaseorderparser.New(logger, cfg.PurchaseOrdersReadOptions())
	trParser := transferparser.New(logger, cfg.TransfersReadOptions())
	exp := exporter.New(logger, cfg.Export.MaxColumnWidth)
	gen := report.NewGenerator(logger)

	p := pipeline.New(poParser, trParser, exp, gen, m, logger, pipelineOptions(cfg))
	loader := dashboard.NewLoader(poParser, trParser, cfg.Input.PurchaseOrders, cfg.Input.Transfers, m, logger)

	logger.Debug("Container initialized",
		logging.F(logging.FieldFile, cfg.Input.PurchaseOrders),
		logging.F(logging.FieldOutputFile, cfg.Export.Dir))

	return &Container{
		logger:         logger,
		config:         cfg,
		registry:       registry,
		metrics:        m,
		purchaseOrders: poParser,
		transfers:      trParser,
		exporter:       exp,
		generator:      gen,
		pipeline:       p,
		loader:         loader,
	}, nil
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		PurchaseOrdersPath: cfg.Input.PurchaseOrders,
		TransfersPath:      cfg.Input.Transfers,
		OutputDir:          cfg.Export.Dir,
		PurchaseOrdersFile: cfg.Export.PurchaseOrdersFile,
		TransfersFile:      cfg.Export.TransfersFile,
		SeriesFile:         cfg.Export.SeriesFile,
		SeriesDelimiter:    cfg.PurchaseOrdersReadOptions().Delimiter,
		SummaryFormat:      cfg.Export.SummaryFormat,
	}
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetMetrics returns the application metrics.
func (c *Container) GetMetrics() *metrics.Metrics {
	return c.metrics
}

// GetRegistry returns the Prometheus registry backing the metrics.
func (c *Container) GetRegistry() *prometheus.Registry {
	return c.registry
}

// GetPurchaseOrderParser returns the purchase order parser.
func (c *Container) GetPurchaseOrderParser() parser.PurchaseOrderParser {
	return c.purchaseOrders
}

// GetTransferParser returns the transfer parser.
func (c *Container) GetTransferParser() parser.TransferParser {
	return c.transfers
}

// GetExporter returns the workbook exporter.
func (c *Container) GetExporter() *exporter.Exporter {
	return c.exporter
}

// GetPipeline returns the report pipeline.
func (c *Container) GetPipeline() *pipeline.Pipeline {
	return c.pipeline
}

// GetLoader returns the dashboard dataset loader.
func (c *Container) GetLoader() *dashboard.Loader {
	return c.loader
}

// NewDashboardServer builds the HTTP server for the dashboard API.
func (c *Container) NewDashboardServer() *dashboard.Server {
	handler := dashboard.NewHandler(c.loader, c.metrics, c.registry, c.logger)
	return dashboard.NewServer(c.config.Addr(), handler.Routes(), c.logger)
}

// NewLauncher builds a launcher that starts the running binary with args.
// The child log lands in the export directory unless the configured log
// file is absolute.
func (c *Container) NewLauncher(args []string) (*launcher.Launcher, error) {
	executable, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}
	logFile := c.config.Launcher.LogFile
	if !filepath.IsAbs(logFile) {
		logFile = filepath.Join(c.config.Export.Dir, logFile)
	}
	return launcher.New(c.logger, launcher.Options{
		Executable:  executable,
		Args:        args,
		LogFile:     logFile,
		StartupWait: c.config.Launcher.StartupWait,
		URL:         c.config.URL(),
	}), nil
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}
