package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"arsat/finanzas/internal/config"
	"arsat/finanzas/internal/logging"
	"arsat/finanzas/internal/purchaseorderparser"
	"arsat/finanzas/internal/transferparser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Input.PurchaseOrders = "oc.csv"
	cfg.Input.Transfers = "tr.csv"
	cfg.Input.PurchaseOrdersDelimiter = "|"
	cfg.Input.TransfersDelimiter = ","
	cfg.Input.Encoding = "utf8"
	cfg.Export.Dir = t.TempDir()
	cfg.Export.SeriesFile = "series.csv"
	cfg.Export.SummaryFormat = "yaml"
	cfg.Export.MaxColumnWidth = 40
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8600
	cfg.Launcher.StartupWait = 3 * time.Second
	cfg.Launcher.LogFile = "dashboard.log"
	return cfg
}

func TestNewContainer(t *testing.T) {
	tests := []struct {
		name        string
		config      func(t *testing.T) *config.Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "nil config",
			config:      func(*testing.T) *config.Config { return nil },
			expectError: true,
			errorMsg:    "configuration cannot be nil",
		},
		{
			name:   "valid config",
			config: testConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContainer(tt.config(t))
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, c)
			assert.NotNil(t, c.GetLogger())
			assert.NotNil(t, c.GetConfig())
			assert.NotNil(t, c.GetMetrics())
			assert.NotNil(t, c.GetRegistry())
			assert.NotNil(t, c.GetPurchaseOrderParser())
			assert.NotNil(t, c.GetTransferParser())
			assert.NotNil(t, c.GetExporter())
			assert.NotNil(t, c.GetPipeline())
			assert.NotNil(t, c.GetLoader())
			assert.NoError(t, c.Close())
		})
	}
}

func TestNewContainerWithLogger_NilLogger(t *testing.T) {
	_, err := NewContainerWithLogger(testConfig(t), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logger cannot be nil")
}

func TestContainer_ParsersUseConfiguredReadOptions(t *testing.T) {
	c, err := NewContainerWithLogger(testConfig(t), logging.NewMockLogger())
	require.NoError(t, err)

	po, ok := c.GetPurchaseOrderParser().(*purchaseorderparser.Parser)
	require.True(t, ok)
	assert.Equal(t, '|', po.Options().Delimiter)
	assert.Equal(t, "utf8", po.Options().Encoding)

	tr, ok := c.GetTransferParser().(*transferparser.Parser)
	require.True(t, ok)
	assert.Equal(t, ',', tr.Options().Delimiter)
}

func TestContainer_PipelineOptions(t *testing.T) {
	cfg := testConfig(t)
	c, err := NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)

	opts := c.GetPipeline().Options()
	assert.Equal(t, "oc.csv", opts.PurchaseOrdersPath)
	assert.Equal(t, "tr.csv", opts.TransfersPath)
	assert.Equal(t, cfg.Export.Dir, opts.OutputDir)
	assert.Equal(t, "series.csv", opts.SeriesFile)
	assert.Equal(t, '|', opts.SeriesDelimiter)
	assert.Equal(t, "yaml", opts.SummaryFormat)
}

func TestContainer_RegistryGathersApplicationMetrics(t *testing.T) {
	c, err := NewContainerWithLogger(testConfig(t), logging.NewMockLogger())
	require.NoError(t, err)

	c.GetMetrics().PipelineRuns.WithLabelValues("ok").Inc()

	families, err := c.GetRegistry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["arsat_finanzas_pipeline_runs_total"])
	assert.True(t, names["go_goroutines"])
}

func TestContainer_NewDashboardServer(t *testing.T) {
	c, err := NewContainerWithLogger(testConfig(t), logging.NewMockLogger())
	require.NoError(t, err)

	srv := c.NewDashboardServer()
	assert.Equal(t, "127.0.0.1:8600", srv.Addr())
}

func TestContainer_NewLauncher(t *testing.T) {
	tests := []struct {
		name    string
		logFile string
		want    func(cfg *config.Config) string
	}{
		{
			name:    "relative log file lands in export dir",
			logFile: "dashboard.log",
			want:    func(cfg *config.Config) string { return filepath.Join(cfg.Export.Dir, "dashboard.log") },
		},
		{
			name:    "absolute log file is kept",
			logFile: filepath.Join(os.TempDir(), "abs-dashboard.log"),
			want:    func(*config.Config) string { return filepath.Join(os.TempDir(), "abs-dashboard.log") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Launcher.LogFile = tt.logFile
			c, err := NewContainerWithLogger(cfg, logging.NewMockLogger())
			require.NoError(t, err)

			l, err := c.NewLauncher([]string{"serve"})
			require.NoError(t, err)
			opts := l.Options()
			assert.Equal(t, tt.want(cfg), opts.LogFile)
			assert.Equal(t, []string{"serve"}, opts.Args)
			assert.Equal(t, 3*time.Second, opts.StartupWait)
			assert.Equal(t, "http://127.0.0.1:8600", opts.URL)
			assert.NotEmpty(t, opts.Executable)
		})
	}
}

func TestContainer_PipelineReportsMissingInputs(t *testing.T) {
	cfg := testConfig(t)
	cfg.Input.PurchaseOrders = filepath.Join(t.TempDir(), "missing-oc.csv")
	cfg.Input.Transfers = filepath.Join(t.TempDir(), "missing-tr.csv")
	c, err := NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)

	res, err := c.GetPipeline().Analyze(context.Background())
	require.NoError(t, err)
	assert.Error(t, res.PurchaseOrdersErr)
	assert.Error(t, res.TransfersErr)
}
