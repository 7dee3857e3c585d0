// Package report renders amounts, dates and headers for display and writes
// run summaries.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"arsat/finanzas/internal/logging"
	"arsat/finanzas/internal/models"

	"gopkg.in/yaml.v3"
)

// Supported summary formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Summary describes one pipeline run.
type Summary struct {
	RunID       string             `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time          `json:"generated_at" yaml:"generated_at"`
	Datasets    []DatasetSummary   `json:"datasets" yaml:"datasets"`
	Series      []SeriesSummary    `json:"series" yaml:"series"`
	Correlation CorrelationSummary `json:"correlation" yaml:"correlation"`
	Outputs     []string           `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// DatasetSummary describes a loaded (or failed) dataset.
type DatasetSummary struct {
	Name        string             `json:"name" yaml:"name"`
	Source      string             `json:"source" yaml:"source"`
	Loaded      bool               `json:"loaded" yaml:"loaded"`
	Error       string             `json:"error,omitempty" yaml:"error,omitempty"`
	Rows        int                `json:"rows" yaml:"rows"`
	Columns     []string           `json:"columns,omitempty" yaml:"columns,omitempty"`
	FirstDate   string             `json:"first_date,omitempty" yaml:"first_date,omitempty"`
	LastDate    string             `json:"last_date,omitempty" yaml:"last_date,omitempty"`
	Diagnostics models.Diagnostics `json:"diagnostics" yaml:"diagnostics"`
}

// SeriesSummary describes a monthly series or why it is unavailable.
type SeriesSummary struct {
	Name      string `json:"name" yaml:"name"`
	Available bool   `json:"available" yaml:"available"`
	Reason    string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Months    int    `json:"months" yaml:"months"`
	Total     string `json:"total,omitempty" yaml:"total,omitempty"`
}

// CorrelationSummary describes the correlation outcome.
type CorrelationSummary struct {
	SeriesA     string   `json:"series_a" yaml:"series_a"`
	SeriesB     string   `json:"series_b" yaml:"series_b"`
	Defined     bool     `json:"defined" yaml:"defined"`
	Overlap     int      `json:"overlap" yaml:"overlap"`
	Coefficient *float64 `json:"coefficient,omitempty" yaml:"coefficient,omitempty"`
	Reason      string   `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Generator renders summaries in JSON or YAML.
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a new instance of Generator.
func NewGenerator(logger logging.Logger) *Generator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Generator{logger: logger.WithField(logging.FieldOperation, "summary")}
}

// Generate renders a summary in the given format.
func (g *Generator) Generate(summary *Summary, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			g.logger.WithError(err).Error("Failed to marshal JSON summary")
			return nil, fmt.Errorf("failed to marshal JSON summary: %w", err)
		}
		return out, nil
	case FormatYAML:
		out, err := yaml.Marshal(summary)
		if err != nil {
			g.logger.WithError(err).Error("Failed to marshal YAML summary")
			return nil, fmt.Errorf("failed to marshal YAML summary: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported summary format: %s", format)
	}
}

// FileName returns the summary file name for a format.
func FileName(format string) string {
	return "summary." + format
}
