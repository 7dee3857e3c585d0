package report

import (
	"encoding/json"
	"testing"
	"time"

	"arsat/finanzas/internal/logging"
	"arsat/finanzas/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleSummary() *Summary {
	r := 0.87
	return &Summary{
		RunID:       "6f1c2a3e-0000-4000-8000-000000000000",
		GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Datasets: []DatasetSummary{
			{Name: models.DatasetPurchaseOrders, Source: "ordenes.csv", Loaded: true, Rows: 10,
				Diagnostics: models.Diagnostics{Unparsable: map[string]int{"importe": 2}}},
			{Name: models.DatasetTransfers, Source: "tr.csv", Error: "schema mismatch: expected 3 columns, got 4"},
		},
		Series: []SeriesSummary{
			{Name: models.SeriesPurchaseOrdersARS, Available: true, Months: 3, Total: "1500"},
			{Name: models.SeriesTransfers, Reason: "dataset not loaded"},
		},
		Correlation: CorrelationSummary{SeriesA: models.SeriesPurchaseOrdersARS, SeriesB: models.SeriesTransfers, Coefficient: &r, Defined: true, Overlap: 3},
	}
}

func TestGenerator_GenerateJSON(t *testing.T) {
	g := NewGenerator(logging.NewMockLogger())

	out, err := g.Generate(sampleSummary(), FormatJSON)
	require.NoError(t, err)

	var decoded Summary
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, sampleSummary().RunID, decoded.RunID)
	assert.Len(t, decoded.Datasets, 2)
	assert.Equal(t, 2, decoded.Datasets[0].Diagnostics.Unparsable["importe"])
	require.NotNil(t, decoded.Correlation.Coefficient)
	assert.InDelta(t, 0.87, *decoded.Correlation.Coefficient, 1e-9)
}

func TestGenerator_GenerateYAML(t *testing.T) {
	g := NewGenerator(nil)

	out, err := g.Generate(sampleSummary(), FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(out), "run_id:")

	var decoded Summary
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, "dataset not loaded", decoded.Series[1].Reason)
	assert.False(t, decoded.Datasets[1].Loaded)
}

func TestGenerator_UnsupportedFormat(t *testing.T) {
	_, err := NewGenerator(nil).Generate(sampleSummary(), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported summary format")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "summary.json", FileName(FormatJSON))
	assert.Equal(t, "summary.yaml", FileName(FormatYAML))
}
