// Package normalizer turns raw delimited tables into typed tables with
// canonical column names, locale-parsed amounts and day-first dates.
package normalizer

import (
	"errors"
	"fmt"
	"strings"

	"arsat/finanzas/internal/currencyutils"
	"arsat/finanzas/internal/dateutils"
	"arsat/finanzas/internal/logging"
	"arsat/finanzas/internal/models"
	"arsat/finanzas/internal/parsererror"
)

// Normalizer applies a Schema to a RawTable. It holds no state besides its logger.
type Normalizer struct {
	logger logging.Logger
}

// New creates a Normalizer. A nil logger discards output.
func New(logger logging.Logger) *Normalizer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Normalizer{logger: logger}
}

// Normalize is a convenience wrapper around a Normalizer without logging.
func Normalize(raw *models.RawTable, schema models.Schema) (*models.Table, error) {
	return New(nil).Normalize(raw, schema)
}

// CanonicalName trims, lowercases and replaces spaces with underscores.
func CanonicalName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// Normalize builds a typed table. The input is not modified. A SchemaMismatchError
// is the only error for well-formed input; cell-level problems become missing
// markers counted in the table diagnostics.
func (n *Normalizer) Normalize(raw *models.RawTable, schema models.Schema) (*models.Table, error) {
	if raw == nil {
		return nil, errors.New("nil raw table")
	}
	logger := n.logger.WithFields(
		logging.F(logging.FieldDataset, schema.Name),
		logging.F(logging.FieldFile, raw.Source))

	var diag models.Diagnostics
	keep := nonEmptyColumns(raw)
	for i, name := range raw.Header {
		if !keep[i] {
			diag.DroppedColumns = append(diag.DroppedColumns, name)
		}
	}
	if len(diag.DroppedColumns) > 0 {
		logger.Debug("Dropped empty columns", logging.F(logging.FieldCount, len(diag.DroppedColumns)))
	}

	var names []string
	var sourceIdx []int
	for i, name := range raw.Header {
		if keep[i] {
			names = append(names, CanonicalName(name))
			sourceIdx = append(sourceIdx, i)
		}
	}

	if schema.ExpectedColumns > 0 && len(names) != schema.ExpectedColumns {
		return nil, &parsererror.SchemaMismatchError{
			FilePath: raw.Source,
			Expected: schema.ExpectedColumns,
			Actual:   len(names),
			Columns:  names,
		}
	}
	if len(schema.PositionalNames) > 0 {
		if len(schema.PositionalNames) != len(names) {
			return nil, &parsererror.SchemaMismatchError{
				FilePath: raw.Source,
				Expected: len(schema.PositionalNames),
				Actual:   len(names),
				Columns:  names,
			}
		}
		names = append([]string(nil), schema.PositionalNames...)
	}
	warnDuplicates(logger, names)

	table := &models.Table{Source: raw.Source, Columns: make([]models.Column, len(names))}
	for i, name := range names {
		table.Columns[i] = models.Column{Name: name, Type: columnType(schema, name)}
	}

	categorical := make(map[string]bool, len(schema.CategoricalColumns))
	for _, c := range schema.CategoricalColumns {
		categorical[c] = true
	}

	table.Rows = make([][]models.Value, len(raw.Rows))
	for r, rawRow := range raw.Rows {
		row := make([]models.Value, len(names))
		for c, col := range table.Columns {
			cell := cellAt(rawRow, sourceIdx[c])
			row[c] = n.normalizeCell(logger, &diag, schema, categorical, col, cell)
		}
		table.Rows[r] = row
	}

	for _, required := range []string{schema.AmountColumn, schema.DateColumn} {
		if required != "" && table.ColumnIndex(required) < 0 {
			logger.Warn("Expected column not present", logging.F(logging.FieldColumn, required))
		}
	}
	for column, count := range diag.Unparsable {
		logger.Warn("Cells could not be parsed and were marked missing",
			logging.F(logging.FieldColumn, column),
			logging.F(logging.FieldCount, count))
	}

	table.Diagnostics = diag
	return table, nil
}

func (n *Normalizer) normalizeCell(logger logging.Logger, diag *models.Diagnostics, schema models.Schema,
	categorical map[string]bool, col models.Column, cell string) models.Value {
	switch {
	case col.Name == schema.AmountColumn:
		amount, err := currencyutils.ParseAmount(cell)
		if err != nil {
			diag.AddUnparsable(col.Name)
			logParseError(logger, schema.Name, col.Name, cell, err)
			return models.NumberValue(models.MissingAmount())
		}
		return models.NumberValue(models.ValidAmount(amount))

	case col.Name == schema.DateColumn:
		t, _, err := dateutils.ParseDayFirst(cell)
		if err != nil {
			diag.AddUnparsable(col.Name)
			logParseError(logger, schema.Name, col.Name, cell, err)
			return models.DateValue(models.NullDate{})
		}
		return models.DateValue(models.NewNullDate(t))

	case col.Name == schema.DescriptionColumn:
		if cell == "" {
			diag.AddFilled(col.Name)
			return models.StringValue(models.MissingDescription)
		}
		return models.StringValue(cell)

	case categorical[col.Name]:
		v := strings.TrimSpace(cell)
		if v == "" || v == "nan" {
			diag.AddFilled(col.Name)
			return models.StringValue(models.NotSpecified)
		}
		return models.StringValue(v)

	case col.Name == schema.LabelColumn:
		return models.StringValue(strings.TrimSpace(cell))

	default:
		return models.StringValue(cell)
	}
}

func logParseError(logger logging.Logger, parser, field, value string, err error) {
	logger.Debug((&parsererror.ParseError{Parser: parser, Field: field, Value: value, Err: err}).Error())
}

func columnType(schema models.Schema, name string) models.ColumnType {
	switch name {
	case schema.AmountColumn:
		return models.ColumnTypeNumber
	case schema.DateColumn:
		return models.ColumnTypeDate
	default:
		return models.ColumnTypeString
	}
}

// nonEmptyColumns marks columns holding at least one non-empty cell. A table
// without data rows keeps every column.
func nonEmptyColumns(raw *models.RawTable) []bool {
	keep := make([]bool, len(raw.Header))
	if len(raw.Rows) == 0 {
		for i := range keep {
			keep[i] = true
		}
		return keep
	}
	for _, row := range raw.Rows {
		for i := range keep {
			if !keep[i] && cellAt(row, i) != "" {
				keep[i] = true
			}
		}
	}
	return keep
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func warnDuplicates(logger logging.Logger, names []string) {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			logger.Warn(fmt.Sprintf("Duplicate column %q after canonicalization, first occurrence wins", name),
				logging.F(logging.FieldColumn, name))
		}
		seen[name] = true
	}
}
