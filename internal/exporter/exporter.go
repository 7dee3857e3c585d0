// Package exporter writes normalized tables to formatted xlsx workbooks.
package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"arsat/finanzas/internal/fileutils"
	"arsat/finanzas/internal/logging"
	"arsat/finanzas/internal/models"
	"arsat/finanzas/internal/report"

	"github.com/xuri/excelize/v2"
)

// Default workbook names.
const (
	PurchaseOrdersFile = "ARSAT_Finanzas_ordenes_compra_FORMATEADO_FINAL.xlsx"
	TransfersFile      = "ARSAT_Finanzas_transferencias_FORMATEADO.xlsx"
)

const (
	// DefaultMaxColumnWidth caps computed column widths.
	DefaultMaxColumnWidth = 50
	dateColumnWidth       = 12
	widthPadding          = 2
)

// Sheet describes the target worksheet and its header look.
type Sheet struct {
	Name       string
	HeaderFill string
}

// Sheets per dataset.
var (
	PurchaseOrderSheet = Sheet{Name: "Datos_Ordenes_Compra", HeaderFill: "#D7E4BC"}
	TransferSheet      = Sheet{Name: "Datos_Transferencias", HeaderFill: "#C9DAF8"}
)

// Exporter writes tables as single-sheet workbooks.
type Exporter struct {
	logger         logging.Logger
	maxColumnWidth int
}

// New creates an Exporter. A non-positive width falls back to DefaultMaxColumnWidth.
func New(logger logging.Logger, maxColumnWidth int) *Exporter {
	if logger == nil {
		logger = logging.Nop()
	}
	if maxColumnWidth <= 0 {
		maxColumnWidth = DefaultMaxColumnWidth
	}
	return &Exporter{logger: logger, maxColumnWidth: maxColumnWidth}
}

// ExportFile writes the table to path, creating the parent directory.
func (e *Exporter) ExportFile(t *models.Table, sheet Sheet, path string) error {
	if err := fileutils.EnsureDirectoryExists(filepath.Dir(path)); err != nil {
		return err
	}
	out, err := os.Create(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return fmt.Errorf("error creating workbook: %w", err)
	}
	if err := e.Write(t, sheet, out); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("error closing workbook: %w", err)
	}

	e.logger.Info("Exported workbook",
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldCount, t.Len()))
	return nil
}

// Write renders the table as an xlsx workbook into w.
func (e *Exporter) Write(t *models.Table, sheet Sheet, w io.Writer) error {
	if t == nil {
		return fmt.Errorf("nil table")
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.WithError(err).Warn("Failed to close workbook")
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
		return fmt.Errorf("error naming sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(headerStyle(sheet.HeaderFill))
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet.Name)
	if err != nil {
		return fmt.Errorf("error opening stream writer: %w", err)
	}

	for i, width := range ColumnWidths(t, e.maxColumnWidth) {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return fmt.Errorf("error setting column width: %w", err)
		}
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("error freezing header: %w", err)
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: report.HeaderTitle(c.Name)}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	for r, row := range t.Rows {
		cells := make([]interface{}, len(t.Columns))
		for c, col := range t.Columns {
			cells[c] = cellValue(col.Type, row[c])
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return fmt.Errorf("error writing row %d: %w", r+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("error flushing sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func headerStyle(fill string) *excelize.Style {
	border := func(side string) excelize.Border {
		return excelize.Border{Type: side, Color: "000000", Style: 1}
	}
	return &excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
		Border:    []excelize.Border{border("left"), border("top"), border("right"), border("bottom")},
	}
}

// cellValue returns nil for missing numbers so the cell stays blank.
func cellValue(t models.ColumnType, v models.Value) interface{} {
	switch t {
	case models.ColumnTypeNumber:
		if !v.Num.Valid {
			return nil
		}
		return v.Num.Decimal.InexactFloat64()
	case models.ColumnTypeDate:
		return report.FormatDate(v.Date)
	default:
		return v.Str
	}
}

func displayText(t models.ColumnType, v models.Value) string {
	switch t {
	case models.ColumnTypeNumber:
		if !v.Num.Valid {
			return ""
		}
		return v.Num.Decimal.String()
	case models.ColumnTypeDate:
		return report.FormatDate(v.Date)
	default:
		return v.Str
	}
}

// ColumnWidths returns one width per column: 12 for date columns, otherwise
// the longer of header and content plus padding, capped at maxWidth.
func ColumnWidths(t *models.Table, maxWidth int) []float64 {
	widths := make([]float64, len(t.Columns))
	for i, col := range t.Columns {
		if col.Type == models.ColumnTypeDate {
			widths[i] = dateColumnWidth
			continue
		}
		longest := utf8.RuneCountInString(report.HeaderTitle(col.Name))
		for _, row := range t.Rows {
			if n := utf8.RuneCountInString(displayText(col.Type, row[i])); n > longest {
				longest = n
			}
		}
		widths[i] = float64(min(longest+widthPadding, maxWidth))
	}
	return widths
}
