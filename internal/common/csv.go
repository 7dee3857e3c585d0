// Package common provides the delimited-file plumbing shared by the dataset parsers
// and the exporters.
package common

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"arsat/finanzas/internal/fileutils"
	"arsat/finanzas/internal/logging"
	"arsat/finanzas/internal/models"
	"arsat/finanzas/internal/parsererror"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Supported input encodings.
const (
	EncodingLatin1      = "latin1"
	EncodingWindows1252 = "windows1252"
	EncodingUTF8        = "utf8"
)

// ReadOptions controls how a delimited file is decoded.
type ReadOptions struct {
	Delimiter rune
	Encoding  string
}

// EncodingFor maps a configured encoding name to its decoder.
func EncodingFor(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "")) {
	case "", EncodingLatin1, "iso88591":
		return charmap.ISO8859_1, nil
	case EncodingWindows1252, "cp1252":
		return charmap.Windows1252, nil
	case EncodingUTF8:
		return unicode.UTF8BOM, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// ReadRawTable decodes a delimited stream into a RawTable. Short rows are
// padded to the header width. Extra trailing fields are dropped only when they
// are empty; any other over-wide row fails with its line number.
func ReadRawTable(r io.Reader, opts ReadOptions, logger logging.Logger) (*models.RawTable, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	enc, err := EncodingFor(opts.Encoding)
	if err != nil {
		return nil, err
	}
	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = ','
	}

	reader := csv.NewReader(transform.NewReader(r, enc.NewDecoder()))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	table := &models.RawTable{Header: header}
	ragged := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading row %d: %w", len(table.Rows)+2, err)
		}
		if len(record) > len(header) && !emptyTail(record[len(header):]) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d has %d fields, header has %d", line, len(record), len(header))
		}
		if len(record) != len(header) {
			ragged++
			record = fitWidth(record, len(header))
		}
		table.Rows = append(table.Rows, record)
	}

	if ragged > 0 {
		logger.Warn("Rows with unexpected field count were fitted to the header",
			logging.F(logging.FieldCount, ragged))
	}
	return table, nil
}

func emptyTail(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func fitWidth(record []string, width int) []string {
	if len(record) > width {
		return record[:width]
	}
	out := make([]string, width)
	copy(out, record)
	return out
}

// ReadRawTableFile opens and decodes a delimited file. Any failure is reported
// as a FileUnreadableError.
func ReadRawTableFile(filePath string, opts ReadOptions, logger logging.Logger) (*models.RawTable, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	logger.Info("Reading CSV file",
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldDelimiter, string(opts.Delimiter)),
		logging.F(logging.FieldEncoding, opts.Encoding))

	file, err := os.Open(filePath) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, &parsererror.FileUnreadableError{FilePath: filePath, Err: err}
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	table, err := ReadRawTable(file, opts, logger)
	if err != nil {
		return nil, &parsererror.FileUnreadableError{FilePath: filePath, Err: err}
	}
	table.Source = filePath

	logger.Info("Successfully read CSV data",
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldCount, len(table.Rows)))
	return table, nil
}

// SeriesRow is the flat CSV form of one monthly point.
type SeriesRow struct {
	Series   string `csv:"series"`
	MonthEnd string `csv:"month_end"`
	Total    string `csv:"total"`
}

// SeriesRows flattens series in the given order.
func SeriesRows(series []models.MonthlySeries) []SeriesRow {
	var rows []SeriesRow
	for _, s := range series {
		for _, p := range s.Points {
			rows = append(rows, SeriesRow{
				Series:   s.Name,
				MonthEnd: p.MonthEnd.Format("2006-01-02"),
				Total:    p.Total.String(),
			})
		}
	}
	return rows
}

// WriteSeriesCSV writes monthly series to a CSV file using gocsv.
func WriteSeriesCSV(series []models.MonthlySeries, csvFile string, delimiter rune, logger logging.Logger) error {
	if logger == nil {
		logger = logging.Nop()
	}
	if delimiter == 0 {
		delimiter = ','
	}

	if err := fileutils.EnsureDirectoryExists(filepath.Dir(csvFile)); err != nil {
		return err
	}

	file, err := os.Create(csvFile) // #nosec G304 -- path comes from configuration
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	rows := SeriesRows(series)
	csvWriter := csv.NewWriter(file)
	csvWriter.Comma = delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}

	logger.Info("Wrote monthly series",
		logging.F(logging.FieldOutputFile, csvFile),
		logging.F(logging.FieldCount, len(rows)))
	return nil
}

// ReadSeriesCSV reads rows written by WriteSeriesCSV.
func ReadSeriesCSV(csvFile string) ([]SeriesRow, error) {
	file, err := os.Open(csvFile) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var rows []SeriesRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}
	return rows, nil
}
