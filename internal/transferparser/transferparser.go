// Package transferparser loads the incoming transfer export: a comma separated
// ISO-8859-1 file with exactly three columns (label, date, amount) whose
// header names vary between exports.
package transferparser

import (
	"io"

	"arsat/finanzas/internal/common"
	"arsat/finanzas/internal/logging"
	"arsat/finanzas/internal/models"
	"arsat/finanzas/internal/parser"
)

// DefaultOptions matches the transfer export.
var DefaultOptions = common.ReadOptions{Delimiter: ',', Encoding: common.EncodingLatin1}

// Parser implements parser.TransferParser.
type Parser struct {
	parser.BaseParser
}

// New creates a transfer parser. Zero options fall back to DefaultOptions.
func New(logger logging.Logger, options common.ReadOptions) *Parser {
	if options.Delimiter == 0 {
		options.Delimiter = DefaultOptions.Delimiter
	}
	if options.Encoding == "" {
		options.Encoding = DefaultOptions.Encoding
	}
	return &Parser{BaseParser: parser.NewBaseParser(logger, models.TransferSchema, options)}
}

// Parse reads transfers from a stream.
func (p *Parser) Parse(r io.Reader) (*models.TransferDataset, error) {
	table, err := p.ReadTable(r, "")
	if err != nil {
		return nil, err
	}
	return newDataset(table), nil
}

// ParseFile reads transfers from a file. A file whose non-empty column count
// is not three yields a SchemaMismatchError and no dataset.
func (p *Parser) ParseFile(filePath string) (*models.TransferDataset, error) {
	p.GetLogger().Info("Parsing transfers", logging.F(logging.FieldFile, filePath))
	table, err := p.ReadTableFile(filePath)
	if err != nil {
		return nil, err
	}
	return newDataset(table), nil
}

// ParseFile parses a transfer file with default options and no logging.
func ParseFile(filePath string) (*models.TransferDataset, error) {
	return New(nil, DefaultOptions).ParseFile(filePath)
}

func newDataset(table *models.Table) *models.TransferDataset {
	return &models.TransferDataset{
		Table:   table,
		Records: models.TransfersFromTable(table),
	}
}

var _ parser.TransferParser = (*Parser)(nil)
