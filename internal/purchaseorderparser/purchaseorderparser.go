// Package purchaseorderparser loads the purchase order export: a semicolon
// separated ISO-8859-1 file with amounts like "$ 1.234,56" and day-first dates.
package purchaseorderparser

import (
	"io"

	"arsat/finanzas/internal/common"
	"arsat/finanzas/internal/logging"
	"arsat/finanzas/internal/models"
	"arsat/finanzas/internal/parser"
)

// DefaultOptions matches the export as produced by the purchasing system.
var DefaultOptions = common.ReadOptions{Delimiter: ';', Encoding: common.EncodingLatin1}

// Parser implements parser.PurchaseOrderParser.
type Parser struct {
	parser.BaseParser
}

// New creates a purchase order parser. Zero options fall back to DefaultOptions.
func New(logger logging.Logger, options common.ReadOptions) *Parser {
	if options.Delimiter == 0 {
		options.Delimiter = DefaultOptions.Delimiter
	}
	if options.Encoding == "" {
		options.Encoding = DefaultOptions.Encoding
	}
	return &Parser{BaseParser: parser.NewBaseParser(logger, models.PurchaseOrderSchema, options)}
}

// Parse reads purchase orders from a stream.
func (p *Parser) Parse(r io.Reader) (*models.PurchaseOrderDataset, error) {
	table, err := p.ReadTable(r, "")
	if err != nil {
		return nil, err
	}
	return newDataset(table), nil
}

// ParseFile reads purchase orders from a file.
func (p *Parser) ParseFile(filePath string) (*models.PurchaseOrderDataset, error) {
	p.GetLogger().Info("Parsing purchase orders", logging.F(logging.FieldFile, filePath))
	table, err := p.ReadTableFile(filePath)
	if err != nil {
		return nil, err
	}
	return newDataset(table), nil
}

// ParseFile parses a purchase order file with default options and no logging.
func ParseFile(filePath string) (*models.PurchaseOrderDataset, error) {
	return New(nil, DefaultOptions).ParseFile(filePath)
}

func newDataset(table *models.Table) *models.PurchaseOrderDataset {
	return &models.PurchaseOrderDataset{
		Table:   table,
		Records: models.PurchaseOrdersFromTable(table),
	}
}

var _ parser.PurchaseOrderParser = (*Parser)(nil)
