// Package parser provides the base parser functionality and common interfaces.
package parser

import (
	"fmt"
	"io"

	"arsat/finanzas/internal/common"
	"arsat/finanzas/internal/logging"
	"arsat/finanzas/internal/models"
	"arsat/finanzas/internal/normalizer"
	"arsat/finanzas/internal/parsererror"
)

// BaseParser provides the read-then-normalize flow shared by the dataset parsers.
//
// Parsers embed BaseParser and add the projection to their record type:
//
//	type Parser struct {
//		parser.BaseParser
//	}
type BaseParser struct {
	logger  logging.Logger
	schema  models.Schema
	options common.ReadOptions
}

// NewBaseParser creates a BaseParser for a schema. If logger is nil, output is discarded.
func NewBaseParser(logger logging.Logger, schema models.Schema, options common.ReadOptions) BaseParser {
	if logger == nil {
		logger = logging.Nop()
	}
	return BaseParser{
		logger:  logger,
		schema:  schema,
		options: options,
	}
}

// SetLogger implements the LoggerConfigurable interface.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// GetLogger returns the current logger instance.
func (b *BaseParser) GetLogger() logging.Logger {
	return b.logger
}

// Schema returns the schema applied by the parser.
func (b *BaseParser) Schema() models.Schema {
	return b.schema
}

// Options returns the decoding options.
func (b *BaseParser) Options() common.ReadOptions {
	return b.options
}

// ReadTable decodes and normalizes a stream.
func (b *BaseParser) ReadTable(r io.Reader, source string) (*models.Table, error) {
	raw, err := common.ReadRawTable(r, b.options, b.logger)
	if err != nil {
		return nil, &parsererror.FileUnreadableError{FilePath: source, Err: err}
	}
	raw.Source = source
	return b.normalize(raw)
}

// ReadTableFile decodes and normalizes a file.
func (b *BaseParser) ReadTableFile(filePath string) (*models.Table, error) {
	raw, err := common.ReadRawTableFile(filePath, b.options, b.logger)
	if err != nil {
		return nil, err
	}
	return b.normalize(raw)
}

func (b *BaseParser) normalize(raw *models.RawTable) (*models.Table, error) {
	table, err := normalizer.New(b.logger).Normalize(raw, b.schema)
	if err != nil {
		b.logger.WithError(err).Error("Normalization failed",
			logging.F(logging.FieldDataset, b.schema.Name),
			logging.F(logging.FieldFile, raw.Source))
		return nil, fmt.Errorf("normalize %s: %w", b.schema.Name, err)
	}
	b.logger.Info("Normalized dataset",
		logging.F(logging.FieldDataset, b.schema.Name),
		logging.F(logging.FieldCount, table.Len()))
	return table, nil
}
