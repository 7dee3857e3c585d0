package parser

import (
	"io"

	"arsat/finanzas/internal/logging"
	"arsat/finanzas/internal/models"
)

// LoggerConfigurable is implemented by parsers whose logger can be replaced.
type LoggerConfigurable interface {
	SetLogger(logger logging.Logger)
}

// PurchaseOrderParser loads the purchase order export.
//
// Implementations return a parsererror.FileUnreadableError or
// parsererror.SchemaMismatchError for dataset-fatal problems and never a
// partial dataset alongside an error.
type PurchaseOrderParser interface {
	LoggerConfigurable
	Parse(r io.Reader) (*models.PurchaseOrderDataset, error)
	ParseFile(filePath string) (*models.PurchaseOrderDataset, error)
}

// TransferParser loads the incoming transfer export.
type TransferParser interface {
	LoggerConfigurable
	Parse(r io.Reader) (*models.TransferDataset, error)
	ParseFile(filePath string) (*models.TransferDataset, error)
}
