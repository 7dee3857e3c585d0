package models

// Schema tells the normalizer which columns carry which meaning.
type Schema struct {
	Name string

	// ExpectedColumns is enforced after empty columns are dropped. Zero means any.
	ExpectedColumns int
	// PositionalNames rename columns by position once the count is checked.
	PositionalNames []string

	AmountColumn       string
	DateColumn         string
	DescriptionColumn  string
	CategoricalColumns []string
	LabelColumn        string
}

// PurchaseOrderSchema describes the purchase order export.
var PurchaseOrderSchema = Schema{
	Name:               DatasetPurchaseOrders,
	AmountColumn:       ColumnAmount,
	DateColumn:         ColumnDate,
	DescriptionColumn:  ColumnDescription,
	CategoricalColumns: []string{ColumnCurrency, ColumnManagement, ColumnPurchaseType},
}

// TransferSchema describes the incoming transfer export.
var TransferSchema = Schema{
	Name:            DatasetTransfers,
	ExpectedColumns: 3,
	PositionalNames: []string{ColumnDisbursement, ColumnDate, ColumnAmount},
	AmountColumn:    ColumnAmount,
	DateColumn:      ColumnDate,
	LabelColumn:     ColumnDisbursement,
}
