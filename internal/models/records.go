package models

import "github.com/shopspring/decimal"

// PurchaseOrderRecord is one normalized purchase order row.
type PurchaseOrderRecord struct {
	Date               NullDate
	Amount             decimal.NullDecimal
	Currency           string
	ManagementUnit     string
	PurchaseType       string
	Supplier           string
	ProductDescription string
	VoucherID          string
}

// TransferRecord is one normalized incoming transfer row.
type TransferRecord struct {
	DisbursementLabel string
	Date              NullDate
	Amount            decimal.NullDecimal
}

// PurchaseOrderDataset pairs the normalized table with its typed records.
// Table keeps every column of the source, Records only the known ones.
type PurchaseOrderDataset struct {
	Table   *Table
	Records []PurchaseOrderRecord
}

// TransferDataset pairs the normalized table with its typed records.
type TransferDataset struct {
	Table   *Table
	Records []TransferRecord
}

// PurchaseOrdersFromTable projects a normalized purchase order table into records.
func PurchaseOrdersFromTable(t *Table) []PurchaseOrderRecord {
	records := make([]PurchaseOrderRecord, t.Len())
	for i := range records {
		records[i] = PurchaseOrderRecord{
			Date:               t.DateAt(i, ColumnDate),
			Amount:             t.NumberAt(i, ColumnAmount),
			Currency:           t.StringAt(i, ColumnCurrency),
			ManagementUnit:     t.StringAt(i, ColumnManagement),
			PurchaseType:       t.StringAt(i, ColumnPurchaseType),
			Supplier:           t.StringAt(i, ColumnSupplier),
			ProductDescription: t.StringAt(i, ColumnDescription),
			VoucherID:          t.StringAt(i, ColumnVoucher),
		}
	}
	return records
}

// TransfersFromTable projects a normalized transfer table into records.
func TransfersFromTable(t *Table) []TransferRecord {
	records := make([]TransferRecord, t.Len())
	for i := range records {
		records[i] = TransferRecord{
			DisbursementLabel: t.StringAt(i, ColumnDisbursement),
			Date:              t.DateAt(i, ColumnDate),
			Amount:            t.NumberAt(i, ColumnAmount),
		}
	}
	return records
}
