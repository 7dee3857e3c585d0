package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return &Table{
		Columns: []Column{
			{Name: ColumnDate, Type: ColumnTypeDate},
			{Name: ColumnAmount, Type: ColumnTypeNumber},
			{Name: ColumnCurrency, Type: ColumnTypeString},
		},
		Rows: [][]Value{
			{DateValue(NewNullDate(jan)), NumberValue(decimal.NewNullDecimal(decimal.NewFromInt(100))), StringValue(CurrencyPesos)},
			{DateValue(NullDate{}), NumberValue(decimal.NullDecimal{}), StringValue(CurrencyDollars)},
			{DateValue(NewNullDate(jan)), NumberValue(decimal.NewNullDecimal(decimal.NewFromInt(5))), StringValue(CurrencyPesos)},
		},
	}
}

func TestTable_Accessors(t *testing.T) {
	tbl := sampleTable()

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, 1, tbl.ColumnIndex(ColumnAmount))
	assert.Equal(t, -1, tbl.ColumnIndex("missing"))
	assert.Equal(t, []string{ColumnDate, ColumnAmount, ColumnCurrency}, tbl.ColumnNames())

	col, ok := tbl.Column(ColumnDate)
	require.True(t, ok)
	assert.Equal(t, ColumnTypeDate, col.Type)

	assert.Equal(t, CurrencyDollars, tbl.StringAt(1, ColumnCurrency))
	assert.False(t, tbl.NumberAt(1, ColumnAmount).Valid)
	assert.True(t, tbl.NumberAt(0, ColumnAmount).Decimal.Equal(decimal.NewFromInt(100)))
	assert.False(t, tbl.DateAt(1, ColumnDate).Valid)
	assert.Equal(t, "", tbl.StringAt(0, "missing"))
}

func TestTable_DistinctStrings(t *testing.T) {
	tbl := sampleTable()
	assert.Equal(t, []string{CurrencyDollars, CurrencyPesos}, tbl.DistinctStrings(ColumnCurrency))
	assert.Nil(t, tbl.DistinctStrings("missing"))
}

func TestTable_Subset(t *testing.T) {
	tbl := sampleTable()
	tbl.Source = "ordenes.csv"

	sub := tbl.Subset([]int{2, 0})
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, tbl.Columns, sub.Columns)
	assert.Equal(t, "ordenes.csv", sub.Source)
	assert.True(t, sub.NumberAt(0, ColumnAmount).Decimal.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, 0, sub.Subset(nil).Len())
}

func TestTable_NilSafe(t *testing.T) {
	var tbl *Table
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, -1, tbl.ColumnIndex(ColumnDate))
}

func TestDiagnostics(t *testing.T) {
	var d Diagnostics
	d.AddUnparsable(ColumnAmount)
	d.AddUnparsable(ColumnAmount)
	d.AddUnparsable(ColumnDate)
	d.AddFilled(ColumnCurrency)

	assert.Equal(t, 3, d.TotalUnparsable())
	assert.Equal(t, 2, d.Unparsable[ColumnAmount])
	assert.Equal(t, 1, d.Filled[ColumnCurrency])
}

func TestColumnType_String(t *testing.T) {
	assert.Equal(t, "string", ColumnTypeString.String())
	assert.Equal(t, "number", ColumnTypeNumber.String())
	assert.Equal(t, "date", ColumnTypeDate.String())
}

func TestPurchaseOrdersFromTable(t *testing.T) {
	tbl := sampleTable()
	records := PurchaseOrdersFromTable(tbl)

	require.Len(t, records, 3)
	assert.Equal(t, CurrencyPesos, records[0].Currency)
	assert.True(t, records[0].Date.Valid)
	assert.Equal(t, "", records[0].Supplier)
}

func TestTransfersFromTable(t *testing.T) {
	tbl := &Table{
		Columns: []Column{
			{Name: ColumnDisbursement, Type: ColumnTypeString},
			{Name: ColumnDate, Type: ColumnTypeDate},
			{Name: ColumnAmount, Type: ColumnTypeNumber},
		},
		Rows: [][]Value{
			{StringValue("Desembolso 1"), DateValue(NullDate{}), NumberValue(decimal.NewNullDecimal(decimal.NewFromInt(7)))},
		},
	}

	records := TransfersFromTable(tbl)
	require.Len(t, records, 1)
	assert.Equal(t, "Desembolso 1", records[0].DisbursementLabel)
	assert.True(t, records[0].Amount.Decimal.Equal(decimal.NewFromInt(7)))
}

func TestMonthlySeries_Lookup(t *testing.T) {
	jan := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	s := MonthlySeries{Name: SeriesTransfers, Points: []MonthlyPoint{{MonthEnd: jan, Total: decimal.NewFromInt(3)}}}

	total, ok := s.Lookup(jan)
	require.True(t, ok)
	assert.True(t, total.Equal(decimal.NewFromInt(3)))

	_, ok = s.Lookup(jan.AddDate(0, 1, 0))
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}
