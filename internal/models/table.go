package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ColumnType is fixed for a column once the table has been normalized.
type ColumnType int

const (
	ColumnTypeString ColumnType = iota
	ColumnTypeNumber
	ColumnTypeDate
)

func (t ColumnType) String() string {
	switch t {
	case ColumnTypeNumber:
		return "number"
	case ColumnTypeDate:
		return "date"
	default:
		return "string"
	}
}

// RawTable is a delimited file as read from disk: a header and string rows.
// An empty string is a missing cell.
type RawTable struct {
	Source string
	Header []string
	Rows   [][]string
}

// NullDate is a calendar date that may be missing.
type NullDate struct {
	Time  time.Time
	Valid bool
}

// NewNullDate returns a valid NullDate.
func NewNullDate(t time.Time) NullDate {
	return NullDate{Time: t, Valid: true}
}

// MissingAmount is the marker for an amount that could not be parsed.
func MissingAmount() decimal.NullDecimal { return decimal.NullDecimal{} }

// ValidAmount wraps a parsed amount.
func ValidAmount(d decimal.Decimal) decimal.NullDecimal { return decimal.NewNullDecimal(d) }

// Value holds one cell. Only the field matching the column's type is meaningful.
type Value struct {
	Str  string
	Num  decimal.NullDecimal
	Date NullDate
}

// StringValue builds a text cell.
func StringValue(s string) Value { return Value{Str: s} }

// NumberValue builds a numeric cell.
func NumberValue(d decimal.NullDecimal) Value { return Value{Num: d} }

// DateValue builds a date cell.
func DateValue(d NullDate) Value { return Value{Date: d} }

// Column describes a normalized column.
type Column struct {
	Name string
	Type ColumnType
}

// Diagnostics counts per-column cells that fell back to a missing marker.
// They are informational and never change the table contents.
type Diagnostics struct {
	DroppedColumns []string       `json:"dropped_columns,omitempty" yaml:"dropped_columns,omitempty"`
	Unparsable     map[string]int `json:"unparsable,omitempty" yaml:"unparsable,omitempty"`
	Filled         map[string]int `json:"filled,omitempty" yaml:"filled,omitempty"`
}

// AddUnparsable records a cell that could not be parsed.
func (d *Diagnostics) AddUnparsable(column string) {
	if d.Unparsable == nil {
		d.Unparsable = make(map[string]int)
	}
	d.Unparsable[column]++
}

// AddFilled records a cell replaced by a sentinel.
func (d *Diagnostics) AddFilled(column string) {
	if d.Filled == nil {
		d.Filled = make(map[string]int)
	}
	d.Filled[column]++
}

// TotalUnparsable sums all unparsable cells.
func (d Diagnostics) TotalUnparsable() int {
	total := 0
	for _, n := range d.Unparsable {
		total += n
	}
	return total
}

// Table is a normalized dataset with typed columns.
type Table struct {
	Source      string
	Columns     []Column
	Rows        [][]Value
	Diagnostics Diagnostics
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column or -1.
func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i := t.ColumnIndex(name)
	if i < 0 {
		return Column{}, false
	}
	return t.Columns[i], true
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// StringAt returns the text of a cell, or "" if the column is absent.
func (t *Table) StringAt(row int, column string) string {
	i := t.ColumnIndex(column)
	if i < 0 {
		return ""
	}
	return t.Rows[row][i].Str
}

// NumberAt returns the numeric value of a cell.
func (t *Table) NumberAt(row int, column string) decimal.NullDecimal {
	i := t.ColumnIndex(column)
	if i < 0 {
		return decimal.NullDecimal{}
	}
	return t.Rows[row][i].Num
}

// DateAt returns the date value of a cell.
func (t *Table) DateAt(row int, column string) NullDate {
	i := t.ColumnIndex(column)
	if i < 0 {
		return NullDate{}
	}
	return t.Rows[row][i].Date
}

// DistinctStrings returns the sorted distinct values of a text column.
func (t *Table) DistinctStrings(column string) []string {
	i := t.ColumnIndex(column)
	if i < 0 {
		return nil
	}
	seen := make(map[string]struct{})
	for _, row := range t.Rows {
		seen[row[i].Str] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Subset returns a table sharing this table's columns with only the given
// rows, in the given order. Diagnostics are not carried over.
func (t *Table) Subset(rows []int) *Table {
	sub := &Table{Source: t.Source, Columns: t.Columns, Rows: make([][]Value, len(rows))}
	for i, r := range rows {
		sub.Rows[i] = t.Rows[r]
	}
	return sub
}
