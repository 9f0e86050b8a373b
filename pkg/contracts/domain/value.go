package domain

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Value is a single cell of a tabular dataset: either text or an exact number.
type Value struct {
	text    string
	number  decimal.Decimal
	numeric bool
}

// Text creates a text value
func Text(s string) Value {
	return Value{text: s}
}

// Number creates a numeric value
func Number(d decimal.Decimal) Value {
	return Value{number: d, numeric: true}
}

// IsNumeric reports whether the value holds a number
func (v Value) IsNumeric() bool {
	return v.numeric
}

// Decimal returns the numeric value and whether the value is numeric
func (v Value) Decimal() (decimal.Decimal, bool) {
	return v.number, v.numeric
}

// Float64 returns the numeric value as a float for rendering
func (v Value) Float64() (float64, bool) {
	if !v.numeric {
		return 0, false
	}
	return v.number.InexactFloat64(), true
}

// String returns the text form used for grouping and display
func (v Value) String() string {
	if v.numeric {
		return v.number.String()
	}
	return v.text
}

// Record is a row of a tabular dataset addressed by column name.
type Record interface {
	Field(name string) (Value, bool)
}

// Frame is a tabular dataset: a schema plus its rows.
// Columns is authoritative even when Records is empty.
type Frame struct {
	Columns []string
	Records []Record
}

// NewFrame builds a frame from typed rows
func NewFrame[R Record](columns []string, rows []R) Frame {
	records := make([]Record, len(rows))
	for i, r := range rows {
		records[i] = r
	}
	return Frame{Columns: columns, Records: records}
}

// HasColumn reports whether the frame schema contains the column
func (f Frame) HasColumn(name string) bool {
	return lo.Contains(f.Columns, name)
}

// Len returns the number of rows
func (f Frame) Len() int {
	return len(f.Records)
}
