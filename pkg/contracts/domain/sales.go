package domain

import "github.com/shopspring/decimal"

// Column names of the prepared input datasets
const (
	ColMonthYear     = "month-year"
	ColCategory      = "anonymized_category"
	ColProduct       = "anonymized_product"
	ColBusiness      = "anonymized_business"
	ColTotalValue    = "total_value"
	ColQuantity      = "quantity"
	ColSegment       = "segment"
	ColTotalQuantity = "total_quantity"
	ColFrequency     = "frequency"
	ColGroup         = "group"
)

// SalesColumns is the schema of the primary sales dataset
var SalesColumns = []string{ColMonthYear, ColCategory, ColProduct, ColBusiness, ColTotalValue, ColQuantity}

// SegmentColumns is the schema of the business segmentation dataset
var SegmentColumns = []string{ColBusiness, ColSegment, ColTotalValue, ColTotalQuantity}

// GroupColumns is the schema of the business clustering dataset
var GroupColumns = []string{ColBusiness, ColTotalValue, ColQuantity, ColFrequency, ColGroup}

// SalesRecord is one row of the primary sales dataset
type SalesRecord struct {
	MonthYear  string          `json:"month-year"`
	Category   string          `json:"anonymized_category"`
	Product    string          `json:"anonymized_product"`
	Business   string          `json:"anonymized_business"`
	TotalValue decimal.Decimal `json:"total_value"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// Field implements Record
func (r SalesRecord) Field(name string) (Value, bool) {
	switch name {
	case ColMonthYear:
		return Text(r.MonthYear), true
	case ColCategory:
		return Text(r.Category), true
	case ColProduct:
		return Text(r.Product), true
	case ColBusiness:
		return Text(r.Business), true
	case ColTotalValue:
		return Number(r.TotalValue), true
	case ColQuantity:
		return Number(r.Quantity), true
	}
	return Value{}, false
}

// SalesFrame wraps sales records in a frame
func SalesFrame(rows []SalesRecord) Frame {
	return NewFrame(SalesColumns, rows)
}

// BusinessSegmentRow is one business of the segmentation dataset
type BusinessSegmentRow struct {
	Business      string          `json:"anonymized_business"`
	Segment       string          `json:"segment"`
	TotalValue    decimal.Decimal `json:"total_value"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

// Field implements Record
func (r BusinessSegmentRow) Field(name string) (Value, bool) {
	switch name {
	case ColBusiness:
		return Text(r.Business), true
	case ColSegment:
		return Text(r.Segment), true
	case ColTotalValue:
		return Number(r.TotalValue), true
	case ColTotalQuantity:
		return Number(r.TotalQuantity), true
	}
	return Value{}, false
}

// SegmentFrame wraps segmentation rows in a frame
func SegmentFrame(rows []BusinessSegmentRow) Frame {
	return NewFrame(SegmentColumns, rows)
}

// BusinessGroupRow is one business of the clustering dataset
type BusinessGroupRow struct {
	Business   string          `json:"anonymized_business"`
	TotalValue decimal.Decimal `json:"total_value"`
	Quantity   decimal.Decimal `json:"quantity"`
	Frequency  decimal.Decimal `json:"frequency"`
	Group      string          `json:"group"`
}

// Field implements Record
func (r BusinessGroupRow) Field(name string) (Value, bool) {
	switch name {
	case ColBusiness:
		return Text(r.Business), true
	case ColTotalValue:
		return Number(r.TotalValue), true
	case ColQuantity:
		return Number(r.Quantity), true
	case ColFrequency:
		return Number(r.Frequency), true
	case ColGroup:
		return Text(r.Group), true
	}
	return Value{}, false
}

// GroupFrame wraps clustering rows in a frame
func GroupFrame(rows []BusinessGroupRow) Frame {
	return NewFrame(GroupColumns, rows)
}
