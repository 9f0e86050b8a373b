package domain

// ElementKind distinguishes chart and table elements of a page
type ElementKind string

const (
	ElementChart ElementKind = "chart"
	ElementTable ElementKind = "table"
)

// Element is one slot of the dashboard page. Heading is optional.
type Element struct {
	ID      string      `json:"id"`
	Kind    ElementKind `json:"kind"`
	Heading string      `json:"heading,omitempty"`
	Chart   *Chart      `json:"chart,omitempty"`
	Table   *Table      `json:"table,omitempty"`
}

// Page is the composed dashboard layout
type Page struct {
	Title    string    `json:"title"`
	Elements []Element `json:"elements"`
}
