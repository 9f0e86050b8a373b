package domain

// ChartKind is the visual form used to present a dataset
type ChartKind string

const (
	ChartBar     ChartKind = "bar"
	ChartLine    ChartKind = "line"
	ChartScatter ChartKind = "scatter"
)

// Series is one named numeric sequence aligned with Chart.Categories
type Series struct {
	Name   string    `json:"name"`
	Field  string    `json:"field"`
	Values []float64 `json:"values"`
}

// HoverValue is a field shown when hovering a scatter point
type HoverValue struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Point is a single scatter point
type Point struct {
	X     float64      `json:"x"`
	Y     float64      `json:"y"`
	Group string       `json:"group,omitempty"`
	Size  float64      `json:"size,omitempty"`
	Hover []HoverValue `json:"hover,omitempty"`
}

// Chart is the in-memory description of one visual element. It carries the
// field bindings it was built from and the data resolved from them.
type Chart struct {
	ID     string            `json:"id"`
	Kind   ChartKind         `json:"kind"`
	Title  string            `json:"title"`
	X      string            `json:"x"`
	Y      []string          `json:"y"`
	Color  string            `json:"color,omitempty"`
	Size   string            `json:"size,omitempty"`
	Hover  []string          `json:"hover,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`

	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`

	// Bar and line charts
	Categories []string `json:"categories,omitempty"`
	Series     []Series `json:"series,omitempty"`

	// Scatter charts
	Points []Point  `json:"points,omitempty"`
	Groups []string `json:"groups,omitempty"`
}

// TableColumn is a column header of a table element
type TableColumn struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Table is a tabular element with pre-formatted cells
type Table struct {
	ID      string        `json:"id"`
	Columns []TableColumn `json:"columns"`
	Rows    [][]string    `json:"rows"`
}
