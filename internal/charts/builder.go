package charts

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	apperrors "salesdash/internal/errors"
	"salesdash/pkg/contracts/domain"
)

// DefaultValueLabel is the axis title key used when a chart plots several fields
const DefaultValueLabel = "value"

var validate = validator.New()

// Binding maps dataset fields to the visual channels of a chart
type Binding struct {
	ID     string   `validate:"required"`
	X      string   `validate:"required"`
	Y      []string `validate:"required,min=1,dive,required"`
	Title  string
	Labels map[string]string
	Color  string
	Size   string
	Hover  []string `validate:"dive,required"`
}

// fields lists every bound field in binding order
func (b Binding) fields() []string {
	out := append([]string{b.X}, b.Y...)
	if b.Color != "" {
		out = append(out, b.Color)
	}
	if b.Size != "" {
		out = append(out, b.Size)
	}
	return append(out, b.Hover...)
}

func (b Binding) label(field string) string {
	if l, ok := b.Labels[field]; ok && l != "" {
		return l
	}
	return field
}

// Build resolves a binding against a frame into a chart description.
// The frame is only read.
func Build(kind domain.ChartKind, data domain.Frame, b Binding) (*domain.Chart, error) {
	if err := validate.Struct(b); err != nil {
		return nil, apperrors.InvalidArgument("chart binding: %v", err)
	}

	switch kind {
	case domain.ChartBar, domain.ChartLine:
		if b.Color != "" || b.Size != "" || len(b.Hover) > 0 {
			return nil, apperrors.InvalidArgument("chart %q: color, size and hover bindings apply to scatter charts only", b.ID)
		}
	case domain.ChartScatter:
		if len(b.Y) != 1 {
			return nil, apperrors.InvalidArgument("chart %q: scatter charts take exactly one y field, got %d", b.ID, len(b.Y))
		}
	default:
		return nil, apperrors.InvalidArgument("chart %q: unknown chart kind %q", b.ID, kind)
	}

	for _, f := range b.fields() {
		if !data.HasColumn(f) {
			return nil, apperrors.MissingField(f, data.Columns)
		}
	}

	c := &domain.Chart{
		ID:     b.ID,
		Kind:   kind,
		Title:  b.Title,
		X:      b.X,
		Y:      slices.Clone(b.Y),
		Color:  b.Color,
		Size:   b.Size,
		Hover:  slices.Clone(b.Hover),
		Labels: lo.Assign(b.Labels),
		XLabel: b.label(b.X),
	}
	if len(b.Y) == 1 {
		c.YLabel = b.label(b.Y[0])
	} else {
		c.YLabel = b.label(DefaultValueLabel)
	}

	var err error
	if kind == domain.ChartScatter {
		err = resolvePoints(c, data, b)
	} else {
		err = resolveSeries(c, data, b)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func resolveSeries(c *domain.Chart, data domain.Frame, b Binding) error {
	c.Categories = make([]string, 0, data.Len())
	c.Series = lo.Map(b.Y, func(f string, _ int) domain.Series {
		return domain.Series{Name: b.label(f), Field: f, Values: make([]float64, 0, data.Len())}
	})

	for i, rec := range data.Records {
		x, err := field(rec, b.X, i, data.Columns)
		if err != nil {
			return err
		}
		c.Categories = append(c.Categories, x.String())

		for j, f := range b.Y {
			v, err := numeric(rec, f, i, data.Columns)
			if err != nil {
				return err
			}
			c.Series[j].Values = append(c.Series[j].Values, v)
		}
	}
	return nil
}

func resolvePoints(c *domain.Chart, data domain.Frame, b Binding) error {
	c.Points = make([]domain.Point, 0, data.Len())

	for i, rec := range data.Records {
		var p domain.Point
		var err error

		if p.X, err = numeric(rec, b.X, i, data.Columns); err != nil {
			return err
		}
		if p.Y, err = numeric(rec, b.Y[0], i, data.Columns); err != nil {
			return err
		}

		if b.Color != "" {
			g, err := field(rec, b.Color, i, data.Columns)
			if err != nil {
				return err
			}
			p.Group = g.String()
		}

		if b.Size != "" {
			if p.Size, err = numeric(rec, b.Size, i, data.Columns); err != nil {
				return err
			}
			if p.Size < 0 {
				return apperrors.InvalidArgument("size field %q is negative in row %d: %v", b.Size, i, p.Size)
			}
		}

		for _, h := range b.Hover {
			v, err := field(rec, h, i, data.Columns)
			if err != nil {
				return err
			}
			p.Hover = append(p.Hover, domain.HoverValue{Field: h, Value: v.String()})
		}

		c.Points = append(c.Points, p)
	}

	if b.Color != "" {
		c.Groups = lo.Uniq(lo.Map(c.Points, func(p domain.Point, _ int) string { return p.Group }))
	}
	return nil
}

func field(rec domain.Record, name string, row int, columns []string) (domain.Value, error) {
	v, ok := rec.Field(name)
	if !ok {
		return domain.Value{}, apperrors.MissingField(name, columns).WithContext("row", row)
	}
	return v, nil
}

func numeric(rec domain.Record, name string, row int, columns []string) (float64, error) {
	v, err := field(rec, name, row, columns)
	if err != nil {
		return 0, err
	}
	f, ok := v.Float64()
	if !ok {
		return 0, apperrors.InvalidArgument("field %q is not numeric in row %d: %q", name, row, v.String())
	}
	return f, nil
}

// BuildTable lays out the given columns of a frame as text cells.
// Numbers are shown with two decimals. An empty column list selects every column.
func BuildTable(id string, data domain.Frame, columns []string) (*domain.Table, error) {
	if id == "" {
		return nil, apperrors.InvalidArgument("table id is required")
	}
	if len(columns) == 0 {
		columns = data.Columns
	}
	for _, c := range columns {
		if !data.HasColumn(c) {
			return nil, apperrors.MissingField(c, data.Columns)
		}
	}

	t := &domain.Table{
		ID: id,
		Columns: lo.Map(columns, func(c string, _ int) domain.TableColumn {
			return domain.TableColumn{ID: c, Name: c}
		}),
		Rows: make([][]string, 0, data.Len()),
	}

	for i, rec := range data.Records {
		row := make([]string, len(columns))
		for j, c := range columns {
			v, err := field(rec, c, i, data.Columns)
			if err != nil {
				return nil, err
			}
			row[j] = formatCell(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func formatCell(v domain.Value) string {
	if d, ok := v.Decimal(); ok {
		return d.StringFixed(2)
	}
	return v.String()
}

// Describe returns a short human readable summary of a chart for logs
func Describe(c *domain.Chart) string {
	if c.Kind == domain.ChartScatter {
		return fmt.Sprintf("%s %s: %d points in %d groups", c.Kind, c.ID, len(c.Points), len(c.Groups))
	}
	return fmt.Sprintf("%s %s: %d categories x %d series", c.Kind, c.ID, len(c.Categories), len(c.Series))
}
