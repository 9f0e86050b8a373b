package dashboard

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/samber/lo"

	"salesdash/internal/charts"
	apperrors "salesdash/internal/errors"
	"salesdash/internal/infrastructure"
	"salesdash/pkg/contracts/domain"
)

//go:embed templates/page.html.tmpl
var pageTemplate string

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

type legendEntry struct {
	Name  string
	Color template.CSS
}

type viewTable struct {
	Columns []string
	Rows    [][]string
}

type viewElement struct {
	ID      string
	Heading string
	Image   template.URL
	Alt     string
	Legend  []legendEntry
	Table   *viewTable
	Details bool
}

type viewPage struct {
	Title    string
	Elements []viewElement
}

// HTMLRenderer renders a composed page into a single self-contained HTML
// document. Charts are drawn by the configured chart renderer and embedded
// as SVG images.
type HTMLRenderer struct {
	charts charts.Renderer
	logger *slog.Logger
}

// NewHTMLRenderer creates a page renderer
func NewHTMLRenderer(r charts.Renderer, logger *slog.Logger) *HTMLRenderer {
	return &HTMLRenderer{
		charts: r,
		logger: infrastructure.WithComponent(logger, "html_renderer"),
	}
}

// Render produces the HTML document for the page
func (h *HTMLRenderer) Render(ctx context.Context, page *domain.Page) ([]byte, error) {
	if page == nil {
		return nil, apperrors.InvalidArgument("nil page")
	}

	view := viewPage{Title: page.Title, Elements: make([]viewElement, 0, len(page.Elements))}
	for _, e := range page.Elements {
		ve, err := h.element(ctx, e)
		if err != nil {
			return nil, err
		}
		view.Elements = append(view.Elements, ve)
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("execute page template: %w", err)
	}

	h.logger.DebugContext(ctx, "page rendered",
		slog.Int("elements", len(view.Elements)),
		slog.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

func (h *HTMLRenderer) element(ctx context.Context, e domain.Element) (viewElement, error) {
	ve := viewElement{ID: e.ID, Heading: e.Heading}

	switch e.Kind {
	case domain.ElementTable:
		ve.Table = &viewTable{
			Columns: lo.Map(e.Table.Columns, func(c domain.TableColumn, _ int) string { return c.Name }),
			Rows:    e.Table.Rows,
		}
		return ve, nil
	case domain.ElementChart:
	default:
		return ve, apperrors.InvalidArgument("element %q: unknown kind %q", e.ID, e.Kind)
	}

	svg, err := charts.Render(ctx, h.charts, e.Chart)
	if err != nil {
		return ve, fmt.Errorf("render %s: %w", e.ID, err)
	}
	ve.Image = template.URL("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg))
	ve.Alt = e.Chart.Title

	// bar charts have no built-in legend
	if e.Chart.Kind == domain.ChartBar && len(e.Chart.Series) > 1 {
		ve.Legend = lo.Map(e.Chart.Series, func(s domain.Series, i int) legendEntry {
			return legendEntry{Name: s.Name, Color: template.CSS(charts.SeriesHex(i))}
		})
	}

	if e.Chart.Kind == domain.ChartScatter && len(e.Chart.Hover) > 0 {
		ve.Table = pointsTable(e.Chart)
		ve.Details = true
	}
	return ve, nil
}

// pointsTable lists scatter points with their hover fields
func pointsTable(c *domain.Chart) *viewTable {
	label := func(f string) string {
		if l, ok := c.Labels[f]; ok && l != "" {
			return l
		}
		return f
	}

	columns := lo.Map(c.Hover, func(f string, _ int) string { return label(f) })
	columns = append(columns, c.XLabel, c.YLabel)
	if c.Color != "" {
		columns = append(columns, label(c.Color))
	}
	if c.Size != "" {
		columns = append(columns, label(c.Size))
	}

	rows := make([][]string, 0, len(c.Points))
	for _, p := range c.Points {
		row := lo.Map(p.Hover, func(hv domain.HoverValue, _ int) string { return hv.Value })
		row = append(row, fmt.Sprintf("%.2f", p.X), fmt.Sprintf("%.2f", p.Y))
		if c.Color != "" {
			row = append(row, p.Group)
		}
		if c.Size != "" {
			row = append(row, fmt.Sprintf("%.2f", p.Size))
		}
		rows = append(rows, row)
	}
	return &viewTable{Columns: columns, Rows: rows}
}
