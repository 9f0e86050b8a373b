package charts

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/samber/lo"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	apperrors "salesdash/internal/errors"
	"salesdash/internal/infrastructure"
	"salesdash/pkg/contracts/domain"
)

// Palette is the series color cycle shared by every chart
var Palette = []drawing.Color{
	{R: 0x63, G: 0x6e, B: 0xfa, A: 0xff},
	{R: 0xef, G: 0x55, B: 0x3b, A: 0xff},
	{R: 0x00, G: 0xcc, B: 0x96, A: 0xff},
	{R: 0xab, G: 0x63, B: 0xfa, A: 0xff},
	{R: 0xff, G: 0xa1, B: 0x5a, A: 0xff},
	{R: 0x19, G: 0xd3, B: 0xf3, A: 0xff},
	{R: 0xff, G: 0x66, B: 0x92, A: 0xff},
	{R: 0xb6, G: 0xe8, B: 0x80, A: 0xff},
	{R: 0xff, G: 0x97, B: 0xff, A: 0xff},
	{R: 0xfe, G: 0xcb, B: 0x52, A: 0xff},
}

// SeriesColor returns the palette color of the i-th series
func SeriesColor(i int) drawing.Color {
	return Palette[i%len(Palette)]
}

// SeriesHex returns SeriesColor as a CSS hex color
func SeriesHex(i int) string {
	c := SeriesColor(i)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

const (
	minDotWidth = 3.0
	maxDotWidth = 15.0
)

// SVGRenderer renders charts as standalone SVG documents
type SVGRenderer struct {
	width  int
	height int
	logger *slog.Logger
}

// NewSVGRenderer creates an SVG renderer producing charts of the given size
func NewSVGRenderer(width, height int, logger *slog.Logger) *SVGRenderer {
	return &SVGRenderer{
		width:  width,
		height: height,
		logger: infrastructure.WithComponent(logger, "svg_renderer"),
	}
}

var background = chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}}

// Bar renders one bar per category and series. Bars of the same category
// sit next to each other and are colored by series.
func (s *SVGRenderer) Bar(ctx context.Context, c *domain.Chart) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(c.Categories) == 0 || len(c.Series) == 0 {
		return nil, apperrors.InvalidArgument("chart %q has no data to render", c.ID)
	}

	bars := make([]chart.Value, 0, len(c.Categories)*len(c.Series))
	var values []float64
	for i, category := range c.Categories {
		for j, series := range c.Series {
			label := ""
			if j == 0 {
				label = category
			}
			col := SeriesColor(j)
			bars = append(bars, chart.Value{
				Value: series.Values[i],
				Label: label,
				Style: chart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1},
			})
			values = append(values, series.Values[i])
		}
	}

	usable := s.width - background.Padding.Left - background.Padding.Right - 80
	barWidth := max(4, usable*2/(len(bars)*3))
	bc := chart.BarChart{
		Title:      c.Title,
		Width:      s.width,
		Height:     s.height,
		Background: background,
		BarWidth:   barWidth,
		BarSpacing: max(2, barWidth/2),
		YAxis: chart.YAxis{
			Name:           c.YLabel,
			Range:          valueRange(values, true),
			ValueFormatter: formatAxisValue,
		},
		Bars: bars,
	}

	return s.render(c, func(buf *bytes.Buffer) error { return bc.Render(chart.SVG, buf) })
}

// Line renders one line per series over evenly spaced categories
func (s *SVGRenderer) Line(ctx context.Context, c *domain.Chart) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(c.Categories) == 0 || len(c.Series) == 0 {
		return nil, apperrors.InvalidArgument("chart %q has no data to render", c.ID)
	}

	xs, xAxis := categoryAxis(c.XLabel, c.Categories)
	series := make([]chart.Series, len(c.Series))
	var values []float64
	for j, sr := range c.Series {
		col := SeriesColor(j)
		series[j] = chart.ContinuousSeries{
			Name:    sr.Name,
			XValues: xs,
			YValues: sr.Values,
			Style:   chart.Style{StrokeColor: col, StrokeWidth: 2, DotColor: col, DotWidth: 3},
		}
		values = append(values, sr.Values...)
	}

	ch := chart.Chart{
		Title:      c.Title,
		Width:      s.width,
		Height:     s.height,
		Background: background,
		XAxis:      xAxis,
		YAxis: chart.YAxis{
			Name:           c.YLabel,
			Range:          valueRange(values, true),
			ValueFormatter: formatAxisValue,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return s.render(c, func(buf *bytes.Buffer) error { return ch.Render(chart.SVG, buf) })
}

// Scatter renders one dot series per color group. Dot width scales with the
// size field relative to its largest value.
func (s *SVGRenderer) Scatter(ctx context.Context, c *domain.Chart) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(c.Points) == 0 {
		return nil, apperrors.InvalidArgument("chart %q has no points to render", c.ID)
	}

	groups := c.Groups
	if len(groups) == 0 {
		groups = []string{""}
	}
	maxSize := lo.MaxBy(c.Points, func(a, b domain.Point) bool { return a.Size > b.Size }).Size

	series := make([]chart.Series, 0, len(groups))
	for j, g := range groups {
		members := lo.Filter(c.Points, func(p domain.Point, _ int) bool { return p.Group == g })
		widths := lo.Map(members, func(p domain.Point, _ int) float64 { return dotWidth(p.Size, maxSize, c.Size != "") })

		name := g
		if name == "" {
			name = c.YLabel
		}
		col := SeriesColor(j)
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: lo.Map(members, func(p domain.Point, _ int) float64 { return p.X }),
			YValues: lo.Map(members, func(p domain.Point, _ int) float64 { return p.Y }),
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotColor:    col,
				DotWidth:    minDotWidth,
				DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
					return widths[index]
				},
			},
		})
	}

	ch := chart.Chart{
		Title:      c.Title,
		Width:      s.width,
		Height:     s.height,
		Background: background,
		XAxis: chart.XAxis{
			Name:           c.XLabel,
			Range:          valueRange(lo.Map(c.Points, func(p domain.Point, _ int) float64 { return p.X }), false),
			ValueFormatter: formatAxisValue,
		},
		YAxis: chart.YAxis{
			Name:           c.YLabel,
			Range:          valueRange(lo.Map(c.Points, func(p domain.Point, _ int) float64 { return p.Y }), false),
			ValueFormatter: formatAxisValue,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return s.render(c, func(buf *bytes.Buffer) error { return ch.Render(chart.SVG, buf) })
}

func (s *SVGRenderer) render(c *domain.Chart, draw func(*bytes.Buffer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		s.logger.Error("chart render failed",
			slog.String("chart_id", c.ID),
			slog.String("kind", string(c.Kind)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("render %s chart %q: %w", c.Kind, c.ID, err)
	}
	s.logger.Debug("chart rendered",
		slog.String("chart", Describe(c)),
		slog.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// categoryAxis places categories at 1..n with a padded range so a single
// category still yields a non-empty axis.
func categoryAxis(name string, categories []string) ([]float64, chart.XAxis) {
	n := len(categories)
	xs := make([]float64, n)
	ticks := make([]chart.Tick, 0, n+1)
	for i, cat := range categories {
		xs[i] = float64(i + 1)
		ticks = append(ticks, chart.Tick{Value: xs[i], Label: cat})
	}

	maxR := float64(n) + 0.5
	if n == 1 {
		maxR = 2.0
		ticks = append(ticks, chart.Tick{Value: 2, Label: ""})
	}

	axis := chart.XAxis{
		Name:  name,
		Ticks: ticks,
		Range: &chart.ContinuousRange{Min: 0.5, Max: maxR},
	}
	if n > 12 {
		axis.TickStyle = chart.Style{TextRotationDegrees: 45.0}
	}
	return xs, axis
}

// valueRange spans the values with some headroom and never has zero width
func valueRange(values []float64, fromZero bool) *chart.ContinuousRange {
	low, high := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		low = math.Min(low, v)
		high = math.Max(high, v)
	}
	if fromZero {
		low = math.Min(low, 0)
	}

	pad := (high - low) * 0.08
	if pad == 0 {
		pad = math.Max(math.Abs(high)*0.1, 1)
	}
	if fromZero && low == 0 {
		return &chart.ContinuousRange{Min: 0, Max: high + pad}
	}
	return &chart.ContinuousRange{Min: low - pad, Max: high + pad}
}

func dotWidth(size, maxSize float64, sized bool) float64 {
	if !sized || maxSize <= 0 {
		return (minDotWidth + maxDotWidth) / 2
	}
	return minDotWidth + (maxDotWidth-minDotWidth)*math.Sqrt(size/maxSize)
}

// formatAxisValue prints axis ticks compactly, e.g. 1.5M or 250k
func formatAxisValue(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return fmt.Sprintf("%v", v)
	}

	abs := math.Abs(f)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.1fB", f/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", f/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.0fk", f/1e3)
	case abs == math.Trunc(abs):
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprintf("%.2f", f)
}
