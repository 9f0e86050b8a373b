// Package charts turns aggregated frames into chart and table descriptions
// and renders charts to SVG.
//
// Build resolves a Binding (x, y, color, size, hover fields plus display
// labels) against a frame. Every bound field must be a column of the frame,
// otherwise Build fails with errors.ErrMissingField. Rendering is kept behind
// the Renderer interface; SVGRenderer draws with go-chart.
//
//	c, err := charts.Build(domain.ChartBar, frame, charts.Binding{
//	    ID:    "top-products",
//	    X:     domain.ColProduct,
//	    Y:     []string{domain.ColTotalValue},
//	    Title: "Top 10 Best-Selling Products",
//	})
//	svg, err := charts.Render(ctx, charts.NewSVGRenderer(960, 450, logger), c)
package charts
