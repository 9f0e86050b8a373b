package charts

import (
	"context"

	apperrors "salesdash/internal/errors"
	"salesdash/pkg/contracts/domain"
)

// Renderer turns chart descriptions into embeddable markup.
// Implementations must not modify the chart.
type Renderer interface {
	Bar(ctx context.Context, c *domain.Chart) ([]byte, error)
	Line(ctx context.Context, c *domain.Chart) ([]byte, error)
	Scatter(ctx context.Context, c *domain.Chart) ([]byte, error)
}

// Render dispatches a chart to the renderer method for its kind
func Render(ctx context.Context, r Renderer, c *domain.Chart) ([]byte, error) {
	if c == nil {
		return nil, apperrors.InvalidArgument("nil chart")
	}

	switch c.Kind {
	case domain.ChartBar:
		return r.Bar(ctx, c)
	case domain.ChartLine:
		return r.Line(ctx, c)
	case domain.ChartScatter:
		return r.Scatter(ctx, c)
	}
	return nil, apperrors.InvalidArgument("chart %q: unknown chart kind %q", c.ID, c.Kind)
}
