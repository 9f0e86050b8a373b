package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"salesdash/internal/aggregation"
	"salesdash/internal/charts"
	"salesdash/internal/config"
	apperrors "salesdash/internal/errors"
	"salesdash/internal/infrastructure"
	"salesdash/pkg/contracts/domain"
)

// TracerName names the spans emitted by this package
const TracerName = "salesdash.dashboard"

// Datasets are the prepared inputs of the page. They are passed explicitly
// to Build and never modified.
type Datasets struct {
	Sales    []domain.SalesRecord
	Segments []domain.BusinessSegmentRow
	Groups   []domain.BusinessGroupRow
}

// Options controls page content
type Options struct {
	Title         string
	TopProducts   int
	TopBusinesses int
}

// OptionsFromConfig maps the dashboard configuration section
func OptionsFromConfig(cfg config.DashboardConfig) Options {
	return Options{
		Title:         cfg.Title,
		TopProducts:   cfg.TopProducts,
		TopBusinesses: cfg.TopBusinesses,
	}
}

// Builder aggregates the datasets and lays out the six page elements
type Builder struct {
	opts       Options
	aggregator *aggregation.Aggregator
	metrics    *infrastructure.BusinessMetrics
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewBuilder creates a page builder. Zero options fall back to the defaults.
func NewBuilder(opts Options, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Builder {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.TopProducts <= 0 {
		opts.TopProducts = 10
	}
	if opts.TopBusinesses <= 0 {
		opts.TopBusinesses = 10
	}
	return &Builder{
		opts:       opts,
		aggregator: aggregation.NewAggregator(logger, metrics),
		metrics:    metrics,
		logger:     infrastructure.WithComponent(logger, "page_builder"),
		tracer:     otel.Tracer(TracerName),
	}
}

type elementStep func(ctx context.Context, ds Datasets) (domain.Element, error)

// Build produces the composed page. Any failure aborts the whole page.
func (b *Builder) Build(ctx context.Context, ds Datasets) (*domain.Page, error) {
	ctx, span := b.tracer.Start(ctx, "dashboard.build",
		trace.WithAttributes(
			attribute.Int("dataset.sales_rows", len(ds.Sales)),
			attribute.Int("dataset.segment_rows", len(ds.Segments)),
			attribute.Int("dataset.group_rows", len(ds.Groups)),
		))
	defer span.End()

	steps := []elementStep{
		b.categorySales,
		b.topProducts,
		b.topBusinesses,
		b.salesTrends,
		b.customerSegmentation,
		b.segmentationPlot,
	}

	elements := make([]domain.Element, 0, len(steps))
	for i, step := range steps {
		e, err := step(ctx, ds)
		if err != nil {
			infrastructure.RecordError(ctx, err)
			b.logger.ErrorContext(ctx, "failed to build page element",
				slog.String("element", layout[i].ID),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("build %s: %w", layout[i].ID, err)
		}
		infrastructure.RecordChartBuilt(ctx, b.metrics, string(e.Kind))
		elements = append(elements, e)
	}

	page, err := ComposeTitled(b.opts.Title, elements)
	if err != nil {
		return nil, fmt.Errorf("compose page: %w", err)
	}

	b.logger.InfoContext(ctx, "dashboard page built", slog.Int("elements", len(page.Elements)))
	return page, nil
}

func (b *Builder) chart(kind domain.ChartKind, frame domain.Frame, binding charts.Binding, heading string) (domain.Element, error) {
	c, err := charts.Build(kind, frame, binding)
	if err != nil {
		return domain.Element{}, err
	}
	b.logger.Debug("chart built", slog.String("chart", charts.Describe(c)))
	return domain.Element{ID: c.ID, Kind: domain.ElementChart, Heading: heading, Chart: c}, nil
}

func (b *Builder) categorySales(ctx context.Context, ds Datasets) (domain.Element, error) {
	frame, err := b.aggregator.AggregateFrame(ctx, domain.SalesFrame(ds.Sales), aggregation.Request{
		GroupKey:  domain.ColCategory,
		Metrics:   []aggregation.Metric{aggregation.SumOf(domain.ColTotalValue), aggregation.SumOf(domain.ColQuantity)},
		SortByKey: true,
	})
	if err != nil {
		return domain.Element{}, err
	}
	return b.chart(domain.ChartBar, frame, charts.Binding{
		ID:     IDCategorySales,
		X:      domain.ColCategory,
		Y:      []string{domain.ColTotalValue, domain.ColQuantity},
		Title:  "Total Sales Value and Quantity by Category",
		Labels: map[string]string{"value": "Total Sales", domain.ColQuantity: "Total Quantity"},
	}, "")
}

func (b *Builder) topProducts(ctx context.Context, ds Datasets) (domain.Element, error) {
	frame, err := b.aggregator.AggregateFrame(ctx, domain.SalesFrame(ds.Sales), aggregation.Request{
		GroupKey: domain.ColProduct,
		Metrics:  []aggregation.Metric{aggregation.SumOf(domain.ColTotalValue), aggregation.SumOf(domain.ColQuantity)},
		TopN:     b.opts.TopProducts,
		RankBy:   domain.ColTotalValue,
	})
	if err != nil {
		return domain.Element{}, err
	}
	return b.chart(domain.ChartBar, frame, charts.Binding{
		ID:     IDTopProducts,
		X:      domain.ColProduct,
		Y:      []string{domain.ColTotalValue},
		Title:  fmt.Sprintf("Top %d Best-Selling Products", b.opts.TopProducts),
		Labels: map[string]string{"product_name": "Product", domain.ColTotalValue: "Sales Value"},
	}, "")
}

func (b *Builder) topBusinesses(ctx context.Context, ds Datasets) (domain.Element, error) {
	frame, err := b.aggregator.AggregateFrame(ctx, domain.SalesFrame(ds.Sales), aggregation.Request{
		GroupKey: domain.ColBusiness,
		Metrics:  []aggregation.Metric{aggregation.SumOf(domain.ColTotalValue)},
		TopN:     b.opts.TopBusinesses,
		RankBy:   domain.ColTotalValue,
	})
	if err != nil {
		return domain.Element{}, err
	}
	return b.chart(domain.ChartBar, frame, charts.Binding{
		ID:     IDTopBusinesses,
		X:      domain.ColBusiness,
		Y:      []string{domain.ColTotalValue},
		Title:  fmt.Sprintf("Top %d Businesses by Sales", b.opts.TopBusinesses),
		Labels: map[string]string{"business_name": "Business", domain.ColTotalValue: "Sales Value"},
	}, "")
}

func (b *Builder) salesTrends(ctx context.Context, ds Datasets) (domain.Element, error) {
	frame, err := b.aggregator.AggregateFrame(ctx, domain.SalesFrame(ds.Sales), aggregation.Request{
		GroupKey:  domain.ColMonthYear,
		Metrics:   []aggregation.Metric{aggregation.SumOf(domain.ColTotalValue), aggregation.SumOf(domain.ColQuantity)},
		SortByKey: true,
	})
	if err != nil {
		return domain.Element{}, err
	}
	return b.chart(domain.ChartLine, frame, charts.Binding{
		ID:     IDSalesTrends,
		X:      domain.ColMonthYear,
		Y:      []string{domain.ColTotalValue, domain.ColQuantity},
		Title:  "Sales Trends Over Time",
		Labels: map[string]string{domain.ColMonthYear: "Date", "value": "Sales"},
	}, "")
}

func (b *Builder) customerSegmentation(ctx context.Context, ds Datasets) (domain.Element, error) {
	frame, err := b.aggregator.AggregateFrame(ctx, domain.SegmentFrame(ds.Segments), aggregation.Request{
		GroupKey:  domain.ColSegment,
		Metrics:   []aggregation.Metric{aggregation.SumOf(domain.ColTotalValue), aggregation.SumOf(domain.ColTotalQuantity)},
		SortByKey: true,
	})
	if err != nil {
		return domain.Element{}, err
	}
	table, err := charts.BuildTable(IDCustomerSegmentation, frame,
		[]string{domain.ColSegment, domain.ColTotalValue, domain.ColTotalQuantity})
	if err != nil {
		return domain.Element{}, err
	}
	return domain.Element{
		ID:      IDCustomerSegmentation,
		Kind:    domain.ElementTable,
		Heading: "Customer Segmentation Summary",
		Table:   table,
	}, nil
}

func (b *Builder) segmentationPlot(_ context.Context, ds Datasets) (domain.Element, error) {
	if len(ds.Groups) == 0 {
		return domain.Element{}, apperrors.EmptyInput("business groups")
	}
	const title = "Customer Segmentation Based on Purchasing Behavior"
	return b.chart(domain.ChartScatter, domain.GroupFrame(ds.Groups), charts.Binding{
		ID:    IDSegmentationPlot,
		X:     domain.ColTotalValue,
		Y:     []string{domain.ColQuantity},
		Color: domain.ColGroup,
		Size:  domain.ColFrequency,
		Hover: []string{domain.ColBusiness},
		Title: title,
	}, title)
}

// Publish builds the page and renders it to HTML, recording build metrics
func (b *Builder) Publish(ctx context.Context, ds Datasets, renderer *HTMLRenderer) ([]byte, error) {
	start := time.Now()

	page, err := b.Build(ctx, ds)
	if err != nil {
		return nil, err
	}
	html, err := renderer.Render(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}

	infrastructure.RecordPageBuild(ctx, b.metrics, time.Since(start), len(html))
	b.logger.InfoContext(ctx, "dashboard page published",
		slog.Int("bytes", len(html)),
		slog.Duration("duration", time.Since(start)))
	return html, nil
}
