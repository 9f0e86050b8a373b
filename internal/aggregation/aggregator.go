package aggregation

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "salesdash/internal/errors"
	"salesdash/internal/infrastructure"
	"salesdash/pkg/contracts/domain"
)

// TracerName names the spans emitted by this package
const TracerName = "salesdash.aggregation"

// Reduction is the operation applied to a metric field within a group
type Reduction string

const (
	Sum   Reduction = "sum"
	Count Reduction = "count"
)

// Metric is one output column of an aggregation
type Metric struct {
	Name  string
	Field string
	Op    Reduction
}

// SumOf sums a numeric field and names the result after the field
func SumOf(field string) Metric {
	return Metric{Name: field, Field: field, Op: Sum}
}

// CountAs counts the rows of each group under the given name
func CountAs(name string) Metric {
	return Metric{Name: name, Op: Count}
}

// Request describes one group-by reduction
type Request struct {
	GroupKey  string
	Metrics   []Metric
	TopN      int
	RankBy    string
	SortByKey bool
}

// MetricNames returns the output metric names in request order
func (r Request) MetricNames() []string {
	return lo.Map(r.Metrics, func(m Metric, _ int) string { return m.Name })
}

// Validate checks the request independently of any data
func (r Request) Validate() error {
	if r.GroupKey == "" {
		return apperrors.InvalidArgument("group key is required")
	}
	if len(r.Metrics) == 0 {
		return apperrors.InvalidArgument("at least one metric is required")
	}

	seen := map[string]bool{r.GroupKey: true}
	for _, m := range r.Metrics {
		if m.Name == "" {
			return apperrors.InvalidArgument("metric name is required")
		}
		if seen[m.Name] {
			return apperrors.InvalidArgument("duplicate output column %q", m.Name)
		}
		seen[m.Name] = true

		switch m.Op {
		case Sum:
			if m.Field == "" {
				return apperrors.InvalidArgument("sum metric %q has no field", m.Name)
			}
		case Count:
		default:
			return apperrors.InvalidArgument("metric %q has unknown reduction %q", m.Name, m.Op)
		}
	}

	if r.TopN < 0 {
		return apperrors.InvalidArgument("top_n must be >= 0, got %d", r.TopN)
	}
	if r.TopN > 0 && r.RankBy == "" {
		return apperrors.InvalidArgument("top_n requires rank_by")
	}
	if r.RankBy != "" {
		if !lo.Contains(r.MetricNames(), r.RankBy) {
			return apperrors.InvalidArgument("rank_by %q is not one of the metrics %v", r.RankBy, r.MetricNames())
		}
		if r.SortByKey {
			return apperrors.InvalidArgument("rank_by and sort_by_key are mutually exclusive")
		}
	}
	return nil
}

type group struct {
	key    string
	values []decimal.Decimal
}

// Aggregate groups rows by the request's key and reduces each metric.
// It does not modify rows and returns the same output for the same input.
func Aggregate(ctx context.Context, rows []domain.Record, req Request) ([]domain.AggregateRow, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.EmptyInput("aggregation input")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var groups []*group

	for i, row := range rows {
		kv, ok := row.Field(req.GroupKey)
		if !ok {
			return nil, apperrors.InvalidArgument("row %d has no group key %q", i, req.GroupKey)
		}
		key := kv.String()

		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, &group{key: key, values: make([]decimal.Decimal, len(req.Metrics))})
		}
		g := groups[pos]

		for j, m := range req.Metrics {
			switch m.Op {
			case Count:
				g.values[j] = g.values[j].Add(decimal.NewFromInt(1))
			case Sum:
				v, ok := row.Field(m.Field)
				if !ok {
					return nil, apperrors.InvalidArgument("row %d has no field %q for metric %q", i, m.Field, m.Name)
				}
				d, ok := v.Decimal()
				if !ok {
					return nil, apperrors.InvalidArgument("field %q is not numeric in row %d: %q", m.Field, i, v.String())
				}
				g.values[j] = g.values[j].Add(d)
			}
		}
	}

	switch {
	case req.RankBy != "":
		rank := slices.Index(req.MetricNames(), req.RankBy)
		slices.SortStableFunc(groups, func(a, b *group) int {
			return b.values[rank].Cmp(a.values[rank])
		})
		if req.TopN > 0 && len(groups) > req.TopN {
			groups = groups[:req.TopN]
		}
	case req.SortByKey:
		slices.SortStableFunc(groups, func(a, b *group) int {
			return cmp.Compare(a.key, b.key)
		})
	}

	out := make([]domain.AggregateRow, len(groups))
	for i, g := range groups {
		metrics := make([]domain.MetricValue, len(req.Metrics))
		for j, m := range req.Metrics {
			metrics[j] = domain.MetricValue{Name: m.Name, Value: g.values[j]}
		}
		out[i] = domain.AggregateRow{KeyField: req.GroupKey, Key: g.key, Metrics: metrics}
	}
	return out, nil
}

// Aggregator wraps Aggregate with logging, tracing and metrics
type Aggregator struct {
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
	tracer  trace.Tracer
}

// NewAggregator creates an aggregator. Both arguments may be nil.
func NewAggregator(logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Aggregator {
	return &Aggregator{
		logger:  infrastructure.WithComponent(logger, "aggregator"),
		metrics: metrics,
		tracer:  otel.Tracer(TracerName),
	}
}

// Aggregate runs one reduction over the rows
func (a *Aggregator) Aggregate(ctx context.Context, rows []domain.Record, req Request) ([]domain.AggregateRow, error) {
	ctx, span := a.tracer.Start(ctx, "aggregation.aggregate",
		trace.WithAttributes(
			attribute.String("aggregation.group_key", req.GroupKey),
			attribute.Int("aggregation.input_rows", len(rows)),
			attribute.Int("aggregation.top_n", req.TopN),
		))
	defer span.End()

	start := time.Now()
	out, err := Aggregate(ctx, rows, req)
	duration := time.Since(start)

	infrastructure.RecordAggregation(ctx, a.metrics, req.GroupKey, len(rows), duration, err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		a.logger.ErrorContext(ctx, "aggregation failed",
			slog.String("group_key", req.GroupKey),
			slog.Int("input_rows", len(rows)),
			slog.String("error", err.Error()))
		return nil, err
	}

	span.SetAttributes(attribute.Int("aggregation.groups", len(out)))
	a.logger.DebugContext(ctx, "aggregation complete",
		slog.String("group_key", req.GroupKey),
		slog.Int("input_rows", len(rows)),
		slog.Int("groups", len(out)),
		slog.Duration("duration", duration))
	return out, nil
}

// AggregateFrame reduces a frame and wraps the result in a frame whose
// schema is the group key followed by the metric names.
func (a *Aggregator) AggregateFrame(ctx context.Context, frame domain.Frame, req Request) (domain.Frame, error) {
	if len(frame.Columns) > 0 && !frame.HasColumn(req.GroupKey) {
		return domain.Frame{}, apperrors.InvalidArgument("group key %q is not a column (available: %v)", req.GroupKey, frame.Columns)
	}
	rows, err := a.Aggregate(ctx, frame.Records, req)
	if err != nil {
		return domain.Frame{}, err
	}
	return domain.AggregateFrame(req.GroupKey, req.MetricNames(), rows), nil
}
