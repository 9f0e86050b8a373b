package aggregation

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salesdash/internal/errors"
	"salesdash/internal/infrastructure"
	"salesdash/internal/shared/testutil"
	"salesdash/pkg/contracts/domain"
)

func sale(category, product string, value int64) domain.SalesRecord {
	return domain.SalesRecord{
		MonthYear:  "2024-01",
		Category:   category,
		Product:    product,
		Business:   "biz-" + product,
		TotalValue: decimal.NewFromInt(value),
		Quantity:   decimal.NewFromInt(1),
	}
}

func records(rows ...domain.SalesRecord) []domain.Record {
	return domain.SalesFrame(rows).Records
}

func keys(rows []domain.AggregateRow) []string {
	return lo.Map(rows, func(r domain.AggregateRow, _ int) string { return r.Key })
}

func metric(t *testing.T, row domain.AggregateRow, name string) string {
	t.Helper()
	v, ok := row.Metric(name)
	require.True(t, ok, "metric %q missing", name)
	return v.String()
}

func TestAggregate_CategoryScenario(t *testing.T) {
	withQty := func(category string, value, qty int64) domain.SalesRecord {
		r := sale(category, "p", value)
		r.Quantity = decimal.NewFromInt(qty)
		return r
	}
	rows := records(
		withQty("A", 10, 1),
		withQty("A", 5, 2),
		withQty("B", 7, 1),
	)

	out, err := Aggregate(context.Background(), rows, Request{
		GroupKey: domain.ColCategory,
		Metrics:  []Metric{SumOf(domain.ColTotalValue), SumOf(domain.ColQuantity)},
	})
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, []string{"A", "B"}, keys(out))
	assert.Equal(t, "15", metric(t, out[0], domain.ColTotalValue))
	assert.Equal(t, "3", metric(t, out[0], domain.ColQuantity))
	assert.Equal(t, "7", metric(t, out[1], domain.ColTotalValue))
	assert.Equal(t, "1", metric(t, out[1], domain.ColQuantity))
}

func TestAggregate_TopTwo(t *testing.T) {
	rows := records(
		sale("c", "p1", 50),
		sale("c", "p2", 10),
		sale("c", "p3", 80),
		sale("c", "p4", 30),
		sale("c", "p5", 20),
	)

	out, err := Aggregate(context.Background(), rows, Request{
		GroupKey: domain.ColProduct,
		Metrics:  []Metric{SumOf(domain.ColTotalValue)},
		TopN:     2,
		RankBy:   domain.ColTotalValue,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"p3", "p1"}, keys(out))
	assert.Equal(t, "80", metric(t, out[0], domain.ColTotalValue))
	assert.Equal(t, "50", metric(t, out[1], domain.ColTotalValue))
}

func TestAggregate_Ordering(t *testing.T) {
	rows := records(
		sale("c", "zeta", 5),
		sale("c", "alpha", 9),
		sale("c", "mid", 5),
		sale("c", "beta", 5),
	)
	value := SumOf(domain.ColTotalValue)

	tests := []struct {
		name string
		req  Request
		want []string
	}{
		{
			name: "first encountered",
			req:  Request{GroupKey: domain.ColProduct, Metrics: []Metric{value}},
			want: []string{"zeta", "alpha", "mid", "beta"},
		},
		{
			name: "sort by key",
			req:  Request{GroupKey: domain.ColProduct, Metrics: []Metric{value}, SortByKey: true},
			want: []string{"alpha", "beta", "mid", "zeta"},
		},
		{
			name: "rank keeps ties in first encountered order",
			req:  Request{GroupKey: domain.ColProduct, Metrics: []Metric{value}, RankBy: domain.ColTotalValue},
			want: []string{"alpha", "zeta", "mid", "beta"},
		},
		{
			name: "top n cuts inside a tie",
			req:  Request{GroupKey: domain.ColProduct, Metrics: []Metric{value}, RankBy: domain.ColTotalValue, TopN: 3},
			want: []string{"alpha", "zeta", "mid"},
		},
		{
			name: "top n larger than group count",
			req:  Request{GroupKey: domain.ColProduct, Metrics: []Metric{value}, RankBy: domain.ColTotalValue, TopN: 10},
			want: []string{"alpha", "zeta", "mid", "beta"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Aggregate(context.Background(), rows, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, keys(out))
		})
	}
}

func TestAggregate_SumPreservation(t *testing.T) {
	var input []domain.SalesRecord
	total := decimal.Zero
	for i := 0; i < 40; i++ {
		v := decimal.RequireFromString("0.1").Add(decimal.NewFromInt(int64(i * 7 % 13)))
		input = append(input, domain.SalesRecord{
			MonthYear:  "2024-0" + string(rune('1'+i%9)),
			Category:   string(rune('A' + i%5)),
			Product:    "p",
			Business:   "b",
			TotalValue: v,
			Quantity:   decimal.NewFromInt(1),
		})
		total = total.Add(v)
	}

	for _, key := range []string{domain.ColCategory, domain.ColMonthYear, domain.ColProduct} {
		t.Run(key, func(t *testing.T) {
			out, err := Aggregate(context.Background(), records(input...), Request{
				GroupKey: key,
				Metrics:  []Metric{SumOf(domain.ColTotalValue), CountAs("rows")},
			})
			require.NoError(t, err)

			sum, count := decimal.Zero, decimal.Zero
			for _, r := range out {
				v, _ := r.Metric(domain.ColTotalValue)
				n, _ := r.Metric("rows")
				sum = sum.Add(v)
				count = count.Add(n)
			}
			assert.True(t, total.Equal(sum), "want %s got %s", total, sum)
			assert.Equal(t, int64(len(input)), count.IntPart())
		})
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	rows := records(
		sale("x", "a", 3), sale("y", "b", 3), sale("z", "c", 3),
		sale("x", "d", 1), sale("y", "e", 2),
	)
	req := Request{
		GroupKey: domain.ColCategory,
		Metrics:  []Metric{SumOf(domain.ColTotalValue), SumOf(domain.ColQuantity)},
		TopN:     2,
		RankBy:   domain.ColQuantity,
	}

	first, err := Aggregate(context.Background(), rows, req)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Aggregate(context.Background(), rows, req)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	input := []domain.SalesRecord{sale("b", "p1", 1), sale("a", "p2", 2)}
	rows := records(input...)
	before := append([]domain.Record(nil), rows...)

	_, err := Aggregate(context.Background(), rows, Request{
		GroupKey:  domain.ColCategory,
		Metrics:   []Metric{SumOf(domain.ColTotalValue)},
		SortByKey: true,
	})
	require.NoError(t, err)
	assert.Equal(t, before, rows)
}

func TestAggregate_Errors(t *testing.T) {
	rows := records(sale("A", "p1", 10))
	value := SumOf(domain.ColTotalValue)

	tests := []struct {
		name string
		rows []domain.Record
		req  Request
		want error
	}{
		{
			name: "empty input",
			rows: nil,
			req:  Request{GroupKey: domain.ColCategory, Metrics: []Metric{value}},
			want: apperrors.ErrEmptyInput,
		},
		{
			name: "rank by is not a metric",
			rows: rows,
			req:  Request{GroupKey: domain.ColCategory, Metrics: []Metric{value}, TopN: 1, RankBy: domain.ColQuantity},
			want: apperrors.ErrInvalidArgument,
		},
		{
			name: "negative top n",
			rows: rows,
			req:  Request{GroupKey: domain.ColCategory, Metrics: []Metric{value}, TopN: -1, RankBy: domain.ColTotalValue},
			want: apperrors.ErrInvalidArgument,
		},
		{
			name: "top n without rank by",
			rows: rows,
			req:  Request{GroupKey: domain.ColCategory, Metrics: []Metric{value}, TopN: 3},
			want: apperrors.ErrInvalidArgument,
		},
		{
			name: "rank by with sort by key",
			rows: rows,
			req:  Request{GroupKey: domain.ColCategory, Metrics: []Metric{value}, RankBy: domain.ColTotalValue, SortByKey: true},
			want: apperrors.ErrInvalidArgument,
		},
		{
			name: "no metrics",
			rows: rows,
			req:  Request{GroupKey: domain.ColCategory},
			want: apperrors.ErrInvalidArgument,
		},
		{
			name: "duplicate metric names",
			rows: rows,
			req:  Request{GroupKey: domain.ColCategory, Metrics: []Metric{value, value}},
			want: apperrors.ErrInvalidArgument,
		},
		{
			name: "metric named like the key",
			rows: rows,
			req:  Request{GroupKey: domain.ColCategory, Metrics: []Metric{CountAs(domain.ColCategory)}},
			want: apperrors.ErrInvalidArgument,
		},
		{
			name: "unknown group key",
			rows: rows,
			req:  Request{GroupKey: "region", Metrics: []Metric{value}},
			want: apperrors.ErrInvalidArgument,
		},
		{
			name: "sum over text field",
			rows: rows,
			req:  Request{GroupKey: domain.ColCategory, Metrics: []Metric{SumOf(domain.ColProduct)}},
			want: apperrors.ErrInvalidArgument,
		},
		{
			name: "sum over absent field",
			rows: rows,
			req:  Request{GroupKey: domain.ColCategory, Metrics: []Metric{SumOf("revenue")}},
			want: apperrors.ErrInvalidArgument,
		},
		{
			name: "unknown reduction",
			rows: rows,
			req:  Request{GroupKey: domain.ColCategory, Metrics: []Metric{{Name: "m", Field: domain.ColTotalValue, Op: "avg"}}},
			want: apperrors.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Aggregate(context.Background(), tt.rows, tt.req)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestAggregate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Aggregate(ctx, records(sale("A", "p", 1)), Request{
		GroupKey: domain.ColCategory,
		Metrics:  []Metric{SumOf(domain.ColTotalValue)},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregator_LogsAndFrames(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	metrics, err := infrastructure.CreateBusinessMetrics(nil)
	require.NoError(t, err)
	agg := NewAggregator(logger, metrics)

	frame := domain.SalesFrame([]domain.SalesRecord{sale("A", "p1", 4), sale("B", "p2", 6), sale("A", "p3", 1)})
	out, err := agg.AggregateFrame(context.Background(), frame, Request{
		GroupKey: domain.ColCategory,
		Metrics:  []Metric{SumOf(domain.ColTotalValue), CountAs("orders")},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{domain.ColCategory, domain.ColTotalValue, "orders"}, out.Columns)
	require.Equal(t, 2, out.Len())
	v, ok := out.Records[0].Field(domain.ColTotalValue)
	require.True(t, ok)
	assert.Equal(t, "5", v.String())
	testutil.AssertLogContains(t, logHandler, slog.LevelDebug, "aggregation complete")

	_, err = agg.AggregateFrame(context.Background(), frame, Request{
		GroupKey: "region",
		Metrics:  []Metric{SumOf(domain.ColTotalValue)},
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = agg.Aggregate(context.Background(), nil, Request{
		GroupKey: domain.ColCategory,
		Metrics:  []Metric{SumOf(domain.ColTotalValue)},
	})
	assert.ErrorIs(t, err, apperrors.ErrEmptyInput)
	assert.True(t, logHandler.ContainsMessage("aggregation failed"))
}
