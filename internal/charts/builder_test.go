package charts

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salesdash/internal/errors"
	"salesdash/pkg/contracts/domain"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func categoryFrame() domain.Frame {
	return domain.AggregateFrame(domain.ColCategory, []string{domain.ColTotalValue, domain.ColQuantity}, []domain.AggregateRow{
		{KeyField: domain.ColCategory, Key: "A", Metrics: []domain.MetricValue{{Name: domain.ColTotalValue, Value: d("15")}, {Name: domain.ColQuantity, Value: d("3")}}},
		{KeyField: domain.ColCategory, Key: "B", Metrics: []domain.MetricValue{{Name: domain.ColTotalValue, Value: d("7.5")}, {Name: domain.ColQuantity, Value: d("1")}}},
	})
}

func groupFrame() domain.Frame {
	return domain.GroupFrame([]domain.BusinessGroupRow{
		{Business: "b1", TotalValue: d("100"), Quantity: d("4"), Frequency: d("2"), Group: "High"},
		{Business: "b2", TotalValue: d("20"), Quantity: d("1"), Frequency: d("0"), Group: "Low"},
		{Business: "b3", TotalValue: d("90"), Quantity: d("5"), Frequency: d("8"), Group: "High"},
	})
}

func TestBuild_Bar(t *testing.T) {
	c, err := Build(domain.ChartBar, categoryFrame(), Binding{
		ID:     "category-sales",
		X:      domain.ColCategory,
		Y:      []string{domain.ColTotalValue, domain.ColQuantity},
		Title:  "Total Sales Value and Quantity by Category",
		Labels: map[string]string{"value": "Total Sales", domain.ColQuantity: "Total Quantity"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ChartBar, c.Kind)
	assert.Equal(t, []string{"A", "B"}, c.Categories)
	require.Len(t, c.Series, 2)
	assert.Equal(t, domain.ColTotalValue, c.Series[0].Name)
	assert.Equal(t, []float64{15, 7.5}, c.Series[0].Values)
	assert.Equal(t, "Total Quantity", c.Series[1].Name)
	assert.Equal(t, []float64{3, 1}, c.Series[1].Values)
	assert.Equal(t, domain.ColCategory, c.XLabel)
	assert.Equal(t, "Total Sales", c.YLabel)
}

func TestBuild_LabelResolution(t *testing.T) {
	tests := []struct {
		name       string
		y          []string
		labels     map[string]string
		wantXLabel string
		wantYLabel string
	}{
		{
			name:       "no labels",
			y:          []string{domain.ColTotalValue},
			wantXLabel: domain.ColCategory,
			wantYLabel: domain.ColTotalValue,
		},
		{
			name:       "single y label",
			y:          []string{domain.ColTotalValue},
			labels:     map[string]string{domain.ColCategory: "Category", domain.ColTotalValue: "Sales Value"},
			wantXLabel: "Category",
			wantYLabel: "Sales Value",
		},
		{
			name:       "multi y falls back to value",
			y:          []string{domain.ColTotalValue, domain.ColQuantity},
			wantXLabel: domain.ColCategory,
			wantYLabel: DefaultValueLabel,
		},
		{
			name:       "labels for unbound fields are ignored",
			y:          []string{domain.ColTotalValue},
			labels:     map[string]string{"product_name": "Product"},
			wantXLabel: domain.ColCategory,
			wantYLabel: domain.ColTotalValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Build(domain.ChartLine, categoryFrame(), Binding{ID: "c", X: domain.ColCategory, Y: tt.y, Labels: tt.labels})
			require.NoError(t, err)
			assert.Equal(t, tt.wantXLabel, c.XLabel)
			assert.Equal(t, tt.wantYLabel, c.YLabel)
		})
	}
}

func TestBuild_Scatter(t *testing.T) {
	c, err := Build(domain.ChartScatter, groupFrame(), Binding{
		ID:    "segmentation-plot",
		X:     domain.ColTotalValue,
		Y:     []string{domain.ColQuantity},
		Color: domain.ColGroup,
		Size:  domain.ColFrequency,
		Hover: []string{domain.ColBusiness},
	})
	require.NoError(t, err)

	require.Len(t, c.Points, 3)
	assert.Equal(t, []string{"High", "Low"}, c.Groups)
	assert.Equal(t, domain.Point{
		X: 100, Y: 4, Group: "High", Size: 2,
		Hover: []domain.HoverValue{{Field: domain.ColBusiness, Value: "b1"}},
	}, c.Points[0])
	assert.Zero(t, c.Points[1].Size)
	assert.Empty(t, c.Series)
}

func TestBuild_Errors(t *testing.T) {
	negative := domain.GroupFrame([]domain.BusinessGroupRow{
		{Business: "b1", TotalValue: d("1"), Quantity: d("1"), Frequency: d("-1"), Group: "g"},
	})

	tests := []struct {
		name    string
		kind    domain.ChartKind
		data    domain.Frame
		binding Binding
		want    error
	}{
		{
			name:    "x absent from data",
			kind:    domain.ChartBar,
			data:    domain.AggregateFrame(domain.ColProduct, []string{domain.ColTotalValue}, nil),
			binding: Binding{ID: "c", X: domain.ColCategory, Y: []string{domain.ColTotalValue}},
			want:    apperrors.ErrMissingField,
		},
		{
			name:    "y absent from data",
			kind:    domain.ChartLine,
			data:    categoryFrame(),
			binding: Binding{ID: "c", X: domain.ColCategory, Y: []string{domain.ColTotalValue, "revenue"}},
			want:    apperrors.ErrMissingField,
		},
		{
			name:    "hover absent from data",
			kind:    domain.ChartScatter,
			data:    groupFrame(),
			binding: Binding{ID: "c", X: domain.ColTotalValue, Y: []string{domain.ColQuantity}, Hover: []string{"region"}},
			want:    apperrors.ErrMissingField,
		},
		{
			name:    "unknown kind",
			kind:    "pie",
			data:    categoryFrame(),
			binding: Binding{ID: "c", X: domain.ColCategory, Y: []string{domain.ColTotalValue}},
			want:    apperrors.ErrInvalidArgument,
		},
		{
			name:    "missing id",
			kind:    domain.ChartBar,
			data:    categoryFrame(),
			binding: Binding{X: domain.ColCategory, Y: []string{domain.ColTotalValue}},
			want:    apperrors.ErrInvalidArgument,
		},
		{
			name:    "no y",
			kind:    domain.ChartBar,
			data:    categoryFrame(),
			binding: Binding{ID: "c", X: domain.ColCategory},
			want:    apperrors.ErrInvalidArgument,
		},
		{
			name:    "non numeric y",
			kind:    domain.ChartBar,
			data:    categoryFrame(),
			binding: Binding{ID: "c", X: domain.ColTotalValue, Y: []string{domain.ColCategory}},
			want:    apperrors.ErrInvalidArgument,
		},
		{
			name:    "color on bar chart",
			kind:    domain.ChartBar,
			data:    categoryFrame(),
			binding: Binding{ID: "c", X: domain.ColCategory, Y: []string{domain.ColTotalValue}, Color: domain.ColCategory},
			want:    apperrors.ErrInvalidArgument,
		},
		{
			name:    "scatter with two y",
			kind:    domain.ChartScatter,
			data:    groupFrame(),
			binding: Binding{ID: "c", X: domain.ColTotalValue, Y: []string{domain.ColQuantity, domain.ColFrequency}},
			want:    apperrors.ErrInvalidArgument,
		},
		{
			name:    "negative size",
			kind:    domain.ChartScatter,
			data:    negative,
			binding: Binding{ID: "c", X: domain.ColTotalValue, Y: []string{domain.ColQuantity}, Size: domain.ColFrequency},
			want:    apperrors.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Build(tt.kind, tt.data, tt.binding)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuild_DoesNotShareBindingSlices(t *testing.T) {
	b := Binding{ID: "c", X: domain.ColCategory, Y: []string{domain.ColTotalValue}, Labels: map[string]string{"a": "b"}}
	c, err := Build(domain.ChartBar, categoryFrame(), b)
	require.NoError(t, err)

	b.Y[0] = "changed"
	b.Labels["a"] = "changed"
	assert.Equal(t, []string{domain.ColTotalValue}, c.Y)
	assert.Equal(t, "b", c.Labels["a"])
}

func TestBuildTable(t *testing.T) {
	segments := domain.AggregateFrame(domain.ColSegment, []string{domain.ColTotalValue, domain.ColTotalQuantity}, []domain.AggregateRow{
		{KeyField: domain.ColSegment, Key: "Gold", Metrics: []domain.MetricValue{{Name: domain.ColTotalValue, Value: d("1234.5")}, {Name: domain.ColTotalQuantity, Value: d("10")}}},
		{KeyField: domain.ColSegment, Key: "Silver", Metrics: []domain.MetricValue{{Name: domain.ColTotalValue, Value: d("0.125")}, {Name: domain.ColTotalQuantity, Value: d("2")}}},
	})

	table, err := BuildTable("customer-segmentation", segments, nil)
	require.NoError(t, err)

	assert.Equal(t, "customer-segmentation", table.ID)
	assert.Equal(t, []domain.TableColumn{
		{ID: domain.ColSegment, Name: domain.ColSegment},
		{ID: domain.ColTotalValue, Name: domain.ColTotalValue},
		{ID: domain.ColTotalQuantity, Name: domain.ColTotalQuantity},
	}, table.Columns)
	assert.Equal(t, [][]string{
		{"Gold", "1234.50", "10.00"},
		{"Silver", "0.13", "2.00"},
	}, table.Rows)

	subset, err := BuildTable("t", segments, []string{domain.ColTotalQuantity, domain.ColSegment})
	require.NoError(t, err)
	assert.Equal(t, []string{"10.00", "Gold"}, subset.Rows[0])

	_, err = BuildTable("t", segments, []string{"region"})
	assert.ErrorIs(t, err, apperrors.ErrMissingField)

	_, err = BuildTable("", segments, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestDescribe(t *testing.T) {
	c, err := Build(domain.ChartBar, categoryFrame(), Binding{ID: "c", X: domain.ColCategory, Y: []string{domain.ColTotalValue}})
	require.NoError(t, err)
	assert.Equal(t, "bar c: 2 categories x 1 series", Describe(c))
}
