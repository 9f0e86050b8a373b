package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salesdash/internal/errors"
	"salesdash/pkg/contracts/domain"
)

func validElements() []domain.Element {
	out := make([]domain.Element, 0, len(Layout()))
	for _, slot := range Layout() {
		e := domain.Element{ID: slot.ID, Kind: slot.Kind}
		if slot.Kind == domain.ElementTable {
			e.Table = &domain.Table{ID: slot.ID}
		} else {
			e.Chart = &domain.Chart{ID: slot.ID, Kind: slot.ChartKind}
		}
		out = append(out, e)
	}
	return out
}

func TestCompose(t *testing.T) {
	page, err := Compose(validElements())
	require.NoError(t, err)

	assert.Equal(t, DefaultTitle, page.Title)
	require.Len(t, page.Elements, 6)
	ids := make([]string, 0, len(page.Elements))
	for _, e := range page.Elements {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{
		"category-sales", "top-products", "top-businesses",
		"sales-trends", "customer-segmentation", "segmentation-plot",
	}, ids)
	assert.Equal(t, domain.ElementTable, page.Elements[4].Kind)
	assert.Equal(t, domain.ChartScatter, page.Elements[5].Chart.Kind)
}

func TestLayout_ReturnsCopy(t *testing.T) {
	slots := Layout()
	slots[0], slots[5] = slots[5], slots[0]
	slots[1].ID = "renamed"

	assert.Equal(t, IDCategorySales, Layout()[0].ID)
	assert.Equal(t, IDTopProducts, Layout()[1].ID)

	_, err := Compose(validElements())
	assert.NoError(t, err)
}

func TestCompose_DoesNotAliasInput(t *testing.T) {
	elements := validElements()
	page, err := ComposeTitled("Custom", elements)
	require.NoError(t, err)

	elements[0].Heading = "changed"
	assert.Empty(t, page.Elements[0].Heading)
	assert.Equal(t, "Custom", page.Title)
}

func TestCompose_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]domain.Element) []domain.Element
	}{
		{
			name:   "too few",
			mutate: func(e []domain.Element) []domain.Element { return e[:5] },
		},
		{
			name:   "too many",
			mutate: func(e []domain.Element) []domain.Element { return append(e, e[0]) },
		},
		{
			name: "swapped order",
			mutate: func(e []domain.Element) []domain.Element {
				e[1], e[2] = e[2], e[1]
				return e
			},
		},
		{
			name: "table slot holds a chart",
			mutate: func(e []domain.Element) []domain.Element {
				e[4].Kind = domain.ElementChart
				e[4].Chart = &domain.Chart{ID: e[4].ID, Kind: domain.ChartBar}
				e[4].Table = nil
				return e
			},
		},
		{
			name: "chart element without chart",
			mutate: func(e []domain.Element) []domain.Element {
				e[0].Chart = nil
				return e
			},
		},
		{
			name: "wrong chart kind",
			mutate: func(e []domain.Element) []domain.Element {
				e[3].Chart.Kind = domain.ChartBar
				return e
			},
		},
		{
			name: "chart id differs from slot",
			mutate: func(e []domain.Element) []domain.Element {
				e[5].Chart.ID = "other"
				return e
			},
		},
		{
			name: "element carries both",
			mutate: func(e []domain.Element) []domain.Element {
				e[4].Chart = &domain.Chart{ID: e[4].ID}
				return e
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := Compose(tt.mutate(validElements()))
			assert.Nil(t, page)
			assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		})
	}
}
