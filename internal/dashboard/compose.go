package dashboard

import (
	"slices"

	apperrors "salesdash/internal/errors"
	"salesdash/pkg/contracts/domain"
)

// DefaultTitle is the page heading used by Compose
const DefaultTitle = "Sales Performance Dashboard"

// Element identifiers in page order
const (
	IDCategorySales        = "category-sales"
	IDTopProducts          = "top-products"
	IDTopBusinesses        = "top-businesses"
	IDSalesTrends          = "sales-trends"
	IDCustomerSegmentation = "customer-segmentation"
	IDSegmentationPlot     = "segmentation-plot"
)

// Slot is one fixed position of the page
type Slot struct {
	ID        string
	Kind      domain.ElementKind
	ChartKind domain.ChartKind
}

// layout is the fixed page order. A composed page has exactly one element per slot.
var layout = []Slot{
	{ID: IDCategorySales, Kind: domain.ElementChart, ChartKind: domain.ChartBar},
	{ID: IDTopProducts, Kind: domain.ElementChart, ChartKind: domain.ChartBar},
	{ID: IDTopBusinesses, Kind: domain.ElementChart, ChartKind: domain.ChartBar},
	{ID: IDSalesTrends, Kind: domain.ElementChart, ChartKind: domain.ChartLine},
	{ID: IDCustomerSegmentation, Kind: domain.ElementTable},
	{ID: IDSegmentationPlot, Kind: domain.ElementChart, ChartKind: domain.ChartScatter},
}

// Layout returns a copy of the fixed page order
func Layout() []Slot {
	return slices.Clone(layout)
}

// Compose assembles elements into a page titled DefaultTitle
func Compose(elements []domain.Element) (*domain.Page, error) {
	return ComposeTitled(DefaultTitle, elements)
}

// ComposeTitled assembles elements into a page. Elements must match the
// layout one to one and in order.
func ComposeTitled(title string, elements []domain.Element) (*domain.Page, error) {
	if len(elements) != len(layout) {
		return nil, apperrors.InvalidArgument("page needs %d elements, got %d", len(layout), len(elements))
	}

	for i, slot := range layout {
		if err := checkSlot(i, slot, elements[i]); err != nil {
			return nil, err
		}
	}

	return &domain.Page{Title: title, Elements: slices.Clone(elements)}, nil
}

func checkSlot(pos int, slot Slot, e domain.Element) error {
	if e.ID != slot.ID {
		return apperrors.InvalidArgument("element %d: want %q, got %q", pos+1, slot.ID, e.ID)
	}
	if e.Kind != slot.Kind {
		return apperrors.InvalidArgument("element %q: want %s, got %s", e.ID, slot.Kind, e.Kind)
	}

	switch slot.Kind {
	case domain.ElementChart:
		if e.Chart == nil || e.Table != nil {
			return apperrors.InvalidArgument("element %q must carry exactly a chart", e.ID)
		}
		if e.Chart.ID != e.ID {
			return apperrors.InvalidArgument("element %q holds chart %q", e.ID, e.Chart.ID)
		}
		if e.Chart.Kind != slot.ChartKind {
			return apperrors.InvalidArgument("element %q: want %s chart, got %s", e.ID, slot.ChartKind, e.Chart.Kind)
		}
	case domain.ElementTable:
		if e.Table == nil || e.Chart != nil {
			return apperrors.InvalidArgument("element %q must carry exactly a table", e.ID)
		}
		if e.Table.ID != e.ID {
			return apperrors.InvalidArgument("element %q holds table %q", e.ID, e.Table.ID)
		}
	}
	return nil
}
