package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"salesdash/internal/config"
	"salesdash/internal/dashboard"
	"salesdash/internal/infrastructure"
	"salesdash/pkg/contracts/domain"
)

// LoadSales reads the primary sales dataset
func LoadSales(ctx context.Context, path string) ([]domain.SalesRecord, error) {
	t, err := readTable(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := t.require(domain.SalesColumns); err != nil {
		return nil, err
	}

	out := make([]domain.SalesRecord, 0, len(t.rows))
	for i, row := range t.rows {
		value, err := t.number(row, i, domain.ColTotalValue)
		if err != nil {
			return nil, err
		}
		qty, err := t.number(row, i, domain.ColQuantity)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.SalesRecord{
			MonthYear:  t.text(row, domain.ColMonthYear),
			Category:   t.text(row, domain.ColCategory),
			Product:    t.text(row, domain.ColProduct),
			Business:   t.text(row, domain.ColBusiness),
			TotalValue: value,
			Quantity:   qty,
		})
	}
	return out, nil
}

// LoadSegments reads the business segmentation dataset
func LoadSegments(ctx context.Context, path string) ([]domain.BusinessSegmentRow, error) {
	t, err := readTable(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := t.require(domain.SegmentColumns); err != nil {
		return nil, err
	}

	out := make([]domain.BusinessSegmentRow, 0, len(t.rows))
	for i, row := range t.rows {
		value, err := t.number(row, i, domain.ColTotalValue)
		if err != nil {
			return nil, err
		}
		qty, err := t.number(row, i, domain.ColTotalQuantity)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.BusinessSegmentRow{
			Business:      t.text(row, domain.ColBusiness),
			Segment:       t.text(row, domain.ColSegment),
			TotalValue:    value,
			TotalQuantity: qty,
		})
	}
	return out, nil
}

// LoadGroups reads the business clustering dataset
func LoadGroups(ctx context.Context, path string) ([]domain.BusinessGroupRow, error) {
	t, err := readTable(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := t.require(domain.GroupColumns); err != nil {
		return nil, err
	}

	out := make([]domain.BusinessGroupRow, 0, len(t.rows))
	for i, row := range t.rows {
		value, err := t.number(row, i, domain.ColTotalValue)
		if err != nil {
			return nil, err
		}
		qty, err := t.number(row, i, domain.ColQuantity)
		if err != nil {
			return nil, err
		}
		freq, err := t.number(row, i, domain.ColFrequency)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.BusinessGroupRow{
			Business:   t.text(row, domain.ColBusiness),
			TotalValue: value,
			Quantity:   qty,
			Frequency:  freq,
			Group:      t.text(row, domain.ColGroup),
		})
	}
	return out, nil
}

// LoadAll reads the three configured datasets concurrently.
// The first failure cancels the remaining reads.
func LoadAll(ctx context.Context, cfg config.DataConfig, logger *slog.Logger) (dashboard.Datasets, error) {
	logger = infrastructure.WithComponent(logger, "dataset")
	start := time.Now()

	var ds dashboard.Datasets
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		ds.Sales, err = LoadSales(ctx, cfg.SalesFile)
		return wrap("sales", cfg.SalesFile, err)
	})
	g.Go(func() (err error) {
		ds.Segments, err = LoadSegments(ctx, cfg.SegmentsFile)
		return wrap("segments", cfg.SegmentsFile, err)
	})
	g.Go(func() (err error) {
		ds.Groups, err = LoadGroups(ctx, cfg.GroupsFile)
		return wrap("groups", cfg.GroupsFile, err)
	})

	if err := g.Wait(); err != nil {
		logger.ErrorContext(ctx, "failed to load datasets", slog.String("error", err.Error()))
		return dashboard.Datasets{}, err
	}

	logger.InfoContext(ctx, "datasets loaded",
		slog.Int("sales_rows", len(ds.Sales)),
		slog.Int("segment_rows", len(ds.Segments)),
		slog.Int("group_rows", len(ds.Groups)),
		slog.Duration("duration", time.Since(start)))
	return ds, nil
}

func wrap(name, path string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("load %s dataset from %s: %w", name, path, err)
}
