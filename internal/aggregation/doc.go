// Package aggregation reduces tabular sales rows into per-group totals.
//
// # Reductions
//
// A Request names a group key and one or more metrics. Sum metrics add a
// numeric field with exact decimal arithmetic; Count metrics count the rows
// of each group.
//
//	rows, err := aggregation.Aggregate(ctx, frame.Records, aggregation.Request{
//	    GroupKey: domain.ColProduct,
//	    Metrics:  []aggregation.Metric{aggregation.SumOf(domain.ColTotalValue)},
//	    TopN:     10,
//	    RankBy:   domain.ColTotalValue,
//	})
//
// # Ordering
//
// Groups come out in the order their key was first seen. SortByKey orders
// them by ascending key instead. RankBy orders them by descending metric
// value with ties kept in first-seen order, and TopN keeps at most that many
// of the ranked groups.
//
// # Errors
//
// Empty input fails with errors.ErrEmptyInput. A malformed request, a row
// without the group key, or a non-numeric summed field fails with
// errors.ErrInvalidArgument.
package aggregation
