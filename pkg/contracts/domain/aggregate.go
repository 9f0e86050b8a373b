package domain

import (
	"github.com/shopspring/decimal"
)

// MetricValue is one reduced metric of an aggregate group
type MetricValue struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// AggregateRow is the reduction of every input row sharing one group key.
type AggregateRow struct {
	KeyField string        `json:"key_field"`
	Key      string        `json:"key"`
	Metrics  []MetricValue `json:"metrics"`
}

// Metric returns the named metric value
func (r AggregateRow) Metric(name string) (decimal.Decimal, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m.Value, true
		}
	}
	return decimal.Zero, false
}

// Field implements Record. The group key is exposed under KeyField.
func (r AggregateRow) Field(name string) (Value, bool) {
	if name == r.KeyField {
		return Text(r.Key), true
	}
	if v, ok := r.Metric(name); ok {
		return Number(v), true
	}
	return Value{}, false
}

// AggregateFrame wraps aggregate rows in a frame whose schema is the key
// field followed by the metric names.
func AggregateFrame(keyField string, metricNames []string, rows []AggregateRow) Frame {
	columns := make([]string, 0, len(metricNames)+1)
	columns = append(columns, keyField)
	columns = append(columns, metricNames...)
	return NewFrame(columns, rows)
}
