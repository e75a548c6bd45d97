package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricOpsTotal   = "rbarena.ops.total"
	metricOpDuration = "rbarena.op.duration.seconds"
	metricTreeSize   = "rbarena.tree.size"

	attrOp      = "op"
	attrOutcome = "outcome"
)

// Tree operation names used as the op attribute.
const (
	OpInsert   = "insert"
	OpRemove   = "remove"
	OpContains = "contains"
	OpTraverse = "traverse"
	OpValidate = "validate"
)

// Outcomes of a tree operation.
const (
	OutcomeHit  = "hit"
	OutcomeMiss = "miss"
)

// durationBucketBoundaries spans 100ns to 10ms; single tree operations rarely
// leave that range.
var durationBucketBoundaries = []float64{1e-7, 5e-7, 1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 1e-2}

// TreeMetrics holds the OTel instruments recorded for tree operations.
type TreeMetrics struct {
	opsTotal   metric.Int64Counter
	opDuration metric.Float64Histogram
	treeSize   metric.Int64UpDownCounter
}

// NewTreeMetrics creates the tree instruments from the given meter.
func NewTreeMetrics(mt metric.Meter) (*TreeMetrics, error) {
	b := newMetricBuilder(mt)

	tm := &TreeMetrics{
		opsTotal:   b.counter(metricOpsTotal, "Total number of tree operations", "{operation}"),
		opDuration: b.histogram(metricOpDuration, "Tree operation duration in seconds", "s", durationBucketBoundaries...),
		treeSize:   b.upDownCounter(metricTreeSize, "Number of values stored in trees", "{value}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return tm, nil
}

// RecordOp records one operation. hit reports whether the operation found or
// changed something; a successful insert or remove also moves the size gauge.
func (tm *TreeMetrics) RecordOp(ctx context.Context, op string, hit bool, duration time.Duration) {
	outcome := OutcomeMiss
	if hit {
		outcome = OutcomeHit
	}

	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrOutcome, outcome),
	)

	tm.opsTotal.Add(ctx, 1, attrs)
	tm.opDuration.Record(ctx, duration.Seconds(), attrs)

	if !hit {
		return
	}

	switch op {
	case OpInsert:
		tm.treeSize.Add(ctx, 1)
	case OpRemove:
		tm.treeSize.Add(ctx, -1)
	}
}

// metricBuilder accumulates instrument creation errors so a batch of
// instruments needs a single error check.
type metricBuilder struct {
	meter metric.Meter
	err   error
}

func newMetricBuilder(mt metric.Meter) *metricBuilder {
	return &metricBuilder{meter: mt}
}

func (b *metricBuilder) counter(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.setErr(name, err)

	return c
}

func (b *metricBuilder) histogram(name, desc, unit string, bounds ...float64) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(bounds...),
	)
	b.setErr(name, err)

	return h
}

func (b *metricBuilder) upDownCounter(name, desc, unit string) metric.Int64UpDownCounter {
	c, err := b.meter.Int64UpDownCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.setErr(name, err)

	return c
}

func (b *metricBuilder) setErr(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("create %s: %w", name, err)
	}
}
