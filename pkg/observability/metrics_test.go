package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/rbarena/pkg/observability"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	result := make(map[string]metricdata.Metrics)

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			result[m.Name] = m
		}
	}

	return result
}

func TestTreeMetrics_RecordOp(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := observability.NewTreeMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordOp(ctx, observability.OpInsert, true, time.Microsecond)
	metrics.RecordOp(ctx, observability.OpInsert, true, time.Microsecond)
	metrics.RecordOp(ctx, observability.OpInsert, false, time.Microsecond)
	metrics.RecordOp(ctx, observability.OpRemove, true, time.Microsecond)
	metrics.RecordOp(ctx, observability.OpContains, true, time.Microsecond)

	got := collect(t, reader)

	ops, ok := got["rbarena.ops.total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)

	var total int64
	for _, point := range ops.DataPoints {
		total += point.Value
	}

	assert.Equal(t, int64(5), total)
	assert.Len(t, ops.DataPoints, 4)

	size, ok := got["rbarena.tree.size"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, size.DataPoints, 1)
	assert.Equal(t, int64(1), size.DataPoints[0].Value)

	durations, ok := got["rbarena.op.duration.seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)

	var count uint64
	for _, point := range durations.DataPoints {
		count += point.Count
	}

	assert.Equal(t, uint64(5), count)
}
