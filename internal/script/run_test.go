package script_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/rbarena/internal/script"
	"github.com/Sumatoshi-tech/rbarena/pkg/observability"
)

func mustParse(t *testing.T, doc string) *script.Script {
	t.Helper()

	parsed, err := script.Parse([]byte(doc))
	require.NoError(t, err)

	return parsed
}

func TestRunDefault(t *testing.T) {
	t.Parallel()

	report, err := script.Run(context.Background(), script.Default(), script.Options{})
	require.NoError(t, err)

	assert.Equal(t, 0, report.Failures)
	assert.Len(t, report.Steps, len(script.Default().Steps))
	assert.Equal(t, 9, report.Stats.Live)
	assert.Equal(t, 100, report.Stats.Capacity)

	for _, res := range report.Steps {
		assert.False(t, res.Failed(), "step %d: %s", res.Index, res.Diff)
	}

	tree := report.Tree()
	require.NotNil(t, tree)
	assert.Equal(t, []int{11, 20, 30, 40, 45, 50, 55, 60, 70}, tree.InOrder())
	require.NoError(t, tree.Validate())
}

func TestRunEmptyTreeScenario(t *testing.T) {
	t.Parallel()

	report, err := script.Run(context.Background(), mustParse(t, `
steps:
  - op: contains
    value: 1
    expect: false
  - op: in_order
    expect: []
  - op: pre_order
    expect: []
  - op: post_order
    expect: []
  - op: validate
`), script.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Failures)
	assert.Equal(t, "[]", report.Steps[1].Output())
	assert.Equal(t, "false", report.Steps[0].Output())
	assert.Equal(t, "ok", report.Steps[4].Output())
}

func TestRunReportsMismatch(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	report, err := script.Run(context.Background(), mustParse(t, `
name: wrong
steps:
  - op: insert
    values: [1, 2, 3]
  - op: insert
    value: 2
    expect: true
  - op: in_order
    expect: [1, 3]
`), script.Options{Logger: slog.New(slog.NewTextHandler(&logs, nil))})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Failures)
	assert.False(t, report.Steps[0].Failed())
	assert.Equal(t, []bool{true, true, true}, report.Steps[0].Hits)

	assert.Contains(t, report.Steps[1].Diff, "[-")
	assert.Contains(t, report.Steps[1].Diff, "{+")
	assert.Contains(t, report.Steps[2].Diff, "{+")
	assert.NotContains(t, report.Steps[2].Diff, "[-")
	assert.Contains(t, logs.String(), "step failed")
}

func TestRunDuplicateAndAbsent(t *testing.T) {
	t.Parallel()

	report, err := script.Run(context.Background(), mustParse(t, `
steps:
  - op: insert
    value: 5
    expect: true
  - op: insert
    value: 5
    expect: false
  - op: remove
    value: 9
    expect: false
  - op: remove
    values: [5]
    expect: true
  - op: remove
    value: 5
    expect: false
`), script.Options{Capacity: 4})
	require.NoError(t, err)

	assert.Equal(t, 0, report.Failures)
	assert.Equal(t, 4, report.Stats.Capacity)
	assert.Equal(t, 0, report.Stats.Live)
	assert.Equal(t, 1, report.Stats.Free)
}

func TestRunHibernate(t *testing.T) {
	t.Parallel()

	report, err := script.Run(context.Background(), script.Default(), script.Options{Hibernate: true})
	require.NoError(t, err)

	assert.Positive(t, report.HibernatedBytes)
	assert.False(t, report.Tree().Hibernated())
	require.NoError(t, report.Tree().Validate())
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := script.Run(ctx, script.Default(), script.Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Steps)
}

func TestRunRecordsMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := observability.NewTreeMetrics(provider.Meter("test"))
	require.NoError(t, err)

	_, err = script.Run(context.Background(), script.Default(), script.Options{Metrics: metrics})
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var size int64

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok && m.Name == "rbarena.tree.size" {
				for _, point := range sum.DataPoints {
					size += point.Value
				}
			}
		}
	}

	assert.Equal(t, int64(9), size)
}
