package commands

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/rbarena/pkg/config"
	"github.com/Sumatoshi-tech/rbarena/pkg/observability"
)

func TestSoakCommand_Runs(t *testing.T) {
	t.Parallel()

	cmd := NewSoakCommand(&Globals{ConfigPath: testConfig(t, "")})

	out, _, err := execute(context.Background(), cmd,
		"--operations", "2000", "--value-range", "64", "--seed", "7")
	require.NoError(t, err)

	assert.Contains(t, out, "live values")
	assert.Contains(t, out, "inserts")
	assert.Contains(t, out, "black height")
	assert.Contains(t, out, "2,000")
}

func TestSoakCommand_HibernateEvery(t *testing.T) {
	t.Parallel()

	cmd := NewSoakCommand(&Globals{ConfigPath: testConfig(t, "")})

	out, _, err := execute(context.Background(), cmd,
		"--operations", "300", "--value-range", "40", "--hibernate-every", "100")
	require.NoError(t, err)

	assert.Contains(t, out, "hibernations")
	assert.Contains(t, out, "peak hibernated")
}

func TestSoakCommand_DefaultsFromConfig(t *testing.T) {
	t.Parallel()

	sc := &SoakCommand{}
	cmd := sc.command()
	sess := &session{cfg: mustLoadConfig(t, testConfig(t, "soak:\n  operations: 12\n  value_range: 5\n  seed: 9\n"))}

	require.NoError(t, sc.resolve(cmd, sess))

	assert.Equal(t, 12, sc.operations)
	assert.Equal(t, 5, sc.valueRange)
	assert.Equal(t, int64(9), sc.seed)
	assert.Empty(t, sc.metricsAddr)
}

func TestSoakCommand_FlagsOverrideConfig(t *testing.T) {
	t.Parallel()

	sc := &SoakCommand{}
	cmd := sc.command()
	sess := &session{cfg: mustLoadConfig(t, testConfig(t, "soak:\n  operations: 12\n  seed: 9\n"))}

	require.NoError(t, cmd.Flags().Set("seed", "0"))
	require.NoError(t, cmd.Flags().Set("operations", "3"))
	require.NoError(t, sc.resolve(cmd, sess))

	assert.Equal(t, int64(0), sc.seed)
	assert.Equal(t, 3, sc.operations)
	assert.Equal(t, int64(0), sess.cfg.Soak.Seed)
}

func TestSoakCommand_RejectsInvalidFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		flag  string
		value string
		want  error
	}{
		{"operations", "0", config.ErrInvalidOperations},
		{"value-range", "0", config.ErrInvalidValueRange},
		{"value-range", "-2", config.ErrInvalidValueRange},
	}

	for _, tt := range tests {
		t.Run(tt.flag+"="+tt.value, func(t *testing.T) {
			t.Parallel()

			cmd := NewSoakCommand(&Globals{ConfigPath: testConfig(t, "")})

			_, _, err := execute(context.Background(), cmd, "--"+tt.flag, tt.value)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSoakCommand_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewSoakCommand(&Globals{ConfigPath: testConfig(t, "")})

	_, _, err := execute(ctx, cmd, "--operations", "10")
	require.ErrorIs(t, err, context.Canceled)
}

func TestSoakCommand_ServesMetrics(t *testing.T) {
	t.Parallel()

	cmd := NewSoakCommand(&Globals{ConfigPath: testConfig(t, "")})

	_, _, err := execute(context.Background(), cmd,
		"--operations", "50", "--metrics-addr", "127.0.0.1:0")
	require.NoError(t, err)
}

func TestServeMetrics_Scrape(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)

	srv, metrics, err := serveMetrics("127.0.0.1:0", logger)
	require.NoError(t, err)

	metrics.RecordOp(context.Background(), observability.OpInsert, true, 0)

	body, status := scrapeMetrics(t, "http://"+srv.Addr()+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "rbarena_ops")

	require.NoError(t, srv.Stop(context.Background()))

	_, err = http.Get("http://" + srv.Addr() + "/metrics") //nolint:noctx // server is gone.
	require.Error(t, err)
}

func scrapeMetrics(t *testing.T, url string) (string, int) {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, http.NoBody)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(body), resp.StatusCode
}

func TestServeMetrics_BadAddr(t *testing.T) {
	t.Parallel()

	_, _, err := serveMetrics("not-an-address", slog.New(slog.DiscardHandler))
	require.Error(t, err)
}
