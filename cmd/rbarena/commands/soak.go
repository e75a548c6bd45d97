package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Sumatoshi-tech/rbarena/internal/render"
	"github.com/Sumatoshi-tech/rbarena/pkg/config"
	"github.com/Sumatoshi-tech/rbarena/pkg/observability"
	"github.com/Sumatoshi-tech/rbarena/pkg/rbtree"
)

// ErrDiverged is returned when the tree disagrees with the reference set.
var ErrDiverged = errors.New("tree diverged from reference set")

const (
	metricsReadHeaderTimeout = 5 * time.Second
	metricsShutdownTimeout   = 5 * time.Second
	meterName                = "github.com/Sumatoshi-tech/rbarena/soak"
)

// SoakCommand holds the configuration for the soak command.
type SoakCommand struct {
	globals *Globals

	operations     int
	valueRange     int
	seed           int64
	metricsAddr    string
	hibernateEvery int
	linger         time.Duration
}

// NewSoakCommand creates the soak command.
func NewSoakCommand(globals *Globals) *cobra.Command {
	return (&SoakCommand{globals: globals}).command()
}

func (sc *SoakCommand) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "soak",
		Short: "Drive a tree with random inserts and removes",
		Long: `Apply random inserts and removes to one tree, checking every result against
a reference set and validating all tree invariants after each operation.
Flags left unset take their values from the soak section of the config.`,
		Args: cobra.NoArgs,
		RunE: sc.run,
	}

	cmd.Flags().IntVar(&sc.operations, "operations", config.DefaultSoakOperations, "Number of operations")
	cmd.Flags().IntVar(&sc.valueRange, "value-range", config.DefaultSoakValueRange, "Values are drawn from [0, value-range)")
	cmd.Flags().Int64Var(&sc.seed, "seed", config.DefaultSoakSeed, "Random seed")
	cmd.Flags().StringVar(&sc.metricsAddr, "metrics-addr", "", "Serve Prometheus /metrics on this address")
	cmd.Flags().IntVar(&sc.hibernateEvery, "hibernate-every", 0, "Hibernate and boot the tree every N operations")
	cmd.Flags().DurationVar(&sc.linger, "linger", 0, "Keep serving /metrics this long after the soak ends")

	return cmd
}

// soakResult summarizes a finished soak.
type soakResult struct {
	inserts    int
	removes    int
	hits       int
	hibernates int
	peakBytes  int
	elapsed    time.Duration
}

func (sc *SoakCommand) run(cmd *cobra.Command, _ []string) error {
	sess, err := sc.globals.open(cmd, observability.ModeSoak)
	if err != nil {
		return err
	}
	defer sess.close()

	err = sc.resolve(cmd, sess)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	logger := sess.providers.Logger
	metrics := sess.metrics

	if sc.metricsAddr != "" {
		srv, promMetrics, serveErr := serveMetrics(sc.metricsAddr, logger)
		if serveErr != nil {
			return serveErr
		}

		defer func() { _ = srv.Stop(ctx) }()

		metrics = promMetrics
	}

	tree := rbtree.New[int](sess.cfg.Tree.Capacity)

	res, err := sc.soak(ctx, tree, metrics, logger)
	if err != nil {
		return err
	}

	if sess.cfg.Tree.Hibernate && !tree.Hibernated() {
		cycleErr := hibernateCycle(tree, res)
		if cycleErr != nil {
			return cycleErr
		}
	}

	logger.Info("soak finished",
		slog.Int("operations", sc.operations), slog.Int("live", tree.Len()),
		slog.Duration("elapsed", res.elapsed))

	if !sc.globals.Quiet {
		render.Stats(cmd.OutOrStdout(), tree.Stats(), sc.summaryRows(tree, res)...)
	}

	if sc.metricsAddr != "" && sc.linger > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(sc.linger):
		}
	}

	return nil
}

// resolve merges explicitly set flags into the soak config, validates the
// result and copies it back into sc.
func (sc *SoakCommand) resolve(cmd *cobra.Command, sess *session) error {
	soakCfg := &sess.cfg.Soak
	flags := cmd.Flags()

	if flags.Changed("operations") {
		soakCfg.Operations = sc.operations
	}

	if flags.Changed("value-range") {
		soakCfg.ValueRange = sc.valueRange
	}

	if flags.Changed("seed") {
		soakCfg.Seed = sc.seed
	}

	if flags.Changed("metrics-addr") {
		soakCfg.MetricsAddr = sc.metricsAddr
	}

	if err := sess.cfg.Validate(); err != nil {
		return fmt.Errorf("soak flags: %w", err)
	}

	sc.operations = soakCfg.Operations
	sc.valueRange = soakCfg.ValueRange
	sc.seed = soakCfg.Seed
	sc.metricsAddr = soakCfg.MetricsAddr

	return nil
}

func (sc *SoakCommand) soak(
	ctx context.Context,
	tree *rbtree.Tree[int],
	metrics *observability.TreeMetrics,
	logger *slog.Logger,
) (*soakResult, error) {
	rng := rand.New(rand.NewSource(sc.seed))
	reference := make(map[int]struct{}, sc.valueRange)
	res := &soakResult{}
	start := time.Now()

	for step := range sc.operations {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("soak step %d: %w", step, err)
		}

		value := rng.Intn(sc.valueRange)
		_, present := reference[value]

		opStart := time.Now()

		var (
			op   string
			hit  bool
			want bool
		)

		if rng.Intn(2) == 0 {
			op, hit, want = observability.OpInsert, tree.Insert(value), !present
			reference[value] = struct{}{}
			res.inserts++
		} else {
			op, hit, want = observability.OpRemove, tree.Remove(value), present
			delete(reference, value)
			res.removes++
		}

		metrics.RecordOp(ctx, op, hit, time.Since(opStart))

		if hit {
			res.hits++
		}

		if hit != want {
			return nil, fmt.Errorf("%w: step %d %s %d returned %t", ErrDiverged, step, op, value, hit)
		}

		if err := tree.Validate(); err != nil {
			return nil, fmt.Errorf("soak step %d %s %d: %w", step, op, value, err)
		}

		if tree.Len() != len(reference) {
			return nil, fmt.Errorf("%w: step %d len %d, want %d", ErrDiverged, step, tree.Len(), len(reference))
		}

		if sc.hibernateEvery > 0 && (step+1)%sc.hibernateEvery == 0 {
			if err := hibernateCycle(tree, res); err != nil {
				return nil, err
			}

			logger.Debug("tree hibernated", slog.Int("step", step), slog.Int("bytes", res.peakBytes))
		}
	}

	res.elapsed = time.Since(start)

	return res, nil
}

func hibernateCycle(tree *rbtree.Tree[int], res *soakResult) error {
	if err := tree.Hibernate(); err != nil {
		return fmt.Errorf("hibernate tree: %w", err)
	}

	res.hibernates++
	res.peakBytes = max(res.peakBytes, tree.Stats().HibernatedBytes)

	if err := tree.Boot(); err != nil {
		return fmt.Errorf("boot tree: %w", err)
	}

	return nil
}

func (sc *SoakCommand) summaryRows(tree *rbtree.Tree[int], res *soakResult) []table.Row {
	rows := []table.Row{
		{"operations", humanize.Comma(int64(sc.operations))},
		{"inserts", humanize.Comma(int64(res.inserts))},
		{"removes", humanize.Comma(int64(res.removes))},
		{"effective", humanize.Comma(int64(res.hits))},
		{"height", tree.Height()},
		{"black height", tree.BlackHeight()},
		{"elapsed", res.elapsed.Round(time.Microsecond).String()},
	}

	if res.hibernates > 0 {
		rows = append(rows,
			table.Row{"hibernations", res.hibernates},
			table.Row{"peak hibernated", humanize.Bytes(uint64(res.peakBytes))})
	}

	return rows
}

// metricsServer is a Prometheus scrape endpoint for soak metrics.
type metricsServer struct {
	server   *http.Server
	listener net.Listener
	provider *sdkmetric.MeterProvider
	logger   *slog.Logger
}

// serveMetrics starts a scrape endpoint on addr and returns it with metrics
// whose instruments it exposes.
func serveMetrics(addr string, logger *slog.Logger) (*metricsServer, *observability.TreeMetrics, error) {
	handler, provider, err := observability.PrometheusHandler()
	if err != nil {
		return nil, nil, err
	}

	metrics, err := observability.NewTreeMetrics(provider.Meter(meterName))
	if err != nil {
		return nil, nil, errors.Join(fmt.Errorf("init prometheus metrics: %w", err), provider.Shutdown(context.Background()))
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, errors.Join(fmt.Errorf("listen on %s: %w", addr, err), provider.Shutdown(context.Background()))
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	srv := &metricsServer{
		server:   &http.Server{Handler: mux, ReadHeaderTimeout: metricsReadHeaderTimeout},
		listener: listener,
		provider: provider,
		logger:   logger,
	}

	go func() {
		serveErr := srv.server.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", serveErr)
		}
	}()

	logger.Info("serving metrics", "addr", srv.Addr())

	return srv, metrics, nil
}

// Addr returns the address the server listens on.
func (srv *metricsServer) Addr() string {
	return srv.listener.Addr().String()
}

// Stop shuts the server and its meter provider down, waiting at most
// metricsShutdownTimeout.
func (srv *metricsServer) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsShutdownTimeout)
	defer cancel()

	err := errors.Join(srv.server.Shutdown(shutdownCtx), srv.provider.Shutdown(shutdownCtx))
	if err != nil {
		srv.logger.Warn("metrics server shutdown failed", "error", err)
	}

	return err
}
