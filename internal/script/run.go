package script

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/rbarena/pkg/observability"
	"github.com/Sumatoshi-tech/rbarena/pkg/rbtree"
)

// Options configure a script run. Zero values are usable.
type Options struct {
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *observability.TreeMetrics

	// Capacity is used when the script does not set one.
	Capacity int

	// Hibernate compresses and restores the tree after the last step and
	// records the compressed size in the report.
	Hibernate bool
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index    int           `json:"index"`
	Op       Op            `json:"op"`
	Inputs   []int         `json:"inputs,omitempty"`
	Hits     []bool        `json:"hits,omitempty"`
	Values   []int         `json:"values,omitempty"`
	Error    string        `json:"error,omitempty"`
	Diff     string        `json:"diff,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Failed reports whether the step errored or missed its expectation.
func (res *StepResult) Failed() bool {
	return res.Error != "" || res.Diff != ""
}

// Output renders the step result as text.
func (res *StepResult) Output() string {
	switch {
	case res.Error != "":
		return res.Error
	case res.Op == OpValidate:
		return "ok"
	case res.Hits != nil:
		return formatHits(res.Hits)
	default:
		return formatValues(res.Values)
	}
}

// Report collects the results of a run together with the final tree.
type Report struct {
	Name            string       `json:"name"`
	Steps           []StepResult `json:"steps"`
	Failures        int          `json:"failures"`
	Stats           rbtree.Stats `json:"stats"`
	HibernatedBytes int          `json:"hibernated_bytes,omitempty"`

	tree *rbtree.Tree[int]
}

// Tree returns the tree the script ran against.
func (rep *Report) Tree() *rbtree.Tree[int] {
	return rep.tree
}

type runner struct {
	opts Options
	tree *rbtree.Tree[int]
}

// Run executes every step of scr on a fresh tree. Steps that miss their
// expectation are counted in Report.Failures; the returned error is reserved
// for cancellation and hibernation failures.
func Run(ctx context.Context, scr *Script, opts Options) (*Report, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	if opts.Tracer == nil {
		opts.Tracer = nooptrace.NewTracerProvider().Tracer("script")
	}

	capacity := scr.Capacity
	if capacity == 0 {
		capacity = opts.Capacity
	}

	ctx, span := opts.Tracer.Start(ctx, "script.run", trace.WithAttributes(
		attribute.String("script.name", scr.Name),
		attribute.Int("script.steps", len(scr.Steps)),
	))
	defer span.End()

	run := &runner{opts: opts, tree: rbtree.New[int](capacity)}
	report := &Report{Name: scr.Name, Steps: make([]StepResult, 0, len(scr.Steps)), tree: run.tree}

	for idx, step := range scr.Steps {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "cancelled")

			return report, fmt.Errorf("step %d: %w", idx, err)
		}

		res := run.exec(ctx, idx, step)
		if res.Failed() {
			report.Failures++

			opts.Logger.WarnContext(ctx, "step failed",
				slog.Int("step", idx), slog.String("op", string(step.Op)),
				slog.String("error", res.Error), slog.String("diff", res.Diff))
		} else {
			opts.Logger.DebugContext(ctx, "step done",
				slog.Int("step", idx), slog.String("op", string(step.Op)),
				slog.String("output", res.Output()))
		}

		report.Steps = append(report.Steps, res)
	}

	if opts.Hibernate {
		if err := run.hibernateCycle(ctx, report); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "hibernate")

			return report, err
		}
	}

	report.Stats = run.tree.Stats()
	span.SetAttributes(attribute.Int("script.failures", report.Failures))

	return report, nil
}

func (run *runner) hibernateCycle(ctx context.Context, report *Report) error {
	if err := run.tree.Hibernate(); err != nil {
		return fmt.Errorf("hibernate tree: %w", err)
	}

	report.HibernatedBytes = run.tree.Stats().HibernatedBytes

	if err := run.tree.Boot(); err != nil {
		return fmt.Errorf("boot tree: %w", err)
	}

	run.opts.Logger.DebugContext(ctx, "tree hibernated and booted",
		slog.Int("compressed_bytes", report.HibernatedBytes))

	return nil
}

func (run *runner) exec(ctx context.Context, idx int, step Step) StepResult {
	res := StepResult{Index: idx, Op: step.Op, Inputs: step.Inputs()}
	start := time.Now()

	switch step.Op {
	case OpInsert:
		res.Hits = run.apply(ctx, observability.OpInsert, res.Inputs, run.tree.Insert)
	case OpRemove:
		res.Hits = run.apply(ctx, observability.OpRemove, res.Inputs, run.tree.Remove)
	case OpContains:
		res.Hits = run.apply(ctx, observability.OpContains, res.Inputs, run.tree.Contains)
	case OpInOrder:
		res.Values = run.traverse(ctx, run.tree.InOrder)
	case OpPreOrder:
		res.Values = run.traverse(ctx, run.tree.PreOrder)
	case OpPostOrder:
		res.Values = run.traverse(ctx, run.tree.PostOrder)
	case OpValidate:
		opStart := time.Now()
		err := run.tree.Validate()
		run.record(ctx, observability.OpValidate, err == nil, time.Since(opStart))

		if err != nil {
			res.Error = err.Error()
		}
	default:
		res.Error = fmt.Sprintf("unknown op %q", step.Op)
	}

	res.Duration = time.Since(start)

	if step.Expect != nil && res.Error == "" {
		res.Diff = compare(step.Expect, &res)
	}

	return res
}

func (run *runner) apply(ctx context.Context, op string, inputs []int, fn func(int) bool) []bool {
	hits := make([]bool, 0, len(inputs))

	for _, value := range inputs {
		start := time.Now()
		hit := fn(value)
		run.record(ctx, op, hit, time.Since(start))
		hits = append(hits, hit)
	}

	return hits
}

func (run *runner) traverse(ctx context.Context, fn func() []int) []int {
	start := time.Now()
	values := fn()
	run.record(ctx, observability.OpTraverse, true, time.Since(start))

	return values
}

func (run *runner) record(ctx context.Context, op string, hit bool, duration time.Duration) {
	if run.opts.Metrics != nil {
		run.opts.Metrics.RecordOp(ctx, op, hit, duration)
	}
}

// compare returns an empty string when res matches exp, otherwise an inline
// diff of the expected and actual text.
func compare(exp *Expectation, res *StepResult) string {
	var want, got string

	switch {
	case exp.Hit != nil && res.Hits != nil:
		wantHits := make([]bool, len(res.Hits))
		for idx := range wantHits {
			wantHits[idx] = *exp.Hit
		}

		if slices.Equal(wantHits, res.Hits) {
			return ""
		}

		want, got = formatHits(wantHits), formatHits(res.Hits)
	case exp.Values != nil && res.Hits == nil:
		if slices.Equal(exp.Values, res.Values) {
			return ""
		}

		want, got = formatValues(exp.Values), formatValues(res.Values)
	default:
		return "expectation does not apply to " + string(res.Op)
	}

	return inlineDiff(want, got)
}

// inlineDiff marks text missing from got with [-...-] and extra text with {+...+}.
func inlineDiff(want, got string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(want, got, false))

	var out strings.Builder

	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffEqual:
			out.WriteString(diff.Text)
		case diffmatchpatch.DiffDelete:
			out.WriteString("[-" + diff.Text + "-]")
		case diffmatchpatch.DiffInsert:
			out.WriteString("{+" + diff.Text + "+}")
		}
	}

	return out.String()
}

func formatValues(values []int) string {
	parts := make([]string, len(values))
	for idx, value := range values {
		parts[idx] = strconv.Itoa(value)
	}

	return "[" + strings.Join(parts, " ") + "]"
}

func formatHits(hits []bool) string {
	if len(hits) == 1 {
		return strconv.FormatBool(hits[0])
	}

	parts := make([]string, len(hits))
	for idx, hit := range hits {
		parts[idx] = strconv.FormatBool(hit)
	}

	return "[" + strings.Join(parts, " ") + "]"
}
