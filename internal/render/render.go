// Package render prints script reports, arena statistics and tree shapes.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/rbarena/internal/script"
	"github.com/Sumatoshi-tech/rbarena/pkg/config"
	"github.com/Sumatoshi-tech/rbarena/pkg/rbtree"
)

// ErrUnknownFormat is returned for output formats other than table, plain and json.
var ErrUnknownFormat = errors.New("unknown output format")

// Options control report rendering.
type Options struct {
	// Format is one of config.OutputTable, config.OutputPlain, config.OutputJSON.
	Format string
	// Color enables ANSI colors for status cells and the tree dump.
	Color bool
	// ShowTree appends the final tree shape to table and plain output.
	ShowTree bool
}

// Report writes rep in the requested format.
func Report(w io.Writer, rep *script.Report, opts Options) error {
	switch opts.Format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}

		return nil
	case config.OutputPlain:
		writePlain(w, rep)
	case config.OutputTable, "":
		writeTable(w, rep, opts.Color)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}

	if opts.ShowTree && rep.Tree() != nil {
		fmt.Fprintln(w)

		return Tree(w, rep.Tree().Shape(), opts.Color)
	}

	return nil
}

func writePlain(w io.Writer, rep *script.Report) {
	for idx := range rep.Steps {
		res := &rep.Steps[idx]

		label := string(res.Op)
		if len(res.Inputs) > 0 {
			label += " " + joinInts(res.Inputs)
		}

		fmt.Fprintf(w, "%s: %s\n", label, res.Output())

		if res.Diff != "" {
			fmt.Fprintf(w, "  mismatch: %s\n", res.Diff)
		}
	}
}

func writeTable(w io.Writer, rep *script.Report, colorize bool) {
	pass := color.New(color.FgGreen)
	fail := color.New(color.FgRed, color.Bold)

	if colorize {
		pass.EnableColor()
		fail.EnableColor()
	} else {
		pass.DisableColor()
		fail.DisableColor()
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)

	if rep.Name != "" {
		tbl.SetTitle(rep.Name)
	}

	tbl.AppendHeader(table.Row{"#", "Op", "Input", "Result", "Status"})

	for idx := range rep.Steps {
		res := &rep.Steps[idx]

		status := pass.Sprint("ok")
		result := res.Output()

		if res.Failed() {
			status = fail.Sprint("FAIL")

			if res.Diff != "" {
				result = res.Diff
			}
		}

		tbl.AppendRow(table.Row{res.Index, res.Op, joinInts(res.Inputs), result, status})
	}

	tbl.AppendFooter(table.Row{"", "", "", "Failures", rep.Failures})
	tbl.Render()
}

// Stats writes arena occupancy as a two-column table. Extra rows are appended
// after the arena figures.
func Stats(w io.Writer, stats rbtree.Stats, extra ...table.Row) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Arena", "Value"})

	tbl.AppendRows([]table.Row{
		{"live values", humanize.Comma(int64(stats.Live))},
		{"slots", humanize.Comma(int64(stats.Slots))},
		{"free slots", humanize.Comma(int64(stats.Free))},
		{"capacity", humanize.Comma(int64(stats.Capacity))},
	})

	if stats.HibernatedBytes > 0 {
		tbl.AppendRow(table.Row{"hibernated", humanize.Bytes(uint64(stats.HibernatedBytes))})
	}

	tbl.AppendRows(extra)
	tbl.Render()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for idx, value := range values {
		parts[idx] = strconv.Itoa(value)
	}

	return strings.Join(parts, " ")
}
