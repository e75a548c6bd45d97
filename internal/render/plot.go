package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/rbarena/pkg/rbtree"
)

const (
	plotHeight     = "800px"
	plotWidth      = "100%"
	nodeSymbolSize = 18
	gapSymbolSize  = 4

	redNodeColor   = "#d62728"
	blackNodeColor = "#222222"
	gapNodeColor   = "#bbbbbb"
)

// Plot writes an interactive HTML page drawing shape as a top-down tree.
func Plot[T any](w io.Writer, shape *rbtree.Shape[T], title string) error {
	chart := charts.NewTree()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: plotWidth, Height: plotHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "red-black tree"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	var data []opts.TreeData
	if shape != nil {
		data = append(data, *plotNode(shape))
	}

	chart.AddSeries("tree", data, charts.WithTreeOpts(opts.TreeChart{
		Layout:           "orthogonal",
		Orient:           "TB",
		Roam:             opts.Bool(true),
		InitialTreeDepth: -1,
		Label:            &opts.Label{Show: opts.Bool(true), Position: "top"},
	}))

	if err := chart.Render(w); err != nil {
		return fmt.Errorf("render tree plot: %w", err)
	}

	return nil
}

// plotNode converts a shape node. A node with a single child gets a small
// placeholder on the empty side so left and right stay distinguishable.
func plotNode[T any](shape *rbtree.Shape[T]) *opts.TreeData {
	nodeColor := blackNodeColor
	if shape.Red {
		nodeColor = redNodeColor
	}

	node := &opts.TreeData{
		Name:       fmt.Sprint(shape.Value),
		SymbolSize: nodeSymbolSize,
		ItemStyle:  &opts.ItemStyle{Color: nodeColor},
	}

	if shape.Left == nil && shape.Right == nil {
		return node
	}

	for _, child := range []*rbtree.Shape[T]{shape.Left, shape.Right} {
		if child == nil {
			node.Children = append(node.Children, &opts.TreeData{
				Symbol:     "emptyCircle",
				SymbolSize: gapSymbolSize,
				ItemStyle:  &opts.ItemStyle{Color: gapNodeColor},
			})

			continue
		}

		node.Children = append(node.Children, plotNode(child))
	}

	return node
}
