package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/rbarena/pkg/rbtree"
)

// Tree prints shape sideways: the root on the left, right subtrees above their
// parent. Red nodes are printed in red when colorize is set, otherwise every
// node carries an R or B tag.
func Tree[T any](w io.Writer, shape *rbtree.Shape[T], colorize bool) error {
	if shape == nil {
		_, err := fmt.Fprintln(w, "(empty)")

		return err
	}

	redInk := color.New(color.FgRed, color.Bold)
	blackInk := color.New(color.Bold)

	if colorize {
		redInk.EnableColor()
		blackInk.EnableColor()
	}

	label := func(node *rbtree.Shape[T]) string {
		text := fmt.Sprint(node.Value)

		switch {
		case !colorize && node.Red:
			return text + " R"
		case !colorize:
			return text + " B"
		case node.Red:
			return redInk.Sprint(text)
		default:
			return blackInk.Sprint(text)
		}
	}

	var out strings.Builder

	var dump func(node *rbtree.Shape[T], prefix string, branch string)

	dump = func(node *rbtree.Shape[T], prefix string, branch string) {
		if node.Right != nil {
			next := prefix + "    "
			if branch == "└── " {
				next = prefix + "│   "
			}

			dump(node.Right, next, "┌── ")
		}

		out.WriteString(prefix + branch + label(node) + "\n")

		if node.Left != nil {
			next := prefix + "    "
			if branch == "┌── " {
				next = prefix + "│   "
			}

			dump(node.Left, next, "└── ")
		}
	}

	dump(shape, "", "")

	_, err := io.WriteString(w, out.String())

	return err
}
