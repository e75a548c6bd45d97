package rbtree

import (
	"iter"
)

type order int

const (
	orderIn order = iota
	orderPre
	orderPost
)

// InOrder returns the stored values in ascending order (left, root, right).
func (tree *Tree[T]) InOrder() []T {
	return tree.collect(orderIn)
}

// PreOrder returns the stored values in root, left, right order.
func (tree *Tree[T]) PreOrder() []T {
	return tree.collect(orderPre)
}

// PostOrder returns the stored values in left, right, root order.
func (tree *Tree[T]) PostOrder() []T {
	return tree.collect(orderPost)
}

// All yields the stored values in ascending order. The tree must not be
// mutated while the sequence is being consumed.
func (tree *Tree[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		tree.walk(orderIn, func(slot uint32) bool {
			return yield(tree.arena.values[slot])
		})
	}
}

func (tree *Tree[T]) collect(ord order) []T {
	result := make([]T, 0, tree.count)

	tree.walk(ord, func(slot uint32) bool {
		result = append(result, tree.arena.values[slot])

		return true
	})

	return result
}

func (tree *Tree[T]) slots(ord order) []uint32 {
	result := make([]uint32, 0, tree.count)

	tree.walk(ord, func(slot uint32) bool {
		result = append(result, slot)

		return true
	})

	return result
}

// walk visits every slot in the requested order using an explicit stack, so
// the goroutine stack does not grow with the tree height. It stops as soon as
// visit returns false.
func (tree *Tree[T]) walk(ord order, visit func(slot uint32) bool) {
	tree.arena.mustBeAwake()

	if tree.root == 0 {
		return
	}

	switch ord {
	case orderIn:
		tree.walkIn(visit)
	case orderPre:
		tree.walkPre(visit)
	case orderPost:
		tree.walkPost(visit)
	default:
		panic("rbtree: unknown traversal order")
	}
}

func (tree *Tree[T]) walkIn(visit func(slot uint32) bool) {
	var stack []uint32

	cursor := tree.root

	for cursor != 0 || len(stack) > 0 {
		for cursor != 0 {
			stack = append(stack, cursor)
			cursor = tree.leftOf(cursor)
		}

		cursor = stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !visit(cursor) {
			return
		}

		cursor = tree.rightOf(cursor)
	}
}

func (tree *Tree[T]) walkPre(visit func(slot uint32) bool) {
	stack := []uint32{tree.root}

	for len(stack) > 0 {
		cursor := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !visit(cursor) {
			return
		}

		if right := tree.rightOf(cursor); right != 0 {
			stack = append(stack, right)
		}

		if left := tree.leftOf(cursor); left != 0 {
			stack = append(stack, left)
		}
	}
}

func (tree *Tree[T]) walkPost(visit func(slot uint32) bool) {
	var (
		stack []uint32
		last  uint32
	)

	cursor := tree.root

	for cursor != 0 || len(stack) > 0 {
		if cursor != 0 {
			stack = append(stack, cursor)
			cursor = tree.leftOf(cursor)

			continue
		}

		top := stack[len(stack)-1]
		if right := tree.rightOf(top); right != 0 && right != last {
			cursor = right

			continue
		}

		if !visit(top) {
			return
		}

		last = top
		stack = stack[:len(stack)-1]
	}
}
