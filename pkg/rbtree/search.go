package rbtree

// Contains reports whether a value equal to value is stored in the tree.
func (tree *Tree[T]) Contains(value T) bool {
	return tree.search(value) != 0
}

// Min returns the smallest value. The boolean is false for an empty tree.
func (tree *Tree[T]) Min() (T, bool) {
	tree.arena.mustBeAwake()

	if tree.root == 0 {
		var zero T

		return zero, false
	}

	return tree.arena.values[tree.leftmost(tree.root)], true
}

// Max returns the largest value. The boolean is false for an empty tree.
func (tree *Tree[T]) Max() (T, bool) {
	tree.arena.mustBeAwake()

	if tree.root == 0 {
		var zero T

		return zero, false
	}

	cursor := tree.root
	for tree.rightOf(cursor) != 0 {
		cursor = tree.rightOf(cursor)
	}

	return tree.arena.values[cursor], true
}

// Height returns the number of nodes on the longest root-to-leaf path.
func (tree *Tree[T]) Height() int {
	tree.arena.mustBeAwake()

	type frame struct {
		slot  uint32
		depth int
	}

	height := 0
	stack := []frame{}

	if tree.root != 0 {
		stack = append(stack, frame{tree.root, 1})
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		height = max(height, top.depth)

		if left := tree.leftOf(top.slot); left != 0 {
			stack = append(stack, frame{left, top.depth + 1})
		}

		if right := tree.rightOf(top.slot); right != 0 {
			stack = append(stack, frame{right, top.depth + 1})
		}
	}

	return height
}

// search descends from the root and returns the slot holding value, or 0.
func (tree *Tree[T]) search(value T) uint32 {
	tree.arena.mustBeAwake()

	cursor := tree.root

	for cursor != 0 {
		comp := tree.compare(value, tree.arena.values[cursor])

		switch {
		case comp == 0:
			return cursor
		case comp < 0:
			cursor = tree.leftOf(cursor)
		default:
			cursor = tree.rightOf(cursor)
		}
	}

	return 0
}

// leftmost follows left links from start until a node has no left child.
func (tree *Tree[T]) leftmost(start uint32) uint32 {
	doAssert(start != 0)

	cursor := start
	for tree.leftOf(cursor) != 0 {
		cursor = tree.leftOf(cursor)
	}

	return cursor
}

// inOrderSuccessor returns the smallest node of the subtree rooted at start.
// Deletion calls it with the right child of a node that has two children.
func (tree *Tree[T]) inOrderSuccessor(start uint32) uint32 {
	return tree.leftmost(start)
}
