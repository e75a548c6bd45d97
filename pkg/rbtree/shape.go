package rbtree

// Shape is a detached snapshot of one node and its subtrees. Absent children
// are nil.
type Shape[T any] struct {
	Value T
	Red   bool
	Left  *Shape[T]
	Right *Shape[T]
}

// Shape returns a snapshot of the tree structure, or nil for an empty tree.
// Later mutations of the tree do not affect the snapshot.
func (tree *Tree[T]) Shape() *Shape[T] {
	tree.arena.mustBeAwake()

	if tree.root == 0 {
		return nil
	}

	type pending struct {
		slot uint32
		dst  **Shape[T]
	}

	var root *Shape[T]

	stack := []pending{{slot: tree.root, dst: &root}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &Shape[T]{
			Value: tree.arena.values[top.slot],
			Red:   tree.colorOf(top.slot) == red,
		}
		*top.dst = node

		if left := tree.leftOf(top.slot); left != 0 {
			stack = append(stack, pending{slot: left, dst: &node.Left})
		}

		if right := tree.rightOf(top.slot); right != 0 {
			stack = append(stack, pending{slot: right, dst: &node.Right})
		}
	}

	return root
}
