package rbtree

// Insert stores value in the tree and rebalances it. Inserting a value equal to
// one already stored leaves the tree untouched and returns false.
func (tree *Tree[T]) Insert(value T) bool {
	tree.arena.mustBeAwake()

	if tree.root == 0 {
		slot := tree.arena.alloc(value)
		tree.setColor(slot, black)
		tree.root = slot
		tree.count++

		return true
	}

	parent := tree.root

	for {
		comp := tree.compare(value, tree.arena.values[parent])

		switch {
		case comp == 0:
			return false
		case comp < 0:
			if tree.leftOf(parent) == 0 {
				slot := tree.arena.alloc(value)
				tree.setLeft(parent, slot)
				tree.count++
				tree.insertRebalance(slot)

				return true
			}

			parent = tree.leftOf(parent)
		default:
			if tree.rightOf(parent) == 0 {
				slot := tree.arena.alloc(value)
				tree.setRight(parent, slot)
				tree.count++
				tree.insertRebalance(slot)

				return true
			}

			parent = tree.rightOf(parent)
		}
	}
}

// insertRebalance restores the coloring after slot was attached as a red leaf.
// A red uncle pushes the violation up to the grandparent; a black or absent uncle
// is resolved by one rotation at the parent.
func (tree *Tree[T]) insertRebalance(slot uint32) {
	tree.setColor(slot, red)

	for {
		parent := tree.parentOf(slot)

		// The node is the root.
		if parent == 0 {
			tree.setColor(slot, black)

			return
		}

		// A black parent keeps every invariant.
		if tree.colorOf(parent) == black {
			return
		}

		// The parent is the root, nothing sits above it to violate.
		grandparent := tree.parentOf(parent)
		if grandparent == 0 {
			tree.setColor(parent, black)

			return
		}

		parentIsLeft := tree.leftOf(grandparent) == parent

		uncle := tree.leftOf(grandparent)
		if parentIsLeft {
			uncle = tree.rightOf(grandparent)
		}

		if tree.colorOf(uncle) == red {
			tree.setColor(parent, black)
			tree.setColor(uncle, black)
			tree.setColor(grandparent, red)
			slot = grandparent

			continue
		}

		nodeIsLeft := tree.leftOf(parent) == slot

		switch {
		case parentIsLeft && nodeIsLeft:
			tree.leftLeftRotation(parent)
		case parentIsLeft:
			tree.leftRightRotation(parent)
		case nodeIsLeft:
			tree.rightLeftRotation(parent)
		default:
			tree.rightRightRotation(parent)
		}

		return
	}
}
