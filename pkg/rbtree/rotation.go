package rbtree

// rotate performs a single rotation around pivot. isLeft=true lifts the right
// child, isLeft=false lifts the left child. Colors are untouched.
//
// Left rotation:
//
//	  X              Y
//	A   Y    =>    X   C
//	  B C        A B
//
// Right rotation:
//
//	    Y            X
//	  X   C  =>    A   Y
//	A B              B C
//
//nolint:dupword // ASCII art diagrams contain intentional repeated letters.
func (tree *Tree[T]) rotate(pivot uint32, isLeft bool) uint32 {
	doAssert(pivot != 0)

	parent := tree.parentOf(pivot)

	if isLeft {
		child := tree.rightOf(pivot)
		doAssert(child != 0)

		tree.setRight(pivot, tree.leftOf(child))
		tree.replaceChild(parent, pivot, child)
		tree.setLeft(child, pivot)

		return child
	}

	child := tree.leftOf(pivot)
	doAssert(child != 0)

	tree.setLeft(pivot, tree.rightOf(child))
	tree.replaceChild(parent, pivot, child)
	tree.setRight(child, pivot)

	return child
}

func (tree *Tree[T]) swapColors(first, second uint32) {
	firstColor := tree.colorOf(first)
	tree.setColor(first, tree.colorOf(second))
	tree.setColor(second, firstColor)
}

// leftLeftRotation lifts node, the left child of its parent, into the parent's
// position. The former parent becomes the right child of node and the two swap
// colors.
func (tree *Tree[T]) leftLeftRotation(node uint32) {
	parent := tree.parentOf(node)
	doAssert(parent != 0 && tree.leftOf(parent) == node)

	tree.rotate(parent, false)
	tree.swapColors(node, parent)
}

// rightRightRotation is the mirror image of leftLeftRotation.
func (tree *Tree[T]) rightRightRotation(node uint32) {
	parent := tree.parentOf(node)
	doAssert(parent != 0 && tree.rightOf(parent) == node)

	tree.rotate(parent, true)
	tree.swapColors(node, parent)
}

// leftRightRotation handles a left child whose right child must end up on top:
// the inner child is rotated into node's position, then lifted again with
// leftLeftRotation. It returns the new local root.
func (tree *Tree[T]) leftRightRotation(node uint32) uint32 {
	doAssert(tree.parentOf(node) != 0)

	inner := tree.rotate(node, true)
	tree.leftLeftRotation(inner)

	return inner
}

// rightLeftRotation is the mirror image of leftRightRotation.
func (tree *Tree[T]) rightLeftRotation(node uint32) uint32 {
	doAssert(tree.parentOf(node) != 0)

	inner := tree.rotate(node, false)
	tree.rightRightRotation(inner)

	return inner
}
