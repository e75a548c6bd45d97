package rbtree

// Remove deletes the value equal to value. It returns false, leaving the tree
// untouched, when no such value is stored.
func (tree *Tree[T]) Remove(value T) bool {
	slot := tree.search(value)
	if slot == 0 {
		return false
	}

	tree.removeSlot(slot)

	return true
}

func (tree *Tree[T]) removeSlot(slot uint32) {
	if tree.leftOf(slot) != 0 && tree.rightOf(slot) != 0 {
		successor := tree.inOrderSuccessor(tree.rightOf(slot))
		tree.swapPositions(slot, successor)
	}

	doAssert(tree.leftOf(slot) == 0 || tree.rightOf(slot) == 0)

	child := tree.leftOf(slot)
	if child == 0 {
		child = tree.rightOf(slot)
	}

	switch {
	case child != 0:
		// One child: a black node over a red leaf. The promoted child turns
		// black so the black height of the path is unchanged.
		tree.replaceChild(tree.parentOf(slot), slot, child)
		tree.setColor(child, black)
	case tree.colorOf(slot) == red:
		tree.replaceChild(tree.parentOf(slot), slot, 0)
	default:
		// Black leaf. Fix the deficiency while the leaf still marks the
		// short path, then detach it.
		if slot != tree.root {
			tree.removeRebalance(slot)
		}

		tree.replaceChild(tree.parentOf(slot), slot, 0)
	}

	tree.arena.release(slot)
	tree.count--
}

// swapPositions exchanges the tree positions and colors of target and its
// in-order successor by relinking edges. Values stay in their slots, so
// handles to either node remain valid.
func (tree *Tree[T]) swapPositions(target, successor uint32) {
	doAssert(target != successor && tree.leftOf(successor) == 0)

	targetParent := tree.parentOf(target)
	targetLeft := tree.leftOf(target)
	targetRight := tree.rightOf(target)
	successorParent := tree.parentOf(successor)
	successorRight := tree.rightOf(successor)

	tree.replaceChild(targetParent, target, successor)
	tree.setLeft(successor, targetLeft)

	if successorParent == target {
		tree.setRight(successor, target)
	} else {
		doAssert(tree.leftOf(successorParent) == successor)
		tree.setRight(successor, targetRight)
		tree.setLeft(successorParent, target)
	}

	tree.arena.links[target].left = 0
	tree.setRight(target, successorRight)
	tree.swapColors(target, successor)
}

// removeRebalance repairs the missing black node on the path through slot. Each
// round hands the sibling to absorbDeficiency; when the sibling cannot absorb
// it, the deficiency moves up to the parent.
func (tree *Tree[T]) removeRebalance(slot uint32) {
	for slot != tree.root && tree.colorOf(slot) == black {
		parent := tree.parentOf(slot)
		siblingIsLeft := !tree.isLeftChild(slot)

		if tree.absorbDeficiency(tree.sibling(slot), siblingIsLeft) {
			return
		}

		slot = parent
	}

	tree.setColor(slot, black)
}

// absorbDeficiency resolves a missing black node on the side opposite to
// sibling. It returns false when the sibling was recolored red and the parent
// now carries the deficiency.
func (tree *Tree[T]) absorbDeficiency(sibling uint32, siblingIsLeft bool) bool {
	// A valid tree always has a sibling on the heavier side.
	doAssert(sibling != 0)

	parent := tree.parentOf(sibling)

	// Red sibling: lift it so that a black node sits on our side, then resolve
	// against the new sibling.
	if tree.colorOf(sibling) == red {
		if siblingIsLeft {
			tree.leftLeftRotation(sibling)
			sibling = tree.leftOf(parent)
		} else {
			tree.rightRightRotation(sibling)
			sibling = tree.rightOf(parent)
		}

		doAssert(sibling != 0)
	}

	near, far := tree.leftOf(sibling), tree.rightOf(sibling)
	if siblingIsLeft {
		near, far = far, near
	}

	if tree.colorOf(near) == black && tree.colorOf(far) == black {
		tree.setColor(sibling, red)

		return false
	}

	parentColor := tree.colorOf(parent)

	var top uint32

	switch {
	case tree.colorOf(far) == red && siblingIsLeft:
		tree.leftLeftRotation(sibling)
		top = sibling
	case tree.colorOf(far) == red:
		tree.rightRightRotation(sibling)
		top = sibling
	case siblingIsLeft:
		top = tree.leftRightRotation(sibling)
	default:
		top = tree.rightLeftRotation(sibling)
	}

	tree.setColor(top, parentColor)
	tree.setColor(tree.leftOf(top), black)
	tree.setColor(tree.rightOf(top), black)

	return true
}
