package rbtree

import (
	"errors"
	"fmt"
)

// Invariant violations reported by Validate.
var (
	ErrRootNotBlack = errors.New("root is not black")
	ErrRedRed       = errors.New("red node has a red child")
	ErrBlackHeight  = errors.New("black height differs between subtrees")
	ErrOrder        = errors.New("values are not strictly ascending")
	ErrBrokenLink   = errors.New("parent link does not match child link")
	ErrCount        = errors.New("reachable node count differs from length")
	ErrArenaLeak    = errors.New("arena slot is neither reachable nor free")
)

// BlackHeight returns the number of black nodes on any path from the root down
// to an absent child, counting the root. It is 0 for an empty tree.
func (tree *Tree[T]) BlackHeight() int {
	tree.arena.mustBeAwake()

	height := 0

	for cursor := tree.root; cursor != 0; cursor = tree.leftOf(cursor) {
		if tree.colorOf(cursor) == black {
			height++
		}
	}

	return height
}

// Validate checks every structural invariant of the tree and its arena. It
// returns nil for a consistent tree, otherwise an error wrapping one of the
// Err* sentinels of this package.
//
//nolint:gocognit,cyclop // one pass over the tree checks all invariants.
func (tree *Tree[T]) Validate() error {
	tree.arena.mustBeAwake()

	rows := len(tree.arena.values)

	reachable, visited, err := tree.reachableSlots(rows)
	if err != nil {
		return err
	}

	if tree.root != 0 {
		if tree.colorOf(tree.root) != black {
			return fmt.Errorf("%w: slot %d", ErrRootNotBlack, tree.root)
		}

		if tree.parentOf(tree.root) != 0 {
			return fmt.Errorf("%w: root %d has parent %d", ErrBrokenLink, tree.root, tree.parentOf(tree.root))
		}
	}

	blackHeights := make([]int, rows)

	var previous uint32

	// Post-order gives children before parents for the black heights.
	tree.walk(orderPost, func(slot uint32) bool {
		left, right := tree.leftOf(slot), tree.rightOf(slot)

		for _, child := range []uint32{left, right} {
			if child == 0 {
				continue
			}

			if tree.parentOf(child) != slot {
				err = fmt.Errorf("%w: child %d of %d points at %d", ErrBrokenLink, child, slot, tree.parentOf(child))

				return false
			}

			if tree.colorOf(slot) == red && tree.colorOf(child) == red {
				err = fmt.Errorf("%w: %d -> %d", ErrRedRed, slot, child)

				return false
			}
		}

		if blackHeights[left] != blackHeights[right] {
			err = fmt.Errorf("%w: slot %d has %d on the left and %d on the right",
				ErrBlackHeight, slot, blackHeights[left], blackHeights[right])

			return false
		}

		blackHeights[slot] = blackHeights[left]
		if tree.colorOf(slot) == black {
			blackHeights[slot]++
		}

		return true
	})

	if err != nil {
		return err
	}

	tree.walk(orderIn, func(slot uint32) bool {
		if previous != 0 && tree.compare(tree.arena.values[previous], tree.arena.values[slot]) >= 0 {
			err = fmt.Errorf("%w: slot %d after slot %d", ErrOrder, slot, previous)

			return false
		}

		previous = slot

		return true
	})

	if err != nil {
		return err
	}

	if visited != tree.count {
		return fmt.Errorf("%w: %d reachable, length %d", ErrCount, visited, tree.count)
	}

	onFree := make([]bool, rows)

	for _, slot := range tree.arena.free {
		if slot == 0 || int(slot) >= rows || reachable[slot] || onFree[slot] || !tree.arena.isFree(slot) {
			return fmt.Errorf("%w: free slot %d", ErrArenaLeak, slot)
		}

		onFree[slot] = true
	}

	if visited+len(tree.arena.free) != rows-1 {
		return fmt.Errorf("%w: %d reachable + %d free != %d slots",
			ErrArenaLeak, visited, len(tree.arena.free), rows-1)
	}

	return nil
}

// reachableSlots marks every slot linked from the root. Links leaving the
// arena or reaching a slot twice are reported before any ordered walk runs,
// so a corrupt tree cannot trap the walks in a cycle.
func (tree *Tree[T]) reachableSlots(rows int) ([]bool, int, error) {
	reachable := make([]bool, rows)

	if tree.root == 0 {
		return reachable, 0, nil
	}

	if int(tree.root) >= rows {
		return nil, 0, fmt.Errorf("%w: root %d outside %d slots", ErrBrokenLink, tree.root, rows)
	}

	visited := 0
	stack := []uint32{tree.root}

	for len(stack) > 0 {
		slot := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if reachable[slot] {
			return nil, 0, fmt.Errorf("%w: cycle through slot %d", ErrBrokenLink, slot)
		}

		reachable[slot] = true
		visited++

		for _, child := range []uint32{tree.leftOf(slot), tree.rightOf(slot)} {
			if child == 0 {
				continue
			}

			if int(child) >= rows {
				return nil, 0, fmt.Errorf("%w: slot %d links to %d outside %d slots", ErrBrokenLink, slot, child, rows)
			}

			stack = append(stack, child)
		}
	}

	return reachable, visited, nil
}
