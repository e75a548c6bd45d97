package rbtree

import (
	"math"
)

// maxSlot is the largest slot id the arena hands out.
const maxSlot = math.MaxUint32 - 1

// link holds the three edges of a node. Zero means absent.
type link struct {
	parent, left, right uint32
}

// arena stores nodes in parallel tables addressed by slot id. Slot 0 is
// reserved so that a zero link reads as "no node".
type arena[T any] struct {
	values []T
	links  []link
	colors []bool
	// gens is odd while a slot sits on the free stack.
	gens []uint32

	// free is a LIFO stack of released slot ids.
	free []uint32

	// frozen is non-nil while the link, color and generation columns are compressed.
	frozen *frozenColumns
}

func newArena[T any](capacity int) arena[T] {
	if capacity < 0 {
		capacity = 0
	}

	rows := capacity + 1

	arn := arena[T]{
		values: make([]T, 1, rows),
		links:  make([]link, 1, rows),
		colors: make([]bool, 1, rows),
		gens:   make([]uint32, 1, rows),
	}
	arn.colors[0] = black

	return arn
}

// alloc returns a slot holding value with cleared links. The most recently
// released slot is reused first.
func (arn *arena[T]) alloc(value T) uint32 {
	arn.mustBeAwake()

	if top := len(arn.free); top > 0 {
		slot := arn.free[top-1]
		arn.free = arn.free[:top-1]

		doAssert(arn.isFree(slot))

		arn.gens[slot]++
		arn.values[slot] = value
		arn.links[slot] = link{}
		arn.colors[slot] = red

		return slot
	}

	rows := len(arn.values)
	if rows > maxSlot {
		panic("rbtree: arena slot ids exhausted")
	}

	arn.values = append(arn.values, value)
	arn.links = append(arn.links, link{})
	arn.colors = append(arn.colors, red)
	arn.gens = append(arn.gens, 0)

	return uint32(rows)
}

// release pushes slot onto the free stack and invalidates outstanding handles.
// Links and color are left stale; alloc overwrites them.
func (arn *arena[T]) release(slot uint32) {
	arn.mustBeAwake()

	if slot == 0 {
		panic("slot #0 is special and cannot be released")
	}

	doAssert(int(slot) < len(arn.values))
	doAssert(!arn.isFree(slot))

	var zero T

	arn.values[slot] = zero
	arn.gens[slot]++
	arn.free = append(arn.free, slot)
}

func (arn *arena[T]) isFree(slot uint32) bool {
	return arn.gens[slot]%2 == 1
}

func (arn *arena[T]) mustBeAwake() {
	if arn.frozen != nil {
		panic("hibernated trees cannot be used")
	}
}

func (arn *arena[T]) hibernatedSize() int {
	if arn.frozen == nil {
		return 0
	}

	return arn.frozen.size()
}

// Link accessors. Slot 0 always reads as black with no edges.

func (tree *Tree[T]) parentOf(slot uint32) uint32 {
	return tree.arena.links[slot].parent
}

func (tree *Tree[T]) leftOf(slot uint32) uint32 {
	return tree.arena.links[slot].left
}

func (tree *Tree[T]) rightOf(slot uint32) uint32 {
	return tree.arena.links[slot].right
}

func (tree *Tree[T]) setParent(slot, parent uint32) {
	if slot != 0 {
		tree.arena.links[slot].parent = parent
	}
}

func (tree *Tree[T]) setLeft(slot, child uint32) {
	tree.arena.links[slot].left = child
	tree.setParent(child, slot)
}

func (tree *Tree[T]) setRight(slot, child uint32) {
	tree.arena.links[slot].right = child
	tree.setParent(child, slot)
}

func (tree *Tree[T]) colorOf(slot uint32) bool {
	if slot == 0 {
		return black
	}

	return tree.arena.colors[slot]
}

func (tree *Tree[T]) setColor(slot uint32, color bool) {
	doAssert(slot != 0)
	tree.arena.colors[slot] = color
}

func (tree *Tree[T]) isLeftChild(slot uint32) bool {
	return slot == tree.leftOf(tree.parentOf(slot))
}

func (tree *Tree[T]) sibling(slot uint32) uint32 {
	parent := tree.parentOf(slot)
	doAssert(parent != 0)

	if tree.isLeftChild(slot) {
		return tree.rightOf(parent)
	}

	return tree.leftOf(parent)
}

// replaceChild points the edge that led to oldChild at newChild. When oldChild
// is the root, the root moves instead.
func (tree *Tree[T]) replaceChild(parent, oldChild, newChild uint32) {
	switch {
	case parent == 0:
		tree.root = newChild
		tree.setParent(newChild, 0)
	case tree.leftOf(parent) == oldChild:
		tree.setLeft(parent, newChild)
	default:
		doAssert(tree.rightOf(parent) == oldChild)
		tree.setRight(parent, newChild)
	}
}
