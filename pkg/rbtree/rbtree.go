// Package rbtree provides an arena-backed red-black tree. Nodes live in flat,
// index-addressed tables owned by the tree; links are uint32 slot ids and slot 0
// is reserved to mean "absent".
package rbtree

import (
	"cmp"
)

const (
	red   = false
	black = true
)

// Tree is a red-black tree storing distinct values of type T.
//
// A Tree is not safe for concurrent use. Traversals must not be interleaved with
// mutations of the same instance.
type Tree[T any] struct {
	arena   arena[T]
	compare func(a, b T) int

	// Root of the tree, 0 when empty.
	root uint32

	// Number of nodes reachable from root.
	count int
}

// New creates an empty tree for an ordered type. The capacity hint pre-sizes the
// arena tables so that the first capacity inserts never reallocate.
func New[T cmp.Ordered](capacity int) *Tree[T] {
	return NewFunc(cmp.Compare[T], capacity)
}

// NewFunc creates an empty tree ordered by compare, which must return a negative
// number, zero or a positive number when a is less than, equal to or greater than b.
func NewFunc[T any](compare func(a, b T) int, capacity int) *Tree[T] {
	if compare == nil {
		panic("rbtree: nil compare function")
	}

	return &Tree[T]{arena: newArena[T](capacity), compare: compare}
}

// Len returns the number of values in the tree.
func (tree *Tree[T]) Len() int {
	return tree.count
}

// Empty reports whether the tree holds no values.
func (tree *Tree[T]) Empty() bool {
	return tree.root == 0
}

// Clear removes every value. Slots are returned to the free stack.
func (tree *Tree[T]) Clear() {
	tree.arena.mustBeAwake()

	for _, slot := range tree.slots(orderPost) {
		tree.arena.release(slot)
	}

	tree.root = 0
	tree.count = 0
}

// Stats describes the arena behind a tree.
type Stats struct {
	// Slots is the number of allocated table rows, excluding the reserved slot 0.
	Slots int `json:"slots"`
	// Live is the number of slots holding a value.
	Live int `json:"live"`
	// Free is the number of slots waiting on the free stack.
	Free int `json:"free"`
	// Capacity is the number of rows the tables can hold without growing.
	Capacity int `json:"capacity"`
	// HibernatedBytes is the compressed size of the columns while hibernated.
	HibernatedBytes int `json:"hibernated_bytes"`
}

// Stats returns arena occupancy figures.
func (tree *Tree[T]) Stats() Stats {
	free := len(tree.arena.free)
	if tree.arena.frozen != nil {
		free = tree.arena.frozen.freeLen
	}

	return Stats{
		Slots:           len(tree.arena.values) - 1,
		Live:            tree.count,
		Free:            free,
		Capacity:        cap(tree.arena.values) - 1,
		HibernatedBytes: tree.arena.hibernatedSize(),
	}
}

func doAssert(condition bool) {
	if !condition {
		panic("rbtree internal assertion failed")
	}
}
