package rbtree

// Handle references a stored value by arena slot and slot generation. A handle
// stays valid until its value is removed; after that it never resolves again,
// even when the slot is reused by a later insert.
type Handle struct {
	slot uint32
	gen  uint32
}

// Valid reports whether the handle was produced by a successful lookup.
func (h Handle) Valid() bool {
	return h.slot != 0
}

// Find returns a handle to the stored value equal to value.
func (tree *Tree[T]) Find(value T) (Handle, bool) {
	slot := tree.search(value)
	if slot == 0 {
		return Handle{}, false
	}

	return Handle{slot: slot, gen: tree.arena.gens[slot]}, true
}

// Value resolves a handle. The boolean is false for handles whose value has
// been removed from the tree.
func (tree *Tree[T]) Value(h Handle) (T, bool) {
	tree.arena.mustBeAwake()

	var zero T

	if h.slot == 0 || int(h.slot) >= len(tree.arena.values) {
		return zero, false
	}

	if tree.arena.gens[h.slot] != h.gen {
		return zero, false
	}

	return tree.arena.values[h.slot], true
}
