package rbtree

import (
	"errors"
	"fmt"
	"sync"
)

// ErrAlreadyHibernated is returned by Hibernate on a tree that is already hibernated.
var ErrAlreadyHibernated = errors.New("tree is already hibernated")

// Column indexes inside frozenColumns.blocks.
const (
	columnParent = iota
	columnLeft
	columnRight
	columnColor
	columnGen
	columnFree
	columnCount
)

// frozenColumns keeps the compressed arena columns of a hibernated tree.
type frozenColumns struct {
	rows    int
	freeLen int
	blocks  [columnCount][]byte
}

func (frozen *frozenColumns) size() int {
	total := 0
	for _, block := range frozen.blocks {
		total += len(block)
	}

	return total
}

// Hibernated reports whether the tree is currently hibernated.
func (tree *Tree[T]) Hibernated() bool {
	return tree.arena.frozen != nil
}

// Hibernate compresses the link, color, generation and free-stack columns of
// the arena and drops the uncompressed copies. Values stay resident. Every
// other operation except Len, Empty, Stats and Boot panics until Boot is called.
func (tree *Tree[T]) Hibernate() error {
	arn := &tree.arena
	if arn.frozen != nil {
		return ErrAlreadyHibernated
	}

	rows := len(arn.links)

	// Deinterleave the node rows so that each column compresses on its own.
	columns := [columnCount][]uint32{}
	for idx := range columnFree {
		columns[idx] = make([]uint32, rows)
	}

	for slot, edges := range arn.links {
		columns[columnParent][slot] = edges.parent
		columns[columnLeft][slot] = edges.left
		columns[columnRight][slot] = edges.right

		if arn.colors[slot] == black {
			columns[columnColor][slot] = 1
		}

		columns[columnGen][slot] = arn.gens[slot]
	}

	columns[columnFree] = arn.free

	frozen := &frozenColumns{rows: rows, freeLen: len(arn.free)}
	errs := make([]error, columnCount)

	var wg sync.WaitGroup

	for idx := range columns {
		wg.Add(1)

		go func() {
			defer wg.Done()

			frozen.blocks[idx], errs[idx] = compressColumn(columns[idx])
		}()
	}

	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("hibernate: %w", err)
	}

	arn.links = nil
	arn.colors = nil
	arn.gens = nil
	arn.free = nil
	arn.frozen = frozen

	return nil
}

// Boot restores the columns dropped by Hibernate. It is a no-op on a tree that
// is not hibernated. On error the tree stays hibernated.
func (tree *Tree[T]) Boot() error {
	arn := &tree.arena

	frozen := arn.frozen
	if frozen == nil {
		return nil
	}

	columns := [columnCount][]uint32{}
	errs := make([]error, columnCount)

	var wg sync.WaitGroup

	for idx := range columns {
		rows := frozen.rows
		if idx == columnFree {
			rows = frozen.freeLen
		}

		wg.Add(1)

		go func() {
			defer wg.Done()

			columns[idx], errs[idx] = decompressColumn(frozen.blocks[idx], rows)
		}()
	}

	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("boot: %w", err)
	}

	links := make([]link, frozen.rows, cap(arn.values))
	colors := make([]bool, frozen.rows, cap(arn.values))

	for slot := range links {
		links[slot] = link{
			parent: columns[columnParent][slot],
			left:   columns[columnLeft][slot],
			right:  columns[columnRight][slot],
		}
		colors[slot] = columns[columnColor][slot] == 1
	}

	gens := make([]uint32, frozen.rows, cap(arn.values))
	copy(gens, columns[columnGen])

	arn.links = links
	arn.colors = colors
	arn.gens = gens
	arn.free = columns[columnFree]
	arn.frozen = nil

	return nil
}
